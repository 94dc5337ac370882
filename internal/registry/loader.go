package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"dalled/pkg/types"
)

// Variant names one size of the text-to-image model.
type Variant string

const (
	Mini     Variant = "Mini"
	Mega     Variant = "Mega"
	MegaFull Variant = "Mega_full"
)

// defaultBackendModels are the model identifiers the model server knows the
// variants by, unless overridden in configuration.
var defaultBackendModels = map[Variant]string{
	Mini:     "dalle-mini/dalle-mini/mini-1:v0",
	Mega:     "dalle-mini/dalle-mini/mega-1-fp16:latest",
	MegaFull: "dalle-mini/dalle-mini/mega-1:latest",
}

// ParseVariant accepts a variant name case-insensitively and returns its
// canonical form.
func ParseVariant(s string) (Variant, error) {
	want := strings.TrimSpace(s)
	for v := range defaultBackendModels {
		if strings.EqualFold(string(v), want) {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown model version %q (want one of %s)", s, strings.Join(variantNames(), ", "))
}

func variantNames() []string {
	names := lo.Map(lo.Keys(defaultBackendModels), func(v Variant, _ int) string { return string(v) })
	sort.Strings(names)
	return names
}

// Registry resolves variants to backend model identifiers.
type Registry struct {
	models map[Variant]string
}

// New builds a registry from the defaults, applying overrides keyed by
// variant name (case-insensitive). Empty override values are ignored.
func New(overrides map[string]string) (*Registry, error) {
	models := lo.Assign(defaultBackendModels)
	for name, model := range overrides {
		v, err := ParseVariant(name)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(model) == "" {
			continue
		}
		models[v] = strings.TrimSpace(model)
	}
	return &Registry{models: models}, nil
}

// Lookup returns the model description for v.
func (r *Registry) Lookup(v Variant) (types.ModelVariant, error) {
	m, ok := r.models[v]
	if !ok {
		return types.ModelVariant{}, fmt.Errorf("unknown model version %q", v)
	}
	return types.ModelVariant{Name: string(v), BackendModel: m}, nil
}

// List returns all variants sorted by name.
func (r *Registry) List() []types.ModelVariant {
	out := make([]types.ModelVariant, 0, len(r.models))
	for v, m := range r.models {
		out = append(out, types.ModelVariant{Name: string(v), BackendModel: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

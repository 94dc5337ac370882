package config

import (
	"fmt"
	"strings"
)

// Environment variables holding upload and model credentials.
const (
	EnvCloudName   = "CLOUD_NAME"
	EnvAPIKey      = "API_KEY"
	EnvAPISecret   = "API_SECRET"
	EnvModelAPIKey = "MODEL_API_KEY"
)

// Credentials are read from the environment, never from config files.
type Credentials struct {
	CloudName   string
	APIKey      string
	APISecret   string
	ModelAPIKey string
}

// LoadCredentials reads credentials through getenv. The Cloudinary uploader
// needs all three of its variables; the error names every missing one.
func LoadCredentials(uploader string, getenv func(string) string) (Credentials, error) {
	c := Credentials{
		CloudName:   getenv(EnvCloudName),
		APIKey:      getenv(EnvAPIKey),
		APISecret:   getenv(EnvAPISecret),
		ModelAPIKey: getenv(EnvModelAPIKey),
	}
	if uploader != UploaderCloudinary {
		return c, nil
	}
	var missing []string
	for _, kv := range [][2]string{{EnvCloudName, c.CloudName}, {EnvAPIKey, c.APIKey}, {EnvAPISecret, c.APISecret}} {
		if kv[1] == "" {
			missing = append(missing, kv[0])
		}
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("missing upload credentials: %s must be set in the environment", strings.Join(missing, ", "))
	}
	return c, nil
}

// Package model wraps the single shared text-to-image model handle. It is
// split into small files by concern:
//
//   - model.go: Model type, Ready/Snapshot/Shutdown.
//   - config.go: Config, package defaults and New.
//   - types.go: State, Snapshot, Backend contract.
//   - errors.go: error types and predicates (IsTooBusy, IsNotReady, IsCountMismatch).
//   - admission.go: the generation gate (one in-flight generation, bounded queue).
//   - warmup.go: the one-time warm-up inference.
//   - generate.go: Generate entry point and backend decoding.
//   - backend_openai.go: Backend over an OpenAI-compatible images API.
//   - events.go, eventpub_memory.go: lifecycle events.
//
// The model itself runs in a separate model server; this package only
// serializes access to it and turns its output into image.Image values.
package model

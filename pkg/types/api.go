package types

// GenerateRequest is the payload accepted by POST /dalle.
type GenerateRequest struct {
	// Required prompt describing the desired image. Any string is accepted,
	// the empty one included; only a missing field is rejected.
	// example: an armchair in the shape of an avocado
	Text *string `json:"text" example:"an armchair in the shape of an avocado"`
	// Required number of images to generate. A pointer so that a missing
	// field can be told apart from an explicit zero.
	// example: 2
	NumImages *int `json:"num_images" example:"2"`
}

// GenerateResponse is returned by POST /dalle.
type GenerateResponse struct {
	// Public URLs of the uploaded images, in generation order.
	GeneratedImgs []string `json:"generatedImgs"`
	// Image format the images were encoded with.
	// example: jpeg
	GeneratedImgsFormat string `json:"generatedImgsFormat" example:"jpeg"`
}

// HealthResponse is returned by GET /.
type HealthResponse struct {
	// example: true
	Success bool `json:"success" example:"true"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Model lifecycle state (loading, ready, error, draining).
	// example: ready
	State string `json:"state" example:"ready"`
	// Selected model variant.
	Model ModelVariant `json:"model"`
	// Variants this server can be started with.
	ModelVersions []ModelVariant `json:"model_versions"`
	// Image format used for encoding and upload.
	// example: jpeg
	ImageFormat string `json:"image_format" example:"jpeg"`
	// Upload backend in use.
	// example: cloudinary
	Uploader string `json:"uploader" example:"cloudinary"`
	// Whether generated images are also written to disk.
	// example: false
	SaveToDisk bool `json:"save_to_disk" example:"false"`
	// Requests waiting for, or holding, the generation slot.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// Generations currently running (0 or 1).
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Total completed generation calls, warm-up included.
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
	// Total images produced by the model.
	// example: 40
	ImagesTotal uint64 `json:"images_total" example:"40"`
	// Last error observed by the model wrapper (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

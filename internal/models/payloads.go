package models

// These structs define the JSON payloads exchanged with upload and verify callers.

const (
	StatusRegistered = "registered"
	StatusInvalid    = "invalid"
	StatusError      = "error"
	StatusVerified   = "verified"
	StatusNotFound   = "not_found"
)

// Upload describes a file received for registration. Path points at a local copy.
type Upload struct {
	Filename string
	Path     string
}

// UploadResponse is returned by the upload endpoints.
type UploadResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// VerifyResponse is returned by the verify endpoints.
type VerifyResponse struct {
	Status string            `json:"status"`
	Data   map[string]string `json:"data,omitempty"`
}

// GCSEvent is the payload of a Cloud Storage object event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

package models

import "time"

// FileInfo represents metadata about an uploaded file.
type FileInfo struct {
	ID          string    `json:"id" msgpack:"id"`
	Name        string    `json:"name" msgpack:"name"`
	ContentType string    `json:"contentType,omitempty" msgpack:"contentType,omitempty"`
	Size        int64     `json:"size" msgpack:"size"`
	SHA256      string    `json:"sha256,omitempty" msgpack:"sha256,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt" msgpack:"uploadedAt"`
	Status      string    `json:"status" msgpack:"status"` // "uploaded", "extracted", "failed"
}

package models

import "time"

// FileStatus is the extraction outcome for one file of a batch.
type FileStatus string

const (
	FileStatusExtracted   FileStatus = "extracted"
	FileStatusFailed      FileStatus = "failed"
	FileStatusUnsupported FileStatus = "unsupported"
)

// FileReport describes what happened to a single uploaded file.
type FileReport struct {
	FileID  string     `json:"fileId"`
	Name    string     `json:"name"`
	Format  Format     `json:"format,omitempty"`
	Status  FileStatus `json:"status"`
	Chars   int        `json:"chars"`
	Message string     `json:"message,omitempty"`
}

// Session is the server-side state of one user's upload batch.
type Session struct {
	ID                  string       `json:"id"`
	Fingerprint         string       `json:"fingerprint,omitempty"`
	FileCount           int          `json:"fileCount"`
	Files               []FileReport `json:"files"`
	Text                string       `json:"text"`
	Summary             string       `json:"summary,omitempty"`
	Translation         string       `json:"translation,omitempty"`
	TranslationLanguage Language     `json:"translationLanguage,omitempty"`
	Reused              bool         `json:"reused,omitempty"`
	ProcessingTimeMs    int64        `json:"processingTimeMs,omitempty"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Files:     make([]FileReport, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that is safe to hand out while the original keeps changing.
func (s *Session) Clone() *Session {
	c := *s
	c.Files = append([]FileReport(nil), s.Files...)
	return &c
}

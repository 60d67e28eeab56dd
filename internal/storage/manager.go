package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/unibrain/backend/internal/models"
)

// ErrNotFound is returned for unknown file ids.
var ErrNotFound = errors.New("file not found")

// Store defines the interface for uploaded blob storage.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (*models.FileInfo, error)
	SaveBytes(ctx context.Context, name string, data []byte) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(ctx context.Context, id string) error
}

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.FileInfo
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.FileInfo),
	}, nil
}

// Save streams r to a new file and records its size and content hash.
func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) (*models.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:          id,
		Name:        name,
		ContentType: ContentTypeFor(name),
		Size:        size,
		SHA256:      hex.EncodeToString(h.Sum(nil)),
		UploadedAt:  time.Now(),
		Status:      "uploaded",
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return info, nil
}

// SaveBytes is Save for an in-memory payload.
func (s *LocalStore) SaveBytes(ctx context.Context, name string, data []byte) (*models.FileInfo, error) {
	return s.Save(ctx, name, bytes.NewReader(data))
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return info, nil
}

// Open returns a reader over the stored bytes.
func (s *LocalStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.uploadDir, id))
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// List returns the most recent files.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return recent(s.files, limit), nil
}

// Delete removes a file from storage.
func (s *LocalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	path := filepath.Join(s.uploadDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return nil
}

func recent(files map[string]*models.FileInfo, limit int) []*models.FileInfo {
	list := make([]*models.FileInfo, 0, len(files))
	for _, info := range files {
		list = append(list, info)
	}

	// Sort by UploadedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// ContentTypeFor guesses a MIME type from the file extension. Unknown
// extensions map to application/octet-stream.
func ContentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".png", ".PNG":
		return "image/png"
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return "image/jpeg"
	case ".pdf", ".PDF":
		return "application/pdf"
	case ".docx", ".DOCX":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".pptx", ".PPTX":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	}
	return "application/octet-stream"
}

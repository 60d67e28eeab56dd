package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/models"
	"github.com/unibrain/backend/internal/pipeline"
	"github.com/unibrain/backend/internal/storage"
)

// DefaultMaxSessions limits concurrent sessions when Options.MaxSessions is unset.
const DefaultMaxSessions = 100

// SessionKeepAliveWindow protects sessions that were used recently from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoText is returned when there is nothing to translate.
	ErrNoText = errors.New("no text available")
)

// Summarizer produces a summary of aggregated text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Translator translates aggregated text into a target language code.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, models.Language, error)
}

// Options configures a Manager.
type Options struct {
	TempDir     string
	MaxSessions int
	Summarizer  Summarizer
	Translator  Translator
	Logger      *zap.Logger
}

// Manager owns every active session.
type Manager struct {
	sessions    map[string]*State
	mu          sync.RWMutex
	store       storage.Store
	pipeline    *pipeline.Pipeline
	summarizer  Summarizer
	translator  Translator
	tempDir     string
	maxSessions int
	logger      *zap.Logger
}

// State holds one session and its document store. mu serializes the
// actions of a session so each one runs as a single logical thread.
type State struct {
	mu           sync.Mutex
	Session      *models.Session
	Documents    []models.ExtractedDocument
	DocStore     *DocStore // nil when the DuckDB file could not be created
	LastAccessed time.Time
}

// NewManager creates a session manager.
func NewManager(store storage.Store, p *pipeline.Pipeline, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	os.MkdirAll(opts.TempDir, 0755)

	return &Manager{
		sessions:    make(map[string]*State),
		store:       store,
		pipeline:    p,
		summarizer:  opts.Summarizer,
		translator:  opts.Translator,
		tempDir:     opts.TempDir,
		maxSessions: opts.MaxSessions,
		logger:      opts.Logger.Named("session"),
	}
}

// CreateSession starts an empty session.
func (m *Manager) CreateSession() (*models.Session, error) {
	m.cleanupOldSessionsIfNeeded()

	id := uuid.New().String()
	state := &State{
		Session:      models.NewSession(id),
		Documents:    make([]models.ExtractedDocument, 0),
		LastAccessed: time.Now(),
	}

	ds, err := NewDocStore(m.tempDir, id)
	if err != nil {
		m.logger.Warn("document store unavailable, using memory", zap.String("session", id), zap.Error(err))
	} else {
		state.DocStore = ds
	}

	m.mu.Lock()
	m.sessions[id] = state
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session", id))
	return state.Session.Clone(), nil
}

// GetSession returns a snapshot of a session.
func (m *Manager) GetSession(id string) (*models.Session, bool) {
	state, ok := m.state(id)
	if !ok {
		return nil, false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.Session.Clone(), true
}

// DeleteSession drops a session and removes its DuckDB file.
func (m *Manager) DeleteSession(id string) bool {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.closeState(state)
	m.logger.Info("session deleted", zap.String("session", id))
	return true
}

// TouchSession updates the LastAccessed time for a session to keep it alive.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ProcessFiles runs an upload batch through extraction. Each stored blob is
// read once and deleted afterwards. When the batch fingerprint matches the
// previous batch of the session, the aggregated text is reused and nothing
// is extracted again.
func (m *Manager) ProcessFiles(ctx context.Context, id string, files []*models.FileInfo) (*models.Session, error) {
	state, ok := m.state(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	defer m.discardBlobs(files)

	inputs, err := m.readInputs(ctx, files)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	sess := state.Session
	fingerprint := pipeline.BatchFingerprint(inputs)
	if len(inputs) > 0 && sess.Fingerprint == fingerprint {
		sess.Reused = true
		sess.UpdatedAt = time.Now()
		m.logger.Info("batch unchanged, reusing text",
			zap.String("session", id),
			zap.Int("files", len(inputs)),
		)
		return sess.Clone(), nil
	}

	batch, err := m.pipeline.ExtractBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	sess.Fingerprint = batch.Fingerprint
	sess.FileCount = len(batch.Reports)
	sess.Files = batch.Reports
	sess.Text = batch.Text
	sess.Summary = ""
	sess.Translation = ""
	sess.TranslationLanguage = ""
	sess.Reused = false
	sess.ProcessingTimeMs = batch.Elapsed.Milliseconds()
	sess.UpdatedAt = time.Now()
	state.Documents = batch.Documents

	if state.DocStore != nil {
		if err := state.DocStore.Replace(ctx, batch.Documents); err != nil {
			m.logger.Warn("document store write failed", zap.String("session", id), zap.Error(err))
		}
	}

	return sess.Clone(), nil
}

func (m *Manager) readInputs(ctx context.Context, files []*models.FileInfo) ([]pipeline.Input, error) {
	inputs := make([]pipeline.Input, 0, len(files))
	for _, f := range files {
		rc, err := m.store.Open(ctx, f.ID)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		inputs = append(inputs, pipeline.Input{
			FileID:      f.ID,
			Name:        f.Name,
			ContentType: f.ContentType,
			Data:        data,
		})
	}
	return inputs, nil
}

func (m *Manager) discardBlobs(files []*models.FileInfo) {
	for _, f := range files {
		if err := m.store.Delete(context.Background(), f.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("failed to delete upload", zap.String("file", f.ID), zap.Error(err))
		}
	}
}

// Documents returns the per-file documents of a session in upload order.
// A non-empty query keeps documents whose name or text contains it.
func (m *Manager) Documents(ctx context.Context, id, query string) ([]models.ExtractedDocument, error) {
	state, ok := m.state(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	query = strings.TrimSpace(query)
	if state.DocStore != nil {
		if query == "" {
			return state.DocStore.List(ctx)
		}
		return state.DocStore.Search(ctx, query)
	}

	docs := make([]models.ExtractedDocument, 0, len(state.Documents))
	q := strings.ToLower(query)
	for _, d := range state.Documents {
		if q == "" || strings.Contains(strings.ToLower(d.Text), q) || strings.Contains(strings.ToLower(d.Name), q) {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// Summarize summarizes override, or the session's aggregated text when
// override is blank, and records the result on the session.
func (m *Manager) Summarize(ctx context.Context, id, override string) (string, error) {
	if m.summarizer == nil {
		return "", errors.New("summarizer not configured")
	}
	state, ok := m.state(id)
	if !ok {
		return "", ErrSessionNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	// Empty text goes to the summarizer too; its word gate reports it as too
	// short.
	summary, err := m.summarizer.Summarize(ctx, pick(override, state.Session.Text))
	if err != nil {
		return "", err
	}
	state.Session.Summary = summary
	state.Session.UpdatedAt = time.Now()
	return summary, nil
}

// Translate translates override, or the session's aggregated text when
// override is blank, and records the result on the session.
func (m *Manager) Translate(ctx context.Context, id, target, override string) (string, models.Language, error) {
	if m.translator == nil {
		return "", "", errors.New("translator not configured")
	}
	state, ok := m.state(id)
	if !ok {
		return "", "", ErrSessionNotFound
	}
	state.mu.Lock()
	defer state.mu.Unlock()

	text := pick(override, state.Session.Text)
	if text == "" {
		return "", "", ErrNoText
	}

	translated, lang, err := m.translator.Translate(ctx, text, target)
	if err != nil {
		return "", lang, err
	}
	state.Session.Translation = translated
	state.Session.TranslationLanguage = lang
	state.Session.UpdatedAt = time.Now()
	return translated, lang, nil
}

func pick(override, fallback string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return fallback
}

func (m *Manager) state(id string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.sessions[id]
	return state, ok
}

func (m *Manager) closeState(state *State) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.DocStore != nil {
		state.DocStore.Close()
		state.DocStore = nil
	}
}

// cleanupOldSessionsIfNeeded removes the least recently used sessions when
// the manager is at capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	if len(m.sessions) < m.maxSessions {
		m.mu.Unlock()
		return
	}

	toFree := len(m.sessions) - m.maxSessions + 1
	var evicted []*State
	for ; toFree > 0; toFree-- {
		var (
			oldestID string
			oldest   time.Time
		)
		for id, state := range m.sessions {
			if oldestID == "" || state.LastAccessed.Before(oldest) {
				oldestID, oldest = id, state.LastAccessed
			}
		}
		if oldestID == "" {
			break
		}
		evicted = append(evicted, m.sessions[oldestID])
		delete(m.sessions, oldestID)
		m.logger.Info("evicted session at capacity", zap.String("session", oldestID))
	}
	m.mu.Unlock()

	for _, state := range evicted {
		m.closeState(state)
	}
}

// CleanupOldSessions removes sessions idle longer than maxAge, but keeps
// sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	m.mu.Lock()
	var expired []*State
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			expired = append(expired, state)
			delete(m.sessions, id)
			m.logger.Info("cleaned up idle session",
				zap.String("session", id),
				zap.Duration("idle", now.Sub(state.LastAccessed).Round(time.Second)),
			)
		}
	}
	m.mu.Unlock()

	for _, state := range expired {
		m.closeState(state)
	}
	return len(expired)
}

// StartCleanup runs CleanupOldSessions every interval until ctx is done.
func (m *Manager) StartCleanup(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CleanupOldSessions(maxAge)
			}
		}
	}()
}

// Close drops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	states := make([]*State, 0, len(m.sessions))
	for id, state := range m.sessions {
		states = append(states, state)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, state := range states {
		m.closeState(state)
	}
}

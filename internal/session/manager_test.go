package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unibrain/backend/internal/extract"
	"github.com/unibrain/backend/internal/models"
	"github.com/unibrain/backend/internal/pipeline"
	"github.com/unibrain/backend/internal/summarize"
	"github.com/unibrain/backend/internal/testutil"
)

type stubOCR struct{}

func (stubOCR) Recognize(ctx context.Context, img []byte) ([]string, error) {
	return []string{"whiteboard"}, nil
}

type stubTranslator struct {
	texts []string
	err   error
}

func (s *stubTranslator) Translate(ctx context.Context, text, target string) (string, models.Language, error) {
	s.texts = append(s.texts, text)
	if s.err != nil {
		return "", models.LanguageArabic, s.err
	}
	return "translated:" + text, models.Language(target), nil
}

type stubSummarizer struct {
	calls int
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string, bounds summarize.Bounds) (string, error) {
	s.calls++
	return "short version", nil
}

type fixture struct {
	manager    *Manager
	store      *testutil.MockStorage
	summarizer *stubSummarizer
	translator *stubTranslator
}

func newFixture(t *testing.T, maxSessions int) *fixture {
	t.Helper()
	store := testutil.NewMockStorage()
	p := pipeline.New(extract.NewRegistry(stubOCR{}, nil), 20, nil)
	sum := &stubSummarizer{}
	tr := &stubTranslator{}
	m := NewManager(store, p, Options{
		TempDir:     t.TempDir(),
		MaxSessions: maxSessions,
		Summarizer:  summarize.NewService(sum, summarize.DefaultOptions(), nil),
		Translator:  tr,
	})
	t.Cleanup(m.Close)
	return &fixture{manager: m, store: store, summarizer: sum, translator: tr}
}

func (f *fixture) upload(t *testing.T, names []string, data [][]byte) []*models.FileInfo {
	t.Helper()
	files := make([]*models.FileInfo, len(names))
	for i := range names {
		info, err := f.store.SaveBytes(context.Background(), names[i], data[i])
		require.NoError(t, err)
		files[i] = info
	}
	return files
}

func TestCreateAndGetSession(t *testing.T) {
	f := newFixture(t, 0)

	sess, err := f.manager.CreateSession()
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Empty(t, sess.Text)

	got, ok := f.manager.GetSession(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)

	_, ok = f.manager.GetSession("missing")
	assert.False(t, ok)
}

func TestProcessFiles(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	files := f.upload(t,
		[]string{"lecture.pdf", "notes.docx"},
		[][]byte{testutil.BuildPDF([]string{"line1", "line2"}), testutil.BuildDOCX("hello")},
	)

	got, err := f.manager.ProcessFiles(ctx, sess.ID, files)
	require.NoError(t, err)

	want := "\n--- Content of lecture.pdf ---\nline1\nline2\n" +
		"\n--- Content of notes.docx ---\nhello\n"
	assert.Equal(t, want, got.Text)
	assert.Equal(t, 2, got.FileCount)
	assert.False(t, got.Reused)
	assert.NotEmpty(t, got.Fingerprint)

	for _, file := range files {
		assert.Equal(t, 1, f.store.OpenCount(file.ID), "blob %s should be read once", file.Name)
	}
	assert.Equal(t, 0, f.store.GetFileCount(), "blobs are discarded after extraction")
}

func TestProcessFiles_ReusesUnchangedBatch(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	names := []string{"a.docx", "b.docx"}
	data := [][]byte{testutil.BuildDOCX("alpha"), testutil.BuildDOCX("beta")}

	first, err := f.manager.ProcessFiles(ctx, sess.ID, f.upload(t, names, data))
	require.NoError(t, err)
	_, err = f.manager.Summarize(ctx, sess.ID, strings.Repeat("word ", 40))
	require.NoError(t, err)

	second, err := f.manager.ProcessFiles(ctx, sess.ID, f.upload(t, names, data))
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, "short version", second.Summary, "summary survives an unchanged batch")

	reversed, err := f.manager.ProcessFiles(ctx, sess.ID, f.upload(t,
		[]string{names[1], names[0]}, [][]byte{data[1], data[0]}))
	require.NoError(t, err)
	assert.False(t, reversed.Reused)
	assert.Empty(t, reversed.Summary)
	assert.Less(t, strings.Index(reversed.Text, "b.docx"), strings.Index(reversed.Text, "a.docx"))
}

func TestProcessFiles_Errors(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.manager.ProcessFiles(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	_, err = f.manager.ProcessFiles(ctx, sess.ID, nil)
	assert.ErrorIs(t, err, pipeline.ErrEmptyBatch)

	_, err = f.manager.ProcessFiles(ctx, sess.ID, []*models.FileInfo{{ID: "gone", Name: "gone.pdf"}})
	assert.Error(t, err)
}

func TestDocuments(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	files := f.upload(t,
		[]string{"physics.docx", "history.docx", "broken.pdf"},
		[][]byte{testutil.BuildDOCX("Newton and gravity"), testutil.BuildDOCX("Roman empire"), []byte("not a pdf")},
	)
	_, err = f.manager.ProcessFiles(ctx, sess.ID, files)
	require.NoError(t, err)

	docs, err := f.manager.Documents(ctx, sess.ID, "")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "physics.docx", docs[0].Name)
	assert.Equal(t, "history.docx", docs[1].Name)
	assert.Equal(t, "could not read file broken.pdf", docs[2].Error)

	docs, err = f.manager.Documents(ctx, sess.ID, "GRAVITY")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "physics.docx", docs[0].Name)

	docs, err = f.manager.Documents(ctx, sess.ID, "history")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Roman empire\n", docs[0].Text)

	_, err = f.manager.Documents(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSummarize(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	_, err = f.manager.Summarize(ctx, sess.ID, "")
	assert.ErrorIs(t, err, summarize.ErrTooShort)
	assert.Equal(t, 0, f.summarizer.calls)

	_, err = f.manager.Summarize(ctx, sess.ID, "too few words here")
	assert.ErrorIs(t, err, summarize.ErrTooShort)
	assert.Equal(t, 0, f.summarizer.calls)

	summary, err := f.manager.Summarize(ctx, sess.ID, strings.Repeat("lorem ", 31))
	require.NoError(t, err)
	assert.Equal(t, "short version", summary)
	assert.Equal(t, 1, f.summarizer.calls)

	got, _ := f.manager.GetSession(sess.ID)
	assert.Equal(t, "short version", got.Summary)
}

func TestTranslate(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	_, err = f.manager.ProcessFiles(ctx, sess.ID, f.upload(t,
		[]string{"a.docx"}, [][]byte{testutil.BuildDOCX("hello")}))
	require.NoError(t, err)

	out, lang, err := f.manager.Translate(ctx, sess.ID, "ar", "")
	require.NoError(t, err)
	assert.Equal(t, models.LanguageArabic, lang)
	assert.Equal(t, "translated:\n--- Content of a.docx ---\nhello\n", out)

	out, _, err = f.manager.Translate(ctx, sess.ID, "en", "override")
	require.NoError(t, err)
	assert.Equal(t, "translated:override", out)

	got, _ := f.manager.GetSession(sess.ID)
	assert.Equal(t, "translated:override", got.Translation)
	assert.Equal(t, models.LanguageEnglish, got.TranslationLanguage)

	f.translator.err = errors.New("offline")
	_, _, err = f.manager.Translate(ctx, sess.ID, "ar", "")
	assert.Error(t, err)
	got, _ = f.manager.GetSession(sess.ID)
	assert.Equal(t, "translated:override", got.Translation, "failed translation keeps the last result")
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t, 0)
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	assert.True(t, f.manager.DeleteSession(sess.ID))
	assert.False(t, f.manager.DeleteSession(sess.ID))
	_, ok := f.manager.GetSession(sess.ID)
	assert.False(t, ok)
}

func TestCleanupOldSessions(t *testing.T) {
	f := newFixture(t, 0)
	stale, err := f.manager.CreateSession()
	require.NoError(t, err)
	fresh, err := f.manager.CreateSession()
	require.NoError(t, err)

	f.manager.mu.Lock()
	f.manager.sessions[stale.ID].LastAccessed = time.Now().Add(-time.Hour)
	f.manager.mu.Unlock()

	removed := f.manager.CleanupOldSessions(30 * time.Minute)
	assert.Equal(t, 1, removed)

	_, ok := f.manager.GetSession(stale.ID)
	assert.False(t, ok)
	_, ok = f.manager.GetSession(fresh.ID)
	assert.True(t, ok)
}

func TestTouchSessionKeepsAlive(t *testing.T) {
	f := newFixture(t, 0)
	sess, err := f.manager.CreateSession()
	require.NoError(t, err)

	f.manager.mu.Lock()
	f.manager.sessions[sess.ID].LastAccessed = time.Now().Add(-time.Hour)
	f.manager.mu.Unlock()

	assert.True(t, f.manager.TouchSession(sess.ID))
	assert.False(t, f.manager.TouchSession("missing"))
	assert.Equal(t, 0, f.manager.CleanupOldSessions(30*time.Minute))
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	f := newFixture(t, 2)
	first, err := f.manager.CreateSession()
	require.NoError(t, err)
	second, err := f.manager.CreateSession()
	require.NoError(t, err)

	f.manager.mu.Lock()
	f.manager.sessions[second.ID].LastAccessed = time.Now().Add(time.Minute)
	f.manager.mu.Unlock()

	third, err := f.manager.CreateSession()
	require.NoError(t, err)

	assert.Equal(t, 2, f.manager.Count())
	_, ok := f.manager.GetSession(first.ID)
	assert.False(t, ok)
	_, ok = f.manager.GetSession(second.ID)
	assert.True(t, ok)
	_, ok = f.manager.GetSession(third.ID)
	assert.True(t, ok)
}

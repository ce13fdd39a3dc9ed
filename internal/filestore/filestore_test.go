package filestore

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/seasonal-greetings/internal/rotation"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

func testStore(t *testing.T) (*Store, Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		TrackerPath:  filepath.Join(dir, "seasons_tracker.json"),
		StatePath:    filepath.Join(dir, "state.json"),
		MessagesPath: filepath.Join(dir, "messages.json"),
	}
	return New(cfg), cfg
}

func TestLoadTracker_MissingFileIsEmpty(t *testing.T) {
	s, cfg := testStore(t)

	st, err := s.LoadTracker(context.Background())
	require.NoError(t, err)
	assert.Len(t, st, 4)

	_, err = os.Stat(cfg.TrackerPath)
	assert.ErrorIs(t, err, fs.ErrNotExist, "load must not create the file")
}

func TestTracker_RoundTrip(t *testing.T) {
	s, cfg := testStore(t)
	ctx := context.Background()

	st := tracker.NewState()
	st["spring"].Used = []string{"b.jpg", "a.jpg"}
	stamp := "2025-04-15"
	st["summer"].LastReset = &stamp

	require.NoError(t, s.SaveTracker(ctx, st))

	got, err := s.LoadTracker(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "a.jpg"}, got["spring"].Used)
	assert.Nil(t, got["spring"].LastReset)
	require.NotNil(t, got["summer"].LastReset)
	assert.Equal(t, stamp, *got["summer"].LastReset)

	// On-disk shape matches {"season": {"used": [...], "last_reset": ...}}.
	raw, err := os.ReadFile(cfg.TrackerPath)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []any{}, doc["fall"]["used"])
	assert.Nil(t, doc["fall"]["last_reset"])
	assert.Equal(t, stamp, doc["summer"]["last_reset"])
}

func TestLoadTracker_NormalizesPartialDocument(t *testing.T) {
	s, cfg := testStore(t)
	require.NoError(t, os.WriteFile(cfg.TrackerPath, []byte(`{"spring": {"used": null, "last_reset": null}}`), 0o644))

	st, err := s.LoadTracker(context.Background())
	require.NoError(t, err)
	assert.Len(t, st, 4)
	assert.NotNil(t, st["spring"].Used)
}

func TestLoadTracker_Corrupt(t *testing.T) {
	s, cfg := testStore(t)
	require.NoError(t, os.WriteFile(cfg.TrackerPath, []byte(`{not json`), 0o644))

	_, err := s.LoadTracker(context.Background())
	assert.Error(t, err)
}

func TestRotation_RoundTrip(t *testing.T) {
	s, cfg := testStore(t)
	ctx := context.Background()

	st, err := s.LoadRotation(ctx)
	require.NoError(t, err)
	assert.Equal(t, rotation.State{Index: 0}, st)

	require.NoError(t, s.SaveRotation(ctx, rotation.State{Index: 3}))
	st, err = s.LoadRotation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Index)

	raw, err := os.ReadFile(cfg.StatePath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"index": 3}`, string(raw))
}

func TestMessages(t *testing.T) {
	s, cfg := testStore(t)
	ctx := context.Background()

	_, err := s.Messages(ctx)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Error(t, s.Health(ctx))

	require.NoError(t, os.WriteFile(cfg.MessagesPath, []byte(`{"a":"Hello","b":"World"}`), 0o644))

	messages, err := s.Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", "World"}, messages)
	assert.NoError(t, s.Health(ctx))
}

func TestWriteFileAtomic_ReplacesAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.bin")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

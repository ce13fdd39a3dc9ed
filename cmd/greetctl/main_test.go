package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points the configuration at a temp directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV", "development")
	t.Setenv("STORAGE_BACKEND", "json")
	t.Setenv("TRACKER_PATH", filepath.Join(dir, "seasons_tracker.json"))
	t.Setenv("STATE_PATH", filepath.Join(dir, "state.json"))
	t.Setenv("MESSAGES_PATH", filepath.Join(dir, "messages.json"))
	t.Setenv("IMAGE_ROOT", dir)
	t.Setenv("OUTPUT_PATH", filepath.Join(dir, "output.jpg"))
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeasonCommand(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		date string
		want string
	}{
		{"2025-04-15", "2025-04-15\tspring\tjalali month 1"},
		{"2025-07-15", "2025-07-15\tsummer\tjalali month 4"},
		{"2025-10-15", "2025-10-15\tfall\tjalali month 7"},
		{"2026-01-15", "2026-01-15\twinter\tjalali month 10"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			out, err := execute(t, "season", "--date", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(out))
		})
	}
}

func TestSeasonCommand_BadDate(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "season", "--date", "15/07/2025")
	assert.Error(t, err)
}

func TestMessageCommand(t *testing.T) {
	dir := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages.json"), []byte(`{"a":"Hello","b":"World"}`), 0o644))

	out, err := execute(t, "message")
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out)

	out, err = execute(t, "message")
	require.NoError(t, err)
	assert.Equal(t, "World\n", out)
}

func TestMessageCommand_MissingFile(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "message")
	require.Error(t, err)
	assert.Equal(t, "Messages not found", err.Error())
}

func TestResetCommand(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "reset", "winter")
	require.NoError(t, err)
	assert.Equal(t, "winter reset\n", out)
	assert.FileExists(t, filepath.Join(dir, "seasons_tracker.json"))

	_, err = execute(t, "reset", "monsoon")
	assert.Error(t, err)

	_, err = execute(t, "reset")
	assert.Error(t, err)
}

func TestStatusCommand_JSON(t *testing.T) {
	dir := setupEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages.json"), []byte(`["one","two","three"]`), 0o644))

	out, err := execute(t, "status", "--json")
	require.NoError(t, err)

	var st struct {
		MessageCount int                       `json:"message_count"`
		Seasons      map[string]map[string]any `json:"seasons"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 3, st.MessageCount)
	assert.Len(t, st.Seasons, 4)
}

func TestStatusCommand_Text(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Message index:  0 of 0")
	assert.Contains(t, out, "spring   0/0 used, last reset never [Season folder not found: spring]")
}

package tracker

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, time.April, 15, 9, 30, 0, 0, time.UTC)

func testSelector() *Selector {
	return &Selector{
		ResetAfterDays: DefaultResetAfterDays,
		Rand:           rand.New(rand.NewPCG(1, 2)),
	}
}

func strPtr(s string) *string {
	return &s
}

func TestNewState_HasAllSeasons(t *testing.T) {
	s := NewState()
	for _, name := range []string{"spring", "summer", "fall", "winter"} {
		e, ok := s[name]
		require.True(t, ok, name)
		assert.Empty(t, e.Used)
		assert.NotNil(t, e.Used)
		assert.Nil(t, e.LastReset)
	}
}

func TestState_NormalizeFillsGaps(t *testing.T) {
	s := State{"spring": {Used: nil}, "custom": nil}
	s.Normalize()

	assert.Len(t, s, 5)
	assert.NotNil(t, s["spring"].Used)
	assert.NotNil(t, s["custom"])
	assert.NotNil(t, s["winter"])

	assert.Len(t, State(nil).Normalize(), 4)
}

func TestPick_NoRepeatsBeforeExhaustion(t *testing.T) {
	images := []string{"a.jpg", "b.jpg", "c.png", "d.jpeg", "e.jpg"}
	state := NewState()
	sel := testSelector()

	seen := map[string]bool{}
	for i := 0; i < len(images)-1; i++ {
		name, reset := sel.Pick(state, "spring", images, day0)
		assert.False(t, reset, "pick %d", i)
		assert.False(t, seen[name], "repeat of %s", name)
		seen[name] = true
	}

	e := state["spring"]
	assert.Len(t, e.Used, len(images)-1)
	assert.Nil(t, e.LastReset)
}

func TestPick_ResetsWhenExhaustedWithoutPriorReset(t *testing.T) {
	images := []string{"a.jpg", "b.jpg"}
	state := NewState()
	state["spring"].Used = []string{"a.jpg", "b.jpg"}

	name, reset := testSelector().Pick(state, "spring", images, day0)

	assert.True(t, reset)
	assert.Contains(t, images, name)
	assert.Equal(t, []string{name}, state["spring"].Used)
	require.NotNil(t, state["spring"].LastReset)
	assert.Equal(t, "2025-04-15", *state["spring"].LastReset)
}

func TestPick_ResetsAfterCooldown(t *testing.T) {
	images := []string{"a.jpg", "b.jpg"}
	state := NewState()
	state["fall"].Used = []string{"a.jpg", "b.jpg"}
	state["fall"].LastReset = strPtr("2025-03-01")

	_, reset := testSelector().Pick(state, "fall", images, day0)

	assert.True(t, reset)
	assert.Equal(t, "2025-04-15", *state["fall"].LastReset)
	assert.Len(t, state["fall"].Used, 1)
}

func TestPick_CooldownNotElapsedFallsBackWithoutStamp(t *testing.T) {
	images := []string{"a.jpg", "b.jpg"}
	state := NewState()
	state["fall"].Used = []string{"a.jpg", "b.jpg"}
	state["fall"].LastReset = strPtr("2025-04-01")

	name, reset := testSelector().Pick(state, "fall", images, day0)

	assert.True(t, reset)
	assert.Equal(t, []string{name}, state["fall"].Used)
	assert.Equal(t, "2025-04-01", *state["fall"].LastReset, "fallback must not restamp")
}

func TestPick_UnparsableLastResetForcesReset(t *testing.T) {
	images := []string{"a.jpg"}
	state := NewState()
	state["winter"].Used = []string{"a.jpg"}
	state["winter"].LastReset = strPtr("last tuesday")

	_, reset := testSelector().Pick(state, "winter", images, day0)

	assert.True(t, reset)
	assert.Equal(t, "2025-04-15", *state["winter"].LastReset)
}

func TestPick_SingleImageScenario(t *testing.T) {
	images := []string{"a.jpg"}
	state := NewState()
	sel := testSelector()

	name, reset := sel.Pick(state, "spring", images, day0)
	assert.Equal(t, "a.jpg", name)
	assert.False(t, reset)
	assert.Equal(t, []string{"a.jpg"}, state["spring"].Used)

	name, reset = sel.Pick(state, "spring", images, day0)
	assert.Equal(t, "a.jpg", name)
	assert.True(t, reset)
	assert.Equal(t, []string{"a.jpg"}, state["spring"].Used)
	require.NotNil(t, state["spring"].LastReset)
}

func TestPick_StaleUsedEntriesTolerated(t *testing.T) {
	// "gone.jpg" was deleted from disk but is still recorded.
	images := []string{"a.jpg", "b.jpg"}
	state := NewState()
	state["summer"].Used = []string{"gone.jpg", "a.jpg"}
	state["summer"].LastReset = strPtr("2025-04-14")

	name, reset := testSelector().Pick(state, "summer", images, day0)

	// used (2) >= total (2) but the cooldown blocks a reset; b.jpg is still free.
	assert.False(t, reset)
	assert.Equal(t, "b.jpg", name)
	assert.Equal(t, []string{"gone.jpg", "a.jpg", "b.jpg"}, state["summer"].Used)
}

func TestPick_MissingSeasonCreated(t *testing.T) {
	state := State{}
	name, _ := testSelector().Pick(state, "spring", []string{"x.png"}, day0)
	assert.Equal(t, "x.png", name)
	assert.Equal(t, []string{"x.png"}, state["spring"].Used)
}

func TestNeedsReset(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		total int
		want  bool
	}{
		{"not exhausted", Entry{Used: []string{"a"}}, 2, false},
		{"exhausted, never reset", Entry{Used: []string{"a", "b"}}, 2, true},
		{"exhausted, empty stamp", Entry{Used: []string{"a", "b"}, LastReset: strPtr("")}, 2, true},
		{"exhausted, 44 days", Entry{Used: []string{"a", "b"}, LastReset: strPtr("2025-03-02")}, 2, false},
		{"exhausted, 45 days", Entry{Used: []string{"a", "b"}, LastReset: strPtr("2025-03-01")}, 2, true},
		{"exhausted, garbage stamp", Entry{Used: []string{"a", "b"}, LastReset: strPtr("soon")}, 2, true},
		{"over-full", Entry{Used: []string{"a", "b", "c"}, LastReset: strPtr("2025-04-10")}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.entry
			assert.Equal(t, tt.want, NeedsReset(&e, tt.total, day0, DefaultResetAfterDays))
		})
	}
}

func TestNeedsReset_DSTWindow(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	e := &Entry{Used: []string{"a.jpg"}, LastReset: strPtr("2025-02-01")}
	now := time.Date(2025, time.March, 18, 0, 30, 0, 0, ny)
	assert.True(t, NeedsReset(e, 1, now, DefaultResetAfterDays))

	now = time.Date(2025, time.March, 17, 23, 59, 0, 0, ny)
	assert.False(t, NeedsReset(e, 1, now, DefaultResetAfterDays))
}

func TestAvailable(t *testing.T) {
	got := Available([]string{"a", "b", "c", "d"}, []string{"c", "a", "zzz"})
	assert.Equal(t, []string{"b", "d"}, got)
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.JPG", "a.png", "c.jpeg", "notes.txt", "d.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755))

	images, err := ListImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.JPG", "c.jpeg"}, images)
}

func TestListImages_MissingFolder(t *testing.T) {
	_, err := ListImages(filepath.Join(t.TempDir(), "spring"))
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestListImages_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o644))

	_, err := ListImages(dir)
	assert.ErrorIs(t, err, ErrNoImages)
}

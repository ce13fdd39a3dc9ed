// Package tracker remembers which images of each season have been served and
// picks the next one without repeats until the pool is exhausted.
//
// Selection is pure: callers load a State, call Selector.Pick, and persist the
// State afterwards. Nothing here touches the filesystem except ListImages.
package tracker

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
)

var (
	// ErrFolderNotFound is returned when a season has no image folder.
	ErrFolderNotFound = errors.New("season folder not found")

	// ErrNoImages is returned when a season folder holds no eligible images.
	ErrNoImages = errors.New("no image files")
)

// DefaultResetAfterDays is how long an exhausted pool waits before resetting.
const DefaultResetAfterDays = 45

// imageExts are matched against the lowercased file extension.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Entry is the persisted record for one season.
type Entry struct {
	Used      []string `json:"used"`
	LastReset *string  `json:"last_reset"`
}

// State maps season names to their entries.
type State map[string]*Entry

// NewState returns an empty state holding every known season.
func NewState() State {
	s := make(State, 4)
	for _, season := range calendar.Seasons() {
		s[string(season)] = &Entry{Used: []string{}}
	}
	return s
}

// Entry returns the record for season, creating an empty one if missing.
func (s State) Entry(season string) *Entry {
	e, ok := s[season]
	if !ok || e == nil {
		e = &Entry{Used: []string{}}
		s[season] = e
	}
	if e.Used == nil {
		e.Used = []string{}
	}
	return e
}

// Normalize fills in every known season and replaces null used lists.
// Stores call it after decoding so the saved document keeps a stable shape.
func (s State) Normalize() State {
	if s == nil {
		return NewState()
	}
	for _, season := range calendar.Seasons() {
		s.Entry(string(season))
	}
	for name := range s {
		s.Entry(name)
	}
	return s
}

// Reset clears the used list and stamps today's date.
func (e *Entry) Reset(now time.Time) {
	today := calendar.FormatDate(now)
	e.Used = []string{}
	e.LastReset = &today
}

// NeedsReset reports whether an exhausted pool should start over.
//
// The pool must be exhausted (used >= total). Then a missing or unparsable
// last_reset forces a reset; otherwise at least resetAfterDays whole days
// must have passed.
func NeedsReset(e *Entry, total int, now time.Time, resetAfterDays int) bool {
	if len(e.Used) < total {
		return false
	}
	if e.LastReset == nil || *e.LastReset == "" {
		return true
	}
	last, err := calendar.ParseDateString(*e.LastReset, now.Location())
	if err != nil {
		return true
	}
	return calendar.DaysSince(last, now) >= resetAfterDays
}

// Selector picks images for a season.
type Selector struct {
	ResetAfterDays int
	Rand           *rand.Rand
}

// NewSelector returns a Selector with the default reset window and a
// randomly seeded source.
func NewSelector() *Selector {
	return &Selector{
		ResetAfterDays: DefaultResetAfterDays,
		Rand:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Pick chooses one of images for season and records it as used.
// images must be non-empty. The returned bool reports whether the pool was
// reset on the way (either by policy or by the exhausted-pool fallback).
func (sel *Selector) Pick(state State, season string, images []string, now time.Time) (string, bool) {
	e := state.Entry(season)
	reset := false

	if NeedsReset(e, len(images), now, sel.ResetAfterDays) {
		e.Reset(now)
		reset = true
	}

	available := Available(images, e.Used)
	if len(available) == 0 {
		// Stale used list but the cooldown has not elapsed: start over anyway,
		// keeping last_reset untouched.
		e.Used = []string{}
		available = images
		reset = true
	}

	choice := available[sel.intN(len(available))]
	e.Used = append(e.Used, choice)
	return choice, reset
}

func (sel *Selector) intN(n int) int {
	if sel.Rand == nil {
		return rand.IntN(n)
	}
	return sel.Rand.IntN(n)
}

// Available returns the images not present in used, in the order of images.
func Available(images, used []string) []string {
	seen := make(map[string]struct{}, len(used))
	for _, u := range used {
		seen[u] = struct{}{}
	}
	out := make([]string, 0, len(images))
	for _, img := range images {
		if _, ok := seen[img]; !ok {
			out = append(out, img)
		}
	}
	return out
}

// ListImages returns the sorted names of eligible image files in dir.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, dir)
		}
		return nil, fmt.Errorf("read season folder: %w", err)
	}

	var images []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(ent.Name()))] {
			images = append(images, ent.Name())
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in: %s", ErrNoImages, dir)
	}

	slices.Sort(images)
	return images, nil
}

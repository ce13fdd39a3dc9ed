package greeting

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/zapponejosh/seasonal-greetings/internal/rotation"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

// Kind classifies service failures for the HTTP boundary.
type Kind int

const (
	// KindIOFailure covers storage, decode and any other unexpected failure.
	KindIOFailure Kind = iota
	// KindUnknownSeason means the current date fell outside every season.
	KindUnknownSeason
	// KindNotFound means a season folder, its images or the messages are missing.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnknownSeason:
		return "unknown_season"
	case KindNotFound:
		return "not_found"
	default:
		return "io_failure"
	}
}

// UnknownSeasonMessage is the client-facing text for KindUnknownSeason.
const UnknownSeasonMessage = "Unknown Jalali season."

// Error is returned by every Service operation that fails.
//
// Message is safe to show a client; Err carries the full cause for logs.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindIOFailure for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOFailure
}

// PublicMessage returns the client-safe text for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}

// classify wraps err with a Kind and a message that names the season (or
// resource) but never a filesystem path.
func classify(op, season string, err error) *Error {
	switch {
	case errors.Is(err, tracker.ErrFolderNotFound):
		return &Error{Kind: KindNotFound, Op: op, Message: "Season folder not found: " + season, Err: err}
	case errors.Is(err, tracker.ErrNoImages):
		return &Error{Kind: KindNotFound, Op: op, Message: "No image files for season: " + season, Err: err}
	case errors.Is(err, rotation.ErrNoMessages):
		return &Error{Kind: KindNotFound, Op: op, Message: "No messages available", Err: err}
	case errors.Is(err, fs.ErrNotExist) && season != "":
		return &Error{Kind: KindNotFound, Op: op, Message: "Image file missing for season: " + season, Err: err}
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: KindNotFound, Op: op, Message: "Messages not found", Err: err}
	default:
		return &Error{Kind: KindIOFailure, Op: op, Message: "internal error", Err: err}
	}
}

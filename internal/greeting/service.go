// Package greeting composes the season resolver, image tracker and message
// cycler into the operations the HTTP layer and CLI expose.
//
// Every operation runs load -> compute -> save under one mutex, so requests
// handled by this process never lose each other's tracker or index updates.
package greeting

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
	"github.com/zapponejosh/seasonal-greetings/internal/imaging"
	"github.com/zapponejosh/seasonal-greetings/internal/rotation"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

// DefaultImageURL is the link /greeting hands out for the picture.
const DefaultImageURL = "/get-image"

// Store persists tracker and rotation state and supplies the messages.
// Implemented by filestore.Store and database.DB.
type Store interface {
	LoadTracker(ctx context.Context) (tracker.State, error)
	SaveTracker(ctx context.Context, st tracker.State) error
	LoadRotation(ctx context.Context) (rotation.State, error)
	SaveRotation(ctx context.Context, st rotation.State) error
	Messages(ctx context.Context) ([]string, error)
	Health(ctx context.Context) error
}

// Options configures a Service. Zero values get defaults.
type Options struct {
	ImageRoot      string
	OutputPath     string
	ResetAfterDays int
	MaxDimension   int
	ImageURL       string
	Location       *time.Location

	// Test hooks
	Now      func() time.Time
	Rand     *rand.Rand
	SeasonAt func(time.Time) calendar.Season
}

// Service implements image selection, message cycling and the greeting.
type Service struct {
	store    Store
	opts     Options
	selector *tracker.Selector
	renderer imaging.Renderer
	logger   *slog.Logger

	mu sync.Mutex
}

// Image is the result of one image selection.
type Image struct {
	Season calendar.Season
	Name   string
	Path   string
	Data   []byte
	Reset  bool
}

// Greeting is the /greeting payload.
type Greeting struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
}

// NewService creates a Service over store.
func NewService(store Store, opts Options, logger *slog.Logger) *Service {
	if opts.ImageRoot == "" {
		opts.ImageRoot = "./"
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "output.jpg"
	}
	if opts.ResetAfterDays == 0 {
		opts.ResetAfterDays = tracker.DefaultResetAfterDays
	}
	if opts.ImageURL == "" {
		opts.ImageURL = DefaultImageURL
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SeasonAt == nil {
		opts.SeasonAt = calendar.SeasonAt
	}
	if logger == nil {
		logger = slog.Default()
	}

	sel := tracker.NewSelector()
	sel.ResetAfterDays = opts.ResetAfterDays
	if opts.Rand != nil {
		sel.Rand = opts.Rand
	}

	return &Service{
		store:    store,
		opts:     opts,
		selector: sel,
		renderer: imaging.Renderer{MaxDimension: opts.MaxDimension},
		logger:   logger,
	}
}

// Now returns the current time in the service's zone.
func (s *Service) Now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

// CurrentSeason resolves today's Jalali season.
func (s *Service) CurrentSeason() (calendar.Season, error) {
	season := s.opts.SeasonAt(s.Now())
	if !season.IsKnown() {
		return calendar.Unknown, &Error{
			Kind:    KindUnknownSeason,
			Op:      "resolve season",
			Message: UnknownSeasonMessage,
		}
	}
	return season, nil
}

// NextImage picks an unused image for the current season, writes it to the
// shared output artifact and returns the bytes written.
func (s *Service) NextImage(ctx context.Context) (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextImage(ctx)
}

// NextMessage returns the current message and advances the rotation.
func (s *Service) NextMessage(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextMessage(ctx)
}

// Greeting advances the message rotation, refreshes the output artifact and
// returns the caption with a link to the image endpoint.
//
// The message is consumed even when the image step then fails. The link is
// not pinned: fetching it runs a fresh selection.
func (s *Service) Greeting(ctx context.Context) (*Greeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, err := s.nextMessage(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.nextImage(ctx); err != nil {
		return nil, err
	}
	return &Greeting{Caption: msg, ImageURL: s.opts.ImageURL}, nil
}

func (s *Service) nextImage(ctx context.Context) (*Image, error) {
	const op = "next image"

	season, err := s.CurrentSeason()
	if err != nil {
		return nil, err
	}

	images, err := tracker.ListImages(s.seasonDir(season))
	if err != nil {
		return nil, classify(op, string(season), err)
	}

	st, err := s.store.LoadTracker(ctx)
	if err != nil {
		return nil, classify(op, string(season), err)
	}

	name, reset := s.selector.Pick(st, string(season), images, s.Now())
	path := filepath.Join(s.seasonDir(season), name)

	data, err := s.renderer.WriteArtifact(path, s.opts.OutputPath)
	if err != nil {
		return nil, classify(op, string(season), err)
	}

	if err := s.store.SaveTracker(ctx, st); err != nil {
		return nil, classify(op, string(season), err)
	}

	s.logger.DebugContext(ctx, "image selected",
		slog.String("season", string(season)),
		slog.String("image", name),
		slog.Bool("reset", reset),
		slog.Int("used", len(st.Entry(string(season)).Used)),
		slog.Int("available", len(images)),
	)

	return &Image{
		Season: season,
		Name:   name,
		Path:   path,
		Data:   data,
		Reset:  reset,
	}, nil
}

func (s *Service) nextMessage(ctx context.Context) (string, error) {
	const op = "next message"

	messages, err := s.store.Messages(ctx)
	if err != nil {
		return "", classify(op, "", err)
	}

	st, err := s.store.LoadRotation(ctx)
	if err != nil {
		return "", classify(op, "", err)
	}

	msg, next, err := rotation.Next(messages, st)
	if err != nil {
		return "", classify(op, "", err)
	}

	if err := s.store.SaveRotation(ctx, next); err != nil {
		return "", classify(op, "", err)
	}

	s.logger.DebugContext(ctx, "message served",
		slog.Int("index", st.Index),
		slog.Int("next_index", next.Index),
		slog.Int("total", len(messages)),
	)
	return msg, nil
}

// ResetSeason clears the used list of season and stamps today's date.
func (s *Service) ResetSeason(ctx context.Context, season calendar.Season) error {
	const op = "reset season"

	if !season.IsKnown() {
		return &Error{Kind: KindUnknownSeason, Op: op, Message: fmt.Sprintf("Unknown season: %s", season)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.store.LoadTracker(ctx)
	if err != nil {
		return classify(op, string(season), err)
	}
	st.Entry(string(season)).Reset(s.Now())
	if err := s.store.SaveTracker(ctx, st); err != nil {
		return classify(op, string(season), err)
	}

	s.logger.InfoContext(ctx, "season pool reset", slog.String("season", string(season)))
	return nil
}

// Health checks the store and the image root.
func (s *Service) Health(ctx context.Context) error {
	if err := s.store.Health(ctx); err != nil {
		return err
	}
	info, err := os.Stat(s.opts.ImageRoot)
	if err != nil {
		return fmt.Errorf("image root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("image root %s is not a directory", s.opts.ImageRoot)
	}
	return nil
}

func (s *Service) seasonDir(season calendar.Season) string {
	return filepath.Join(s.opts.ImageRoot, string(season))
}

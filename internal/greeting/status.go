package greeting

import (
	"context"
	"log/slog"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

// SeasonStatus summarises one season's pool.
type SeasonStatus struct {
	Images    int     `json:"images"`
	Used      int     `json:"used"`
	LastReset *string `json:"last_reset"`
	Problem   string  `json:"problem,omitempty"`
}

// Status is a read-only snapshot of the service state.
type Status struct {
	Date          string                  `json:"date"`
	JalaliMonth   int                     `json:"jalali_month"`
	CurrentSeason calendar.Season         `json:"current_season"`
	Seasons       map[string]SeasonStatus `json:"seasons"`
	MessageIndex  int                     `json:"message_index"`
	MessageCount  int                     `json:"message_count"`
}

// Status reports pool sizes, reset dates and the rotation position without
// changing anything.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	const op = "status"

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	out := &Status{
		Date:          calendar.FormatDate(now),
		JalaliMonth:   calendar.JalaliMonth(now),
		CurrentSeason: s.opts.SeasonAt(now),
		Seasons:       make(map[string]SeasonStatus, 4),
	}

	st, err := s.store.LoadTracker(ctx)
	if err != nil {
		return nil, classify(op, "", err)
	}

	for _, season := range calendar.Seasons() {
		e := st.Entry(string(season))
		ss := SeasonStatus{Used: len(e.Used), LastReset: e.LastReset}

		images, err := tracker.ListImages(s.seasonDir(season))
		if err != nil {
			ss.Problem = classify(op, string(season), err).Message
		} else {
			ss.Images = len(images)
		}
		out.Seasons[string(season)] = ss
	}

	rot, err := s.store.LoadRotation(ctx)
	if err != nil {
		return nil, classify(op, "", err)
	}
	out.MessageIndex = rot.Index

	messages, err := s.store.Messages(ctx)
	if err != nil {
		// A missing message source is worth reporting, not failing on.
		s.logger.WarnContext(ctx, "status: messages unavailable", slog.Any("error", err))
	}
	out.MessageCount = len(messages)

	return out, nil
}

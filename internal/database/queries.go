package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/zapponejosh/seasonal-greetings/internal/rotation"
	"github.com/zapponejosh/seasonal-greetings/internal/tracker"
)

// =============================================================================
// Tracker
// =============================================================================

// LoadTracker reads every season and its used images. An empty database
// yields a fresh state.
func (db *DB) LoadTracker(ctx context.Context) (tracker.State, error) {
	return loadTracker(ctx, db)
}

// SaveTracker replaces the stored tracker with st in one transaction.
func (db *DB) SaveTracker(ctx context.Context, st tracker.State) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		return saveTracker(ctx, tx, st)
	})
}

// SaveTracker replaces the stored tracker with st.
func (tx *Tx) SaveTracker(ctx context.Context, st tracker.State) error {
	return saveTracker(ctx, tx, st)
}

func loadTracker(ctx context.Context, q querier) (tracker.State, error) {
	st := tracker.State{}

	if err := loadSeasons(ctx, q, st); err != nil {
		return nil, err
	}

	used, err := q.QueryContext(ctx, `
		SELECT season, filename
		FROM used_images
		ORDER BY season, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query used images: %w", err)
	}
	defer used.Close()

	for used.Next() {
		var season, filename string
		if err := used.Scan(&season, &filename); err != nil {
			return nil, fmt.Errorf("scan used image: %w", err)
		}
		e := st.Entry(season)
		e.Used = append(e.Used, filename)
	}
	if err := used.Err(); err != nil {
		return nil, fmt.Errorf("iterate used images: %w", err)
	}

	return st.Normalize(), nil
}

// loadSeasons is split out so its rows are closed before the next query;
// with a single connection an open cursor would block it.
func loadSeasons(ctx context.Context, q querier, st tracker.State) error {
	rows, err := q.QueryContext(ctx, `SELECT season, last_reset FROM season_tracker`)
	if err != nil {
		return fmt.Errorf("query seasons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var season string
		var lastReset sql.NullString
		if err := rows.Scan(&season, &lastReset); err != nil {
			return fmt.Errorf("scan season: %w", err)
		}
		e := st.Entry(season)
		if lastReset.Valid {
			v := lastReset.String
			e.LastReset = &v
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate seasons: %w", err)
	}
	return nil
}

func saveTracker(ctx context.Context, q querier, st tracker.State) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM used_images`); err != nil {
		return fmt.Errorf("clear used images: %w", err)
	}

	seasons := make([]string, 0, len(st))
	for season := range st {
		seasons = append(seasons, season)
	}
	slices.Sort(seasons)

	for _, season := range seasons {
		e := st.Entry(season)

		var lastReset sql.NullString
		if e.LastReset != nil {
			lastReset = sql.NullString{String: *e.LastReset, Valid: true}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO season_tracker (season, last_reset)
			VALUES (?, ?)
			ON CONFLICT(season) DO UPDATE SET
				last_reset = excluded.last_reset,
				updated_at = datetime('now')
		`, season, lastReset)
		if err != nil {
			return fmt.Errorf("upsert season %s: %w", season, err)
		}

		for i, filename := range e.Used {
			_, err := q.ExecContext(ctx,
				`INSERT INTO used_images (season, position, filename) VALUES (?, ?, ?)`,
				season, i, filename,
			)
			if err != nil {
				return fmt.Errorf("insert used image %s/%s: %w", season, filename, err)
			}
		}
	}
	return nil
}

// =============================================================================
// Rotation
// =============================================================================

// LoadRotation reads the message index, defaulting to zero.
func (db *DB) LoadRotation(ctx context.Context) (rotation.State, error) {
	var idx int
	err := db.QueryRowContext(ctx,
		`SELECT message_index FROM rotation_state WHERE id = 1`,
	).Scan(&idx)
	if err != nil {
		if IsNotFound(err) {
			return rotation.State{}, nil
		}
		return rotation.State{}, fmt.Errorf("query rotation: %w", err)
	}
	return rotation.State{Index: idx}, nil
}

// SaveRotation stores the message index.
func (db *DB) SaveRotation(ctx context.Context, st rotation.State) error {
	return saveRotation(ctx, db, st)
}

// SaveRotation stores the message index.
func (tx *Tx) SaveRotation(ctx context.Context, st rotation.State) error {
	return saveRotation(ctx, tx, st)
}

func saveRotation(ctx context.Context, q querier, st rotation.State) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO rotation_state (id, message_index)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			message_index = excluded.message_index,
			updated_at = datetime('now')
	`, st.Index)
	if err != nil {
		return fmt.Errorf("save rotation: %w", err)
	}
	return nil
}

// =============================================================================
// Messages
// =============================================================================

// Messages returns the message bodies in stored order.
func (db *DB) Messages(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT body FROM messages ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

// ReplaceMessages swaps the whole message list for entries.
func (tx *Tx) ReplaceMessages(ctx context.Context, entries []rotation.Entry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	for i, e := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (position, msg_key, body) VALUES (?, ?, ?)`,
			i, e.Key, e.Body,
		)
		if err != nil {
			return fmt.Errorf("insert message %q: %w", e.Key, err)
		}
	}
	return nil
}

// CountMessages returns how many messages are stored.
func (db *DB) CountMessages(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

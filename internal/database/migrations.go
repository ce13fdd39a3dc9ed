package database

// migrationsSQL contains all database migrations, applied in version order.
var migrationsSQL = map[int]string{
	1: migrationV1Tracker,
	2: migrationV2Rotation,
}

// migrationV1Tracker mirrors seasons_tracker.json.
//
// used_images keeps the order images were served in via position; the JSON
// file stores the same order as a list.
const migrationV1Tracker = `
CREATE TABLE IF NOT EXISTS season_tracker (
    season TEXT PRIMARY KEY,
    -- YYYY-MM-DD, or any legacy text; NULL means never reset
    last_reset TEXT,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS used_images (
    season TEXT NOT NULL,
    position INTEGER NOT NULL,
    filename TEXT NOT NULL,
    PRIMARY KEY (season, position)
);
`

// migrationV2Rotation mirrors state.json and messages.json.
const migrationV2Rotation = `
CREATE TABLE IF NOT EXISTS rotation_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    message_index INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS messages (
    position INTEGER PRIMARY KEY,
    msg_key TEXT NOT NULL,
    body TEXT NOT NULL
);
`

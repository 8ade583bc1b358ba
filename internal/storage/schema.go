package storage

const schema = `
-- The 'decks' table groups cards that are studied together.
CREATE TABLE IF NOT EXISTS decks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

-- The 'sources' table tracks the origin of the cards, either a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    deck_id INTEGER NOT NULL,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- The 'cards' table stores each card's content and scheduling state.
-- due is a position for new cards and a day index for review cards.
CREATE TABLE IF NOT EXISTS cards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    deck_id INTEGER NOT NULL,
    hash TEXT NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL DEFAULT '',
    context TEXT NOT NULL DEFAULT '',
    queue INTEGER NOT NULL DEFAULT 0, -- 0: New, 1: Learning, 2: Review
    due INTEGER NOT NULL DEFAULT 0,
    interval INTEGER NOT NULL DEFAULT 0,
    stability REAL,
    difficulty REAL,
    source_id INTEGER,

    UNIQUE(deck_id, hash),
    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE,
    FOREIGN KEY(source_id) REFERENCES sources(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_deck_queue ON cards(deck_id, queue, due, id);

-- The 'session' table holds collection-wide values such as the creation stamp.
CREATE TABLE IF NOT EXISTS session (
    key TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);
`

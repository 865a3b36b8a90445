package sqlitestore

// Instants are stored as Unix nanoseconds so range predicates compare integers.
const schema = `
CREATE TABLE IF NOT EXISTS resources (
    id              TEXT PRIMARY KEY,
    capacity        INTEGER NOT NULL CHECK (capacity >= 1),
    requires_return INTEGER NOT NULL DEFAULT 0,
    attributes      TEXT NOT NULL DEFAULT '{}',
    deleted_at      INTEGER,
    created_at      INTEGER NOT NULL,
    updated_at      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS requesters (
    id           TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS reservations (
    id                TEXT PRIMARY KEY,
    resource_id       TEXT NOT NULL REFERENCES resources (id),
    requester_id      TEXT NOT NULL,
    date_from         INTEGER NOT NULL,
    date_to           INTEGER NOT NULL,
    status            TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'completed', 'cancelled', 'overdue')),
    total_price_cents INTEGER NOT NULL DEFAULT 0 CHECK (total_price_cents >= 0),
    returned_at       INTEGER,
    created_at        INTEGER NOT NULL,
    last_updated_at   INTEGER NOT NULL,
    CHECK (date_from < date_to)
);

CREATE INDEX IF NOT EXISTS reservations_occupancy_idx
    ON reservations (resource_id, status, date_from, date_to);

CREATE INDEX IF NOT EXISTS reservations_due_idx
    ON reservations (status, date_to);
`

package store

// schemaVersion is stored in PRAGMA user_version. Databases written with an
// older version are rebuilt on open.
const schemaVersion = 2

const dropSQL = `
DROP TABLE IF EXISTS records;
DROP TABLE IF EXISTS datasets;
`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS datasets (
    file_path            TEXT PRIMARY KEY,
    program              TEXT NOT NULL,
    fingerprint          TEXT NOT NULL,
    columns              TEXT NOT NULL,
    record_count         INTEGER NOT NULL,
    file_mtime_ns        INTEGER NOT NULL,
    file_size            INTEGER NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    file_path            TEXT NOT NULL REFERENCES datasets(file_path) ON DELETE CASCADE,
    row_index            INTEGER NOT NULL,
    program              TEXT NOT NULL,
    recipient            TEXT NOT NULL,
    id_number            TEXT NOT NULL,
    city                 TEXT NOT NULL,
    subprogram           TEXT NOT NULL,
    funding_source       TEXT NOT NULL,
    amount               TEXT,
    duration             TEXT,
    year                 INTEGER NOT NULL,
    cluster              INTEGER,
    PRIMARY KEY (file_path, row_index)
);
`

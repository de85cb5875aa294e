package store

// schemaVersion is stored in PRAGMA user_version. Databases written with an
// older layout are dropped and rebuilt on Open.
const schemaVersion = 2

const dropSQL = `
DROP TABLE IF EXISTS price_records;
DROP TABLE IF EXISTS sources;
`

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sources (
    source_path          TEXT NOT NULL,
    sheet                TEXT NOT NULL DEFAULT '',
    mode                 TEXT NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    dropped              INTEGER NOT NULL DEFAULT 0,
    parsed_at            TEXT NOT NULL,
    PRIMARY KEY (source_path, sheet, mode)
);

CREATE TABLE IF NOT EXISTS price_records (
    source_path          TEXT NOT NULL,
    sheet                TEXT NOT NULL DEFAULT '',
    mode                 TEXT NOT NULL,
    row_idx              INTEGER NOT NULL,
    line                 INTEGER NOT NULL,
    estado               TEXT NOT NULL,
    anio                 INTEGER NOT NULL,
    mes                  INTEGER NOT NULL,
    tipo_combustible     TEXT NOT NULL,
    precio               TEXT NOT NULL,
    PRIMARY KEY (source_path, sheet, mode, row_idx),
    FOREIGN KEY (source_path, sheet, mode) REFERENCES sources(source_path, sheet, mode) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_price_records_series
    ON price_records(source_path, sheet, mode, estado, tipo_combustible);
`

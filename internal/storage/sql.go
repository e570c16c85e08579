package storage

// The schema lives here rather than in an embedded asset; it is small and
// versioned with the code that writes it.
const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time   DATETIME NOT NULL,
    experiment   TEXT NOT NULL,
    config       TEXT
);

CREATE TABLE IF NOT EXISTS captures (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id   INTEGER NOT NULL REFERENCES sessions (id),
    timestamp    DATETIME NOT NULL,
    frame_index  INTEGER NOT NULL,
    rx_timestamp INTEGER NOT NULL,
    samples      INTEGER NOT NULL,
    filename     TEXT NOT NULL,
    first_path   INTEGER,
    std_noise    INTEGER,
    max_noise    INTEGER
);
`

const initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_captures_session ON captures (session_id);
CREATE INDEX IF NOT EXISTS idx_captures_frame ON captures (session_id, frame_index);
`

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      experiment,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    experiment,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    experiment,
    config
FROM sessions
ORDER BY start_time`

	insertCaptureSQL = `
INSERT INTO captures (session_id,
                      timestamp,
                      frame_index,
                      rx_timestamp,
                      samples,
                      filename,
                      first_path,
                      std_noise,
                      max_noise)
VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?)`

	selectCapturesSQL = `
SELECT
    id,
    session_id,
    timestamp,
    frame_index,
    rx_timestamp,
    samples,
    filename,
    first_path,
    std_noise,
    max_noise
FROM captures
WHERE
    session_id = ?
ORDER BY id`
)

package runstore

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    samplesheet TEXT NOT NULL,
    outdir TEXT NOT NULL,
    version TEXT NOT NULL,
    args TEXT NOT NULL,
    status TEXT NOT NULL,
    exit_code INTEGER,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

package db

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/jonathan/listing-extractor/internal/listing"
)

// RecordsTable holds one row per processed URL.
const RecordsTable = "listing_records"

const createRecordsTable = `CREATE TABLE IF NOT EXISTS listing_records (
	id          BIGSERIAL PRIMARY KEY,
	run_id      UUID        NOT NULL,
	position    INTEGER     NOT NULL,
	url         TEXT        NOT NULL,
	status_key  TEXT        NOT NULL,
	status_code TEXT        NOT NULL,
	record      JSONB       NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, position)
)`

// RecordColumns are the columns written by SaveRecords, in row order.
var RecordColumns = []string{"run_id", "position", "url", "status_key", "status_code", "record"}

// EnsureSchema creates the records table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, createRecordsTable); err != nil {
		return eris.Wrap(err, "db: create listing_records")
	}
	return nil
}

// SaveRecords copies the records of one run, keeping their input position.
func (db *DB) SaveRecords(ctx context.Context, runID uuid.UUID, records []listing.Record) (int64, error) {
	rows, err := RecordRows(runID, records)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := db.pool.CopyFrom(ctx, pgx.Identifier{RecordsTable}, RecordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", RecordsTable)
	}
	return n, nil
}

// RecordRows converts records to COPY rows matching RecordColumns.
func RecordRows(runID uuid.UUID, records []listing.Record) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for i := range records {
		r := &records[i]
		doc, err := json.Marshal(r)
		if err != nil {
			return nil, eris.Wrapf(err, "db: encode record %d (%s)", i, r.URL)
		}

		statusKey, statusCode := "", ""
		if r.Meta != nil {
			statusKey, statusCode = r.Meta.StatusKey, r.Meta.StatusCode
		}
		rows = append(rows, []any{runID, i, r.URL, statusKey, statusCode, doc})
	}
	return rows, nil
}

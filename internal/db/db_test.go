package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-extractor/internal/listing"
	"github.com/jonathan/listing-extractor/internal/status"
)

func sampleRecords() []listing.Record {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	ok := listing.FromFields("https://www.mudah.my/a.htm", map[string]any{"price": "RM 450,000"})
	ok.Meta = listing.NewMetadata(listing.MetaInput{Status: status.Success, Model: "m", Attempts: 1}, now)

	failed := listing.Empty("https://www.mudah.my/b.htm")
	failed.Meta = listing.NewMetadata(listing.MetaInput{Status: status.CrawlFailed, Model: "m"}, now)

	return []listing.Record{ok, failed}
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS listing_records").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	err = New(mock).EnsureSchema(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err = New(mock).EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecords(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"listing_records"}, RecordColumns).WillReturnResult(2)

	n, err := New(mock).SaveRecords(context.Background(), uuid.New(), sampleRecords())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecords_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := New(mock).SaveRecords(context.Background(), uuid.New(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRecords_CopyError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"listing_records"}, RecordColumns).
		WillReturnError(errors.New("connection reset"))

	_, err = New(mock).SaveRecords(context.Background(), uuid.New(), sampleRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO listing_records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRows(t *testing.T) {
	runID := uuid.New()
	rows, err := RecordRows(runID, sampleRecords())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for i, row := range rows {
		require.Len(t, row, len(RecordColumns))
		assert.Equal(t, runID, row[0])
		assert.Equal(t, i, row[1])
	}

	assert.Equal(t, "https://www.mudah.my/a.htm", rows[0][2])
	assert.Equal(t, status.Success, rows[0][3])
	assert.Equal(t, "000000", rows[0][4])
	assert.Equal(t, status.CrawlFailed, rows[1][3])

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rows[0][5].([]byte), &doc))
	assert.Equal(t, "RM 450,000", doc["price"])
	assert.Contains(t, doc, "meta")
}

func TestRecordRows_MissingMeta(t *testing.T) {
	rows, err := RecordRows(uuid.Nil, []listing.Record{listing.Empty("u")})
	require.NoError(t, err)
	assert.Equal(t, "", rows[0][3])
	assert.Equal(t, "", rows[0][4])
}

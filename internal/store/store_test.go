package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jainprashuk/LeadLens/internal/lead"
)

func newMock(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s := New(db, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS leads").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS leads").WillReturnError(sql.ErrConnDone)

	err := s.EnsureSchema(context.Background())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestSaveLeadsUpsertsNamedRecords(t *testing.T) {
	s, mock := newMock(t)
	rec := lead.Record{
		BusinessName: " Local Tiles ", Rating: 4.5, Reviews: 20, HasWebsite: true,
		Website: "https://shop.localtiles.co.in/home", Category: "Tile store",
	}
	cls := lead.Classification{
		Category: lead.CategoryMediumPriority, LeadType: "POTENTIAL – Medium Priority",
		Explanation: "Medium opportunity (score=45). Computed from fields",
		Score:       45,
		Result:      lead.ScoreResult{SiteScore: 15, Flags: []string{lead.FlagNegativePhotos}},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO leads")
	prep.ExpectExec().WithArgs(
		"tiles shop in jaipur", LeadKey(rec), "Local Tiles", "Tile store", nil, 4.5, 20, nil, true,
		"https://shop.localtiles.co.in/home", nil, nil, "medium-priority", "POTENTIAL – Medium Priority",
		"Medium opportunity (score=45). Computed from fields", 45, 15, lead.FlagNegativePhotos, sqlmock.AnyArg(),
	).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := s.SaveLeads(context.Background(), "tiles shop in jaipur", []lead.Lead{
		{Record: rec, Classification: cls},
		{Record: lead.Record{BusinessName: "  "}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLeadsRollsBackOnError(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("deadlock")

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO leads").ExpectExec().WillReturnError(boom)
	mock.ExpectRollback()

	_, err := s.SaveLeads(context.Background(), "q", []lead.Lead{{Record: lead.Record{BusinessName: "A"}}})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLeadsReportsZeroAfterPartialFailure(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO leads")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(boom)
	mock.ExpectRollback()

	n, err := s.SaveLeads(context.Background(), "q", []lead.Lead{
		{Record: lead.Record{BusinessName: "A"}},
		{Record: lead.Record{BusinessName: "B"}},
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"B"`)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLeadsEmptyIsNoop(t *testing.T) {
	s, mock := newMock(t)
	n, err := s.SaveLeads(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadKey(t *testing.T) {
	a := LeadKey(lead.Record{BusinessName: "Local Tiles", Website: "https://www.localtiles.in/contact"})
	b := LeadKey(lead.Record{BusinessName: " local tiles ", Website: "http://shop.localtiles.in"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)

	byAddress := LeadKey(lead.Record{BusinessName: "Local Tiles", Address: "MI Road"})
	assert.NotEqual(t, a, byAddress)
	assert.Equal(t, byAddress, LeadKey(lead.Record{BusinessName: "LOCAL TILES", Address: " mi road "}))
}

func TestNullHelpers(t *testing.T) {
	assert.False(t, nullString("  ").Valid)
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, nullString(" x "))
	assert.False(t, nullFloat64(0).Valid)
	assert.Equal(t, 4.2, nullFloat64(4.2).Float64)
	assert.False(t, nullInt(0).Valid)
	assert.Equal(t, int64(-3), nullInt(-3).Int64)
}

package services

import (
	"context"
	"os"
	"testing"

	"github.com/fenilmodi00/tender-backend/database"
	"github.com/fenilmodi00/tender-backend/models"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLTenderStore {
	t.Helper()

	db, dialect, err := database.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, database.Migrate(context.Background(), db))
	return NewSQLTenderStore(db, dialect)
}

func tenderRecord(publishedOn, reference string) models.TenderRecord {
	return models.NewTenderRecord(
		models.CandidateListing{
			PublishedOn:       publishedOn,
			Category:          "Travaux",
			ProcedureType:     "AOO",
			PublicBuyer:       "Commune de Fes",
			ExecutionLocation: "Fes",
			DetailLink:        "/detail/" + reference,
		},
		models.DetailFields{
			DownloadLink:       "https://tenders.example/detail/" + reference,
			DocumentsLink:      models.FieldNotFound,
			ObjectDescription:  "Object " + reference,
			Reference:          reference,
			SubmissionDeadline: "30/10/2026 10:00",
		},
	)
}

func TestSQLTenderStoreInsertAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []models.TenderRecord{
		tenderRecord("19/10/2026", "A-1"),
		tenderRecord("19/10/2026", "A-2"),
		tenderRecord("18/10/2026", "B-1"),
	}

	inserted, err := store.InsertMany(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
	for _, record := range records {
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.False(t, record.CreatedAt.IsZero())
	}

	today, err := store.QueryByPublishedDate(ctx, "19/10/2026")
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.ElementsMatch(t, []string{"A-1", "A-2"}, []string{today[0].Reference, today[1].Reference})
	for _, record := range today {
		assert.True(t, record.SameTender(records[0]) || record.SameTender(records[1]))
	}

	count, err := store.CountByPublishedDate(ctx, "18/10/2026")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	none, err := store.QueryByPublishedDate(ctx, "01/01/2020")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLTenderStoreInsertIsAllOrNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := tenderRecord("19/10/2026", "A-1")
	second := tenderRecord("19/10/2026", "A-2")
	second.ID = uuid.New()
	repeated := second

	inserted, err := store.InsertMany(ctx, []models.TenderRecord{first, second, repeated})
	require.Error(t, err)
	assert.Zero(t, inserted)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryPersistence))

	count, err := store.CountByPublishedDate(ctx, "19/10/2026")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLTenderStoreInsertEmpty(t *testing.T) {
	store := newTestStore(t)

	inserted, err := store.InsertMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestSQLTenderStorePostgres(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, dialect, err := database.Connect("postgres", databaseURL)
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.Migrate(context.Background(), db))

	store := NewSQLTenderStore(db, dialect)
	ctx := context.Background()
	reference := "PG-" + uuid.NewString()
	publishedOn := "01/01/1999"

	before, err := store.CountByPublishedDate(ctx, publishedOn)
	require.NoError(t, err)

	inserted, err := store.InsertMany(ctx, []models.TenderRecord{tenderRecord(publishedOn, reference)})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	records, err := store.QueryByPublishedDate(ctx, publishedOn)
	require.NoError(t, err)
	assert.Len(t, records, before+1)

	_, err = db.ExecContext(ctx, `DELETE FROM tenders WHERE reference = $1`, reference)
	require.NoError(t, err)
}

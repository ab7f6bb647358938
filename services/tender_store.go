package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fenilmodi00/tender-backend/database"
	"github.com/fenilmodi00/tender-backend/models"
	"github.com/fenilmodi00/tender-backend/shared"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TenderStore persists tender records. Dates cross this boundary as dd/mm/yyyy strings.
type TenderStore interface {
	QueryByPublishedDate(ctx context.Context, publishedOn string) ([]models.TenderRecord, error)
	InsertMany(ctx context.Context, records []models.TenderRecord) (int, error)
	CountByPublishedDate(ctx context.Context, publishedOn string) (int, error)
}

const tenderColumns = `id, published_on, category, procedure_type, public_buyer, execution_location,
	detail_link, download_link, documents_link, object_description, reference,
	submission_deadline, verified, created_at`

// SQLTenderStore implements TenderStore on database/sql
type SQLTenderStore struct {
	db      *sql.DB
	dialect database.Dialect
	logger  *logrus.Entry
}

func NewSQLTenderStore(db *sql.DB, dialect database.Dialect) *SQLTenderStore {
	return &SQLTenderStore{
		db:      db,
		dialect: dialect,
		logger: logrus.WithFields(logrus.Fields{
			"component": "SQLTenderStore",
		}),
	}
}

// QueryByPublishedDate returns every stored record published on the given date
func (s *SQLTenderStore) QueryByPublishedDate(ctx context.Context, publishedOn string) ([]models.TenderRecord, error) {
	query := s.dialect.Rebind(`SELECT ` + tenderColumns + ` FROM tenders WHERE published_on = ? ORDER BY created_at, id`)

	rows, err := s.db.QueryContext(ctx, query, publishedOn)
	if err != nil {
		return nil, shared.NewPersistenceError("query", fmt.Errorf("failed to query tenders: %w", err))
	}
	defer rows.Close()

	var records []models.TenderRecord
	for rows.Next() {
		var record models.TenderRecord
		var id string
		err := rows.Scan(
			&id, &record.PublishedOn, &record.Category, &record.ProcedureType, &record.PublicBuyer,
			&record.ExecutionLocation, &record.DetailLink, &record.DownloadLink, &record.DocumentsLink,
			&record.ObjectDescription, &record.Reference, &record.SubmissionDeadline, &record.Verified,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, shared.NewPersistenceError("query", fmt.Errorf("failed to scan tender row: %w", err))
		}
		if record.ID, err = uuid.Parse(id); err != nil {
			return nil, shared.NewPersistenceError("query", fmt.Errorf("invalid tender id %q: %w", id, err))
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewPersistenceError("query", err)
	}

	s.logger.WithFields(logrus.Fields{
		"method":       "QueryByPublishedDate",
		"published_on": publishedOn,
		"records":      len(records),
	}).Debug("Loaded stored tenders")

	return records, nil
}

// InsertMany inserts all records in one transaction. On failure nothing is inserted.
// Records without an ID get a new one; the IDs and creation times are written back.
func (s *SQLTenderStore) InsertMany(ctx context.Context, records []models.TenderRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, shared.NewPersistenceError("insert", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.Rebind(`
		INSERT INTO tenders (`+tenderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, shared.NewPersistenceError("insert", fmt.Errorf("failed to prepare statement: %w", err))
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range records {
		record := &records[i]
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			record.ID.String(), record.PublishedOn, record.Category, record.ProcedureType, record.PublicBuyer,
			record.ExecutionLocation, record.DetailLink, record.DownloadLink, record.DocumentsLink,
			record.ObjectDescription, record.Reference, record.SubmissionDeadline, record.Verified,
			record.CreatedAt,
		)
		if err != nil {
			return 0, shared.NewPersistenceError("insert", fmt.Errorf("failed to insert tender %s: %w", record.Reference, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, shared.NewPersistenceError("insert", fmt.Errorf("failed to commit transaction: %w", err))
	}

	s.logger.WithFields(logrus.Fields{
		"method":  "InsertMany",
		"records": len(records),
	}).Info("Inserted tenders")

	return len(records), nil
}

// CountByPublishedDate returns the number of stored records for the date
func (s *SQLTenderStore) CountByPublishedDate(ctx context.Context, publishedOn string) (int, error) {
	var count int
	query := s.dialect.Rebind(`SELECT COUNT(*) FROM tenders WHERE published_on = ?`)
	if err := s.db.QueryRowContext(ctx, query, publishedOn).Scan(&count); err != nil {
		return 0, shared.NewPersistenceError("count", err)
	}
	return count, nil
}

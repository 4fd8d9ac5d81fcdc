package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/pricewatch/pkg/domain"
)

// HistoryRepository appends and reads immutable observation records. The
// pipeline path is insert-only; no update or delete is exposed here.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

type historyRow struct {
	ID                int64           `db:"id"`
	ItemID            int64           `db:"item_id"`
	Timestamp         time.Time       `db:"timestamp"`
	Price             sql.NullFloat64 `db:"price"`
	InStock           sql.NullBool    `db:"in_stock"`
	PriceConfidence   sql.NullFloat64 `db:"price_confidence"`
	InStockConfidence sql.NullFloat64 `db:"in_stock_confidence"`
	ScreenshotPath    string          `db:"screenshot_path"`
	AIModel           string          `db:"ai_model"`
	AIProvider        string          `db:"ai_provider"`
	PromptVersion     string          `db:"prompt_version"`
	RepairUsed        bool            `db:"repair_used"`
	FlaggedForReview  bool            `db:"flagged_for_review"`
}

// Append inserts a single observation record, retrying on lock contention
func (r *HistoryRepository) Append(ctx context.Context, rec *domain.HistoryRecord) error {
	row := &historyRow{
		ItemID:           rec.ItemID,
		Timestamp:        rec.Timestamp.UTC(),
		ScreenshotPath:   rec.ScreenshotPath,
		AIModel:          rec.AIModel,
		AIProvider:       rec.AIProvider,
		PromptVersion:    rec.PromptVersion,
		RepairUsed:       rec.RepairUsed,
		FlaggedForReview: rec.FlaggedForReview,
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now().UTC()
	}
	if rec.Price != nil {
		row.Price = sql.NullFloat64{Float64: *rec.Price, Valid: true}
	}
	if rec.InStock != nil {
		row.InStock = sql.NullBool{Bool: *rec.InStock, Valid: true}
	}
	if rec.PriceConfidence != nil {
		row.PriceConfidence = sql.NullFloat64{Float64: *rec.PriceConfidence, Valid: true}
	}
	if rec.InStockConfidence != nil {
		row.InStockConfidence = sql.NullFloat64{Float64: *rec.InStockConfidence, Valid: true}
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO history (
				item_id, timestamp, price, in_stock, price_confidence, in_stock_confidence,
				screenshot_path, ai_model, ai_provider, prompt_version, repair_used, flagged_for_review
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		result, err := r.db.ExecContext(ctx, query,
			row.ItemID, fmtTime(row.Timestamp), row.Price, row.InStock,
			row.PriceConfidence, row.InStockConfidence, row.ScreenshotPath,
			row.AIModel, row.AIProvider, row.PromptVersion, row.RepairUsed, row.FlaggedForReview)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("append history: %w", err)}
		}

		id, err := result.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get insert id: %w", err)}
		}
		rec.ID = id
		return nil
	})
}

// GetHistory retrieves the most recent records for an item, newest first
func (r *HistoryRepository) GetHistory(ctx context.Context, itemID int64, limit int) ([]*domain.HistoryRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []historyRow
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM history WHERE item_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?", itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	recs := make([]*domain.HistoryRecord, len(rows))
	for i := range rows {
		recs[i] = toDomainHistory(&rows[i])
	}
	return recs, nil
}

// CountHistory returns the number of records for an item
func (r *HistoryRepository) CountHistory(ctx context.Context, itemID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM history WHERE item_id = ?", itemID)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

func toDomainHistory(row *historyRow) *domain.HistoryRecord {
	rec := &domain.HistoryRecord{
		ID:               row.ID,
		ItemID:           row.ItemID,
		Timestamp:        row.Timestamp,
		ScreenshotPath:   row.ScreenshotPath,
		AIModel:          row.AIModel,
		AIProvider:       row.AIProvider,
		PromptVersion:    row.PromptVersion,
		RepairUsed:       row.RepairUsed,
		FlaggedForReview: row.FlaggedForReview,
	}
	if row.Price.Valid {
		v := row.Price.Float64
		rec.Price = &v
	}
	if row.InStock.Valid {
		v := row.InStock.Bool
		rec.InStock = &v
	}
	if row.PriceConfidence.Valid {
		v := row.PriceConfidence.Float64
		rec.PriceConfidence = &v
	}
	if row.InStockConfidence.Valid {
		v := row.InStockConfidence.Float64
		rec.InStockConfidence = &v
	}
	return rec
}

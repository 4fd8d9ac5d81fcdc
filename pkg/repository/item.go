package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/pricewatch/pkg/domain"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ItemRepository handles item-related database operations
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// itemRow is the database representation of domain.Item
type itemRow struct {
	ID                    int64           `db:"id"`
	URL                   string          `db:"url"`
	Name                  string          `db:"name"`
	Selector              string          `db:"selector"`
	CustomPrompt          string          `db:"custom_prompt"`
	Tags                  string          `db:"tags"`
	Description           string          `db:"description"`
	TargetPrice           sql.NullFloat64 `db:"target_price"`
	IntervalMinutes       sql.NullInt64   `db:"interval_minutes"`
	NotificationProfileID sql.NullInt64   `db:"notification_profile_id"`

	CurrentPrice           sql.NullFloat64 `db:"current_price"`
	CurrentPriceConfidence sql.NullFloat64 `db:"current_price_confidence"`
	InStock                sql.NullBool    `db:"in_stock"`
	InStockConfidence      sql.NullFloat64 `db:"in_stock_confidence"`

	IsActive    bool         `db:"is_active"`
	InFlight    bool         `db:"in_flight"`
	LastChecked sql.NullTime `db:"last_checked"`
	NextCheck   sql.NullTime `db:"next_check"`
	LastError   string       `db:"last_error"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CreateItem inserts a new item, due for an immediate first check
func (r *ItemRepository) CreateItem(ctx context.Context, item *domain.Item) error {
	row := toItemRow(item)

	query := `
		INSERT INTO items (
			url, name, selector, custom_prompt, tags, description,
			target_price, interval_minutes, notification_profile_id,
			is_active, next_check
		) VALUES (
			:url, :name, :selector, :custom_prompt, :tags, :description,
			:target_price, :interval_minutes, :notification_profile_id,
			:is_active, datetime('now', 'subsec')
		)
	`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get insert id: %w", err)
	}

	item.ID = id
	return nil
}

// GetItem retrieves an item by ID
func (r *ItemRepository) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var row itemRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return toDomainItem(&row), nil
}

// GetItems retrieves all items ordered by name
func (r *ItemRepository) GetItems(ctx context.Context) ([]*domain.Item, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows, "SELECT * FROM items ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	items := make([]*domain.Item, len(rows))
	for i := range rows {
		items[i] = toDomainItem(&rows[i])
	}
	return items, nil
}

// UpdateItem applies an API-side edit. Bumps updated_at so a stale in-flight
// pipeline result arriving later loses the write race (see ApplyObservation).
func (r *ItemRepository) UpdateItem(ctx context.Context, item *domain.Item) error {
	row := toItemRow(item)

	query := `
		UPDATE items SET
			url = :url, name = :name, selector = :selector,
			custom_prompt = :custom_prompt, tags = :tags, description = :description,
			target_price = :target_price, interval_minutes = :interval_minutes,
			notification_profile_id = :notification_profile_id,
			current_price = :current_price, current_price_confidence = :current_price_confidence,
			in_stock = :in_stock, in_stock_confidence = :in_stock_confidence,
			is_active = :is_active,
			updated_at = datetime('now', 'subsec')
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes an item and, via FK cascade, its history
func (r *ItemRepository) DeleteItem(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDueItems retrieves active items due for a check and not already in flight
func (r *ItemRepository) GetDueItems(ctx context.Context, now time.Time) ([]*domain.Item, error) {
	query := `
		SELECT * FROM items
		WHERE is_active = 1 AND in_flight = 0
		AND (next_check IS NULL OR next_check <= ?)
		ORDER BY next_check
	`
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows, query, fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("get due items: %w", err)
	}

	items := make([]*domain.Item, len(rows))
	for i := range rows {
		items[i] = toDomainItem(&rows[i])
	}
	return items, nil
}

// TryMarkInFlight atomically claims an item for a pipeline run. Returns false
// without error when the item is already in flight, so a concurrent manual
// trigger degrades to a no-op instead of a duplicate check.
func (r *ItemRepository) TryMarkInFlight(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE items SET in_flight = 1 WHERE id = ? AND in_flight = 0", id)
	if err != nil {
		return false, fmt.Errorf("mark in flight: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearInFlight releases a single claim without recording a check, used when
// a claimed check could not start
func (r *ItemRepository) ClearInFlight(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE items SET in_flight = 0 WHERE id = ?", id); err != nil {
		return fmt.Errorf("clear in flight: %w", err)
	}
	return nil
}

// ResetInFlight clears the in-flight flag on all items, used on startup to
// recover claims orphaned by an unclean shutdown
func (r *ItemRepository) ResetInFlight(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE items SET in_flight = 0 WHERE in_flight = 1"); err != nil {
		return fmt.Errorf("reset in flight: %w", err)
	}
	return nil
}

// MarkAllDue makes every active item due for an immediate check
func (r *ItemRepository) MarkAllDue(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE items SET next_check = datetime('now', 'subsec') WHERE is_active = 1")
	if err != nil {
		return 0, fmt.Errorf("mark all due: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return affected, nil
}

// FinishCheck records check completion: last_checked, next_check, last_error,
// and releases the in-flight claim. Called on every pipeline exit path.
func (r *ItemRepository) FinishCheck(ctx context.Context, id int64, lastError string, checkedAt, nextCheck time.Time) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			UPDATE items SET
				last_checked = ?, next_check = ?, last_error = ?, in_flight = 0
			WHERE id = ?
		`
		_, err := r.db.ExecContext(ctx, query, fmtTime(checkedAt), fmtTime(nextCheck), lastError, id)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("finish check: %w", err)}
		}
		return nil
	})
}

// StateUpdate carries the accepted parts of an observation into item state
type StateUpdate struct {
	ApplyPrice        bool
	Price             float64
	PriceConfidence   float64
	ApplyStock        bool
	InStock           bool
	InStockConfidence float64
}

// ApplyObservation writes accepted observation fields, guarded by the
// updated_at value the pipeline read at snapshot time. Returns false when the
// item was manually edited mid-flight; the stale result is then discarded
// (last writer by timestamp wins).
func (r *ItemRepository) ApplyObservation(ctx context.Context, id int64, upd StateUpdate, seenUpdatedAt time.Time) (bool, error) {
	if !upd.ApplyPrice && !upd.ApplyStock {
		return true, nil
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	applied := false
	err := retrier.Do(ctx, func() error {
		query := "UPDATE items SET "
		args := []interface{}{}
		if upd.ApplyPrice {
			query += "current_price = ?, current_price_confidence = ?"
			args = append(args, upd.Price, upd.PriceConfidence)
		}
		if upd.ApplyStock {
			if upd.ApplyPrice {
				query += ", "
			}
			query += "in_stock = ?, in_stock_confidence = ?"
			args = append(args, upd.InStock, upd.InStockConfidence)
		}
		// updated_at is always written as datetime('now', 'subsec') text,
		// fmtTime produces the same layout for the equality check
		query += " WHERE id = ? AND updated_at = ?"
		args = append(args, id, fmtTime(seenUpdatedAt))

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("apply observation: %w", err)}
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get rows affected: %w", err)}
		}
		applied = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// toItemRow converts domain.Item to its database representation
func toItemRow(item *domain.Item) *itemRow {
	row := &itemRow{
		ID:           item.ID,
		URL:          item.URL,
		Name:         item.Name,
		Selector:     item.Selector,
		CustomPrompt: item.CustomPrompt,
		Tags:         item.Tags,
		Description:  item.Description,
		IsActive:     item.IsActive,
		LastError:    item.LastError,
	}
	if item.TargetPrice != nil {
		row.TargetPrice = sql.NullFloat64{Float64: *item.TargetPrice, Valid: true}
	}
	if item.IntervalMinutes != nil {
		row.IntervalMinutes = sql.NullInt64{Int64: int64(*item.IntervalMinutes), Valid: true}
	}
	if item.NotificationProfileID != nil {
		row.NotificationProfileID = sql.NullInt64{Int64: *item.NotificationProfileID, Valid: true}
	}
	if item.CurrentPrice != nil {
		row.CurrentPrice = sql.NullFloat64{Float64: *item.CurrentPrice, Valid: true}
	}
	if item.CurrentPriceConfidence != nil {
		row.CurrentPriceConfidence = sql.NullFloat64{Float64: *item.CurrentPriceConfidence, Valid: true}
	}
	if item.InStock != nil {
		row.InStock = sql.NullBool{Bool: *item.InStock, Valid: true}
	}
	if item.InStockConfidence != nil {
		row.InStockConfidence = sql.NullFloat64{Float64: *item.InStockConfidence, Valid: true}
	}
	return row
}

// toDomainItem converts a database row to domain.Item
func toDomainItem(row *itemRow) *domain.Item {
	item := &domain.Item{
		ID:           row.ID,
		URL:          row.URL,
		Name:         row.Name,
		Selector:     row.Selector,
		CustomPrompt: row.CustomPrompt,
		Tags:         row.Tags,
		Description:  row.Description,
		IsActive:     row.IsActive,
		LastError:    row.LastError,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if row.TargetPrice.Valid {
		v := row.TargetPrice.Float64
		item.TargetPrice = &v
	}
	if row.IntervalMinutes.Valid {
		v := int(row.IntervalMinutes.Int64)
		item.IntervalMinutes = &v
	}
	if row.NotificationProfileID.Valid {
		v := row.NotificationProfileID.Int64
		item.NotificationProfileID = &v
	}
	if row.CurrentPrice.Valid {
		v := row.CurrentPrice.Float64
		item.CurrentPrice = &v
	}
	if row.CurrentPriceConfidence.Valid {
		v := row.CurrentPriceConfidence.Float64
		item.CurrentPriceConfidence = &v
	}
	if row.InStock.Valid {
		v := row.InStock.Bool
		item.InStock = &v
	}
	if row.InStockConfidence.Valid {
		v := row.InStockConfidence.Float64
		item.InStockConfidence = &v
	}
	if row.LastChecked.Valid {
		v := row.LastChecked.Time
		item.LastChecked = &v
	}
	if row.NextCheck.Valid {
		v := row.NextCheck.Time
		item.NextCheck = &v
	}
	return item
}

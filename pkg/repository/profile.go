package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/pricewatch/pkg/domain"
)

// ProfileRepository handles notification profile database operations
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileRow struct {
	ID                        int64   `db:"id"`
	Name                      string  `db:"name"`
	NotifyURL                 string  `db:"notify_url"`
	NotifyOnPriceDrop         bool    `db:"notify_on_price_drop"`
	NotifyOnTargetPrice       bool    `db:"notify_on_target_price"`
	NotifyOnStockChange       bool    `db:"notify_on_stock_change"`
	PriceDropThresholdPercent float64 `db:"price_drop_threshold_percent"`
	CheckIntervalMinutes      int     `db:"check_interval_minutes"`
}

// CreateProfile inserts a new notification profile
func (r *ProfileRepository) CreateProfile(ctx context.Context, p *domain.NotificationProfile) error {
	query := `
		INSERT INTO notification_profiles (
			name, notify_url, notify_on_price_drop, notify_on_target_price,
			notify_on_stock_change, price_drop_threshold_percent, check_interval_minutes
		) VALUES (
			:name, :notify_url, :notify_on_price_drop, :notify_on_target_price,
			:notify_on_stock_change, :price_drop_threshold_percent, :check_interval_minutes
		)
	`
	result, err := r.db.NamedExecContext(ctx, query, toProfileRow(p))
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get insert id: %w", err)
	}
	p.ID = id
	return nil
}

// GetProfile retrieves a profile by ID
func (r *ProfileRepository) GetProfile(ctx context.Context, id int64) (*domain.NotificationProfile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM notification_profiles WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return toDomainProfile(&row), nil
}

// GetProfiles retrieves all notification profiles
func (r *ProfileRepository) GetProfiles(ctx context.Context) ([]*domain.NotificationProfile, error) {
	var rows []profileRow
	err := r.db.SelectContext(ctx, &rows, "SELECT * FROM notification_profiles ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}

	profiles := make([]*domain.NotificationProfile, len(rows))
	for i := range rows {
		profiles[i] = toDomainProfile(&rows[i])
	}
	return profiles, nil
}

// UpdateProfile updates an existing profile
func (r *ProfileRepository) UpdateProfile(ctx context.Context, p *domain.NotificationProfile) error {
	query := `
		UPDATE notification_profiles SET
			name = :name, notify_url = :notify_url,
			notify_on_price_drop = :notify_on_price_drop,
			notify_on_target_price = :notify_on_target_price,
			notify_on_stock_change = :notify_on_stock_change,
			price_drop_threshold_percent = :price_drop_threshold_percent,
			check_interval_minutes = :check_interval_minutes
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, toProfileRow(p))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
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

// DeleteProfile removes a profile; items referencing it keep running on the
// global default interval (FK set-null)
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM notification_profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
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

func toProfileRow(p *domain.NotificationProfile) *profileRow {
	return &profileRow{
		ID:                        p.ID,
		Name:                      p.Name,
		NotifyURL:                 p.NotifyURL,
		NotifyOnPriceDrop:         p.NotifyOnPriceDrop,
		NotifyOnTargetPrice:       p.NotifyOnTargetPrice,
		NotifyOnStockChange:       p.NotifyOnStockChange,
		PriceDropThresholdPercent: p.PriceDropThresholdPercent,
		CheckIntervalMinutes:      p.CheckIntervalMinutes,
	}
}

func toDomainProfile(row *profileRow) *domain.NotificationProfile {
	return &domain.NotificationProfile{
		ID:                        row.ID,
		Name:                      row.Name,
		NotifyURL:                 row.NotifyURL,
		NotifyOnPriceDrop:         row.NotifyOnPriceDrop,
		NotifyOnTargetPrice:       row.NotifyOnTargetPrice,
		NotifyOnStockChange:       row.NotifyOnStockChange,
		PriceDropThresholdPercent: row.PriceDropThresholdPercent,
		CheckIntervalMinutes:      row.CheckIntervalMinutes,
	}
}

// Package service provides the API-facing facade over the repositories,
// adding the input validation the raw storage layer does not do.
package service

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/umputun/pricewatch/pkg/domain"
	"github.com/umputun/pricewatch/pkg/repository"
)

// TrackerService provides unified access to repositories for the REST server
type TrackerService struct {
	itemRepo    *repository.ItemRepository
	historyRepo *repository.HistoryRepository
	profileRepo *repository.ProfileRepository
	settingRepo *repository.SettingRepository
}

// NewTrackerService creates a new tracker service
func NewTrackerService(itemRepo *repository.ItemRepository, historyRepo *repository.HistoryRepository,
	profileRepo *repository.ProfileRepository, settingRepo *repository.SettingRepository) *TrackerService {
	return &TrackerService{
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		profileRepo: profileRepo,
		settingRepo: settingRepo,
	}
}

// Item methods

// CreateItem validates and stores a new tracked item, due for an immediate check
func (s *TrackerService) CreateItem(ctx context.Context, item *domain.Item) error {
	if err := ValidateURL(item.URL); err != nil {
		return err
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	return s.itemRepo.CreateItem(ctx, item)
}

func (s *TrackerService) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	return s.itemRepo.GetItem(ctx, id)
}

func (s *TrackerService) GetItems(ctx context.Context) ([]*domain.Item, error) {
	return s.itemRepo.GetItems(ctx)
}

// UpdateItem validates and applies a manual edit
func (s *TrackerService) UpdateItem(ctx context.Context, item *domain.Item) error {
	if err := ValidateURL(item.URL); err != nil {
		return err
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("item name is required")
	}
	return s.itemRepo.UpdateItem(ctx, item)
}

func (s *TrackerService) DeleteItem(ctx context.Context, id int64) error {
	return s.itemRepo.DeleteItem(ctx, id)
}

// History methods

func (s *TrackerService) GetHistory(ctx context.Context, itemID int64, limit int) ([]*domain.HistoryRecord, error) {
	return s.historyRepo.GetHistory(ctx, itemID, limit)
}

func (s *TrackerService) CountHistory(ctx context.Context, itemID int64) (int64, error) {
	return s.historyRepo.CountHistory(ctx, itemID)
}

// Profile methods

func (s *TrackerService) CreateProfile(ctx context.Context, p *domain.NotificationProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	return s.profileRepo.CreateProfile(ctx, p)
}

func (s *TrackerService) GetProfile(ctx context.Context, id int64) (*domain.NotificationProfile, error) {
	return s.profileRepo.GetProfile(ctx, id)
}

func (s *TrackerService) GetProfiles(ctx context.Context) ([]*domain.NotificationProfile, error) {
	return s.profileRepo.GetProfiles(ctx)
}

func (s *TrackerService) UpdateProfile(ctx context.Context, p *domain.NotificationProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}
	return s.profileRepo.UpdateProfile(ctx, p)
}

func (s *TrackerService) DeleteProfile(ctx context.Context, id int64) error {
	return s.profileRepo.DeleteProfile(ctx, id)
}

// Setting methods

func (s *TrackerService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.settingRepo.GetSetting(ctx, key)
}

func (s *TrackerService) SetSetting(ctx context.Context, key, value string) error {
	return s.settingRepo.SetSetting(ctx, key, value)
}

// GetAllSettings returns all settings with secret values masked
func (s *TrackerService) GetAllSettings(ctx context.Context) (map[string]string, error) {
	settings, err := s.settingRepo.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}
	if key, ok := settings[domain.SettingAIAPIKey]; ok && key != "" {
		masked := "****"
		if len(key) > 8 {
			masked = key[:4] + "****"
		}
		settings[domain.SettingAIAPIKey] = masked
	}
	return settings, nil
}

// ValidateURL checks that a tracked URL is a public http(s) address. Loopback
// and link-local targets are rejected, the browser runs inside the deployment
// and would otherwise reach internal services.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url: scheme must be http or https")
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("invalid url: missing host")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("invalid url: loopback host not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("invalid url: address %s not allowed", ip)
		}
	}
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/pricewatch/pkg/domain"
	"github.com/umputun/pricewatch/pkg/repository"
	"github.com/umputun/pricewatch/pkg/scheduler"
)

// itemPayload is the request body for item create and update
type itemPayload struct {
	URL                   string   `json:"url"`
	Name                  string   `json:"name"`
	Selector              string   `json:"selector,omitempty"`
	CustomPrompt          string   `json:"custom_prompt,omitempty"`
	Tags                  string   `json:"tags,omitempty"`
	Description           string   `json:"description,omitempty"`
	TargetPrice           *float64 `json:"target_price,omitempty"`
	IntervalMinutes       *int     `json:"interval_minutes,omitempty"`
	NotificationProfileID *int64   `json:"notification_profile_id,omitempty"`
	IsActive              *bool    `json:"is_active,omitempty"`

	// manual state corrections, update only
	CurrentPrice *float64 `json:"current_price,omitempty"`
	InStock      *bool    `json:"in_stock,omitempty"`
}

// itemResponse is the JSON representation of a tracked item
type itemResponse struct {
	ID                    int64    `json:"id"`
	URL                   string   `json:"url"`
	Name                  string   `json:"name"`
	Selector              string   `json:"selector,omitempty"`
	CustomPrompt          string   `json:"custom_prompt,omitempty"`
	Tags                  string   `json:"tags,omitempty"`
	Description           string   `json:"description,omitempty"`
	TargetPrice           *float64 `json:"target_price,omitempty"`
	IntervalMinutes       *int     `json:"interval_minutes,omitempty"`
	NotificationProfileID *int64   `json:"notification_profile_id,omitempty"`

	CurrentPrice           *float64 `json:"current_price,omitempty"`
	CurrentPriceConfidence *float64 `json:"current_price_confidence,omitempty"`
	InStock                *bool    `json:"in_stock,omitempty"`
	InStockConfidence      *float64 `json:"in_stock_confidence,omitempty"`

	IsActive    bool       `json:"is_active"`
	LastChecked *time.Time `json:"last_checked,omitempty"`
	NextCheck   *time.Time `json:"next_check,omitempty"`
	LastError   string     `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toItemResponse(item *domain.Item) itemResponse {
	return itemResponse{
		ID: item.ID, URL: item.URL, Name: item.Name,
		Selector: item.Selector, CustomPrompt: item.CustomPrompt,
		Tags: item.Tags, Description: item.Description,
		TargetPrice: item.TargetPrice, IntervalMinutes: item.IntervalMinutes,
		NotificationProfileID:  item.NotificationProfileID,
		CurrentPrice:           item.CurrentPrice,
		CurrentPriceConfidence: item.CurrentPriceConfidence,
		InStock:                item.InStock,
		InStockConfidence:      item.InStockConfidence,
		IsActive:               item.IsActive,
		LastChecked:            item.LastChecked,
		NextCheck:              item.NextCheck,
		LastError:              item.LastError,
		CreatedAt:              item.CreatedAt,
		UpdatedAt:              item.UpdatedAt,
	}
}

// historyResponse is the JSON representation of one observation record
type historyResponse struct {
	ID                int64     `json:"id"`
	ItemID            int64     `json:"item_id"`
	Timestamp         time.Time `json:"timestamp"`
	Price             *float64  `json:"price,omitempty"`
	InStock           *bool     `json:"in_stock,omitempty"`
	PriceConfidence   *float64  `json:"price_confidence,omitempty"`
	InStockConfidence *float64  `json:"in_stock_confidence,omitempty"`
	AIModel           string    `json:"ai_model,omitempty"`
	AIProvider        string    `json:"ai_provider,omitempty"`
	PromptVersion     string    `json:"prompt_version,omitempty"`
	RepairUsed        bool      `json:"repair_used,omitempty"`
	FlaggedForReview  bool      `json:"flagged_for_review,omitempty"`
}

// profilePayload is the request body for profile create and update
type profilePayload struct {
	Name                      string  `json:"name"`
	NotifyURL                 string  `json:"notify_url,omitempty"`
	NotifyOnPriceDrop         bool    `json:"notify_on_price_drop"`
	NotifyOnTargetPrice       bool    `json:"notify_on_target_price"`
	NotifyOnStockChange       bool    `json:"notify_on_stock_change"`
	PriceDropThresholdPercent float64 `json:"price_drop_threshold_percent"`
	CheckIntervalMinutes      int     `json:"check_interval_minutes,omitempty"`
}

// profileResponse is the JSON representation of a notification profile
type profileResponse struct {
	ID int64 `json:"id"`
	profilePayload
}

func toProfileResponse(p *domain.NotificationProfile) profileResponse {
	return profileResponse{
		ID: p.ID,
		profilePayload: profilePayload{
			Name: p.Name, NotifyURL: p.NotifyURL,
			NotifyOnPriceDrop:         p.NotifyOnPriceDrop,
			NotifyOnTargetPrice:       p.NotifyOnTargetPrice,
			NotifyOnStockChange:       p.NotifyOnStockChange,
			PriceDropThresholdPercent: p.PriceDropThresholdPercent,
			CheckIntervalMinutes:      p.CheckIntervalMinutes,
		},
	}
}

// item handlers

func (s *Server) listItemsHandler(w http.ResponseWriter, r *http.Request) {
	items, err := s.tracker.GetItems(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] can't list items: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := make([]itemResponse, len(items))
	for i, item := range items {
		resp[i] = toItemResponse(item)
	}
	renderJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	item := &domain.Item{
		URL: payload.URL, Name: payload.Name,
		Selector: payload.Selector, CustomPrompt: payload.CustomPrompt,
		Tags: payload.Tags, Description: payload.Description,
		TargetPrice: payload.TargetPrice, IntervalMinutes: payload.IntervalMinutes,
		NotificationProfileID: payload.NotificationProfileID,
		IsActive:              true,
	}
	if payload.IsActive != nil {
		item.IsActive = *payload.IsActive
	}

	if err := s.tracker.CreateItem(r.Context(), item); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	created, err := s.tracker.GetItem(r.Context(), item.ID)
	if err != nil {
		lgr.Printf("[ERROR] can't reload created item %d: %v", item.ID, err)
		renderJSON(w, r, http.StatusCreated, toItemResponse(item))
		return
	}
	renderJSON(w, r, http.StatusCreated, toItemResponse(created))
}

func (s *Server) getItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	item, err := s.tracker.GetItem(r.Context(), id)
	if err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}
	renderJSON(w, r, http.StatusOK, toItemResponse(item))
}

func (s *Server) updateItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	item, err := s.tracker.GetItem(r.Context(), id)
	if err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}

	var payload itemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	item.URL = payload.URL
	item.Name = payload.Name
	item.Selector = payload.Selector
	item.CustomPrompt = payload.CustomPrompt
	item.Tags = payload.Tags
	item.Description = payload.Description
	item.TargetPrice = payload.TargetPrice
	item.IntervalMinutes = payload.IntervalMinutes
	item.NotificationProfileID = payload.NotificationProfileID
	if payload.IsActive != nil {
		item.IsActive = *payload.IsActive
	}
	// manual corrections win over any check still in flight
	if payload.CurrentPrice != nil {
		item.CurrentPrice = payload.CurrentPrice
	}
	if payload.InStock != nil {
		item.InStock = payload.InStock
	}

	if err := s.tracker.UpdateItem(r.Context(), item); err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}

	updated, err := s.tracker.GetItem(r.Context(), id)
	if err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}
	renderJSON(w, r, http.StatusOK, toItemResponse(updated))
}

func (s *Server) deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.tracker.DeleteItem(r.Context(), id); err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
			limit = v
		}
	}

	records, err := s.tracker.GetHistory(r.Context(), id, limit)
	if err != nil {
		lgr.Printf("[ERROR] can't get history for item %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	total, err := s.tracker.CountHistory(r.Context(), id)
	if err != nil {
		lgr.Printf("[ERROR] can't count history for item %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := make([]historyResponse, len(records))
	for i, rec := range records {
		resp[i] = historyResponse{
			ID: rec.ID, ItemID: rec.ItemID, Timestamp: rec.Timestamp,
			Price: rec.Price, InStock: rec.InStock,
			PriceConfidence: rec.PriceConfidence, InStockConfidence: rec.InStockConfidence,
			AIModel: rec.AIModel, AIProvider: rec.AIProvider,
			PromptVersion: rec.PromptVersion, RepairUsed: rec.RepairUsed,
			FlaggedForReview: rec.FlaggedForReview,
		}
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"records": resp, "total": total})
}

func (s *Server) screenshotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	path := filepath.Join(s.screenshotDir, fmt.Sprintf("item_%d.png", id))
	if _, err := os.Stat(path); err != nil {
		renderError(w, r, fmt.Errorf("no screenshot for item %d", id), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) checkNowHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.scheduler.CheckNow(r.Context(), id); err != nil {
		if errors.Is(err, scheduler.ErrInFlight) {
			renderError(w, r, err, http.StatusConflict)
			return
		}
		renderError(w, r, err, statusFor(err))
		return
	}
	renderJSON(w, r, http.StatusAccepted, map[string]string{"status": "check started"})
}

// job handlers

func (s *Server) refreshAllHandler(w http.ResponseWriter, r *http.Request) {
	count, err := s.scheduler.RefreshAll(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] refresh-all failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusAccepted, map[string]int64{"marked": count})
}

func (s *Server) getJobsConfigHandler(w http.ResponseWriter, r *http.Request) {
	value, err := s.tracker.GetSetting(r.Context(), domain.SettingRefreshIntervalMinutes)
	if err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	minutes := 60
	if v, convErr := strconv.Atoi(value); convErr == nil && v > 0 {
		minutes = v
	}
	renderJSON(w, r, http.StatusOK, map[string]int{"refresh_interval_minutes": minutes})
}

func (s *Server) setJobsConfigHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshIntervalMinutes int `json:"refresh_interval_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if payload.RefreshIntervalMinutes <= 0 {
		renderError(w, r, fmt.Errorf("refresh_interval_minutes must be positive"), http.StatusBadRequest)
		return
	}

	if err := s.tracker.SetSetting(r.Context(), domain.SettingRefreshIntervalMinutes,
		strconv.Itoa(payload.RefreshIntervalMinutes)); err != nil {
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]int{"refresh_interval_minutes": payload.RefreshIntervalMinutes})
}

// settings handlers

func (s *Server) getSettingsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := s.tracker.GetAllSettings(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] can't get settings: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, settings)
}

func (s *Server) setSettingHandler(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		renderError(w, r, fmt.Errorf("setting key is required"), http.StatusBadRequest)
		return
	}

	var payload struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if err := s.tracker.SetSetting(r.Context(), key, payload.Value); err != nil {
		lgr.Printf("[ERROR] can't set setting %s: %v", key, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]string{"key": key, "value": payload.Value})
}

// profile handlers

func (s *Server) listProfilesHandler(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.tracker.GetProfiles(r.Context())
	if err != nil {
		lgr.Printf("[ERROR] can't list profiles: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	resp := make([]profileResponse, len(profiles))
	for i, p := range profiles {
		resp[i] = toProfileResponse(p)
	}
	renderJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createProfileHandler(w http.ResponseWriter, r *http.Request) {
	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	profile := &domain.NotificationProfile{
		Name: payload.Name, NotifyURL: payload.NotifyURL,
		NotifyOnPriceDrop:         payload.NotifyOnPriceDrop,
		NotifyOnTargetPrice:       payload.NotifyOnTargetPrice,
		NotifyOnStockChange:       payload.NotifyOnStockChange,
		PriceDropThresholdPercent: payload.PriceDropThresholdPercent,
		CheckIntervalMinutes:      payload.CheckIntervalMinutes,
	}
	if err := s.tracker.CreateProfile(r.Context(), profile); err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}
	renderJSON(w, r, http.StatusCreated, toProfileResponse(profile))
}

func (s *Server) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	profile, err := s.tracker.GetProfile(r.Context(), id)
	if err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}
	renderJSON(w, r, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	profile := &domain.NotificationProfile{
		ID: id, Name: payload.Name, NotifyURL: payload.NotifyURL,
		NotifyOnPriceDrop:         payload.NotifyOnPriceDrop,
		NotifyOnTargetPrice:       payload.NotifyOnTargetPrice,
		NotifyOnStockChange:       payload.NotifyOnStockChange,
		PriceDropThresholdPercent: payload.PriceDropThresholdPercent,
		CheckIntervalMinutes:      payload.CheckIntervalMinutes,
	}
	if err := s.tracker.UpdateProfile(r.Context(), profile); err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}
	renderJSON(w, r, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) deleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderError(w, r, err, http.StatusBadRequest)
		return
	}

	if err := s.tracker.DeleteProfile(r.Context(), id); err != nil {
		renderError(w, r, err, statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// helpers

// pathID extracts the numeric {id} path segment
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id")
	}
	return id, nil
}

// statusFor maps storage errors to HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}

package domain

import (
	"strconv"
	"strings"
	"time"
)

// Setting represents a key-value configuration setting
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// setting keys stored in the settings table
const (
	SettingRefreshIntervalMinutes  = "refresh_interval_minutes"
	SettingMinCheckDurationMinutes = "minimum_check_duration_minutes"
	SettingPriceConfidence         = "confidence_threshold_price"
	SettingStockConfidence         = "confidence_threshold_stock"
	SettingOutlierEnabled          = "price_outlier_threshold_enabled"
	SettingOutlierPercent          = "price_outlier_threshold_percent"
	SettingReviewChangePercent     = "review_price_change_percent"
	SettingReviewConfidenceCutoff  = "review_confidence_cutoff"
	SettingSmartScrollEnabled      = "smart_scroll_enabled"
	SettingSmartScrollPixels       = "smart_scroll_pixels"
	SettingTextContextEnabled      = "text_context_enabled"
	SettingTextContextLength       = "text_context_length"
	SettingScraperTimeoutMs        = "scraper_timeout"
	SettingEnableJSONRepair        = "enable_json_repair"
	SettingAIProvider              = "ai_provider"
	SettingAIModel                 = "ai_model"
	SettingAIAPIKey                = "ai_api_key"
	SettingAIBaseURL               = "ai_api_base"
	SettingAITemperature           = "ai_temperature"
	SettingAIMaxTokens             = "ai_max_tokens"
	SettingAIReasoningEffort       = "ai_reasoning_effort"
)

// Settings is an immutable per-run snapshot of the global settings table.
// The scheduler loads one snapshot per tick and passes it into each pipeline
// run, so a concurrent settings write cannot produce a torn read mid-check.
type Settings struct {
	RefreshInterval  time.Duration
	MinCheckDuration time.Duration

	PriceConfidenceThreshold float64
	StockConfidenceThreshold float64
	OutlierEnabled           bool
	OutlierThresholdPercent  float64
	ReviewChangePercent      float64
	ReviewConfidenceCutoff   float64

	SmartScrollEnabled bool
	SmartScrollPixels  int
	TextContextEnabled bool
	TextContextLength  int
	ScraperTimeout     time.Duration
	EnableJSONRepair   bool

	AIProvider        string
	AIModel           string
	AIAPIKey          string
	AIBaseURL         string
	AITemperature     float64
	AIMaxTokens       int
	AIReasoningEffort string
}

// SettingsFromMap builds a settings snapshot from raw key-value pairs,
// falling back to defaults for missing or malformed values
func SettingsFromMap(m map[string]string) Settings {
	return Settings{
		RefreshInterval:  time.Duration(parseInt(m[SettingRefreshIntervalMinutes], 60)) * time.Minute,
		MinCheckDuration: time.Duration(parseInt(m[SettingMinCheckDurationMinutes], 5)) * time.Minute,

		PriceConfidenceThreshold: parseFloat(m[SettingPriceConfidence], 0.5),
		StockConfidenceThreshold: parseFloat(m[SettingStockConfidence], 0.5),
		OutlierEnabled:           parseBool(m[SettingOutlierEnabled], false),
		OutlierThresholdPercent:  parseFloat(m[SettingOutlierPercent], 500),
		ReviewChangePercent:      parseFloat(m[SettingReviewChangePercent], 20),
		ReviewConfidenceCutoff:   parseFloat(m[SettingReviewConfidenceCutoff], 0.7),

		SmartScrollEnabled: parseBool(m[SettingSmartScrollEnabled], false),
		SmartScrollPixels:  parseInt(m[SettingSmartScrollPixels], 350),
		TextContextEnabled: parseBool(m[SettingTextContextEnabled], false),
		TextContextLength:  parseInt(m[SettingTextContextLength], 5000),
		ScraperTimeout:     time.Duration(parseInt(m[SettingScraperTimeoutMs], 90000)) * time.Millisecond,
		EnableJSONRepair:   parseBool(m[SettingEnableJSONRepair], true),

		AIProvider:        orDefault(m[SettingAIProvider], "ollama"),
		AIModel:           orDefault(m[SettingAIModel], "gemma3:4b"),
		AIAPIKey:          m[SettingAIAPIKey],
		AIBaseURL:         orDefault(m[SettingAIBaseURL], "http://ollama:11434/v1"),
		AITemperature:     parseFloat(m[SettingAITemperature], 0.1),
		AIMaxTokens:       parseInt(m[SettingAIMaxTokens], 1000),
		AIReasoningEffort: orDefault(m[SettingAIReasoningEffort], "low"),
	}
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

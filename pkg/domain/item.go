package domain

import "time"

// Item represents a tracked product page
type Item struct {
	ID              int64
	URL             string
	Name            string
	Selector        string // optional CSS selector to focus the capture on
	CustomPrompt    string // optional per-item extraction prompt
	Tags            string // comma separated
	Description     string
	TargetPrice     *float64
	IntervalMinutes *int // per-item check interval override

	NotificationProfileID *int64

	CurrentPrice           *float64
	CurrentPriceConfidence *float64
	InStock                *bool // nil means unknown
	InStockConfidence      *float64

	IsActive    bool
	LastChecked *time.Time
	NextCheck   *time.Time
	LastError   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectiveInterval resolves the check interval for the item: per-item
// override first, then the notification profile, then the global default.
func (i *Item) EffectiveInterval(profile *NotificationProfile, defaultMinutes int) time.Duration {
	minutes := defaultMinutes
	if profile != nil && profile.CheckIntervalMinutes > 0 {
		minutes = profile.CheckIntervalMinutes
	}
	if i.IntervalMinutes != nil && *i.IntervalMinutes > 0 {
		minutes = *i.IntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// NotificationProfile is a named bundle of notification rules shared by items
type NotificationProfile struct {
	ID                        int64
	Name                      string
	NotifyURL                 string // opaque delivery-target handle, delivery is external
	NotifyOnPriceDrop         bool
	NotifyOnTargetPrice       bool
	NotifyOnStockChange       bool
	PriceDropThresholdPercent float64
	CheckIntervalMinutes      int
}

// HistoryRecord is an immutable observation record, appended on every
// pipeline completion whether or not the observation was applied
type HistoryRecord struct {
	ID                int64
	ItemID            int64
	Timestamp         time.Time
	Price             *float64
	InStock           *bool
	PriceConfidence   *float64
	InStockConfidence *float64
	ScreenshotPath    string
	AIModel           string
	AIProvider        string
	PromptVersion     string
	RepairUsed        bool
	FlaggedForReview  bool
}

// Observation is a validated extraction result. A nil field means the model
// either did not report it or the reported value failed validation.
type Observation struct {
	Price             *float64
	InStock           *bool
	PriceConfidence   *float64
	InStockConfidence *float64
}

// ExtractionMeta describes how an observation was produced
type ExtractionMeta struct {
	Model         string
	Provider      string
	PromptVersion string
	RepairUsed    bool
}

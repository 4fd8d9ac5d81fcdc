// Package policy decides whether an extracted observation is trustworthy
// enough to mutate an item's current state. Extraction always records
// history, policy only gates the live price and stock fields.
package policy

import (
	"math"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/pricewatch/pkg/domain"
)

// Decision is the outcome of evaluating one observation against an item
type Decision struct {
	ApplyPrice       bool
	ApplyStock       bool
	FlaggedForReview bool
	PriceRejection   string // empty when price is applied or absent
	StockRejection   string
}

// Decide evaluates an observation against the item's current state and the
// active settings. Price and stock are gated independently, rejecting one
// never blocks the other.
func Decide(item *domain.Item, obs *domain.Observation, s domain.Settings) Decision {
	var d Decision

	switch {
	case obs.Price == nil:
		d.PriceRejection = "no price extracted"
	case confidence(obs.PriceConfidence) < s.PriceConfidenceThreshold:
		d.PriceRejection = "price confidence below threshold"
		lgr.Printf("[DEBUG] item %d: price %.2f rejected, confidence %.2f < %.2f",
			item.ID, *obs.Price, confidence(obs.PriceConfidence), s.PriceConfidenceThreshold)
	case isOutlier(item.CurrentPrice, *obs.Price, s):
		d.PriceRejection = "price change exceeds outlier threshold"
		lgr.Printf("[WARN] item %d: price %.2f rejected as outlier, current %.2f, limit %.0f%%",
			item.ID, *obs.Price, *item.CurrentPrice, s.OutlierThresholdPercent)
	default:
		d.ApplyPrice = true
	}

	switch {
	case obs.InStock == nil:
		d.StockRejection = "no stock state extracted"
	case confidence(obs.InStockConfidence) < s.StockConfidenceThreshold:
		d.StockRejection = "stock confidence below threshold"
		lgr.Printf("[DEBUG] item %d: stock %v rejected, confidence %.2f < %.2f",
			item.ID, *obs.InStock, confidence(obs.InStockConfidence), s.StockConfidenceThreshold)
	default:
		d.ApplyStock = true
	}

	// the review flag marks applied-but-suspicious prices, a rejected price
	// never moved state so there is nothing to surface
	if d.ApplyPrice {
		d.FlaggedForReview = needsReview(item, obs, s)
	}
	return d
}

// confidence treats a missing confidence as zero, an unscored value never
// passes a positive threshold
func confidence(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// isOutlier reports whether a new price moved too far from the current one.
// The first observation has no baseline and always passes.
func isOutlier(current *float64, next float64, s domain.Settings) bool {
	if !s.OutlierEnabled || current == nil || *current == 0 {
		return false
	}
	changePct := math.Abs(next-*current) / *current * 100
	return changePct > s.OutlierThresholdPercent
}

// needsReview flags observations that pass the gates but still look
// suspicious: a large price move reported with low confidence
func needsReview(item *domain.Item, obs *domain.Observation, s domain.Settings) bool {
	if obs.Price == nil || item.CurrentPrice == nil || *item.CurrentPrice == 0 {
		return false
	}
	changePct := math.Abs(*obs.Price-*item.CurrentPrice) / *item.CurrentPrice * 100
	return changePct > s.ReviewChangePercent && confidence(obs.PriceConfidence) < s.ReviewConfidenceCutoff
}

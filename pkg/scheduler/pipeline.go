package scheduler

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/pricewatch/pkg/capture"
	"github.com/umputun/pricewatch/pkg/domain"
	"github.com/umputun/pricewatch/pkg/notify"
	"github.com/umputun/pricewatch/pkg/policy"
	"github.com/umputun/pricewatch/pkg/repository"
	"github.com/umputun/pricewatch/pkg/vision"
)

// checkItem runs the full pipeline for one claimed item. The in-flight claim
// is always released through FinishCheck, whatever stage failed. A capture or
// extraction failure records no history, the item just carries last_error
// until the next attempt. A rejected observation is the opposite: history is
// written and state does not move, any prior last_error stays untouched.
func (s *Scheduler) checkItem(ctx context.Context, item *domain.Item, settings domain.Settings) {
	lgr.Printf("[DEBUG] checking item %d (%s)", item.ID, item.URL)
	startedAt := time.Now()

	profile := s.loadProfile(ctx, item)
	applied, checkErr := s.runPipeline(ctx, item, profile, settings)

	// last_error stays visible until a check both succeeds and applies
	errMsg := item.LastError
	switch {
	case checkErr != nil:
		errMsg = checkErr.Error()
		lgr.Printf("[WARN] check failed for item %d (%s): %v", item.ID, item.URL, checkErr)
	case applied:
		errMsg = ""
	}

	interval := item.EffectiveInterval(profile, int(settings.RefreshInterval/time.Minute))
	if interval < settings.MinCheckDuration {
		interval = settings.MinCheckDuration
	}
	nextCheck := time.Now().Add(interval)

	if err := s.items.FinishCheck(ctx, item.ID, errMsg, startedAt, nextCheck); err != nil {
		lgr.Printf("[ERROR] can't finish check for item %d: %v", item.ID, err)
	}
}

// runPipeline executes capture, extraction, policy, history, state update and
// notifications. Returns an error only for hard failures before an
// observation exists, everything after that point is recorded, not failed.
// The bool reports whether any state field was applied.
func (s *Scheduler) runPipeline(ctx context.Context, item *domain.Item, profile *domain.NotificationProfile, settings domain.Settings) (bool, error) {
	textLen := 0 // no point extracting body text the prompt will not use
	if settings.TextContextEnabled {
		textLen = settings.TextContextLength
	}

	snap, err := s.capturer.Capture(ctx, capture.Request{
		URL:          item.URL,
		Selector:     item.Selector,
		ItemID:       item.ID,
		Timeout:      settings.ScraperTimeout,
		SmartScroll:  settings.SmartScrollEnabled,
		ScrollPixels: settings.SmartScrollPixels,
		TextLength:   textLen,
	})
	if err != nil {
		return false, err
	}

	text := ""
	if settings.TextContextEnabled {
		text = vision.CleanText(snap.Text, settings.TextContextLength)
	}

	extractor := s.newExtractor(vision.Params{
		Provider:        settings.AIProvider,
		Model:           settings.AIModel,
		APIKey:          settings.AIAPIKey,
		BaseURL:         settings.AIBaseURL,
		Temperature:     settings.AITemperature,
		MaxTokens:       settings.AIMaxTokens,
		ReasoningEffort: settings.AIReasoningEffort,
		EnableRepair:    settings.EnableJSONRepair,
	})

	obs, meta, err := extractor.Extract(ctx, vision.Request{
		Screenshot:   snap.Screenshot,
		Text:         text,
		CustomPrompt: item.CustomPrompt,
	})
	if err != nil {
		return false, err
	}

	decision := policy.Decide(item, obs, settings)

	// history records every observation, applied or not
	rec := &domain.HistoryRecord{
		ItemID:            item.ID,
		Timestamp:         time.Now(),
		Price:             obs.Price,
		InStock:           obs.InStock,
		PriceConfidence:   obs.PriceConfidence,
		InStockConfidence: obs.InStockConfidence,
		ScreenshotPath:    snap.ScreenshotPath,
		AIModel:           meta.Model,
		AIProvider:        meta.Provider,
		PromptVersion:     meta.PromptVersion,
		RepairUsed:        meta.RepairUsed,
		FlaggedForReview:  decision.FlaggedForReview,
	}
	if err := s.history.Append(ctx, rec); err != nil {
		lgr.Printf("[ERROR] can't append history for item %d: %v", item.ID, err)
	}

	upd := repository.StateUpdate{}
	if decision.ApplyPrice {
		upd.ApplyPrice = true
		upd.Price = *obs.Price
		upd.PriceConfidence = confOrZero(obs.PriceConfidence)
	}
	if decision.ApplyStock {
		upd.ApplyStock = true
		upd.InStock = *obs.InStock
		upd.InStockConfidence = confOrZero(obs.InStockConfidence)
	}

	if !upd.ApplyPrice && !upd.ApplyStock {
		return false, nil // policy rejected everything, history has the record
	}

	applied, err := s.items.ApplyObservation(ctx, item.ID, upd, item.UpdatedAt)
	if err != nil {
		lgr.Printf("[ERROR] can't apply observation for item %d: %v", item.ID, err)
		return false, nil
	}
	if !applied {
		lgr.Printf("[INFO] item %d edited during check, observation discarded", item.ID)
		return false, nil
	}

	s.notifyChanges(ctx, item, profile, decision, obs)
	return true, nil
}

// notifyChanges evaluates notification rules against the transition from the
// pre-check state to the applied observation
func (s *Scheduler) notifyChanges(ctx context.Context, item *domain.Item, profile *domain.NotificationProfile,
	decision policy.Decision, obs *domain.Observation) {

	if profile == nil {
		return
	}

	ch := notify.Change{OldPrice: item.CurrentPrice, OldStock: item.InStock}
	if decision.ApplyPrice {
		ch.NewPrice = obs.Price
	}
	if decision.ApplyStock {
		ch.NewStock = obs.InStock
	}

	for _, ev := range notify.Evaluate(item, profile, ch) {
		if err := s.dispatcher.Dispatch(ctx, ev); err != nil {
			lgr.Printf("[WARN] can't dispatch %s for item %d: %v", ev.Type, item.ID, err)
		}
	}
}

// loadProfile resolves the item's notification profile, nil when unset or
// missing. A dangling reference only disables notifications for the item.
func (s *Scheduler) loadProfile(ctx context.Context, item *domain.Item) *domain.NotificationProfile {
	if item.NotificationProfileID == nil {
		return nil
	}
	profile, err := s.profiles.GetProfile(ctx, *item.NotificationProfileID)
	if err != nil {
		lgr.Printf("[WARN] can't load profile %d for item %d: %v", *item.NotificationProfileID, item.ID, err)
		return nil
	}
	return profile
}

func confOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

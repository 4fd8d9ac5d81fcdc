// Package scheduler drives the periodic check cycle: it finds due items,
// claims them against concurrent triggers, and runs each through the capture,
// extraction, policy, history, and notification pipeline with bounded
// concurrency.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/pricewatch/pkg/capture"
	"github.com/umputun/pricewatch/pkg/domain"
	"github.com/umputun/pricewatch/pkg/notify"
	"github.com/umputun/pricewatch/pkg/repository"
	"github.com/umputun/pricewatch/pkg/vision"
)

//go:generate moq -out mocks/item_store.go -pkg mocks -skip-ensure -fmt goimports . ItemStore
//go:generate moq -out mocks/history_store.go -pkg mocks -skip-ensure -fmt goimports . HistoryStore
//go:generate moq -out mocks/profile_store.go -pkg mocks -skip-ensure -fmt goimports . ProfileStore
//go:generate moq -out mocks/setting_store.go -pkg mocks -skip-ensure -fmt goimports . SettingStore
//go:generate moq -out mocks/capturer.go -pkg mocks -skip-ensure -fmt goimports . Capturer
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor

// ErrInFlight is returned by CheckNow when the item is already being checked
var ErrInFlight = errors.New("check already in flight")

// ItemStore provides item state operations for the scheduler
type ItemStore interface {
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	GetDueItems(ctx context.Context, now time.Time) ([]*domain.Item, error)
	TryMarkInFlight(ctx context.Context, id int64) (bool, error)
	ClearInFlight(ctx context.Context, id int64) error
	FinishCheck(ctx context.Context, id int64, lastError string, checkedAt, nextCheck time.Time) error
	ApplyObservation(ctx context.Context, id int64, upd repository.StateUpdate, seenUpdatedAt time.Time) (bool, error)
	MarkAllDue(ctx context.Context) (int64, error)
}

// HistoryStore appends observation records
type HistoryStore interface {
	Append(ctx context.Context, rec *domain.HistoryRecord) error
}

// ProfileStore resolves notification profiles
type ProfileStore interface {
	GetProfile(ctx context.Context, id int64) (*domain.NotificationProfile, error)
}

// SettingStore loads the settings snapshot for a cycle
type SettingStore interface {
	LoadSnapshot(ctx context.Context) (domain.Settings, error)
}

// Capturer renders pages through the browser pool
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Snapshot, error)
}

// Extractor runs a vision model call over a snapshot
type Extractor interface {
	Extract(ctx context.Context, req vision.Request) (*domain.Observation, *domain.ExtractionMeta, error)
}

// ExtractorFactory builds an extractor for the model parameters active in the
// current cycle, model settings can change between cycles without a restart
type ExtractorFactory func(params vision.Params) Extractor

// Config holds scheduler configuration
type Config struct {
	TickInterval time.Duration
	MaxWorkers   int
}

// Scheduler runs the periodic check loop
type Scheduler struct {
	items        ItemStore
	history      HistoryStore
	profiles     ProfileStore
	settings     SettingStore
	capturer     Capturer
	newExtractor ExtractorFactory
	dispatcher   notify.Dispatcher

	tickInterval time.Duration
	maxWorkers   int

	kick    chan struct{}
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	baseCtx context.Context
}

// NewScheduler creates a scheduler over the given stores and pipeline stages
func NewScheduler(items ItemStore, history HistoryStore, profiles ProfileStore, settings SettingStore,
	capturer Capturer, newExtractor ExtractorFactory, dispatcher notify.Dispatcher, cfg Config) *Scheduler {

	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Minute
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = 5
	}
	if newExtractor == nil {
		newExtractor = func(params vision.Params) Extractor { return vision.NewClient(params) }
	}
	if dispatcher == nil {
		dispatcher = notify.LogDispatcher{}
	}

	return &Scheduler{
		items:        items,
		history:      history,
		profiles:     profiles,
		settings:     settings,
		capturer:     capturer,
		newExtractor: newExtractor,
		dispatcher:   dispatcher,
		tickInterval: cfg.TickInterval,
		maxWorkers:   cfg.MaxWorkers,
		kick:         make(chan struct{}, 1),
	}
}

// Start begins the check loop
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.baseCtx = ctx

	s.wg.Add(1)
	go s.run(ctx)

	lgr.Printf("[INFO] scheduler started, tick %v, max workers %d", s.tickInterval, s.maxWorkers)
}

// Stop gracefully stops the scheduler and waits for in-flight checks
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	// run immediately on start
	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.kick:
			s.runCycle(ctx)
		}
	}
}

// runCycle processes all currently due items with bounded concurrency. Each
// cycle works off a single settings snapshot, a settings change mid-cycle
// applies from the next one.
func (s *Scheduler) runCycle(ctx context.Context) {
	settings, err := s.settings.LoadSnapshot(ctx)
	if err != nil {
		lgr.Printf("[ERROR] can't load settings: %v", err)
		return
	}

	due, err := s.items.GetDueItems(ctx, time.Now())
	if err != nil {
		lgr.Printf("[ERROR] can't get due items: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	lgr.Printf("[INFO] checking %d due items", len(due))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)

	for _, item := range due {
		g.Go(func() error {
			claimed, err := s.items.TryMarkInFlight(gctx, item.ID)
			if err != nil {
				lgr.Printf("[ERROR] can't claim item %d: %v", item.ID, err)
				return nil
			}
			if !claimed {
				lgr.Printf("[DEBUG] item %d already in flight, skipped", item.ID)
				return nil
			}
			s.checkItem(gctx, item, settings)
			return nil // item failures never cancel the group
		})
	}

	_ = g.Wait()
	lgr.Printf("[INFO] check cycle completed")
}

// CheckNow triggers an immediate check of a single item, bypassing its
// schedule. Returns ErrInFlight when a check is already running, the caller
// treats that as a no-op.
func (s *Scheduler) CheckNow(ctx context.Context, itemID int64) error {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}

	claimed, err := s.items.TryMarkInFlight(ctx, itemID)
	if err != nil {
		return fmt.Errorf("claim item: %w", err)
	}
	if !claimed {
		return ErrInFlight
	}

	settings, err := s.settings.LoadSnapshot(ctx)
	if err != nil {
		// claim must not leak when the check can't start, and no check ran so
		// last_checked and next_check stay untouched
		if cerr := s.items.ClearInFlight(ctx, itemID); cerr != nil {
			lgr.Printf("[ERROR] can't release claim on item %d: %v", itemID, cerr)
		}
		return fmt.Errorf("load settings: %w", err)
	}

	runCtx := s.baseCtx
	if runCtx == nil {
		runCtx = ctx
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.checkItem(runCtx, item, settings)
	}()
	return nil
}

// RefreshAll makes every active item due and wakes the loop. Items already in
// flight are left to finish, the claim check keeps them from double-running.
func (s *Scheduler) RefreshAll(ctx context.Context) (int64, error) {
	count, err := s.items.MarkAllDue(ctx)
	if err != nil {
		return 0, fmt.Errorf("mark items due: %w", err)
	}

	select {
	case s.kick <- struct{}{}:
	default:
	}

	lgr.Printf("[INFO] refresh-all requested, %d items marked due", count)
	return count, nil
}

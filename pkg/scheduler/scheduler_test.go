package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pricewatch/pkg/capture"
	"github.com/umputun/pricewatch/pkg/domain"
	"github.com/umputun/pricewatch/pkg/notify"
	"github.com/umputun/pricewatch/pkg/repository"
	"github.com/umputun/pricewatch/pkg/scheduler/mocks"
	"github.com/umputun/pricewatch/pkg/vision"
)

// dispatcherRecorder collects dispatched events for assertions
type dispatcherRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *dispatcherRecorder) Dispatch(_ context.Context, ev notify.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *dispatcherRecorder) all() []notify.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Event{}, d.events...)
}

type testEnv struct {
	items      *mocks.ItemStoreMock
	history    *mocks.HistoryStoreMock
	profiles   *mocks.ProfileStoreMock
	settings   *mocks.SettingStoreMock
	capturer   *mocks.CapturerMock
	extractor  *mocks.ExtractorMock
	dispatcher *dispatcherRecorder
	sched      *Scheduler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		items:      &mocks.ItemStoreMock{},
		history:    &mocks.HistoryStoreMock{},
		profiles:   &mocks.ProfileStoreMock{},
		settings:   &mocks.SettingStoreMock{},
		capturer:   &mocks.CapturerMock{},
		extractor:  &mocks.ExtractorMock{},
		dispatcher: &dispatcherRecorder{},
	}

	// permissive defaults, individual tests override what they assert on
	env.settings.LoadSnapshotFunc = func(ctx context.Context) (domain.Settings, error) {
		return domain.SettingsFromMap(nil), nil
	}
	env.items.FinishCheckFunc = func(ctx context.Context, id int64, lastError string, checkedAt, nextCheck time.Time) error {
		return nil
	}
	env.items.ApplyObservationFunc = func(ctx context.Context, id int64, upd repository.StateUpdate, seenUpdatedAt time.Time) (bool, error) {
		return true, nil
	}
	env.history.AppendFunc = func(ctx context.Context, rec *domain.HistoryRecord) error { return nil }
	env.capturer.CaptureFunc = func(ctx context.Context, req capture.Request) (*capture.Snapshot, error) {
		return &capture.Snapshot{Screenshot: []byte("png"), ScreenshotPath: "screenshots/item_1.png", Text: "page text"}, nil
	}
	env.extractor.ExtractFunc = func(ctx context.Context, req vision.Request) (*domain.Observation, *domain.ExtractionMeta, error) {
		return &domain.Observation{Price: fp(99.99), InStock: bp(true), PriceConfidence: fp(0.9), InStockConfidence: fp(0.9)},
			&domain.ExtractionMeta{Model: "gemma3:4b", Provider: "ollama", PromptVersion: vision.PromptVersion}, nil
	}

	factory := func(params vision.Params) Extractor { return env.extractor }
	env.sched = NewScheduler(env.items, env.history, env.profiles, env.settings,
		env.capturer, factory, env.dispatcher, Config{TickInterval: time.Hour, MaxWorkers: 3})
	return env
}

func testItem() *domain.Item {
	return &domain.Item{
		ID: 1, URL: "https://shop.example.com/widget", Name: "widget",
		IsActive: true, UpdatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestScheduler_RunCycle(t *testing.T) {
	env := newTestEnv()
	env.items.GetDueItemsFunc = func(ctx context.Context, now time.Time) ([]*domain.Item, error) {
		return []*domain.Item{testItem()}, nil
	}
	env.items.TryMarkInFlightFunc = func(ctx context.Context, id int64) (bool, error) { return true, nil }

	env.sched.runCycle(context.Background())

	require.Len(t, env.capturer.CaptureCalls(), 1)
	assert.Equal(t, "https://shop.example.com/widget", env.capturer.CaptureCalls()[0].Req.URL)
	require.Len(t, env.history.AppendCalls(), 1)

	applies := env.items.ApplyObservationCalls()
	require.Len(t, applies, 1)
	assert.True(t, applies[0].Upd.ApplyPrice)
	assert.InDelta(t, 99.99, applies[0].Upd.Price, 0.001)
	assert.True(t, applies[0].Upd.ApplyStock)
	assert.Equal(t, testItem().UpdatedAt, applies[0].SeenUpdatedAt)

	finishes := env.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.Empty(t, finishes[0].LastError)
}

func TestScheduler_RunCycle_SkipsUnclaimedItems(t *testing.T) {
	env := newTestEnv()
	env.items.GetDueItemsFunc = func(ctx context.Context, now time.Time) ([]*domain.Item, error) {
		i1, i2 := testItem(), testItem()
		i2.ID = 2
		return []*domain.Item{i1, i2}, nil
	}
	env.items.TryMarkInFlightFunc = func(ctx context.Context, id int64) (bool, error) {
		return id == 2, nil // item 1 already claimed elsewhere
	}

	env.sched.runCycle(context.Background())

	require.Len(t, env.capturer.CaptureCalls(), 1)
	require.Len(t, env.items.FinishCheckCalls(), 1)
	assert.Equal(t, int64(2), env.items.FinishCheckCalls()[0].ID)
}

func TestScheduler_CheckItem_CaptureFailure(t *testing.T) {
	env := newTestEnv()
	env.capturer.CaptureFunc = func(ctx context.Context, req capture.Request) (*capture.Snapshot, error) {
		return nil, &capture.Error{URL: req.URL, Err: errors.New("navigation timeout")}
	}

	env.sched.checkItem(context.Background(), testItem(), domain.SettingsFromMap(nil))

	// hard failure before an observation: no history, no state change, but the
	// item is rescheduled with the error recorded
	assert.Empty(t, env.history.AppendCalls())
	assert.Empty(t, env.items.ApplyObservationCalls())

	finishes := env.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.Contains(t, finishes[0].LastError, "navigation timeout")
	assert.True(t, finishes[0].NextCheck.After(time.Now()))
}

func TestScheduler_CheckItem_ExtractionFailure(t *testing.T) {
	env := newTestEnv()
	env.extractor.ExtractFunc = func(ctx context.Context, req vision.Request) (*domain.Observation, *domain.ExtractionMeta, error) {
		return nil, nil, &vision.ExtractionError{Provider: "ollama", Model: "gemma3:4b", Err: errors.New("connection refused")}
	}

	env.sched.checkItem(context.Background(), testItem(), domain.SettingsFromMap(nil))

	assert.Empty(t, env.history.AppendCalls())
	finishes := env.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.Contains(t, finishes[0].LastError, "connection refused")
}

func TestScheduler_CheckItem_RejectedObservationStillRecorded(t *testing.T) {
	env := newTestEnv()
	env.extractor.ExtractFunc = func(ctx context.Context, req vision.Request) (*domain.Observation, *domain.ExtractionMeta, error) {
		// confidence below the 0.5 default thresholds
		return &domain.Observation{Price: fp(10), InStock: bp(true), PriceConfidence: fp(0.2), InStockConfidence: fp(0.1)},
			&domain.ExtractionMeta{Model: "gemma3:4b", Provider: "ollama", PromptVersion: vision.PromptVersion}, nil
	}

	env.sched.checkItem(context.Background(), testItem(), domain.SettingsFromMap(nil))

	// rejection is not an error, history still gets the observation
	require.Len(t, env.history.AppendCalls(), 1)
	rec := env.history.AppendCalls()[0].Rec
	assert.InDelta(t, 10.0, *rec.Price, 0.001)

	// a fully rejected observation never reaches the state update
	assert.Empty(t, env.items.ApplyObservationCalls())

	finishes := env.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.Empty(t, finishes[0].LastError)
}

func TestScheduler_CheckItem_RejectedObservationKeepsLastError(t *testing.T) {
	env := newTestEnv()
	env.extractor.ExtractFunc = func(ctx context.Context, req vision.Request) (*domain.Observation, *domain.ExtractionMeta, error) {
		// confidence below the 0.5 default thresholds
		return &domain.Observation{Price: fp(10), InStock: bp(true), PriceConfidence: fp(0.2), InStockConfidence: fp(0.1)},
			&domain.ExtractionMeta{Model: "gemma3:4b", Provider: "ollama", PromptVersion: vision.PromptVersion}, nil
	}

	item := testItem()
	item.LastError = "navigation timeout" // from an earlier failed cycle

	env.sched.checkItem(context.Background(), item, domain.SettingsFromMap(nil))

	// nothing applied, the earlier error stays visible until a check both
	// succeeds and passes policy
	finishes := env.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.Equal(t, "navigation timeout", finishes[0].LastError)

	// an applied observation clears it
	env2 := newTestEnv()
	item2 := testItem()
	item2.LastError = "navigation timeout"
	env2.sched.checkItem(context.Background(), item2, domain.SettingsFromMap(nil))
	finishes = env2.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.Empty(t, finishes[0].LastError)
}

func TestScheduler_CheckItem_TextCaptureSkippedWhenDisabled(t *testing.T) {
	env := newTestEnv()

	// text context is off by default, the browser should not extract body text
	env.sched.checkItem(context.Background(), testItem(), domain.SettingsFromMap(nil))
	require.Len(t, env.capturer.CaptureCalls(), 1)
	assert.Zero(t, env.capturer.CaptureCalls()[0].Req.TextLength)

	env2 := newTestEnv()
	settings := domain.SettingsFromMap(map[string]string{"text_context_enabled": "true"})
	env2.sched.checkItem(context.Background(), testItem(), settings)
	require.Len(t, env2.capturer.CaptureCalls(), 1)
	assert.Equal(t, 5000, env2.capturer.CaptureCalls()[0].Req.TextLength)
}

func TestScheduler_CheckItem_StaleUpdateDiscarded(t *testing.T) {
	env := newTestEnv()
	env.items.ApplyObservationFunc = func(ctx context.Context, id int64, upd repository.StateUpdate, seenUpdatedAt time.Time) (bool, error) {
		return false, nil // item edited mid-flight
	}

	item := testItem()
	item.NotificationProfileID = i64p(7)
	env.profiles.GetProfileFunc = func(ctx context.Context, id int64) (*domain.NotificationProfile, error) {
		return &domain.NotificationProfile{ID: 7, NotifyOnStockChange: true}, nil
	}

	env.sched.checkItem(context.Background(), item, domain.SettingsFromMap(nil))

	// discarded result fires no notifications but history is already written
	require.Len(t, env.history.AppendCalls(), 1)
	assert.Empty(t, env.dispatcher.all())
	require.Len(t, env.items.FinishCheckCalls(), 1)
}

func TestScheduler_CheckItem_Notifications(t *testing.T) {
	env := newTestEnv()

	item := testItem()
	item.CurrentPrice = fp(150)
	item.InStock = bp(false)
	item.NotificationProfileID = i64p(7)
	env.profiles.GetProfileFunc = func(ctx context.Context, id int64) (*domain.NotificationProfile, error) {
		return &domain.NotificationProfile{
			ID: 7, NotifyURL: "slack://deals",
			NotifyOnPriceDrop: true, PriceDropThresholdPercent: 10,
			NotifyOnStockChange: true,
		}, nil
	}

	env.sched.checkItem(context.Background(), item, domain.SettingsFromMap(nil))

	events := env.dispatcher.all()
	require.Len(t, events, 2)
	types := map[notify.EventType]bool{}
	for _, ev := range events {
		types[ev.Type] = true
		assert.Equal(t, "slack://deals", ev.NotifyURL)
	}
	assert.True(t, types[notify.EventPriceDrop])
	assert.True(t, types[notify.EventBackInStock])
}

func TestScheduler_CheckItem_IntervalClamped(t *testing.T) {
	env := newTestEnv()

	item := testItem()
	item.IntervalMinutes = ip(1) // below the 5 minute floor

	started := time.Now()
	env.sched.checkItem(context.Background(), item, domain.SettingsFromMap(nil))

	finishes := env.items.FinishCheckCalls()
	require.Len(t, finishes, 1)
	assert.True(t, finishes[0].NextCheck.Sub(started) >= 5*time.Minute,
		"next check must honor the minimum duration floor")
}

func TestScheduler_CheckNow(t *testing.T) {
	env := newTestEnv()
	env.items.GetItemFunc = func(ctx context.Context, id int64) (*domain.Item, error) { return testItem(), nil }

	done := make(chan struct{})
	env.items.FinishCheckFunc = func(ctx context.Context, id int64, lastError string, checkedAt, nextCheck time.Time) error {
		close(done)
		return nil
	}
	env.items.TryMarkInFlightFunc = func(ctx context.Context, id int64) (bool, error) { return true, nil }

	require.NoError(t, env.sched.CheckNow(context.Background(), 1))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("check did not complete")
	}
	require.Len(t, env.capturer.CaptureCalls(), 1)
}

func TestScheduler_CheckNow_AlreadyInFlight(t *testing.T) {
	env := newTestEnv()
	env.items.GetItemFunc = func(ctx context.Context, id int64) (*domain.Item, error) { return testItem(), nil }
	env.items.TryMarkInFlightFunc = func(ctx context.Context, id int64) (bool, error) { return false, nil }

	err := env.sched.CheckNow(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Empty(t, env.capturer.CaptureCalls(), "in-flight trigger is a no-op")
}

func TestScheduler_CheckNow_SettingsFailureReleasesClaim(t *testing.T) {
	env := newTestEnv()
	env.items.GetItemFunc = func(ctx context.Context, id int64) (*domain.Item, error) { return testItem(), nil }
	env.items.TryMarkInFlightFunc = func(ctx context.Context, id int64) (bool, error) { return true, nil }
	env.items.ClearInFlightFunc = func(ctx context.Context, id int64) error { return nil }
	env.settings.LoadSnapshotFunc = func(ctx context.Context) (domain.Settings, error) {
		return domain.Settings{}, errors.New("settings table unreadable")
	}

	err := env.sched.CheckNow(context.Background(), 1)
	require.Error(t, err)

	// the claim is released without recording a check, last_checked and
	// next_check must not move when nothing ran
	require.Len(t, env.items.ClearInFlightCalls(), 1)
	assert.Equal(t, int64(1), env.items.ClearInFlightCalls()[0].ID)
	assert.Empty(t, env.items.FinishCheckCalls())
	assert.Empty(t, env.capturer.CaptureCalls())
}

func TestScheduler_CheckNow_UnknownItem(t *testing.T) {
	env := newTestEnv()
	env.items.GetItemFunc = func(ctx context.Context, id int64) (*domain.Item, error) {
		return nil, repository.ErrNotFound
	}

	err := env.sched.CheckNow(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduler_RefreshAll(t *testing.T) {
	env := newTestEnv()
	env.items.MarkAllDueFunc = func(ctx context.Context) (int64, error) { return 3, nil }

	count, err := env.sched.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.Len(t, env.items.MarkAllDueCalls(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	env := newTestEnv()
	var mu sync.Mutex
	cycles := 0
	env.items.GetDueItemsFunc = func(ctx context.Context, now time.Time) ([]*domain.Item, error) {
		mu.Lock()
		cycles++
		mu.Unlock()
		return nil, nil
	}

	env.sched.Start(context.Background())
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return cycles >= 1
	}, 2*time.Second, 10*time.Millisecond, "first cycle runs immediately")
	env.sched.Stop()
}

func fp(v float64) *float64 { return &v }
func bp(v bool) *bool       { return &v }
func ip(v int) *int         { return &v }
func i64p(v int64) *int64   { return &v }

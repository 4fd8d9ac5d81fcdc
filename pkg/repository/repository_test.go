package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pricewatch/pkg/domain"
)

func setupTestRepos(t *testing.T) *Repositories {
	t.Helper()
	cfg := Config{
		DSN:             ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 30 * time.Second,
	}
	repos, err := NewRepositories(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, repos.Close()) })
	return repos
}

func makeTestItem(t *testing.T, repos *Repositories) *domain.Item {
	t.Helper()
	item := &domain.Item{
		URL: "https://shop.example.com/widget", Name: "widget", IsActive: true,
	}
	require.NoError(t, repos.Item.CreateItem(context.Background(), item))
	require.NotZero(t, item.ID)
	return item
}

func TestItemRepository_CreateGet(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	target := 49.99
	interval := 30
	item := &domain.Item{
		URL: "https://shop.example.com/widget", Name: "widget",
		Selector: "#price", Tags: "electronics,deal",
		TargetPrice: &target, IntervalMinutes: &interval, IsActive: true,
	}
	require.NoError(t, repos.Item.CreateItem(ctx, item))

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "widget", got.Name)
	assert.Equal(t, "#price", got.Selector)
	require.NotNil(t, got.TargetPrice)
	assert.InDelta(t, 49.99, *got.TargetPrice, 0.001)
	require.NotNil(t, got.IntervalMinutes)
	assert.Equal(t, 30, *got.IntervalMinutes)
	assert.Nil(t, got.CurrentPrice, "no price before the first check")
	require.NotNil(t, got.NextCheck, "new items are due immediately")

	_, err = repos.Item.GetItem(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemRepository_GetDueItems(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	item := makeTestItem(t, repos)

	due, err := repos.Item.GetDueItems(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, item.ID, due[0].ID)

	// pushed into the future, no longer due
	require.NoError(t, repos.Item.FinishCheck(ctx, item.ID, "", time.Now(), time.Now().Add(time.Hour)))
	due, err = repos.Item.GetDueItems(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, due)

	// in-flight items are excluded even when due
	item2 := makeTestItem(t, repos)
	claimed, err := repos.Item.TryMarkInFlight(ctx, item2.ID)
	require.NoError(t, err)
	require.True(t, claimed)
	due, err = repos.Item.GetDueItems(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)

	// inactive items are never scheduled
	item3 := makeTestItem(t, repos)
	item3.IsActive = false
	require.NoError(t, repos.Item.UpdateItem(ctx, item3))
	due, err = repos.Item.GetDueItems(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestItemRepository_TryMarkInFlight(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	claimed, err := repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// second claim is rejected without error
	claimed, err = repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	// FinishCheck releases the claim
	require.NoError(t, repos.Item.FinishCheck(ctx, item.ID, "", time.Now(), time.Now().Add(time.Hour)))
	claimed, err = repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestItemRepository_TryMarkInFlight_Concurrent(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	var wins int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repos.Item.TryMarkInFlight(ctx, item.ID)
			if err == nil && claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins, "exactly one concurrent claim wins")
}

func TestItemRepository_ClearInFlight(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	claimed, err := repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	// releasing a claim that never ran leaves the check bookkeeping alone
	require.NoError(t, repos.Item.ClearInFlight(ctx, item.ID))

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastChecked)

	claimed, err = repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestItemRepository_ResetInFlight(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	claimed, err := repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	require.True(t, claimed)

	// simulated restart clears orphaned claims
	require.NoError(t, repos.Item.ResetInFlight(ctx))
	claimed, err = repos.Item.TryMarkInFlight(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestItemRepository_FinishCheck(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	checkedAt := time.Now()
	nextCheck := checkedAt.Add(45 * time.Minute)
	require.NoError(t, repos.Item.FinishCheck(ctx, item.ID, "capture timeout", checkedAt, nextCheck))

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "capture timeout", got.LastError)
	require.NotNil(t, got.LastChecked)
	require.NotNil(t, got.NextCheck)
	assert.WithinDuration(t, nextCheck, *got.NextCheck, 2*time.Second)

	// success clears the error
	require.NoError(t, repos.Item.FinishCheck(ctx, item.ID, "", time.Now(), nextCheck))
	got, err = repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LastError)
}

func TestItemRepository_TimeRoundTrip(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	// next_check written from Go must land in the same layout sqlite generates,
	// or scheduling comparisons silently match nothing
	next := time.Now().Add(-time.Minute)
	require.NoError(t, repos.Item.FinishCheck(ctx, item.ID, "", time.Now(), next))

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextCheck)
	assert.WithinDuration(t, next, *got.NextCheck, time.Second)

	due, err := repos.Item.GetDueItems(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, due, 1, "item with a past next_check written from Go is due")

	// sqlite's own time functions must understand the stored text
	var jd sql.NullFloat64
	err = repos.DB.GetContext(ctx, &jd, "SELECT julianday(next_check) FROM items WHERE id = ?", item.ID)
	require.NoError(t, err)
	assert.True(t, jd.Valid, "stored next_check is not parseable by sqlite")
}

func TestItemRepository_ApplyObservation(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	loaded, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)

	upd := StateUpdate{ApplyPrice: true, Price: 99.99, PriceConfidence: 0.9,
		ApplyStock: true, InStock: true, InStockConfidence: 0.8}
	applied, err := repos.Item.ApplyObservation(ctx, item.ID, upd, loaded.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentPrice)
	assert.InDelta(t, 99.99, *got.CurrentPrice, 0.001)
	require.NotNil(t, got.InStock)
	assert.True(t, *got.InStock)
	require.NotNil(t, got.CurrentPriceConfidence)
	assert.InDelta(t, 0.9, *got.CurrentPriceConfidence, 0.001)
}

func TestItemRepository_ApplyObservation_StaleGuard(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	// pipeline snapshots the item, then a manual edit lands
	snapshot, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)

	manual := 42.0
	time.Sleep(5 * time.Millisecond) // updated_at has millisecond resolution
	snapshot2, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	snapshot2.CurrentPrice = &manual
	require.NoError(t, repos.Item.UpdateItem(ctx, snapshot2))

	// the stale pipeline result must lose
	upd := StateUpdate{ApplyPrice: true, Price: 99.99, PriceConfidence: 0.9}
	applied, err := repos.Item.ApplyObservation(ctx, item.ID, upd, snapshot.UpdatedAt)
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentPrice)
	assert.InDelta(t, 42.0, *got.CurrentPrice, 0.001, "manual correction wins")
}

func TestItemRepository_ApplyObservation_PartialUpdate(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	loaded, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)

	// stock only, price stays untouched
	upd := StateUpdate{ApplyStock: true, InStock: false, InStockConfidence: 0.7}
	applied, err := repos.Item.ApplyObservation(ctx, item.ID, upd, loaded.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentPrice)
	require.NotNil(t, got.InStock)
	assert.False(t, *got.InStock)

	// nothing to apply is a no-op success
	applied, err = repos.Item.ApplyObservation(ctx, item.ID, StateUpdate{}, time.Now())
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestItemRepository_MarkAllDue(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		item := makeTestItem(t, repos)
		require.NoError(t, repos.Item.FinishCheck(ctx, item.ID, "", time.Now(), time.Now().Add(time.Hour)))
	}
	inactive := makeTestItem(t, repos)
	inactive.IsActive = false
	require.NoError(t, repos.Item.UpdateItem(ctx, inactive))

	count, err := repos.Item.MarkAllDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	due, err := repos.Item.GetDueItems(ctx, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Len(t, due, 3)
}

func TestItemRepository_Delete(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	price := 9.99
	require.NoError(t, repos.History.Append(ctx, &domain.HistoryRecord{ItemID: item.ID, Price: &price}))

	require.NoError(t, repos.Item.DeleteItem(ctx, item.ID))
	_, err := repos.Item.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// history removed via cascade
	count, err := repos.History.CountHistory(ctx, item.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, repos.Item.DeleteItem(ctx, item.ID), ErrNotFound)
}

func TestHistoryRepository_AppendGet(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	for i := 0; i < 5; i++ {
		price := 10.0 + float64(i)
		inStock := i%2 == 0
		conf := 0.9
		rec := &domain.HistoryRecord{
			ItemID: item.ID, Timestamp: time.Now().Add(time.Duration(i) * time.Minute),
			Price: &price, InStock: &inStock, PriceConfidence: &conf,
			AIModel: "gemma3:4b", AIProvider: "ollama", PromptVersion: "v2.0",
		}
		require.NoError(t, repos.History.Append(ctx, rec))
		require.NotZero(t, rec.ID)
	}

	records, err := repos.History.GetHistory(ctx, item.ID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// newest first
	assert.InDelta(t, 14.0, *records[0].Price, 0.001)
	assert.Equal(t, "ollama", records[0].AIProvider)

	count, err := repos.History.CountHistory(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestHistoryRepository_NullFields(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()
	item := makeTestItem(t, repos)

	inStock := false
	conf := 0.8
	rec := &domain.HistoryRecord{ItemID: item.ID, InStock: &inStock, InStockConfidence: &conf, FlaggedForReview: true}
	require.NoError(t, repos.History.Append(ctx, rec))

	records, err := repos.History.GetHistory(ctx, item.ID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Price)
	assert.Nil(t, records[0].PriceConfidence)
	require.NotNil(t, records[0].InStock)
	assert.False(t, *records[0].InStock)
	assert.True(t, records[0].FlaggedForReview)
}

func TestProfileRepository_CRUD(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	p := &domain.NotificationProfile{
		Name: "deals", NotifyURL: "slack://deals",
		NotifyOnPriceDrop: true, PriceDropThresholdPercent: 15, CheckIntervalMinutes: 30,
	}
	require.NoError(t, repos.Profile.CreateProfile(ctx, p))
	require.NotZero(t, p.ID)

	got, err := repos.Profile.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "deals", got.Name)
	assert.InDelta(t, 15.0, got.PriceDropThresholdPercent, 0.001)

	got.Name = "hot deals"
	got.NotifyOnStockChange = true
	require.NoError(t, repos.Profile.UpdateProfile(ctx, got))

	all, err := repos.Profile.GetProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "hot deals", all[0].Name)

	require.NoError(t, repos.Profile.DeleteProfile(ctx, p.ID))
	_, err = repos.Profile.GetProfile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repos.Profile.DeleteProfile(ctx, p.ID), ErrNotFound)
}

func TestProfileRepository_DeleteDetachesItems(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	p := &domain.NotificationProfile{Name: "deals"}
	require.NoError(t, repos.Profile.CreateProfile(ctx, p))

	item := makeTestItem(t, repos)
	loaded, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	loaded.NotificationProfileID = &p.ID
	require.NoError(t, repos.Item.UpdateItem(ctx, loaded))

	require.NoError(t, repos.Profile.DeleteProfile(ctx, p.ID))

	got, err := repos.Item.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got.NotificationProfileID, "profile reference cleared on delete")
}

func TestSettingRepository_GetSet(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	// missing key reads as empty, not an error
	val, err := repos.Setting.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingAIModel, "gpt-4o"))
	val, err = repos.Setting.GetSetting(ctx, domain.SettingAIModel)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", val)

	// upsert overwrites
	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingAIModel, "gemma3:4b"))
	val, err = repos.Setting.GetSetting(ctx, domain.SettingAIModel)
	require.NoError(t, err)
	assert.Equal(t, "gemma3:4b", val)

	all, err := repos.Setting.GetAllSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gemma3:4b", all[domain.SettingAIModel])
}

func TestSettingRepository_LoadSnapshot(t *testing.T) {
	repos := setupTestRepos(t)
	ctx := context.Background()

	// defaults with an empty table
	snap, err := repos.Setting.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, snap.RefreshInterval)
	assert.InDelta(t, 0.5, snap.PriceConfidenceThreshold, 0.001)
	assert.False(t, snap.OutlierEnabled)

	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingRefreshIntervalMinutes, "15"))
	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingOutlierEnabled, "true"))
	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingPriceConfidence, "0.75"))

	snap, err = repos.Setting.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, snap.RefreshInterval)
	assert.True(t, snap.OutlierEnabled)
	assert.InDelta(t, 0.75, snap.PriceConfidenceThreshold, 0.001)
}

func TestCriticalError(t *testing.T) {
	originalErr := fmt.Errorf("test error message")
	critErr := &criticalError{err: originalErr}
	assert.Equal(t, "test error message", critErr.Error())
}

func TestIsLockError(t *testing.T) {
	assert.False(t, isLockError(nil))
	assert.False(t, isLockError(errors.New("some other error")))
	assert.True(t, isLockError(errors.New("database is locked")))
	assert.True(t, isLockError(errors.New("SQLITE_BUSY: database busy")))
	assert.True(t, isLockError(errors.New("database table is locked")))
}

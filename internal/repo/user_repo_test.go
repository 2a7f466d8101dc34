package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dizzymate/aura-bot/internal/domain"
)

func newUserRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("user_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seen(t *testing.T, y int, m time.Month, d int) time.Time {
	t.Helper()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestUpsertUser_InsertsWithDefaults(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})

	first := seen(t, 2025, 1, 1)
	u := domain.User{ID: 7, Username: "alice", FirstName: "Alice", LastSeen: first}
	if err := UpsertUser(context.Background(), db, u); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	got, err := GetUser(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Points != 0 || got.MessageCount != 1 {
		t.Fatalf("new user counters wrong: points=%d msgs=%d", got.Points, got.MessageCount)
	}
	if !got.FirstSeen.Equal(first) || !got.LastSeen.Equal(first) {
		t.Fatalf("timestamps wrong: %+v", got)
	}
}

func TestUpsertUser_UpdatePreservesPointsAndFlag(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	ctx := context.Background()

	if err := UpsertUser(ctx, db, domain.User{ID: 7, FirstName: "Alice", LastSeen: seen(t, 2025, 1, 1)}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := AdjustPoints(ctx, db, 7, 150); err != nil {
		t.Fatalf("AdjustPoints: %v", err)
	}

	later := seen(t, 2025, 1, 2)
	if err := UpsertUser(ctx, db, domain.User{ID: 7, FirstName: "Alicia", Username: "ali", LastSeen: later}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := GetUser(ctx, db, 7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Points != 150 {
		t.Fatalf("points must survive upsert, got %d", got.Points)
	}
	if got.MessageCount != 2 {
		t.Fatalf("message count must increment, got %d", got.MessageCount)
	}
	if got.FirstName != "Alicia" || got.Username != "ali" {
		t.Fatalf("display data not refreshed: %+v", got)
	}
	if !got.FirstSeen.Equal(seen(t, 2025, 1, 1)) {
		t.Fatalf("first_seen must not move, got %v", got.FirstSeen)
	}
	if !got.LastSeen.Equal(later) {
		t.Fatalf("last_seen must advance, got %v", got.LastSeen)
	}
}

func TestAdjustPoints_NotFound(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	if err := AdjustPoints(context.Background(), db, 404, 10); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdjustPoints_ConcurrentIncrementsDoNotLoseUpdates(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{})
	ctx := context.Background()

	// busy_timeout keeps concurrent writers from failing outright
	db.Exec("PRAGMA busy_timeout=5000;")

	if err := UpsertUser(ctx, db, domain.User{ID: 1, LastSeen: seen(t, 2025, 1, 1)}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- AdjustPoints(ctx, db, 1, 5)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent AdjustPoints: %v", err)
		}
	}

	got, err := GetUser(ctx, db, 1)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Points != workers*5 {
		t.Fatalf("lost update: want %d, got %d", workers*5, got.Points)
	}
}

func TestLeaderboard_OrderAndScope(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{}, &domain.Membership{})
	ctx := context.Background()
	now := seen(t, 2025, 1, 1)

	points := map[int64]int64{1: 50, 2: -20, 3: 100, 4: 0}
	for id, p := range points {
		u := domain.User{ID: id, FirstName: fmt.Sprintf("u%d", id), Points: p, LastSeen: now}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed user %d: %v", id, err)
		}
		if err := UpsertMembership(ctx, db, 100, id, domain.StatusMember, now); err != nil {
			t.Fatalf("seed membership %d: %v", id, err)
		}
	}
	// A bot and a stranger chat must be excluded.
	if err := db.Create(&domain.User{ID: 5, IsBot: true, Points: 9999, LastSeen: now}).Error; err != nil {
		t.Fatalf("seed bot: %v", err)
	}
	if err := UpsertMembership(ctx, db, 100, 5, domain.StatusMember, now); err != nil {
		t.Fatalf("seed bot membership: %v", err)
	}
	if err := db.Create(&domain.User{ID: 6, Points: 777, LastSeen: now}).Error; err != nil {
		t.Fatalf("seed outsider: %v", err)
	}
	if err := UpsertMembership(ctx, db, 200, 6, domain.StatusMember, now); err != nil {
		t.Fatalf("seed outsider membership: %v", err)
	}

	got, err := Leaderboard(ctx, db, 100, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []int64{100, 50, 0, -20}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i, p := range want {
		if got[i].Points != p {
			t.Fatalf("row %d: want %d points, got %d", i, p, got[i].Points)
		}
	}
}

func TestLeaderboard_TiesBrokenByUserID(t *testing.T) {
	db := newUserRepoDB(t, &domain.User{}, &domain.Membership{})
	ctx := context.Background()
	now := seen(t, 2025, 1, 1)

	for _, id := range []int64{9, 3, 6} {
		if err := db.Create(&domain.User{ID: id, Points: 10, LastSeen: now}).Error; err != nil {
			t.Fatalf("seed %d: %v", id, err)
		}
		if err := UpsertMembership(ctx, db, 100, id, domain.StatusMember, now); err != nil {
			t.Fatalf("membership %d: %v", id, err)
		}
	}

	got, err := Leaderboard(ctx, db, 100, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if got[0].ID != 3 || got[1].ID != 6 || got[2].ID != 9 {
		t.Fatalf("tie order wrong: %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
}

// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - UpsertUser(ctx, db, user, now) -> error
//     Inserts the user on first sight, or refreshes display data, bumps
//     message_count, and advances last_seen on conflict. Points and the
//     automated-account flag are never touched by this path.
//
//   - GetUser(ctx, db, id) -> *domain.User, error
//     Fetches a single user, or ErrNotFound if missing.
//
//   - GetUsers(ctx, db, ids) -> []domain.User, error
//     Fetches several users in one query (order unspecified).
//
//   - AdjustPoints(ctx, db, id, delta) -> error
//     Applies a signed delta to the user's aura balance with a single
//     atomic UPDATE. Concurrent adjustments never lose an update.
//
//   - Leaderboard(ctx, db, chatID, limit) -> []domain.User, error
//     Returns non-automated members of the chat ordered by points
//     descending, ties broken by user id ascending.
//
// This repository is designed to be wrapped by higher-level services
// (see services.RosterService and services.SelectionService) which enforce
// the business rules around it.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertUser records an activity observation for a user. New users start
// with zero points and a message count of one; existing users keep their
// points and automated flag while display data and counters are refreshed.
func UpsertUser(ctx context.Context, db *gorm.DB, u domain.User) error {
	row := domain.User{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsBot:        u.IsBot,
		LanguageCode: u.LanguageCode,
		Points:       0,
		MessageCount: 1,
		FirstSeen:    u.LastSeen,
		LastSeen:     u.LastSeen,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"username":      u.Username,
			"first_name":    u.FirstName,
			"last_name":     u.LastName,
			"language_code": u.LanguageCode,
			"message_count": gorm.Expr("message_count + 1"),
			"last_seen":     u.LastSeen,
		}),
	}).Create(&row).Error
}

// GetUser fetches a single user by ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsers fetches the users with the given IDs. Missing IDs are simply
// absent from the result; the order of rows is unspecified.
func GetUsers(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// AdjustPoints applies delta to the user's aura balance in one atomic
// UPDATE. Returns ErrNotFound when the user row does not exist.
func AdjustPoints(ctx context.Context, db *gorm.DB, id int64, delta int) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Leaderboard returns the chat's non-automated members ordered by points
// descending; ties are broken by user id ascending so the ordering is
// stable across calls.
func Leaderboard(ctx context.Context, db *gorm.DB, chatID int64, limit int) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Joins("JOIN chat_members cm ON cm.user_id = users.id").
		Where("cm.chat_id = ? AND users.is_bot = ?", chatID, false).
		Order("users.points DESC, users.id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

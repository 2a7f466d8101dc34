// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the UsageRecord
// model that backs daily/hourly rate limiting, plus the retention purge.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// GetUsage returns the usage record for the (user, chat, command, day) key,
// or ErrNotFound when the key has not been used that day.
func GetUsage(ctx context.Context, db *gorm.DB, userID, chatID int64, command, day string) (*domain.UsageRecord, error) {
	var rec domain.UsageRecord
	err := db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ? AND command = ? AND day = ?",
			userID, chatID, command, day).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// MarkUsage upserts the usage record for the key, setting last_invocation_at
// to now. The unique index on the key tuple guarantees at most one row.
func MarkUsage(ctx context.Context, db *gorm.DB, userID, chatID int64, command, day string, now time.Time) error {
	row := domain.UsageRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		ChatID:           chatID,
		Command:          command,
		Day:              day,
		LastInvocationAt: &now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "chat_id"}, {Name: "command"}, {Name: "day"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_invocation_at": now,
		}),
	}).Create(&row).Error
}

// PurgeUsageBefore deletes usage records whose last invocation predates the
// cutoff and returns the number of rows removed.
func PurgeUsageBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("last_invocation_at < ?", cutoff).
		Delete(&domain.UsageRecord{})
	return res.RowsAffected, res.Error
}

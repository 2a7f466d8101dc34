// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for the
// DailySelection model. CreateSelectionIfAbsent is the single linearization
// point of the engine: among concurrent racers for the same key, exactly one
// insert succeeds and every other caller observes ErrDuplicate.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// ErrDuplicate indicates that a daily selection already exists for the
// given (chat_id, command, day) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetSelection returns the selection for the key, or ErrNotFound.
func GetSelection(ctx context.Context, db *gorm.DB, chatID int64, command, day string) (*domain.DailySelection, error) {
	var sel domain.DailySelection
	err := db.WithContext(ctx).
		Where("chat_id = ? AND command = ? AND day = ?", chatID, command, day).
		First(&sel).Error
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

// CreateSelectionIfAbsent inserts the selection row and returns ErrDuplicate
// when another caller already created one for the same key. The row is never
// updated once created.
func CreateSelectionIfAbsent(ctx context.Context, db *gorm.DB, chatID int64, command, day string, primary int64, secondary *int64, payload string) (*domain.DailySelection, error) {
	sel := &domain.DailySelection{
		ID:              uuid.NewString(),
		ChatID:          chatID,
		Command:         command,
		Day:             day,
		PrimaryUserID:   primary,
		SecondaryUserID: secondary,
		Payload:         payload,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(sel).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return sel, nil
}

// PurgeSelectionsBefore deletes selections created before the cutoff and
// returns the number of rows removed.
func PurgeSelectionsBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&domain.DailySelection{})
	return res.RowsAffected, res.Error
}

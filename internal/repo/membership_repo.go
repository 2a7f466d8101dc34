// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Membership
// model: roster upserts, activity touches, and the active-member query that
// feeds the candidate pool.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// eligibleStatuses are the membership states that keep a user selectable.
var eligibleStatuses = []string{
	domain.StatusMember,
	domain.StatusAdministrator,
	domain.StatusCreator,
}

// UpsertMembership creates or refreshes the single (chat, user) row. The
// status is overwritten (join events set "member", departures set "left")
// and last_active_at is advanced to now.
func UpsertMembership(ctx context.Context, db *gorm.DB, chatID, userID int64, status string, now time.Time) error {
	row := domain.Membership{
		ID:           uuid.NewString(),
		ChatID:       chatID,
		UserID:       userID,
		Status:       status,
		JoinedAt:     now,
		LastActiveAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chat_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":         status,
			"last_active_at": now,
		}),
	}).Create(&row).Error
}

// TouchActivity advances last_active_at for an existing membership, creating
// the row as a plain member when none exists yet. Departed members are
// re-admitted: any activity implies the user is present in the chat again.
func TouchActivity(ctx context.Context, db *gorm.DB, chatID, userID int64, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Updates(map[string]interface{}{
			"status":         domain.StatusMember,
			"last_active_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return UpsertMembership(ctx, db, chatID, userID, domain.StatusMember, now)
	}
	return nil
}

// GetMembership fetches the (chat, user) row, or ErrNotFound if missing.
func GetMembership(ctx context.Context, db *gorm.DB, chatID, userID int64) (*domain.Membership, error) {
	var m domain.Membership
	err := db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveMembers returns the non-automated users of a chat whose membership
// is in an eligible status and whose last activity is at or after since.
func ActiveMembers(ctx context.Context, db *gorm.DB, chatID int64, since time.Time) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Joins("JOIN chat_members cm ON cm.user_id = users.id").
		Where("cm.chat_id = ? AND cm.status IN ? AND cm.last_active_at >= ? AND users.is_bot = ?",
			chatID, eligibleStatuses, since, false).
		Find(&out).Error
	return out, err
}

// CountMembers returns how many members of the chat are in an eligible
// status, regardless of recent activity.
func CountMembers(ctx context.Context, db *gorm.DB, chatID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Membership{}).
		Where("chat_id = ? AND status IN ?", chatID, eligibleStatuses).
		Count(&total).Error
	return total, err
}

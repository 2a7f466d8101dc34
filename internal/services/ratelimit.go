// Package services – RateLimiter
//
// This file implements the per-(user, chat, command, day) rate limiter. The
// decision is derived purely from stored UsageRecord state: a missing record
// allows the invocation, a present record denies it for the rest of the day,
// and a recent last_invocation_at additionally applies the hourly cooldown
// so repeated replay requests are spaced out.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/domain"
	"github.com/dizzymate/aura-bot/internal/repo"
)

// Decision is the verdict of a rate-limit check.
type Decision int

const (
	// Allowed means the key has no usage today; the caller must still call
	// MarkUsed after the action succeeds.
	Allowed Decision = iota
	// DeniedDaily means the key was already used today.
	DeniedDaily
	// DeniedHourly means the key was used within the cooldown window.
	DeniedHourly
)

// UsageRepo defines the repository contract required by RateLimiter.
type UsageRepo interface {
	// GetUsage returns the record for the key or repo.ErrNotFound.
	GetUsage(ctx context.Context, db *gorm.DB, userID, chatID int64, command, day string) (*domain.UsageRecord, error)

	// MarkUsage upserts the record with last_invocation_at = now.
	MarkUsage(ctx context.Context, db *gorm.DB, userID, chatID int64, command, day string, now time.Time) error
}

// RateLimiter decides whether a (user, chat, command) triple may proceed
// now, based on the stored usage record for the current calendar day.
type RateLimiter struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the usage repository used by this limiter.
	Repo UsageRepo
	// Cooldown is the minimum spacing between repeated invocations.
	Cooldown time.Duration
	// DayLoc fixes the calendar-day boundary for the usage key.
	DayLoc *time.Location
}

// NewRateLimiter constructs a RateLimiter with the given cooldown and
// calendar-day timezone.
func NewRateLimiter(db *gorm.DB, r UsageRepo, cooldown time.Duration, dayLoc *time.Location) *RateLimiter {
	if dayLoc == nil {
		dayLoc = time.UTC
	}
	return &RateLimiter{DB: db, Repo: r, Cooldown: cooldown, DayLoc: dayLoc}
}

// Day formats the calendar day an instant belongs to, in the limiter's
// reference timezone. This string is the day component of both the usage
// and the selection key.
func (l *RateLimiter) Day(now time.Time) string {
	return now.In(l.DayLoc).Format("2006-01-02")
}

// Check returns the verdict for the key at instant now. Storage failures
// propagate as errors; a denial is a normal result, not an error.
func (l *RateLimiter) Check(ctx context.Context, userID, chatID int64, command string, now time.Time) (Decision, error) {
	rec, err := l.Repo.GetUsage(ctx, l.DB, userID, chatID, command, l.Day(now))
	if errors.Is(err, repo.ErrNotFound) {
		return Allowed, nil
	}
	if err != nil {
		return DeniedDaily, err
	}
	if rec.LastInvocationAt != nil && now.Sub(*rec.LastInvocationAt) < l.Cooldown {
		return DeniedHourly, nil
	}
	// Only one genuine selection per day; once a record exists the key
	// stays locked until the next calendar day.
	return DeniedDaily, nil
}

// MarkUsed records a successful invocation of the key at instant now.
func (l *RateLimiter) MarkUsed(ctx context.Context, userID, chatID int64, command string, now time.Time) error {
	return l.Repo.MarkUsage(ctx, l.DB, userID, chatID, command, l.Day(now), now)
}

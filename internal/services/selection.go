// Package services – SelectionService
//
// This file implements the selection orchestrator, the state machine behind
// every engagement command: rate check, replay check, selection, persist,
// award. The only linearization point is the insert-if-absent selection
// write; everything before it may run redundantly in concurrent callers, and
// a caller that loses the insert race silently adopts the winner's row.
//
// Observability: Invoke is OpenTelemetry-instrumented; spans carry the full
// (chat, command, day) key.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dizzymate/aura-bot/internal/domain"
	"github.com/dizzymate/aura-bot/internal/repo"
)

// SelectionService coordinates rate limiting, candidate pools, deterministic
// selection, and the point ledger for command invocations.
type SelectionService struct {
	DB       *gorm.DB
	Limiter  *RateLimiter
	Pool     *PoolProvider
	Night    NightWindow
	Registry Registry

	// LeaderboardLimit caps the number of rows returned by Leaderboard.
	LeaderboardLimit int
}

// Invoke executes one command invocation by callerID in chatID at instant
// now and returns the outcome for the transport to render.
//
// Policy rejections come back as Outcome values; only storage faults and
// unknown commands produce errors, and a returned error means the
// invocation was not performed.
func (s *SelectionService) Invoke(ctx context.Context, callerID, chatID int64, command string, now time.Time) (*Outcome, error) {
	cmd, ok := s.Registry[command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	day := s.Limiter.Day(now)

	tr := otel.Tracer("services/SelectionService")
	ctx, span := tr.Start(ctx, "Invoke",
		trace.WithAttributes(
			attribute.Int64("chat.id", chatID),
			attribute.String("command", command),
			attribute.String("day", day),
		),
	)
	defer span.End()

	// Night gate runs before everything else: a closed window must not
	// consume the caller's daily attempt.
	if cmd.Night && !s.Night.Open(now) {
		rejectionsTotal.WithLabelValues(command, string(RejectNightOnlyWindow)).Inc()
		out := Rejection(RejectNightOnlyWindow)
		out.NightRemaining = s.Night.UntilOpen(now)
		return out, nil
	}

	// RATE_CHECK
	verdict, err := s.Limiter.Check(ctx, callerID, chatID, command, now)
	if err != nil {
		return nil, s.keyErr(chatID, command, day, "rate check", err)
	}
	switch verdict {
	case DeniedDaily:
		rejectionsTotal.WithLabelValues(command, string(RejectDailyLimit)).Inc()
		return Rejection(RejectDailyLimit), nil
	case DeniedHourly:
		rejectionsTotal.WithLabelValues(command, string(RejectHourlyLimit)).Inc()
		return Rejection(RejectHourlyLimit), nil
	}

	// REPLAY_CHECK
	sel, err := repo.GetSelection(ctx, s.DB, chatID, command, day)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, s.keyErr(chatID, command, day, "replay check", err)
	}
	if sel != nil {
		return s.replay(ctx, cmd, sel, callerID, now)
	}

	// SELECT
	pool, err := s.Pool.Eligible(ctx, chatID, now)
	if err != nil {
		return nil, s.keyErr(chatID, command, day, "pool", err)
	}
	if len(pool) < cmd.Count {
		// No usage is written: the caller may retry later today once the
		// pool has members, without burning the daily attempt.
		rejectionsTotal.WithLabelValues(command, string(RejectInsufficientMembers)).Inc()
		return Rejection(RejectInsufficientMembers), nil
	}
	chosen := SelectMembers(pool, chatID, command, day, cmd.Count)

	// PERSIST
	var secondary *int64
	if cmd.Count > 1 {
		id := chosen[1].ID
		secondary = &id
	}
	_, err = repo.CreateSelectionIfAbsent(ctx, s.DB, chatID, command, day, chosen[0].ID, secondary, "")
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost the race: adopt the winner's row and discard our pick.
		sel, err = repo.GetSelection(ctx, s.DB, chatID, command, day)
		if err != nil {
			return nil, s.keyErr(chatID, command, day, "replay after race", err)
		}
		return s.replay(ctx, cmd, sel, callerID, now)
	}
	if err != nil {
		return nil, s.keyErr(chatID, command, day, "persist", err)
	}

	// AWARD: points are applied exactly once, here, at creation time.
	for _, u := range chosen {
		if err := repo.AdjustPoints(ctx, s.DB, u.ID, cmd.Delta); err != nil {
			return nil, s.keyErr(chatID, command, day, fmt.Sprintf("award user=%d", u.ID), err)
		}
	}
	if err := s.Limiter.MarkUsed(ctx, callerID, chatID, command, now); err != nil {
		return nil, s.keyErr(chatID, command, day, "mark usage", err)
	}

	selectionsTotal.WithLabelValues(command).Inc()
	refs := make([]UserRef, 0, len(chosen))
	for _, u := range chosen {
		refs = append(refs, refFromUser(u))
	}
	return &Outcome{Users: refs, PointDelta: cmd.Delta}, nil
}

// replay serves an invocation from the stored selection. Display data is
// re-read from the ledger and usage is marked, but no points are applied.
func (s *SelectionService) replay(ctx context.Context, cmd Command, sel *domain.DailySelection, callerID int64, now time.Time) (*Outcome, error) {
	ids := []int64{sel.PrimaryUserID}
	if sel.SecondaryUserID != nil {
		ids = append(ids, *sel.SecondaryUserID)
	}
	users, err := repo.GetUsers(ctx, s.DB, ids)
	if err != nil {
		return nil, s.keyErr(sel.ChatID, sel.Command, sel.Day, "load selected users", err)
	}
	byID := make(map[int64]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	refs := make([]UserRef, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, s.keyErr(sel.ChatID, sel.Command, sel.Day,
				fmt.Sprintf("load selected users user=%d", id), ErrUserNotFound)
		}
		refs = append(refs, refFromUser(u))
	}

	if err := s.Limiter.MarkUsed(ctx, callerID, sel.ChatID, sel.Command, now); err != nil {
		return nil, s.keyErr(sel.ChatID, sel.Command, sel.Day, "mark usage", err)
	}

	replaysTotal.WithLabelValues(cmd.Name).Inc()
	return &Outcome{Users: refs, PointDelta: cmd.Delta, IsReplay: true}, nil
}

// Leaderboard returns the chat's top users by aura balance.
func (s *SelectionService) Leaderboard(ctx context.Context, chatID int64) ([]domain.User, error) {
	limit := s.LeaderboardLimit
	if limit <= 0 {
		limit = 10
	}
	return repo.Leaderboard(ctx, s.DB, chatID, limit)
}

// keyErr wraps a storage failure with the full selection key so logs carry
// enough context for diagnosis.
func (s *SelectionService) keyErr(chatID int64, command, day, stage string, err error) error {
	return fmt.Errorf("%s (chat=%d command=%s day=%s): %w", stage, chatID, command, day, err)
}

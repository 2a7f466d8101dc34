// Package services – RosterService
//
// Ingests membership and activity events from the transport: every observed
// group message refreshes the sender's ledger row and membership activity,
// join events create memberships, and departures flip the row to "left"
// without deleting it. The engine itself never discovers members; it only
// reads what this service has recorded.
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/domain"
	"github.com/dizzymate/aura-bot/internal/repo"
)

// Profile is a snapshot of a user's display data as carried by a platform
// event.
type Profile struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	IsBot        bool
	LanguageCode string
}

// RosterService records membership and activity observations.
type RosterService struct {
	DB *gorm.DB
}

// user converts a profile into a ledger row stamped at now.
func (p Profile) user(now time.Time) domain.User {
	return domain.User{
		ID:           p.ID,
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsBot:        p.IsBot,
		LanguageCode: p.LanguageCode,
		LastSeen:     now,
	}
}

// ObserveActivity records a message (or command) from the user in the chat:
// the ledger row is upserted and the membership's last activity advances.
// Automated accounts are ignored.
func (s *RosterService) ObserveActivity(ctx context.Context, chatID int64, p Profile, now time.Time) error {
	if p.IsBot {
		return nil
	}
	if err := repo.UpsertUser(ctx, s.DB, p.user(now)); err != nil {
		return fmt.Errorf("upsert user %d: %w", p.ID, err)
	}
	if err := repo.TouchActivity(ctx, s.DB, chatID, p.ID, now); err != nil {
		return fmt.Errorf("touch activity (chat=%d user=%d): %w", chatID, p.ID, err)
	}
	return nil
}

// ObserveJoin records a user joining the chat.
func (s *RosterService) ObserveJoin(ctx context.Context, chatID int64, p Profile, now time.Time) error {
	if p.IsBot {
		return nil
	}
	if err := repo.UpsertUser(ctx, s.DB, p.user(now)); err != nil {
		return fmt.Errorf("upsert user %d: %w", p.ID, err)
	}
	if err := repo.UpsertMembership(ctx, s.DB, chatID, p.ID, domain.StatusMember, now); err != nil {
		return fmt.Errorf("upsert membership (chat=%d user=%d): %w", chatID, p.ID, err)
	}
	return nil
}

// ObserveLeave flips the membership to "left". The row is kept for history.
func (s *RosterService) ObserveLeave(ctx context.Context, chatID, userID int64, now time.Time) error {
	if err := repo.UpsertMembership(ctx, s.DB, chatID, userID, domain.StatusLeft, now); err != nil {
		return fmt.Errorf("mark left (chat=%d user=%d): %w", chatID, userID, err)
	}
	return nil
}

// Package services – PoolProvider
//
// Thin wrapper over the membership repository that produces the candidate
// pool for a selection: members in good standing, not automated, active
// within the trailing window. An empty pool is a valid result; the
// orchestrator decides what to do with it.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// MembershipRepo defines the repository contract required by PoolProvider.
type MembershipRepo interface {
	// ActiveMembers returns eligible users active at or after since.
	ActiveMembers(ctx context.Context, db *gorm.DB, chatID int64, since time.Time) ([]domain.User, error)
}

// PoolProvider returns the set of chat members eligible for selection.
type PoolProvider struct {
	DB   *gorm.DB
	Repo MembershipRepo
	// Window is the trailing activity window for eligibility.
	Window time.Duration
}

// NewPoolProvider constructs a PoolProvider with the given activity window.
func NewPoolProvider(db *gorm.DB, r MembershipRepo, window time.Duration) *PoolProvider {
	return &PoolProvider{DB: db, Repo: r, Window: window}
}

// Eligible returns the members of chatID selectable as of asOf.
func (p *PoolProvider) Eligible(ctx context.Context, chatID int64, asOf time.Time) ([]domain.User, error) {
	return p.Repo.ActiveMembers(ctx, p.DB, chatID, asOf.Add(-p.Window))
}

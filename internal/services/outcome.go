package services

import (
	"time"

	"github.com/dizzymate/aura-bot/internal/domain"
)

// RejectReason enumerates the policy rejections an invocation can produce.
type RejectReason string

const (
	RejectNotAGroup           RejectReason = "not_a_group"
	RejectDailyLimit          RejectReason = "daily_limit"
	RejectHourlyLimit         RejectReason = "hourly_limit"
	RejectNightOnlyWindow     RejectReason = "night_only_window"
	RejectInsufficientMembers RejectReason = "insufficient_members"
)

// UserRef carries the display data the transport needs to render a mention.
type UserRef struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Outcome is the result of one command invocation, returned to the transport
// for rendering. Either Rejected is set with a Reason, or Users holds the
// selected member(s) with the applied point delta.
type Outcome struct {
	Rejected bool
	Reason   RejectReason
	// NightRemaining is set only for RejectNightOnlyWindow: the duration
	// until the window next opens.
	NightRemaining time.Duration

	Users      []UserRef
	PointDelta int
	IsReplay   bool
}

// Rejection builds a policy-rejection outcome.
func Rejection(reason RejectReason) *Outcome {
	return &Outcome{Rejected: true, Reason: reason}
}

// refFromUser converts a ledger row into a transport-facing reference.
func refFromUser(u domain.User) UserRef {
	return UserRef{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

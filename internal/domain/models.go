// Package domain defines the persistence models for users, chat memberships,
// command usage, and daily selections. These types are mapped with GORM and
// form the core data layer of the aura bot.
package domain

import "time"

// Membership status values as reported by the chat platform.
const (
	StatusMember        = "member"
	StatusAdministrator = "administrator"
	StatusCreator       = "creator"
	StatusLeft          = "left"
)

// User is a chat-platform account observed by the bot. Rows are created the
// first time a user is seen and updated on every subsequent activity event;
// they are never deleted.
//
// Fields:
//   - ID: platform-assigned user identifier (immutable primary key).
//   - Username / FirstName / LastName: display data, refreshed on activity.
//   - IsBot: automated-account flag; set once when the user is first seen.
//   - Points: signed aura balance. Only the selection orchestrator writes it,
//     always through an atomic increment.
//   - MessageCount: monotonically increasing activity counter.
//   - FirstSeen / LastSeen: observation timestamps.
type User struct {
	ID           int64     `json:"id"            gorm:"primaryKey;autoIncrement:false"`
	Username     string    `json:"username"      gorm:"type:varchar(64)"`
	FirstName    string    `json:"first_name"    gorm:"type:varchar(128)"`
	LastName     string    `json:"last_name"     gorm:"type:varchar(128)"`
	IsBot        bool      `json:"is_bot"        gorm:"not null;default:false"`
	LanguageCode string    `json:"language_code" gorm:"type:varchar(16)"`
	Points       int64     `json:"points"        gorm:"not null;default:0"`
	MessageCount int64     `json:"message_count" gorm:"not null;default:0"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Membership links a user to a chat. Exactly one row exists per
// (chat_id, user_id) pair; the status flips to "left" on departure rather
// than deleting the row.
type Membership struct {
	ID           string    `json:"id"             gorm:"type:char(36);primaryKey"`
	ChatID       int64     `json:"chat_id"        gorm:"not null;uniqueIndex:ux_chat_user,priority:1"`
	UserID       int64     `json:"user_id"        gorm:"not null;uniqueIndex:ux_chat_user,priority:2;index"`
	Status       string    `json:"status"         gorm:"type:varchar(16);not null;default:'member'"`
	JoinedAt     time.Time `json:"joined_at"`
	LastActiveAt time.Time `json:"last_active_at" gorm:"index"`
}

// TableName returns the database table name for Membership.
func (Membership) TableName() string { return "chat_members" }

// UsageRecord tracks rate-limiting state for one (user, chat, command,
// calendar day) key. At most one row exists per key; LastInvocationAt gates
// the hourly cooldown on repeated replay requests.
type UsageRecord struct {
	ID               string     `json:"id"                 gorm:"type:char(36);primaryKey"`
	UserID           int64      `json:"user_id"            gorm:"not null;uniqueIndex:ux_usage_key,priority:1"`
	ChatID           int64      `json:"chat_id"            gorm:"not null;uniqueIndex:ux_usage_key,priority:2"`
	Command          string     `json:"command"            gorm:"type:varchar(32);not null;uniqueIndex:ux_usage_key,priority:3"`
	Day              string     `json:"day"                gorm:"type:char(10);not null;uniqueIndex:ux_usage_key,priority:4"`
	LastInvocationAt *time.Time `json:"last_invocation_at" gorm:"index"`
}

// TableName returns the database table name for UsageRecord.
func (UsageRecord) TableName() string { return "command_usage" }

// DailySelection is the idempotent outcome of a command for one
// (chat, command, calendar day) key. The row is created exactly once by the
// first invocation that wins the insert race; it is never updated afterwards.
//
// SecondaryUserID is set only for paired commands. Payload carries an opaque
// blob for command-specific extras and may be empty.
type DailySelection struct {
	ID              string    `json:"id"                gorm:"type:char(36);primaryKey"`
	ChatID          int64     `json:"chat_id"           gorm:"not null;uniqueIndex:ux_selection_key,priority:1"`
	Command         string    `json:"command"           gorm:"type:varchar(32);not null;uniqueIndex:ux_selection_key,priority:2"`
	Day             string    `json:"day"               gorm:"type:char(10);not null;uniqueIndex:ux_selection_key,priority:3"`
	PrimaryUserID   int64     `json:"primary_user_id"   gorm:"not null"`
	SecondaryUserID *int64    `json:"secondary_user_id,omitempty"`
	Payload         string    `json:"payload,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"        gorm:"index"`
}

// TableName returns the database table name for DailySelection.
func (DailySelection) TableName() string { return "daily_selections" }

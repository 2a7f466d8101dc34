package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/dizzymate/aura-bot/internal/domain"
	"github.com/dizzymate/aura-bot/internal/services"
)

func TestDisplayName(t *testing.T) {
	for _, tc := range []struct {
		first, last, want string
	}{
		{"Alice", "", "Alice"},
		{"Alice", "Smith", "Alice Smith"},
		{"  Alice  ", " Smith ", "Alice Smith"},
		{"", "Smith", "User"},
		{"", "", "User"},
	} {
		if got := displayName(tc.first, tc.last); got != tc.want {
			t.Fatalf("displayName(%q, %q) = %q, want %q", tc.first, tc.last, got, tc.want)
		}
	}
}

func TestMentionHTML_EscapesName(t *testing.T) {
	got := mentionHTML(services.UserRef{ID: 42, FirstName: "<b>Evil & Co</b>"})
	if !strings.Contains(got, `tg://user?id=42`) {
		t.Fatalf("mention missing user link: %s", got)
	}
	if strings.Contains(got, "<b>Evil") {
		t.Fatalf("name not escaped: %s", got)
	}
	if !strings.Contains(got, "&lt;b&gt;Evil &amp; Co&lt;/b&gt;") {
		t.Fatalf("unexpected escaping: %s", got)
	}
}

func TestRenderSelected_Single(t *testing.T) {
	out := &services.Outcome{
		Users:      []services.UserRef{{ID: 1, FirstName: "Alice"}},
		PointDelta: -100,
	}
	msg := renderSelected("gay", out)
	if !strings.Contains(msg, "Alice") {
		t.Fatalf("missing selected name: %s", msg)
	}
	if !strings.Contains(msg, "-100 aura points") {
		t.Fatalf("fresh selection must show the delta: %s", msg)
	}

	out.IsReplay = true
	msg = renderSelected("gay", out)
	if strings.Contains(msg, "aura points") {
		t.Fatalf("replay must not repeat the delta: %s", msg)
	}
}

func TestRenderSelected_PositiveDelta(t *testing.T) {
	out := &services.Outcome{
		Users:      []services.UserRef{{ID: 1, FirstName: "Alice"}},
		PointDelta: 500,
	}
	msg := renderSelected("respect", out)
	if !strings.Contains(msg, "+500 aura points") {
		t.Fatalf("positive delta must be shown with a sign: %s", msg)
	}
}

func TestRenderSelected_Couple(t *testing.T) {
	out := &services.Outcome{
		Users: []services.UserRef{
			{ID: 1, FirstName: "Alice"},
			{ID: 2, FirstName: "Bob"},
		},
		PointDelta: 100,
	}
	msg := renderSelected("couple", out)
	if !strings.Contains(msg, "Alice") || !strings.Contains(msg, "Bob") {
		t.Fatalf("couple copy must mention both users: %s", msg)
	}
	if !strings.Contains(msg, "Both get +100 aura points") {
		t.Fatalf("couple copy must show the shared delta: %s", msg)
	}
}

func TestRenderRejection_NightWindow(t *testing.T) {
	out := services.Rejection(services.RejectNightOnlyWindow)
	out.NightRemaining = 3*time.Hour + 25*time.Minute
	msg := renderRejection("ghost", out)
	if !strings.Contains(msg, "3h 25m") {
		t.Fatalf("expected remaining time in copy: %s", msg)
	}
}

func TestRenderRejection_Limits(t *testing.T) {
	msg := renderRejection("gay", services.Rejection(services.RejectHourlyLimit))
	if !strings.Contains(msg, "/gay") || !strings.Contains(msg, "hour") {
		t.Fatalf("hourly copy: %s", msg)
	}
	msg = renderRejection("gay", services.Rejection(services.RejectDailyLimit))
	if !strings.Contains(msg, "tomorrow") {
		t.Fatalf("daily copy: %s", msg)
	}
	msg = renderRejection("couple", services.Rejection(services.RejectInsufficientMembers))
	if !strings.Contains(msg, "Not enough active members") {
		t.Fatalf("pool copy: %s", msg)
	}
}

func TestRenderLeaderboard(t *testing.T) {
	users := []domain.User{
		{ID: 1, FirstName: "Alice", Points: 500},
		{ID: 2, FirstName: "Bob", Points: 100},
		{ID: 3, FirstName: "Carol", Points: 0},
		{ID: 4, FirstName: "Dave", Points: -200},
	}
	msg := renderLeaderboard(users, "Test <Chat>")
	if !strings.Contains(msg, "🥇") || !strings.Contains(msg, "🥈") || !strings.Contains(msg, "🥉") {
		t.Fatalf("missing medals: %s", msg)
	}
	if !strings.Contains(msg, "🏅") {
		t.Fatalf("missing fallback medal for rank 4: %s", msg)
	}
	if strings.Contains(msg, "Test <Chat>") {
		t.Fatalf("chat title not escaped: %s", msg)
	}
	if !strings.Contains(msg, "Test &lt;Chat&gt;") {
		t.Fatalf("expected escaped chat title: %s", msg)
	}
	if strings.Index(msg, "Alice") > strings.Index(msg, "Bob") {
		t.Fatalf("ranking order lost: %s", msg)
	}
}

func TestRenderLeaderboard_Empty(t *testing.T) {
	msg := renderLeaderboard(nil, "")
	if !strings.Contains(msg, "No data available") {
		t.Fatalf("empty copy: %s", msg)
	}
}

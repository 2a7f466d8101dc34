// Message copy and HTML rendering helpers. Mentions always show the
// person's name (never @username) as a clickable tg://user link.
package bot

import (
	"fmt"
	"html"
	"math/rand"
	"strings"

	"github.com/dizzymate/aura-bot/internal/domain"
	"github.com/dizzymate/aura-bot/internal/services"
	"github.com/dizzymate/aura-bot/internal/sysutil"
)

// singleTemplates holds the randomized copy for one-person commands. Each
// entry takes the selected user's mention.
var singleTemplates = map[string][]string{
	"gay": {
		"🏳️‍🌈 Today's Gay of the Day is %s! 🌈✨",
		"🏳️‍🌈 Congratulations %s, you're the fabulous Gay of the Day! 💅✨",
		"🌈 %s has been crowned the Gay of the Day! 🏳️‍🌈👑",
	},
	"simp": {
		"🥺 %s is today's biggest simp! 💸👑",
		"😍 Behold the ultimate simp of the day: %s! 🥺💕",
		"👑 %s has achieved maximum simp level today! 🥺✨",
	},
	"toxic": {
		"☠️ %s is spreading toxic vibes today! 🤢💀",
		"🧪 Warning: %s is today's most toxic member! ☠️⚠️",
		"💀 %s wins the toxic award of the day! 🧪☠️",
	},
	"cringe": {
		"😬 %s is today's cringe master! 🤡💀",
		"🤢 Maximum cringe level achieved by %s! 😬🤡",
		"💀 %s made everyone cringe today! 😬✨",
	},
	"respect": {
		"🫡 Infinite respect for %s! 👑✨",
		"🙏 %s deserves all the respect today! 🫡💫",
		"👑 Mad respect for %s! 🙏✨",
	},
	"sus": {
		"📮 %s is acting pretty sus today! 👀🔍",
		"🤔 %s looking sus af! 📮👀",
		"👀 Emergency meeting! %s is sus! 📮🚨",
	},
	"ghost": {
		"👻 %s is tonight's spooky ghost! 🌙💀",
		"🌙 %s haunts the darkness tonight! 👻⚰️",
		"💀 %s emerges from the shadows! 👻🌑",
	},
}

// coupleTemplates takes two mentions.
var coupleTemplates = []string{
	"💕 Today's adorable couple is %s and %s! 💑✨",
	"❤️ Love is in the air! %s and %s are today's couple! 💕🥰",
	"👫 %s and %s make the perfect couple today! 💖✨",
}

// displayName renders "First" or "First Last", falling back to "User".
func displayName(first, last string) string {
	name := strings.TrimSpace(first)
	if name != "" && strings.TrimSpace(last) != "" {
		name += " " + strings.TrimSpace(last)
	}
	return sysutil.FirstNonEmpty(name, "User")
}

// mentionHTML builds a clickable mention for a selected user.
func mentionHTML(u services.UserRef) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`,
		u.ID, html.EscapeString(displayName(u.FirstName, u.LastName)))
}

// renderSelected formats a Selected outcome for one command. Replays repeat
// the announcement without the aura-delta suffix, mirroring that no points
// were applied.
func renderSelected(command string, out *services.Outcome) string {
	var msg string
	if len(out.Users) == 2 {
		tpl := coupleTemplates[rand.Intn(len(coupleTemplates))]
		msg = fmt.Sprintf(tpl, mentionHTML(out.Users[0]), mentionHTML(out.Users[1]))
		if !out.IsReplay {
			msg += fmt.Sprintf("\n\n✨ <b>Both get %+d aura points!</b>", out.PointDelta)
		}
		return msg
	}

	tpls := singleTemplates[command]
	msg = fmt.Sprintf(tpls[rand.Intn(len(tpls))], mentionHTML(out.Users[0]))
	if !out.IsReplay {
		if out.PointDelta > 0 {
			msg += fmt.Sprintf("\n\n✨ <b>+%d aura points!</b>", out.PointDelta)
		} else {
			msg += fmt.Sprintf("\n\n💔 <b>%d aura points!</b>", out.PointDelta)
		}
	}
	return msg
}

// renderRejection formats a policy rejection for one command.
func renderRejection(command string, out *services.Outcome) string {
	switch out.Reason {
	case services.RejectNotAGroup:
		return "❌ This command only works in groups! Add me to a group to use aura commands."
	case services.RejectHourlyLimit:
		return fmt.Sprintf("⏰ Hold up! You need to wait an hour before using /%s again!", command)
	case services.RejectDailyLimit:
		return fmt.Sprintf("⏰ You've already used /%s today! Come back tomorrow for a new selection!", command)
	case services.RejectInsufficientMembers:
		return "❌ Not enough active members in this chat to use this command!"
	case services.RejectNightOnlyWindow:
		rem := out.NightRemaining
		hours := int(rem.Hours())
		minutes := int(rem.Minutes()) % 60
		return fmt.Sprintf(
			"🌅 The ghost command only works during night time (6 PM - 6 AM)!\n"+
				"⏰ Come back in %dh %dm when the darkness falls... 👻", hours, minutes)
	default:
		return "❌ Could not run this command right now. Try again later!"
	}
}

// renderLeaderboard formats the aura ranking for a chat.
func renderLeaderboard(users []domain.User, chatTitle string) string {
	if len(users) == 0 {
		return "📊 <b>Aura Leaderboard</b> 📊\n\n❌ No data available yet! Use some commands to get started! 🚀"
	}

	var b strings.Builder
	b.WriteString("📊 <b>Aura Leaderboard</b>")
	if chatTitle != "" {
		b.WriteString(" - <b>" + html.EscapeString(chatTitle) + "</b>")
	}
	b.WriteString(" 📊\n\n")

	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		medal := "🏅"
		if i < len(medals) {
			medal = medals[i]
		}
		ref := services.UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
		fmt.Fprintf(&b, "%s %s: <b>%d</b> aura\n", medal, mentionHTML(ref), u.Points)
	}

	b.WriteString("\n💡 Use commands to gain or lose aura points!")
	return b.String()
}

// renderStart formats the /start greeting.
func renderStart(caller services.UserRef) string {
	return fmt.Sprintf(`🎉 <b>Welcome to Aura Bot!</b> 🎉

Hello %s! 👋

🌟 <b>What can I do?</b>
• Use fun commands to assign daily titles
• Track aura points for group activities
• Show leaderboards and statistics

🎮 <b>Available Commands:</b>
/gay - Find today's Gay of the Day 🏳️‍🌈
/couple - Discover today's perfect couple 💕
/simp - Crown the biggest simp 🥺
/toxic - Identify the toxic member ☠️
/cringe - Find the cringe master 😬
/respect - Show ultimate respect 🫡
/sus - Spot suspicious behavior 📮
/ghost - Nighttime spooky selection 👻
/aura - View the aura leaderboard 📊

💫 <b>How it works:</b>
Commands can only be used once per day per user in each group.
Some commands give positive aura points, others negative!

Have fun and may your aura be strong! ✨`, mentionHTML(caller))
}

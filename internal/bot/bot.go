package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/dizzymate/aura-bot/internal/config"
	"github.com/dizzymate/aura-bot/internal/services"
)

// Bot is the Telegram transport for the selection engine.
type Bot struct {
	api    *tgbotapi.BotAPI
	svc    *services.SelectionService
	roster *services.RosterService
	flood  *FloodGuard
	cfg    config.Config
	log    zerolog.Logger
}

// New authorizes against the Telegram API and builds the transport.
func New(cfg config.Config, svc *services.SelectionService, roster *services.RosterService, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized")

	return &Bot{
		api:    api,
		svc:    svc,
		roster: roster,
		flood:  NewFloodGuard(cfg.FloodRPS, cfg.FloodBurst),
		cfg:    cfg,
		log:    log,
	}, nil
}

// Start registers the command menu and consumes updates until ctx is
// cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.registerCommands(); err != nil {
		b.log.Warn().Err(err).Msg("could not register command menu")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// registerCommands publishes the "/" menu to Telegram.
func (b *Bot) registerCommands() error {
	cmds := []tgbotapi.BotCommand{
		{Command: "start", Description: "Get started with Aura Bot"},
	}
	for _, name := range b.svc.Registry.Names() {
		cmds = append(cmds, tgbotapi.BotCommand{
			Command:     name,
			Description: b.svc.Registry[name].Description,
		})
	}
	cmds = append(cmds, tgbotapi.BotCommand{Command: "aura", Description: "View the aura leaderboard"})

	_, err := b.api.Request(tgbotapi.NewSetMyCommands(cmds...))
	return err
}

// handleMessage routes one inbound message: roster events, commands, or
// plain activity tracking.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	now := time.Now()

	// Roster events arrive as status-update messages.
	if len(msg.NewChatMembers) > 0 {
		for _, m := range msg.NewChatMembers {
			if err := b.roster.ObserveJoin(ctx, chatID, profileOf(&m), now); err != nil {
				b.log.Error().Err(err).Int64("chat_id", chatID).Msg("join ingest failed")
			}
		}
		return
	}
	if msg.LeftChatMember != nil && !msg.LeftChatMember.IsBot {
		if err := b.roster.ObserveLeave(ctx, chatID, msg.LeftChatMember.ID, now); err != nil {
			b.log.Error().Err(err).Int64("chat_id", chatID).Msg("leave ingest failed")
		}
		return
	}

	if msg.From == nil {
		return
	}

	if !msg.IsCommand() {
		if !msg.Chat.IsPrivate() {
			if err := b.roster.ObserveActivity(ctx, chatID, profileOf(msg.From), now); err != nil {
				b.log.Error().Err(err).Int64("chat_id", chatID).Msg("activity ingest failed")
			}
		}
		return
	}

	if !b.flood.Allow(chatID) {
		b.log.Debug().Int64("chat_id", chatID).Msg("flood guard dropped command")
		return
	}

	command := msg.Command()
	switch command {
	case "start":
		b.handleStart(ctx, msg)
	case "aura":
		b.handleLeaderboard(ctx, msg)
	default:
		if _, ok := b.svc.Registry[command]; ok {
			b.handleEngagement(ctx, msg, command, now)
			return
		}
		// Unknown commands are ignored; Telegram delivers every slash
		// message in groups the bot is in.
	}
}

// handleStart greets the caller and records them in the ledger.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	caller := profileOf(msg.From)
	if !msg.Chat.IsPrivate() {
		if err := b.roster.ObserveActivity(ctx, msg.Chat.ID, caller, time.Now()); err != nil {
			b.log.Error().Err(err).Msg("start ingest failed")
		}
	}

	b.typing(msg.Chat.ID)
	reply := tgbotapi.NewMessage(msg.Chat.ID, renderStart(refOf(caller)))
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = b.startKeyboard()
	b.send(reply)
}

// handleLeaderboard renders the chat's aura ranking.
func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.sendText(msg.Chat.ID, "❌ Aura leaderboard only works in groups! Add me to a group to see rankings.")
		return
	}

	b.typing(msg.Chat.ID)
	users, err := b.svc.Leaderboard(ctx, msg.Chat.ID)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("leaderboard failed")
		b.sendText(msg.Chat.ID, "❌ Could not load the leaderboard. Try again later!")
		return
	}
	b.sendHTML(msg.Chat.ID, renderLeaderboard(users, msg.Chat.Title))
}

// handleEngagement runs one selection command through the engine and
// renders the outcome.
func (b *Bot) handleEngagement(ctx context.Context, msg *tgbotapi.Message, command string, now time.Time) {
	if msg.Chat.IsPrivate() {
		b.sendText(msg.Chat.ID, renderRejection(command, services.Rejection(services.RejectNotAGroup)))
		return
	}

	b.typing(msg.Chat.ID)

	caller := profileOf(msg.From)
	if err := b.roster.ObserveActivity(ctx, msg.Chat.ID, caller, now); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("caller ingest failed")
	}

	out, err := b.svc.Invoke(ctx, caller.ID, msg.Chat.ID, command, now)
	if err != nil {
		b.log.Error().Err(err).
			Int64("chat_id", msg.Chat.ID).
			Str("command", command).
			Msg("invocation failed")
		b.sendText(msg.Chat.ID, "❌ Something went wrong. Try again later!")
		return
	}

	if out.Rejected {
		b.sendText(msg.Chat.ID, renderRejection(command, out))
		return
	}
	b.sendHTML(msg.Chat.ID, renderSelected(command, out))
}

// startKeyboard builds the links shown under the /start greeting.
func (b *Bot) startKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Updates", b.cfg.UpdatesLink),
			tgbotapi.NewInlineKeyboardButtonURL("Support", b.cfg.SupportLink),
		),
	}
	if b.cfg.BotUsername != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(
				"Add Me To Your Group",
				fmt.Sprintf("https://t.me/%s?startgroup=true", b.cfg.BotUsername),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug().Err(err).Msg("chat action failed")
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("send failed")
	}
}

// profileOf converts a Telegram user into a roster profile.
func profileOf(u *tgbotapi.User) services.Profile {
	return services.Profile{
		ID:           u.ID,
		Username:     u.UserName,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsBot:        u.IsBot,
		LanguageCode: u.LanguageCode,
	}
}

// refOf converts a roster profile into a render reference.
func refOf(p services.Profile) services.UserRef {
	return services.UserRef{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

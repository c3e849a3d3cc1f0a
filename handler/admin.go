package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"regbot/model"
	"regbot/service"
	"regbot/session"
)

// AdminHandler owns the broadcast and recall commands. Every entry point
// checks the static allow-list; non-members are rejected and any in-flight
// state of theirs is cleared.
type AdminHandler struct {
	sessions    *session.Store
	admins      []int64
	broadcaster *service.Broadcaster
}

func NewAdminHandler(sessions *session.Store, admins []int64, broadcaster *service.Broadcaster) *AdminHandler {
	return &AdminHandler{
		sessions:    sessions,
		admins:      admins,
		broadcaster: broadcaster,
	}
}

func (h *AdminHandler) isAdmin(userID int64) bool {
	for _, id := range h.admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (h *AdminHandler) HandleMessage(ctx context.Context, tg Sender, msg *models.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch {
	case text == "/send":
		if !h.isAdmin(userID) {
			h.send(ctx, tg, chatID, textNoPermission)
			return
		}
		sess := h.sessions.Reset(userID)
		sess.State = model.StateAdminAudience
		h.sendKB(ctx, tg, chatID, textChooseAudience, audienceKeyboard())
		return

	case strings.HasPrefix(text, "/delete"):
		h.handleRecall(ctx, tg, msg)
		return
	}

	sess, ok := h.sessions.Get(userID)
	if !ok {
		return
	}

	switch sess.State {
	case model.StateAdminAudience:
		if !h.isAdmin(userID) {
			h.sessions.Clear(userID)
			h.send(ctx, tg, chatID, textNoPermission)
			return
		}
		h.sendKB(ctx, tg, chatID, textWrongAudience, audienceKeyboard())

	case model.StateAdminBroadcast:
		if !h.isAdmin(userID) {
			h.sessions.Clear(userID)
			h.send(ctx, tg, chatID, textNoPermission)
			return
		}
		h.runBroadcast(ctx, tg, msg, sess.Audience)
	}
}

func (h *AdminHandler) HandleCallback(ctx context.Context, tg Sender, cb *models.CallbackQuery) {
	userID := cb.From.ID
	chatID := callbackChatID(cb)

	if !h.isAdmin(userID) {
		_, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
			Text:            textNoPermission,
			ShowAlert:       true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("error answering callback query")
		}
		h.sessions.Clear(userID)
		return
	}

	if _, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID}); err != nil {
		log.Warn().Err(err).Msg("error answering callback query")
	}

	sess, ok := h.sessions.Get(userID)
	if !ok {
		return
	}

	switch sess.State {
	case model.StateAdminAudience:
		switch cb.Data {
		case "aud:can":
			h.sessions.Clear(userID)
			h.send(ctx, tg, chatID, textBroadcastOff)
		case "aud:all":
			h.askText(ctx, tg, sess, chatID, model.AudienceAll)
		case "aud:acc":
			h.askText(ctx, tg, sess, chatID, model.AudienceAccelerator)
		case "aud:ev":
			h.askText(ctx, tg, sess, chatID, model.AudienceEvents)
		}

	case model.StateAdminBroadcast:
		if cb.Data == "bc:can" {
			h.sessions.Clear(userID)
			h.send(ctx, tg, chatID, textBroadcastOff)
		}
	}
}

func (h *AdminHandler) askText(ctx context.Context, tg Sender, sess *model.Session, chatID int64, audience model.Audience) {
	sess.Audience = audience
	sess.State = model.StateAdminBroadcast
	h.sendKB(ctx, tg, chatID, textEnterBroadcast, broadcastCancelKeyboard())
}

// runBroadcast fans the admin's text out to the audience and tracks the
// deliveries under both the command message and the summary message, so a
// reply to either can recall the broadcast.
func (h *AdminHandler) runBroadcast(ctx context.Context, tg Sender, msg *models.Message, audience model.Audience) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	h.sessions.Clear(userID)

	delivered, failed, err := h.broadcaster.Broadcast(ctx, tg, audience, msg.Text)
	if err != nil {
		log.Error().Err(err).Str("audience", string(audience)).Msg("broadcast failed")
		h.send(ctx, tg, chatID, textAudienceFailed)
		return
	}
	if len(delivered) == 0 && failed == 0 {
		h.send(ctx, tg, chatID, textEmptyAudience)
		return
	}

	log.Info().Str("audience", string(audience)).Int("delivered", len(delivered)).Int("failed", failed).Msg("broadcast finished")
	h.broadcaster.Track(msg.ID, delivered)

	summary, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf(textBroadcastDone, len(delivered), failed),
	})
	if err != nil {
		log.Warn().Err(err).Msg("error sending broadcast summary")
		return
	}
	h.broadcaster.Track(summary.ID, delivered)
}

func (h *AdminHandler) handleRecall(ctx context.Context, tg Sender, msg *models.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if !h.isAdmin(userID) {
		h.send(ctx, tg, chatID, textNoPermission)
		return
	}
	if msg.ReplyToMessage == nil {
		h.send(ctx, tg, chatID, textDeleteUsage)
		return
	}

	deleted, failed, err := h.broadcaster.Recall(ctx, tg, msg.ReplyToMessage.ID)
	if errors.Is(err, model.ErrNotTracked) {
		h.send(ctx, tg, chatID, textNotBroadcast)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("recall failed")
		return
	}
	h.send(ctx, tg, chatID, fmt.Sprintf(textRecallDone, deleted, failed))
}

func (h *AdminHandler) send(ctx context.Context, tg Sender, chatID int64, text string) {
	if _, err := tg.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.Warn().Err(err).Msg("error sending message")
	}
}

func (h *AdminHandler) sendKB(ctx context.Context, tg Sender, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	if _, err := tg.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: kb}); err != nil {
		log.Warn().Err(err).Msg("error sending message")
	}
}

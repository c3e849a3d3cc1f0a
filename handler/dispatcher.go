package handler

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"regbot/model"
	"regbot/session"
)

// Dispatcher routes each update to the registration or admin engine based
// on the command and the user's current state. It is the bot's single
// default handler; nothing is registered through the transport library's
// own routing.
type Dispatcher struct {
	sessions *session.Store
	reg      *RegistrationHandler
	admin    *AdminHandler
}

func NewDispatcher(sessions *session.Store, reg *RegistrationHandler, admin *AdminHandler) *Dispatcher {
	return &Dispatcher{sessions: sessions, reg: reg, admin: admin}
}

// Handle matches bot.HandlerFunc.
func (d *Dispatcher) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	d.Dispatch(ctx, b, update)
}

// Dispatch is Handle with the transport narrowed to Sender, for tests.
func (d *Dispatcher) Dispatch(ctx context.Context, tg Sender, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if d.forAdmin(cb.From.ID, "", cb.Data) {
			d.admin.HandleCallback(ctx, tg, cb)
			return
		}
		d.reg.HandleCallback(ctx, tg, cb)

	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		if d.forAdmin(msg.From.ID, strings.TrimSpace(msg.Text), "") {
			d.admin.HandleMessage(ctx, tg, msg)
			return
		}
		d.reg.HandleMessage(ctx, tg, msg)
	}
}

func (d *Dispatcher) forAdmin(userID int64, text, data string) bool {
	if text == "/start" {
		return false
	}
	if text == "/send" || text == "/delete" || strings.HasPrefix(text, "/delete ") {
		return true
	}
	if strings.HasPrefix(data, "aud:") || data == "bc:can" {
		return true
	}
	sess, ok := d.sessions.Get(userID)
	return ok && (sess.State == model.StateAdminAudience || sess.State == model.StateAdminBroadcast)
}

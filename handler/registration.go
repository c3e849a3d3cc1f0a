package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"regbot/model"
	"regbot/repo"
	"regbot/session"
	"regbot/validator"
)

// Sender is the slice of the transport the handlers need. *bot.Bot
// satisfies it; tests plug in fakes.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// RegistrationHandler drives the two registration conversations. Every
// inbound message or button press is dispatched by the session's current
// state; wrong input kinds re-issue the same prompt without advancing.
type RegistrationHandler struct {
	sessions      *session.Store
	registrations repo.RegistrationStore
	admins        []int64
	support       string
	policyURL     string
	now           func() time.Time
}

func NewRegistrationHandler(
	sessions *session.Store,
	registrations repo.RegistrationStore,
	admins []int64,
	support, policyURL string,
) *RegistrationHandler {
	return &RegistrationHandler{
		sessions:      sessions,
		registrations: registrations,
		admins:        admins,
		support:       support,
		policyURL:     policyURL,
		now:           time.Now,
	}
}

func (h *RegistrationHandler) HandleMessage(ctx context.Context, tg Sender, msg *models.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		// Stickers, photos and other non-text input are ignored.
		return
	}

	if text == "/start" {
		h.start(ctx, tg, userID, chatID)
		return
	}

	sess, ok := h.sessions.Get(userID)
	if !ok || sess.State == model.StateIdle {
		h.send(ctx, tg, chatID, textPressStart)
		return
	}

	switch sess.State {
	case model.StateChoosingFlow:
		// Free text instead of picking a flow drops the session.
		h.sessions.Clear(userID)
		h.send(ctx, tg, chatID, textPressStart)

	// Accelerator
	case model.StateAccName:
		h.advance(ctx, tg, sess, chatID, model.FieldFullName, text, model.StateAccProject, textAskProject, nil)
	case model.StateAccProject:
		h.advance(ctx, tg, sess, chatID, model.FieldProject, text, model.StateAccEmail, textAskEmail, nil)
	case model.StateAccEmail:
		if !validator.Email(text) {
			h.send(ctx, tg, chatID, textBadEmail)
			return
		}
		h.advance(ctx, tg, sess, chatID, model.FieldEmail, text, model.StateAccContact, textAskContact, nil)
	case model.StateAccContact:
		if !validator.Contact(text) {
			h.send(ctx, tg, chatID, textBadContact)
			return
		}
		h.advance(ctx, tg, sess, chatID, model.FieldContact, text, model.StateAccTrack, textAskTrack, choiceKeyboard(trackChoices))
	case model.StateAccTrack:
		h.sendKB(ctx, tg, chatID, textWrongTrack, choiceKeyboard(trackChoices))
	case model.StateAccStage:
		h.sendKB(ctx, tg, chatID, textWrongStage, choiceKeyboard(stageChoices))
	case model.StateAccDescription:
		h.advance(ctx, tg, sess, chatID, model.FieldDescription, text, model.StateAccPitch, textAskPitch, choiceKeyboard(pitchChoices))
	case model.StateAccPitch:
		h.sendKB(ctx, tg, chatID, textWrongPitch, choiceKeyboard(pitchChoices))
	case model.StateAccPresentationURL:
		if !validator.URL(text) {
			h.send(ctx, tg, chatID, textBadURL)
			return
		}
		h.advance(ctx, tg, sess, chatID, model.FieldPresentationURL, text, model.StateAccTeam, textAskTeam, nil)
	case model.StateAccTeam:
		h.advance(ctx, tg, sess, chatID, model.FieldTeam, text, model.StateAccAffiliation, textAskAffiliation, yesNoKeyboard())
	case model.StateAccAffiliation, model.StateEvAffiliation:
		h.sendKB(ctx, tg, chatID, textWrongYesNo, yesNoKeyboard())
	case model.StateAccConsent, model.StateEvConsent:
		h.sendKB(ctx, tg, chatID, textWrongConsent, consentKeyboard())
	case model.StateAccConfirmation, model.StateEvConfirmation:
		h.sendKB(ctx, tg, chatID, textWrongConfirm, confirmKeyboard())

	// Events
	case model.StateEvName:
		h.advance(ctx, tg, sess, chatID, model.FieldFullName, text, model.StateEvAffiliation, textAskAffiliationEv, yesNoKeyboard())
	case model.StateEvProgram:
		h.advance(ctx, tg, sess, chatID, model.FieldProgram, text, model.StateEvContact, textAskContact, nil)
	case model.StateEvContact:
		if !validator.Contact(text) {
			h.send(ctx, tg, chatID, textBadContact)
			return
		}
		h.advance(ctx, tg, sess, chatID, model.FieldContact, text, model.StateEvQuestion, textAskQuestion, nil)
	case model.StateEvQuestion:
		// "-" means skipped and is stored verbatim.
		h.advance(ctx, tg, sess, chatID, model.FieldQuestion, text, model.StateEvConsent, h.consentText(), consentKeyboard())

	default:
		h.sessions.Clear(userID)
		h.send(ctx, tg, chatID, textPressStart)
	}
}

func (h *RegistrationHandler) HandleCallback(ctx context.Context, tg Sender, cb *models.CallbackQuery) {
	h.answer(ctx, tg, cb.ID)

	userID := cb.From.ID
	chatID := callbackChatID(cb)

	sess, ok := h.sessions.Get(userID)
	if !ok {
		return
	}

	switch sess.State {
	case model.StateChoosingFlow:
		switch cb.Data {
		case "ev:acc":
			sess.Flow = model.FlowAccelerator
			sess.State = model.StateAccName
			h.send(ctx, tg, chatID, textAccStart)
		case "ev:evs":
			sess.Flow = model.FlowEvents
			sess.State = model.StateEvName
			h.send(ctx, tg, chatID, textEvStart)
		}

	case model.StateAccTrack:
		if label, ok := labelFor(trackChoices, cb.Data); ok {
			sess.Fields[model.FieldTrack] = label
			sess.State = model.StateAccStage
			h.sendKB(ctx, tg, chatID, textAskStage, choiceKeyboard(stageChoices))
		}
	case model.StateAccStage:
		if label, ok := labelFor(stageChoices, cb.Data); ok {
			sess.Fields[model.FieldStage] = label
			sess.State = model.StateAccDescription
			h.send(ctx, tg, chatID, textAskDescription)
		}
	case model.StateAccPitch:
		if label, ok := labelFor(pitchChoices, cb.Data); ok {
			sess.Fields[model.FieldPitch] = label
			sess.State = model.StateAccPresentationURL
			h.send(ctx, tg, chatID, textAskURL)
		}

	case model.StateAccAffiliation:
		if answer, ok := yesNo(cb.Data); ok {
			sess.Fields[model.FieldAffiliated] = answer
			sess.State = model.StateAccConsent
			h.sendKB(ctx, tg, chatID, h.consentText(), consentKeyboard())
		}
	case model.StateEvAffiliation:
		if answer, ok := yesNo(cb.Data); ok {
			sess.Fields[model.FieldAffiliated] = answer
			sess.State = model.StateEvProgram
			h.send(ctx, tg, chatID, textAskProgram)
		}

	case model.StateAccConsent:
		if cb.Data == "consent" {
			sess.State = model.StateAccConfirmation
			h.sendKB(ctx, tg, chatID, summaryAccelerator(sess.Fields), confirmKeyboard())
		}
	case model.StateEvConsent:
		if cb.Data == "consent" {
			sess.State = model.StateEvConfirmation
			h.sendKB(ctx, tg, chatID, summaryEvent(sess.Fields), confirmKeyboard())
		}

	case model.StateAccConfirmation, model.StateEvConfirmation:
		switch cb.Data {
		case "conf:y":
			h.finalize(ctx, tg, sess, chatID)
		case "conf:e":
			// Full restart: every previously entered value is discarded.
			sess.Fields = make(map[string]string)
			if sess.Flow == model.FlowAccelerator {
				sess.State = model.StateAccName
			} else {
				sess.State = model.StateEvName
			}
			h.send(ctx, tg, chatID, textRestartName)
		}
	}
}

func (h *RegistrationHandler) start(ctx context.Context, tg Sender, userID, chatID int64) {
	sess := h.sessions.Reset(userID)
	sess.State = model.StateChoosingFlow
	h.sendParams(ctx, tg, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf(textWelcome, h.support),
		ReplyMarkup: &models.ReplyKeyboardRemove{RemoveKeyboard: true},
	})
	h.sendKB(ctx, tg, chatID, textChooseFlow, flowKeyboard())
}

// advance stores a validated field value, moves to the next state and
// sends its prompt.
func (h *RegistrationHandler) advance(
	ctx context.Context,
	tg Sender,
	sess *model.Session,
	chatID int64,
	field, value string,
	next model.State,
	prompt string,
	kb *models.InlineKeyboardMarkup,
) {
	sess.Fields[field] = value
	sess.State = next
	if kb != nil {
		h.sendKB(ctx, tg, chatID, prompt, kb)
		return
	}
	h.send(ctx, tg, chatID, prompt)
}

// finalize stamps the submission, writes it to the spreadsheet and tells
// the admins. The session is cleared in both outcomes; after a gateway
// failure the user restarts via /start.
func (h *RegistrationHandler) finalize(ctx context.Context, tg Sender, sess *model.Session, chatID int64) {
	fields := make(map[string]string, len(sess.Fields)+2)
	for k, v := range sess.Fields {
		fields[k] = v
	}
	fields[model.FieldUserID] = strconv.FormatInt(sess.UserID, 10)
	fields[model.FieldDate] = h.now().Format("2006-01-02 15:04:05")

	flowLabel := labelEvents
	if sess.Flow == model.FlowAccelerator {
		flowLabel = labelAccelerator
	}

	err := h.registrations.SaveRegistration(ctx, sess.Flow, fields)
	h.sessions.Clear(sess.UserID)
	if err != nil {
		log.Error().Err(err).Int64("user", sess.UserID).Str("flow", string(sess.Flow)).Msg("saving registration failed")
		h.send(ctx, tg, chatID, textSaveFailed)
		return
	}

	log.Info().Int64("user", sess.UserID).Str("flow", string(sess.Flow)).Msg("registration saved")
	h.send(ctx, tg, chatID, fmt.Sprintf(textSaved, flowLabel))
	h.notifyAdmins(ctx, tg, flowLabel, fields)
}

// notifyAdmins fans a short summary out to every admin. Failures are
// logged and never surfaced to the submitter.
func (h *RegistrationHandler) notifyAdmins(ctx context.Context, tg Sender, flowLabel string, fields map[string]string) {
	text := fmt.Sprintf(textAdminNewRecord, flowLabel, fields[model.FieldFullName], fields[model.FieldContact])
	for _, admin := range h.admins {
		_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: admin,
			Text:   text,
		})
		if err != nil {
			log.Warn().Err(err).Int64("admin", admin).Msg("admin notification failed")
		}
	}
}

func (h *RegistrationHandler) consentText() string {
	return fmt.Sprintf(textConsent, h.policyURL)
}

func (h *RegistrationHandler) send(ctx context.Context, tg Sender, chatID int64, text string) {
	h.sendParams(ctx, tg, &bot.SendMessageParams{ChatID: chatID, Text: text})
}

func (h *RegistrationHandler) sendKB(ctx context.Context, tg Sender, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	h.sendParams(ctx, tg, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: kb})
}

func (h *RegistrationHandler) sendParams(ctx context.Context, tg Sender, params *bot.SendMessageParams) {
	if _, err := tg.SendMessage(ctx, params); err != nil {
		log.Warn().Err(err).Msg("error sending message")
	}
}

func (h *RegistrationHandler) answer(ctx context.Context, tg Sender, callbackID string) {
	_, err := tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID})
	if err != nil {
		log.Warn().Err(err).Msg("error answering callback query")
	}
}

func yesNo(data string) (string, bool) {
	switch data {
	case "yn:y":
		return "Yes", true
	case "yn:n":
		return "No", true
	default:
		return "", false
	}
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	if cb.Message.Message != nil {
		return cb.Message.Message.Chat.ID
	}
	return cb.From.ID
}

// summaryAccelerator renders the confirmation view. Long fields are
// truncated for display only; stored values stay untouched.
func summaryAccelerator(fields map[string]string) string {
	return fmt.Sprintf(
		"Please check your details:\n\n"+
			"Full name: %s\n"+
			"Project: %s\n"+
			"Email: %s\n"+
			"Contact: %s\n"+
			"Track: %s\n"+
			"Stage: %s\n"+
			"Description: %s\n"+
			"Pitch session: %s\n"+
			"Presentation: %s\n"+
			"Team: %s\n"+
			"Affiliated: %s\n\n"+
			textConfirmQuestion,
		fields[model.FieldFullName],
		fields[model.FieldProject],
		fields[model.FieldEmail],
		fields[model.FieldContact],
		fields[model.FieldTrack],
		fields[model.FieldStage],
		truncate(fields[model.FieldDescription], 100),
		fields[model.FieldPitch],
		fields[model.FieldPresentationURL],
		truncate(fields[model.FieldTeam], 80),
		fields[model.FieldAffiliated],
	)
}

func summaryEvent(fields map[string]string) string {
	question := fields[model.FieldQuestion]
	if question == "" {
		question = "-"
	}
	return fmt.Sprintf(
		"Please check your details:\n\n"+
			"Full name: %s\n"+
			"Affiliated: %s\n"+
			"Programme: %s\n"+
			"Contact: %s\n"+
			"Question: %s\n\n"+
			textConfirmQuestion,
		fields[model.FieldFullName],
		fields[model.FieldAffiliated],
		fields[model.FieldProgram],
		fields[model.FieldContact],
		question,
	)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

package handler

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"regbot/model"
	"regbot/service"
	"regbot/session"
)

// fakeStore implements repo.RegistrationStore in memory.
type fakeStore struct {
	saved   []savedRegistration
	saveErr error
	ids     map[model.Audience][]int64
	idsErr  error
}

type savedRegistration struct {
	flow   model.Flow
	fields map[string]string
}

func (f *fakeStore) SaveRegistration(_ context.Context, flow model.Flow, fields map[string]string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	f.saved = append(f.saved, savedRegistration{flow: flow, fields: copied})
	return nil
}

func (f *fakeStore) UserIDs(_ context.Context, audience model.Audience) ([]int64, error) {
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids[audience], nil
}

func (f *fakeStore) CountSince(context.Context, model.Flow, time.Time) (int, error) {
	return 0, nil
}

type sentMessage struct {
	id     int
	chatID int64
	params *bot.SendMessageParams
}

// fakeTG implements Sender and records all traffic.
type fakeTG struct {
	sent     []sentMessage
	deleted  []*bot.DeleteMessageParams
	answered []*bot.AnswerCallbackQueryParams
	nextID   int

	failSendTo map[int64]bool
}

func (f *fakeTG) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	chatID, _ := params.ChatID.(int64)
	if f.failSendTo[chatID] {
		return nil, context.DeadlineExceeded
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{id: f.nextID, chatID: chatID, params: params})
	return &models.Message{ID: f.nextID, Chat: models.Chat{ID: chatID}}, nil
}

func (f *fakeTG) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.deleted = append(f.deleted, params)
	return true, nil
}

func (f *fakeTG) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.answered = append(f.answered, params)
	return true, nil
}

func (f *fakeTG) lastText() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].params.Text
}

func (f *fakeTG) textsTo(chatID int64) []string {
	var texts []string
	for _, m := range f.sent {
		if m.chatID == chatID {
			texts = append(texts, m.params.Text)
		}
	}
	return texts
}

// testEnv wires the full dispatch stack against fakes.
type testEnv struct {
	sessions *session.Store
	store    *fakeStore
	tg       *fakeTG
	reg      *RegistrationHandler
	disp     *Dispatcher
	msgID    int
}

func newTestEnv(admins ...int64) *testEnv {
	sessions := session.NewStore()
	store := &fakeStore{ids: make(map[model.Audience][]int64)}
	reg := NewRegistrationHandler(sessions, store, admins, "@support", "https://example.org/policy")
	admin := NewAdminHandler(sessions, admins, service.NewBroadcaster(store))
	return &testEnv{
		sessions: sessions,
		store:    store,
		tg:       &fakeTG{},
		reg:      reg,
		disp:     NewDispatcher(sessions, reg, admin),
	}
}

func (e *testEnv) message(userID int64, text string) {
	e.messageReply(userID, text, 0)
}

func (e *testEnv) messageReply(userID int64, text string, replyTo int) {
	e.msgID++
	msg := &models.Message{
		ID:   e.msgID,
		From: &models.User{ID: userID},
		Chat: models.Chat{ID: userID},
		Text: text,
	}
	if replyTo != 0 {
		msg.ReplyToMessage = &models.Message{ID: replyTo}
	}
	e.disp.Dispatch(context.Background(), e.tg, &models.Update{Message: msg})
}

func (e *testEnv) callback(userID int64, data string) {
	e.msgID++
	e.disp.Dispatch(context.Background(), e.tg, &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "cbq",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: e.msgID, Chat: models.Chat{ID: userID}},
			},
		},
	})
}

// runAcceleratorFlow walks user through the whole accelerator conversation
// up to (not including) the confirmation decision.
func (e *testEnv) runAcceleratorFlow(userID int64) {
	e.message(userID, "/start")
	e.callback(userID, "ev:acc")
	e.message(userID, "Ivan Petrov")
	e.message(userID, "GreenRoute")
	e.message(userID, "ivan@example.com")
	e.message(userID, "@ivanpetrov")
	e.callback(userID, "tr:clean")
	e.callback(userID, "st:mvp")
	e.message(userID, "Route planner for e-bikes")
	e.callback(userID, "pz:yes")
	e.message(userID, "https://example.com/deck")
	e.message(userID, "Ivan (CEO), Olga (CTO)")
	e.callback(userID, "yn:n")
	e.callback(userID, "consent")
}

func (e *testEnv) runEventFlow(userID int64) {
	e.message(userID, "/start")
	e.callback(userID, "ev:evs")
	e.message(userID, "Anna Smirnova")
	e.callback(userID, "yn:y")
	e.message(userID, "Business Informatics")
	e.message(userID, "@annasm")
	e.message(userID, "-")
	e.callback(userID, "consent")
}

package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"regbot/model"
)

const adminID int64 = 10

func TestSend_NonAdminRejectedWithoutAudiencePrompt(t *testing.T) {
	e := newTestEnv(adminID)
	e.message(5, "/send")

	texts := e.tg.textsTo(5)
	require.Equal(t, []string{textNoPermission}, texts)
	require.Equal(t, 0, e.sessions.Len())
}

func TestSend_EventsOnlyBroadcast(t *testing.T) {
	e := newTestEnv(adminID)
	e.store.ids[model.AudienceEvents] = []int64{1, 2}
	e.store.ids[model.AudienceAccelerator] = []int64{3}

	e.message(adminID, "/send")
	require.Equal(t, textChooseAudience, e.tg.lastText())

	e.callback(adminID, "aud:ev")
	require.Equal(t, textEnterBroadcast, e.tg.lastText())

	e.message(adminID, "Hello")

	require.Equal(t, []string{"Hello"}, e.tg.textsTo(1))
	require.Equal(t, []string{"Hello"}, e.tg.textsTo(2))
	require.Empty(t, e.tg.textsTo(3))

	summary := e.tg.lastText()
	require.Contains(t, summary, "Delivered: 2, failed: 0")
	require.Equal(t, 0, e.sessions.Len())
}

func TestSend_FailuresCountedInSummary(t *testing.T) {
	e := newTestEnv(adminID)
	e.store.ids[model.AudienceAll] = []int64{1, 2, 3}
	e.tg.failSendTo = map[int64]bool{2: true}

	e.message(adminID, "/send")
	e.callback(adminID, "aud:all")
	e.message(adminID, "Hi all")

	require.Contains(t, e.tg.lastText(), "Delivered: 2, failed: 1")
}

func TestSend_EmptyAudience(t *testing.T) {
	e := newTestEnv(adminID)

	e.message(adminID, "/send")
	e.callback(adminID, "aud:acc")
	e.message(adminID, "Anyone?")

	require.Equal(t, textEmptyAudience, e.tg.lastText())
}

func TestSend_CancelAtAudienceStep(t *testing.T) {
	e := newTestEnv(adminID)

	e.message(adminID, "/send")
	e.callback(adminID, "aud:can")

	require.Equal(t, textBroadcastOff, e.tg.lastText())
	require.Equal(t, 0, e.sessions.Len())
}

func TestSend_TextAtAudienceStepRepeatsKeyboard(t *testing.T) {
	e := newTestEnv(adminID)

	e.message(adminID, "/send")
	e.message(adminID, "everyone")

	require.Equal(t, textWrongAudience, e.tg.lastText())
	sess, ok := e.sessions.Get(adminID)
	require.True(t, ok)
	require.Equal(t, model.StateAdminAudience, sess.State)
}

func TestRecall_DeletesTrackedBroadcastOnce(t *testing.T) {
	e := newTestEnv(adminID)
	e.store.ids[model.AudienceEvents] = []int64{1, 2}

	e.message(adminID, "/send")
	e.callback(adminID, "aud:ev")
	e.message(adminID, "Hello")

	// Find the summary message the broadcaster tracked.
	var summaryID int
	for _, m := range e.tg.sent {
		if m.chatID == adminID && strings.Contains(m.params.Text, "Broadcast finished") {
			summaryID = m.id
		}
	}
	require.NotZero(t, summaryID)

	e.messageReply(adminID, "/delete", summaryID)
	require.Equal(t, "Deleted: 2, failed: 0", e.tg.lastText())
	require.Len(t, e.tg.deleted, 2)

	// Second recall of the same id is no longer tracked.
	e.messageReply(adminID, "/delete", summaryID)
	require.Equal(t, textNotBroadcast, e.tg.lastText())
	require.Len(t, e.tg.deleted, 2)
}

func TestRecall_ByCommandMessageID(t *testing.T) {
	e := newTestEnv(adminID)
	e.store.ids[model.AudienceAll] = []int64{1}

	e.message(adminID, "/send")
	e.callback(adminID, "aud:all")
	commandID := e.msgID + 1
	e.message(adminID, "Hello")

	e.messageReply(adminID, "/delete", commandID)
	require.Equal(t, "Deleted: 1, failed: 0", e.tg.lastText())
}

func TestRecall_WithoutReply(t *testing.T) {
	e := newTestEnv(adminID)
	e.message(adminID, "/delete")
	require.Equal(t, textDeleteUsage, e.tg.lastText())
}

func TestRecall_NonAdmin(t *testing.T) {
	e := newTestEnv(adminID)
	e.messageReply(5, "/delete", 123)
	require.Equal(t, textNoPermission, e.tg.lastText())
	require.Empty(t, e.tg.deleted)
}

func TestAdminCallback_NonAdminClearedAndAlerted(t *testing.T) {
	e := newTestEnv(adminID)
	e.message(5, "/start") // user 5 has an in-flight session

	e.callback(5, "aud:acc")

	require.NotEmpty(t, e.tg.answered)
	last := e.tg.answered[len(e.tg.answered)-1]
	require.Equal(t, textNoPermission, last.Text)
	require.True(t, last.ShowAlert)

	_, ok := e.sessions.Get(5)
	require.False(t, ok)
}

func TestDispatcher_AdminStateRoutesPlainText(t *testing.T) {
	e := newTestEnv(adminID)
	e.store.ids[model.AudienceEvents] = []int64{1}

	e.message(adminID, "/send")
	e.callback(adminID, "aud:ev")
	// Plain text must reach the broadcast engine, not the registration flow.
	e.message(adminID, "Announcement")

	require.Equal(t, []string{"Announcement"}, e.tg.textsTo(1))
}

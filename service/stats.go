package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog/log"

	"regbot/model"
	"regbot/repo"
	"regbot/session"
)

const sessionMaxIdle = 24 * time.Hour

// StatsReporter pushes an hourly registration count to the admins and
// sweeps abandoned sessions on the same tick. It only reads from the
// registration store.
type StatsReporter struct {
	registrations repo.RegistrationStore
	sessions      *session.Store
	admins        []int64
}

func NewStatsReporter(registrations repo.RegistrationStore, sessions *session.Store, admins []int64) *StatsReporter {
	return &StatsReporter{
		registrations: registrations,
		sessions:      sessions,
		admins:        admins,
	}
}

// Run blocks until ctx is cancelled, waking at each wall-clock hour
// boundary to report on the trailing hour.
func (r *StatsReporter) Run(ctx context.Context, tg Sender) {
	for {
		next := nextHour(time.Now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Until(next)):
		}

		r.report(ctx, tg, next.Add(-time.Hour))
		if removed := r.sessions.Sweep(sessionMaxIdle); removed > 0 {
			log.Info().Int("removed", removed).Msg("swept idle sessions")
		}
	}
}

func (r *StatsReporter) report(ctx context.Context, tg Sender, since time.Time) {
	acc, err := r.registrations.CountSince(ctx, model.FlowAccelerator, since)
	if err != nil {
		log.Warn().Err(err).Msg("hourly report: accelerator count failed")
		return
	}
	ev, err := r.registrations.CountSince(ctx, model.FlowEvents, since)
	if err != nil {
		log.Warn().Err(err).Msg("hourly report: events count failed")
		return
	}
	if acc == 0 && ev == 0 {
		return
	}

	text := fmt.Sprintf(
		"Registrations in the last hour:\n\nAccelerator: %d\nEvents: %d",
		acc, ev,
	)
	for _, admin := range r.admins {
		_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: admin,
			Text:   text,
		})
		if err != nil {
			log.Warn().Err(err).Int64("admin", admin).Msg("hourly report send failed")
		}
	}
}

func nextHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}

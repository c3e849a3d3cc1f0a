// Package service holds the admin-facing machinery that runs outside the
// per-message conversation flows: mass broadcasts with recall, and the
// hourly registration report.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"regbot/model"
	"regbot/repo"
)

// Sender is the slice of the transport the broadcaster needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Delivery records one successfully sent broadcast copy.
type Delivery struct {
	UserID    int64
	MessageID int
}

type trackedBroadcast struct {
	deliveries []Delivery
	createdAt  time.Time
}

// Broadcaster sends a text to an audience resolved from the registration
// sheets and keeps a bounded log of deliveries so an admin can retract a
// broadcast later. The log is in-memory only; a restart forfeits recall.
type Broadcaster struct {
	registrations repo.RegistrationStore
	delay         time.Duration

	mu         sync.Mutex
	records    map[int]*trackedBroadcast
	order      []int
	maxRecords int
	maxAge     time.Duration
}

func NewBroadcaster(registrations repo.RegistrationStore) *Broadcaster {
	return &Broadcaster{
		registrations: registrations,
		delay:         50 * time.Millisecond,
		records:       make(map[int]*trackedBroadcast),
		maxRecords:    100,
		maxAge:        48 * time.Hour,
	}
}

// Broadcast resolves the audience and sends text to every target
// sequentially, pausing between sends to stay under transport rate limits.
// Individual send failures are logged and counted but never abort the
// batch. The returned deliveries contain only successful sends.
func (b *Broadcaster) Broadcast(ctx context.Context, tg Sender, audience model.Audience, text string) ([]Delivery, int, error) {
	ids, err := b.registrations.UserIDs(ctx, audience)
	if err != nil {
		return nil, 0, err
	}

	var delivered []Delivery
	failed := 0
	for i, id := range ids {
		if i > 0 {
			time.Sleep(b.delay)
		}
		msg, err := tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: id,
			Text:   text,
		})
		if err != nil {
			log.Warn().Err(err).Int64("user", id).Msg("broadcast send failed")
			failed++
			continue
		}
		delivered = append(delivered, Delivery{UserID: id, MessageID: msg.ID})
	}
	return delivered, failed, nil
}

// Track remembers the deliveries under msgID so a later reply to that
// message can recall them. Oldest and expired records are evicted first.
func (b *Broadcaster) Track(msgID int, deliveries []Delivery) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.records[msgID]; !exists {
		b.order = append(b.order, msgID)
	}
	b.records[msgID] = &trackedBroadcast{deliveries: deliveries, createdAt: time.Now()}
	b.evictLocked()
}

// Recall deletes every delivered copy tracked under msgID and forgets the
// record, whatever the per-copy outcome. Returns model.ErrNotTracked when
// msgID was never tracked or was already recalled.
func (b *Broadcaster) Recall(ctx context.Context, tg Sender, msgID int) (deleted, failed int, err error) {
	b.mu.Lock()
	rec, ok := b.records[msgID]
	if ok {
		b.removeLocked(msgID)
	}
	b.mu.Unlock()
	if !ok {
		return 0, 0, model.ErrNotTracked
	}

	for _, d := range rec.deliveries {
		_, err := tg.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    d.UserID,
			MessageID: d.MessageID,
		})
		if err != nil {
			log.Warn().Err(err).Int64("user", d.UserID).Int("message", d.MessageID).Msg("recall delete failed")
			failed++
			continue
		}
		deleted++
	}
	return deleted, failed, nil
}

// Tracked reports how many broadcast records are currently held.
func (b *Broadcaster) Tracked() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

func (b *Broadcaster) evictLocked() {
	cutoff := time.Now().Add(-b.maxAge)
	for len(b.order) > 0 {
		oldest := b.order[0]
		rec := b.records[oldest]
		if len(b.order) <= b.maxRecords && rec != nil && !rec.createdAt.Before(cutoff) {
			break
		}
		b.removeLocked(oldest)
	}
}

func (b *Broadcaster) removeLocked(msgID int) {
	delete(b.records, msgID)
	for i, id := range b.order {
		if id == msgID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

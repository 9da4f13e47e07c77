package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	pubnub "github.com/pubnub/go/v7"
	"github.com/redis/go-redis/v9"

	"service-center/config"
	"service-center/monitoring"
)

// syncSignalKey is the shared persisted slot carrying the latest envelope.
// Only the most recent signal is visible; rapid triggers may overwrite each
// other before a slow consumer looks.
const syncSignalKey = "service_center:sync:signal"

// SyncType identifies what kind of data changed. Envelopes carry no delta;
// consumers are expected to refetch.
type SyncType string

const (
	SyncTickets     SyncType = "TICKETS_UPDATED"
	SyncTechnicians SyncType = "TECHNICIANS_UPDATED"
	SyncFeedback    SyncType = "FEEDBACK_UPDATED"
	SyncSettings    SyncType = "SETTINGS_UPDATED"
)

type SyncEnvelope struct {
	Type      SyncType       `json:"type"`
	Timestamp int64          `json:"timestamp"` // unix milliseconds
	Sender    string         `json:"sender,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// SyncService broadcasts advisory "something changed" signals between
// clients sharing the same backend. The envelope is persisted to a fixed
// redis key and published on a PubNub channel; listeners registered in this
// process are dispatched to directly, since a publisher does not hear its
// own publish.
type SyncService struct {
	Redis    *redis.Client
	pn       *pubnub.PubNub
	listener *pubnub.Listener
	channel  string
	sender   string
	window   time.Duration
	monitor  *monitoring.Monitor

	// now is injectable for staleness tests.
	now func() time.Time

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(SyncEnvelope)
}

func NewSyncService(redisClient *redis.Client, pn *pubnub.PubNub, cfg *config.Config, monitor *monitoring.Monitor) *SyncService {
	s := &SyncService{
		Redis:     redisClient,
		pn:        pn,
		channel:   cfg.SyncChannel,
		sender:    cfg.PubNubUserID,
		window:    cfg.SyncStalenessWindow,
		monitor:   monitor,
		now:       time.Now,
		listeners: make(map[int]func(SyncEnvelope)),
	}
	if pn != nil {
		s.listener = pubnub.NewListener()
		pn.AddListener(s.listener)
		pn.Subscribe().Channels([]string{s.channel}).Execute()
	}
	return s
}

// Trigger writes the envelope to the shared slot, publishes it, and
// dispatches it to listeners in this process.
func (s *SyncService) Trigger(ctx context.Context, signalType SyncType, data map[string]any) error {
	env := SyncEnvelope{
		Type:      signalType,
		Timestamp: s.now().UnixMilli(),
		Sender:    s.sender,
		Data:      data,
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}

	if err := s.Redis.Set(ctx, syncSignalKey, string(raw), 0).Err(); err != nil {
		return err
	}

	if s.pn != nil {
		s.pn.Publish().
			Channel(s.channel).
			Message(env).
			Execute()
	}

	s.monitor.TrackSyncSignal(string(signalType), "out")
	s.deliver(env)
	return nil
}

// Listen registers a callback for future envelopes and returns an
// unregister function. Envelopes triggered before registration are never
// replayed; envelopes older than the staleness window at delivery time are
// dropped.
func (s *SyncService) Listen(fn func(SyncEnvelope)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Run consumes the PubNub subscription until the context is cancelled.
func (s *SyncService) Run(ctx context.Context) {
	if s.listener == nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			if s.pn != nil {
				s.pn.Unsubscribe().Channels([]string{s.channel}).Execute()
			}
			return

		case status := <-s.listener.Status:
			switch status.Category {
			case pubnub.PNConnectedCategory:
				log.Println("sync: connected to pubnub")
			case pubnub.PNReconnectedCategory:
				log.Println("sync: reconnected to pubnub")
			case pubnub.PNDisconnectedCategory:
				log.Println("sync: disconnected from pubnub")
			}

		case message := <-s.listener.Message:
			env, ok := decodeSyncMessage(message.Message)
			if !ok {
				continue
			}
			// Our own publishes were already dispatched locally.
			if env.Sender == s.sender {
				continue
			}
			s.monitor.TrackSyncSignal(string(env.Type), "in")
			s.deliver(env)
		}
	}
}

func (s *SyncService) deliver(env SyncEnvelope) {
	age := s.now().UnixMilli() - env.Timestamp
	if age > s.window.Milliseconds() {
		s.monitor.TrackSyncSignal(string(env.Type), "stale")
		return
	}

	s.mu.Lock()
	callbacks := make([]func(SyncEnvelope), 0, len(s.listeners))
	for _, fn := range s.listeners {
		callbacks = append(callbacks, fn)
	}
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(env)
	}
}

func decodeSyncMessage(message any) (SyncEnvelope, bool) {
	var env SyncEnvelope

	raw, err := json.Marshal(message)
	if err != nil {
		return env, false
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, false
	}
	return env, env.Type != ""
}

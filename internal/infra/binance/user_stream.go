package binance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/junah201/coincheatkey-position-bot/internal/event"
	"github.com/junah201/coincheatkey-position-bot/internal/infra"
)

const listenKeyKeepAlive = 30 * time.Minute

// UserStream connects to the Binance futures user-data stream and feeds
// classified records into the session inbox. It implements infra.Exchange;
// reconnection and backoff live in the underlying BaseWSWorker.
type UserStream struct {
	base  *infra.BaseWSWorker
	rest  *RestClient
	wsURL string
	inbox chan<- event.Event
	seq   func() uint64

	mu        sync.RWMutex
	listenKey string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUserStream creates the stream worker. nextSeq stamps outgoing events.
func NewUserStream(rest *RestClient, wsURL string, inbox chan<- event.Event, nextSeq func() uint64) *UserStream {
	s := &UserStream{
		rest:  rest,
		wsURL: wsURL,
		inbox: inbox,
		seq:   nextSeq,
	}
	s.base = infra.NewBaseWSWorker(s)
	return s
}

// Start obtains a listen key, launches the keepalive loop and connects.
func (s *UserStream) Start(ctx context.Context) error {
	key, err := s.rest.CreateListenKey(ctx)
	if err != nil {
		return err
	}
	s.setListenKey(key)

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.keepAliveLoop(ctx)

	s.base.Start(ctx)
	return nil
}

// Stop tears down the stream.
func (s *UserStream) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.base.Stop()
	s.wg.Wait()
}

func (s *UserStream) setListenKey(key string) {
	s.mu.Lock()
	s.listenKey = key
	s.mu.Unlock()
}

func (s *UserStream) keepAliveLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(listenKeyKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.rest.KeepAliveListenKey(ctx); err != nil {
				slog.Warn("listenKey keepalive failed", slog.Any("error", err))
				// A fresh key recovers an expired stream on next reconnect.
				if key, err := s.rest.CreateListenKey(ctx); err == nil {
					s.setListenKey(key)
				}
			}
		}
	}
}

func (s *UserStream) ID() string { return "BINANCE_USER_STREAM" }

func (s *UserStream) GetURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wsURL + "/ws/" + s.listenKey
}

func (s *UserStream) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	slog.Info("User-data stream connected")
	return nil
}

// OnMessage classifies one raw frame and forwards it to the session. Frames
// the ledger does not care about are dropped here, at the boundary.
func (s *UserStream) OnMessage(ctx context.Context, msg []byte) {
	record := DecodeFeedRecord(msg)
	now := time.Now().UnixMicro()

	switch record.Kind {
	case KindBalanceUpdate:
		s.push(ctx, event.BalanceUpdateEvent{
			BaseEvent: event.BaseEvent{Seq: s.seq(), Ts: now},
			Positions: record.Positions,
		})
	case KindOrderTrade:
		s.push(ctx, event.OrderTradeEvent{
			BaseEvent: event.BaseEvent{Seq: s.seq(), Ts: now},
			Fill:      record.Fill,
		})
	}
}

// push blocks rather than drops: account events carry money truth.
func (s *UserStream) push(ctx context.Context, ev event.Event) {
	select {
	case <-ctx.Done():
	case s.inbox <- ev:
	}
}

func (s *UserStream) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

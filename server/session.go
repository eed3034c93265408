package main

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tiggercwh/go-dejavu/gameModel"
	"github.com/tiggercwh/go-dejavu/protocol"
	"github.com/tiggercwh/go-dejavu/sequence"
)

// session is one board and the websocket subscribers watching it.
type session struct {
	id        string
	createdAt time.Time
	ctrl      *sequence.Controller
	logger    *log.Logger

	mu           sync.Mutex
	lastActivity time.Time
	subs         map[*subscriber]struct{}
	sentVersion  uint64
}

func newSession(cfg Config, logger *log.Logger) *session {
	now := time.Now()
	s := &session{
		id:           uuid.NewString(),
		createdAt:    now,
		lastActivity: now,
		logger:       logger,
		subs:         make(map[*subscriber]struct{}),
	}
	s.ctrl = sequence.New(
		sequence.WithDebounce(cfg.Debounce),
		sequence.WithExitDelay(cfg.ExitDelay),
		sequence.WithLogger(logger),
		sequence.WithMode(cfg.Mode),
		sequence.WithListener(s.publish),
	)
	return s
}

func (s *session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *session) gameState() gameModel.GameState {
	return s.toGameState(s.ctrl.State())
}

func (s *session) toGameState(st sequence.State) gameModel.GameState {
	return gameModel.FromState(s.id, st, s.createdAt, s.idleSince())
}

// publish is the controller listener: every update goes out to every
// subscriber as a state envelope. An update that lost the race with a newer
// one is dropped so subscribers never see the board go backwards.
func (s *session) publish(ev sequence.Event, st sequence.State) {
	b, err := protocol.Encode(protocol.MsgState, s.toGameState(st))
	if err != nil {
		s.logger.Printf("game %s: encode %s update: %v", s.id, ev, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Version <= s.sentVersion {
		s.logger.Printf("game %s: dropping stale %s update v%d", s.id, ev, st.Version)
		return
	}
	s.sentVersion = st.Version
	for sub := range s.subs {
		if !sub.offer(b) {
			s.logger.Printf("game %s: dropping slow subscriber", s.id)
			delete(s.subs, sub)
			sub.close()
		}
	}
}

func (s *session) subscribe(sub *subscriber) {
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
}

func (s *session) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		sub.close()
	}
	s.mu.Unlock()
}

// shutdown disconnects every subscriber. The board itself is left to the GC.
func (s *session) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		delete(s.subs, sub)
		sub.close()
	}
}

func (s *session) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

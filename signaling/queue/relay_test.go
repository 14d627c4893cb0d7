package queue

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/signaling"
)

type RelayTestSuite struct {
	suite.Suite
	clock *clockwork.FakeClock
	relay *Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelayTestSuite))
}

func (s *RelayTestSuite) SetupTest() {
	s.clock = clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	s.relay = NewRelay(s.clock, log.NewNop())
}

func payload(v string) json.RawMessage {
	return json.RawMessage(`{"sdp":"` + v + `"}`)
}

func (s *RelayTestSuite) TestSubmitAndPollInOrder() {
	s.relay.Submit("r1", "alice", "bob", payload("one"))
	s.clock.Advance(time.Second)
	s.relay.Submit("r1", "alice", "bob", payload("two"))
	s.clock.Advance(time.Second)
	s.relay.Submit("r1", "carol", "bob", payload("three"))

	signals, cursor := s.relay.Poll("r1", "bob", 0)
	s.Require().Len(signals, 3)
	s.Equal("alice", signals[0].From)
	s.Equal(payload("one"), signals[0].Payload)
	s.Equal(payload("two"), signals[1].Payload)
	s.Equal("carol", signals[2].From)
	s.Equal(signals[2].Timestamp, cursor)
}

func (s *RelayTestSuite) TestPollCursorSkipsDelivered() {
	s.relay.Submit("r1", "alice", "bob", payload("one"))

	signals, cursor := s.relay.Poll("r1", "bob", 0)
	s.Require().Len(signals, 1)

	s.clock.Advance(time.Second)
	s.relay.Submit("r1", "alice", "bob", payload("two"))

	signals, cursor2 := s.relay.Poll("r1", "bob", cursor)
	s.Require().Len(signals, 1)
	s.Equal(payload("two"), signals[0].Payload)
	s.Greater(cursor2, cursor)

	signals, cursor3 := s.relay.Poll("r1", "bob", cursor2)
	s.Empty(signals)
	s.Equal(cursor2, cursor3)
}

func (s *RelayTestSuite) TestPollEmptyRoomRegistersPresence() {
	signals, cursor := s.relay.Poll("r2", "xavier", 0)
	s.Empty(signals)
	s.Equal(int64(0), cursor)
	s.Equal([]string{"xavier"}, s.relay.Presence("r2"))
}

func (s *RelayTestSuite) TestSubmitToAllExcludesSender() {
	s.relay.Poll("r1", "alice", 0)
	s.relay.Poll("r1", "bob", 0)
	s.relay.Poll("r1", "carol", 0)

	s.relay.Submit("r1", "alice", signaling.RecipientAll, payload("offer"))

	signals, _ := s.relay.Poll("r1", "alice", 0)
	s.Empty(signals)

	signals, _ = s.relay.Poll("r1", "bob", 0)
	s.Require().Len(signals, 1)
	s.Equal("alice", signals[0].From)

	signals, _ = s.relay.Poll("r1", "carol", 0)
	s.Require().Len(signals, 1)
	s.Equal(payload("offer"), signals[0].Payload)
}

func (s *RelayTestSuite) TestSubmitToAllWithNoPeers() {
	s.relay.Submit("r1", "alice", signaling.RecipientAll, payload("offer"))

	s.Empty(s.relay.Presence("r1"))
	signals, _ := s.relay.Poll("r1", "alice", 0)
	s.Empty(signals)
}

func (s *RelayTestSuite) TestFanoutExcludesSenderByDefault() {
	s.relay.Poll("r1", "alice", 0)
	s.relay.Poll("r1", "bob", 0)

	s.relay.Fanout("r1", "alice", payload("request-offer"), false)

	signals, _ := s.relay.Poll("r1", "alice", 0)
	s.Empty(signals)
	signals, _ = s.relay.Poll("r1", "bob", 0)
	s.Len(signals, 1)
}

func (s *RelayTestSuite) TestFanoutIncludeSender() {
	s.relay.Poll("r1", "alice", 0)
	s.relay.Poll("r1", "bob", 0)

	s.relay.Fanout("r1", "alice", payload("play-sync"), true)

	signals, _ := s.relay.Poll("r1", "alice", 0)
	s.Len(signals, 1)
	signals, _ = s.relay.Poll("r1", "bob", 0)
	s.Len(signals, 1)
}

func (s *RelayTestSuite) TestClearRemovesPeer() {
	s.relay.Poll("r1", "alice", 0)
	s.relay.Submit("r1", "bob", "alice", payload("one"))

	s.relay.Clear("r1", "alice")
	s.Empty(s.relay.Presence("r1"))

	signals, _ := s.relay.Poll("r1", "alice", 0)
	s.Empty(signals)
}

func (s *RelayTestSuite) TestClearUnknownRoomIsNoop() {
	s.relay.Clear("nope", "alice")
	s.Equal(0, s.relay.Rooms())
}

func (s *RelayTestSuite) TestEvictExpiredDropsOldSignals() {
	s.relay.Submit("r1", "alice", "bob", payload("stale"))
	s.clock.Advance(30 * time.Second)

	signals, peers, rooms := s.relay.EvictExpired(s.clock.Now().Add(-30 * time.Second))
	s.Equal(1, signals)
	s.Equal(1, peers)
	s.Equal(1, rooms)
	s.Equal(0, s.relay.Rooms())

	got, _ := s.relay.Poll("r1", "bob", 0)
	s.Empty(got)
}

func (s *RelayTestSuite) TestEvictExpiredKeepsFreshSignals() {
	s.relay.Submit("r1", "alice", "bob", payload("stale"))
	s.clock.Advance(30 * time.Second)
	s.relay.Submit("r1", "alice", "bob", payload("fresh"))

	signals, peers, rooms := s.relay.EvictExpired(s.clock.Now().Add(-30 * time.Second))
	s.Equal(1, signals)
	s.Equal(0, peers)
	s.Equal(0, rooms)

	got, _ := s.relay.Poll("r1", "bob", 0)
	s.Require().Len(got, 1)
	s.Equal(payload("fresh"), got[0].Payload)
}

func (s *RelayTestSuite) TestEvictRemovesIdlePeerFromPresence() {
	s.relay.Poll("r1", "alice", 0)
	s.relay.Submit("r1", "alice", "bob", payload("keep"))

	s.relay.EvictExpired(s.clock.Now().Add(-30 * time.Second))

	s.Equal([]string{"bob"}, s.relay.Presence("r1"))

	s.relay.Poll("r1", "alice", 0)
	s.Equal([]string{"alice", "bob"}, s.relay.Presence("r1"))
}

func (s *RelayTestSuite) TestSubmitAfterEvictionRecreatesRoom() {
	s.relay.Submit("r1", "alice", "bob", payload("stale"))
	s.clock.Advance(time.Minute)
	s.relay.EvictExpired(s.clock.Now())
	s.Equal(0, s.relay.Rooms())

	s.relay.Submit("r1", "alice", "bob", payload("fresh"))
	got, _ := s.relay.Poll("r1", "bob", 0)
	s.Len(got, 1)
}

func (s *RelayTestSuite) TestPresenceUnknownRoom() {
	s.Nil(s.relay.Presence("nope"))
}

func (s *RelayTestSuite) TestConcurrentSubmitAndPoll() {
	const senders = 8
	const perSender = 50

	s.relay.Poll("r1", "bob", 0)

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				s.relay.Submit("r1", "alice", "bob", payload("x"))
				s.relay.Poll("r1", "bob", 0)
			}
		}()
	}
	wg.Wait()

	signals, _ := s.relay.Poll("r1", "bob", 0)
	s.Len(signals, senders*perSender)
}

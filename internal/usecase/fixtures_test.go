package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campusmarket/internal/domain/entity"
	ws "campusmarket/internal/infrastructure/websocket"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// scriptedSerials hands out serials in order and then repeats the last one.
type scriptedSerials struct {
	mu      sync.Mutex
	serials []string
	next    int
}

func (s *scriptedSerials) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	serial := s.serials[s.next]
	if s.next < len(s.serials)-1 {
		s.next++
	}
	return serial
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.TradeEvent
}

func (p *recordingPublisher) Publish(event entity.TradeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	actions := make([]string, 0, len(p.events))
	for _, e := range p.events {
		actions = append(actions, e.Action)
	}
	return actions
}

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(ctx context.Context, token string) (string, error) {
	uid, ok := f[token]
	if !ok {
		return "", fmt.Errorf("token %q rejected", token)
	}
	return uid, nil
}

func identityOf(userID string) entity.Identity {
	return entity.Identity{UserID: userID, Username: userID, Nickname: userID + "-nick"}
}

func newTestClient(userID, productID string) *ws.Client {
	return ws.NewClient(nil, identityOf(userID), productID)
}

// nextFrame waits briefly for the next frame queued for c.
func nextFrame(t *testing.T, c *ws.Client) map[string]interface{} {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send buffer closed")
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func assertNoFrame(t *testing.T, c *ws.Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected frame %s", raw)
	default:
	}
}

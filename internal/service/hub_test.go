package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
)

func newTestHub(sendBuf int) *Hub {
	return NewHub(1024, 1024, sendBuf, zap.NewNop())
}

func mustEnvelope(t *testing.T, typ model.EventType, payload any) model.Envelope {
	t.Helper()
	env, err := model.NewEnvelope(typ, payload)
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	return env
}

func recvType(t *testing.T, s *Subscriber) model.EventType {
	t.Helper()
	select {
	case raw := <-s.Send:
		var env model.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return env.Type
	default:
		t.Fatal("no message queued")
		return ""
	}
}

func TestHubDeliversToConnectedSubscribers(t *testing.T) {
	hub := newTestHub(8)

	early, cleanupEarly := hub.Register(nil)
	defer cleanupEarly()

	hub.Broadcast(mustEnvelope(t, model.EventSystemMessage, model.SystemMessage{
		Severity: model.SeverityInfo, Message: "hello",
	}))

	// A subscriber connecting after the broadcast gets nothing: no replay.
	late, cleanupLate := hub.Register(nil)
	defer cleanupLate()

	if typ := recvType(t, early); typ != model.EventSystemMessage {
		t.Errorf("early subscriber got %s, want system_message", typ)
	}
	select {
	case raw := <-late.Send:
		t.Errorf("late subscriber received retroactive message: %s", raw)
	default:
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := newTestHub(8)

	sub, cleanup := hub.Register(nil)
	if hub.SubscriberCount() != 1 {
		t.Fatalf("subscriber count = %d, want 1", hub.SubscriberCount())
	}
	cleanup()
	if hub.SubscriberCount() != 0 {
		t.Fatalf("subscriber count = %d, want 0", hub.SubscriberCount())
	}

	select {
	case <-sub.Done():
	default:
		t.Error("done should be closed after unregister")
	}

	// Broadcasting after the disconnect must neither panic nor queue
	// anything for the departed subscriber.
	hub.SystemMessage(model.SeverityConn, "nobody listening")
	if got := len(sub.Send); got != 0 {
		t.Errorf("unregistered subscriber queued %d messages, want 0", got)
	}

	// Double cleanup is a no-op.
	cleanup()
}

func TestHubBroadcastDuringDisconnectChurn(t *testing.T) {
	hub := newTestHub(1)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					hub.SystemMessage(model.SeverityInfo, "churn")
				}
			}
		}()
	}

	// Subscribers connecting and dropping while broadcasts fan out must not
	// crash the publishing path.
	for i := 0; i < 200; i++ {
		_, cleanup := hub.Register(nil)
		cleanup()
	}

	close(stop)
	wg.Wait()
}

func TestHubDropsWhenSubscriberNotReady(t *testing.T) {
	hub := newTestHub(1)

	sub, cleanup := hub.Register(nil)
	defer cleanup()

	// Queue capacity 1: the second message is dropped, not queued or retried.
	hub.SystemMessage(model.SeverityInfo, "first")
	hub.SystemMessage(model.SeverityInfo, "second")

	if got := len(sub.Send); got != 1 {
		t.Errorf("queued messages = %d, want 1 (best-effort drop)", got)
	}
}

func TestHubRecentWindowBounded(t *testing.T) {
	hub := newTestHub(8)

	for i := 0; i < recentWindow+20; i++ {
		hub.SystemMessage(model.SeverityInfo, fmt.Sprintf("msg %d", i))
	}

	all := hub.Recent(0)
	if len(all) != recentWindow {
		t.Fatalf("recent window = %d, want %d", len(all), recentWindow)
	}

	// Newest first.
	var first model.SystemMessage
	if err := json.Unmarshal(all[0].Data, &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if want := fmt.Sprintf("msg %d", recentWindow+19); first.Message != want {
		t.Errorf("newest message = %q, want %q", first.Message, want)
	}

	if got := hub.Recent(5); len(got) != 5 {
		t.Errorf("Recent(5) = %d entries, want 5", len(got))
	}
}

func TestHubFansOutToAllSubscribers(t *testing.T) {
	hub := newTestHub(8)

	subs := make([]*Subscriber, 0, 10)
	for i := 0; i < 10; i++ {
		s, cleanup := hub.Register(nil)
		defer cleanup()
		subs = append(subs, s)
	}

	hub.Broadcast(mustEnvelope(t, model.EventStatsUpdate, map[string]int{"total_threats": 0}))

	for i, s := range subs {
		if typ := recvType(t, s); typ != model.EventStatsUpdate {
			t.Errorf("subscriber %d got %s, want stats_update", i, typ)
		}
	}
}

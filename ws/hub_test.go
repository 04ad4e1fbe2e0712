package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func recvPayload(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case p := <-c.send:
		return p
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
		return nil
	}
}

func expectSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case p := <-c.send:
		t.Fatalf("unexpected payload: %s", p)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPersonalGroupFanOut(t *testing.T) {
	h := NewHub()
	go h.Run()

	// two connections for user 1 (two devices), one for user 2
	tabA := NewClient(h, nil, nil, 1, "alice")
	tabB := NewClient(h, nil, nil, 1, "alice")
	bob := NewClient(h, nil, nil, 2, "bob")
	h.Register(tabA)
	h.Register(tabB)
	h.Register(bob)

	h.BroadcastToUser(1, errorEvent("ping"))

	for _, c := range []*Client{tabA, tabB} {
		var ev Event
		if err := json.Unmarshal(recvPayload(t, c), &ev); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if ev.Type != EventDMError {
			t.Errorf("expected %s, got %s", EventDMError, ev.Type)
		}
	}
	expectSilent(t, bob)
}

func TestHubBroadcastToAbsentUserIsNoop(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := NewClient(h, nil, nil, 1, "alice")
	h.Register(c)

	h.BroadcastToUser(42, errorEvent("nobody home"))
	expectSilent(t, c)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := NewClient(h, nil, nil, 7, "carol")
	h.Register(c)
	h.Unregister(c)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatalf("expected closed channel, got payload")
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel not closed after unregister")
	}

	// broadcasts after disconnect must not panic or deliver
	h.BroadcastToUser(7, errorEvent("late"))
}

func TestHubDirectSendOnlyTargetsOneConnection(t *testing.T) {
	h := NewHub()
	go h.Run()

	tabA := NewClient(h, nil, nil, 3, "dana")
	tabB := NewClient(h, nil, nil, 3, "dana")
	h.Register(tabA)
	h.Register(tabB)

	h.sendToClient(tabA, markedReadEvent(9))

	var ev Event
	if err := json.Unmarshal(recvPayload(t, tabA), &ev); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if ev.Type != EventDMMarkedRead {
		t.Errorf("expected %s, got %s", EventDMMarkedRead, ev.Type)
	}
	expectSilent(t, tabB)
}

func TestMessageEventShape(t *testing.T) {
	ev := errorEvent("boom")
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != EventDMError || decoded.Data.Message != "boom" {
		t.Fatalf("unexpected wire shape: %s", raw)
	}
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"cookoff-scoreboard/internal/app"
	"cookoff-scoreboard/internal/catalog"
	"cookoff-scoreboard/internal/domain"
	"cookoff-scoreboard/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestBoard(t *testing.T) *app.Scoreboard {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.Open(context.Background(), catalog.MustDefault(), memory.NewStore(), logger, nil)
}

func dialWS(t *testing.T, board *app.Scoreboard) *websocket.Conn {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httptest.NewServer(NewServer(board, logger, nil).Router())
	t.Cleanup(server.Close)

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketRatingFlow(t *testing.T) {
	board := newTestBoard(t)
	conn := dialWS(t, board)

	typ, raw := readNext(conn, t, "snapshot")
	var initial domain.Snapshot
	if err := json.Unmarshal(raw, &initial); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(initial.Progress) != 6 || len(initial.Leaderboard.Standings) != 5 {
		t.Fatalf("unexpected initial %s: %+v", typ, initial)
	}

	rate := map[string]any{
		"type": "rate",
		"payload": map[string]any{
			"participantId": "ai-grok",
			"challengeId":   "challenge-1-2",
			"rating":        9,
		},
	}
	if err := conn.WriteJSON(rate); err != nil {
		t.Fatalf("write rate: %v", err)
	}

	entrySeen := false
	var latest domain.Snapshot
	for i := 0; i < 4 && !(entrySeen && latest.Leaderboard.Standings != nil); i++ {
		typ, raw := readNext(conn, t, "")
		switch typ {
		case "entry":
			var entry domain.ScoreEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				t.Fatalf("decode entry: %v", err)
			}
			if entry.Rating != 9 || entry.ParticipantID != "ai-grok" {
				t.Fatalf("unexpected entry: %+v", entry)
			}
			entrySeen = true
		case "snapshot":
			if err := json.Unmarshal(raw, &latest); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
		}
	}
	if !entrySeen {
		t.Fatalf("expected an entry message")
	}
	if top := latest.Leaderboard.Standings[0]; top.ID != "ai-grok" || top.TotalScore != 9 {
		t.Fatalf("expected ai-grok to lead, got %+v", top)
	}
}

func TestWebSocketRejectsBadCommands(t *testing.T) {
	board := newTestBoard(t)
	conn := dialWS(t, board)
	readNext(conn, t, "snapshot")

	bad := []map[string]any{
		{"type": "dance"},
		{"type": "rate", "payload": map[string]any{"participantId": "ai-grok", "challengeId": "challenge-0-0"}},
		{"type": "rate", "payload": map[string]any{"participantId": "ai-grok", "challengeId": "challenge-0-0", "rating": 11}},
		{"type": "notes", "payload": map[string]any{"participantId": "ai-nobody", "challengeId": "challenge-0-0", "notes": "x"}},
	}
	for _, msg := range bad {
		if err := conn.WriteJSON(msg); err != nil {
			t.Fatalf("write: %v", err)
		}
		readNext(conn, t, "error")
	}
	if n := len(board.Entries()); n != 0 {
		t.Fatalf("expected no entries after rejected commands, got %d", n)
	}
}

func TestWebSocketReset(t *testing.T) {
	board := newTestBoard(t)
	if _, err := board.Rate(context.Background(), "ai-gemini", "challenge-0-0", 5); err != nil {
		t.Fatalf("rate: %v", err)
	}
	conn := dialWS(t, board)
	readNext(conn, t, "snapshot")

	if err := conn.WriteJSON(map[string]any{"type": "reset"}); err != nil {
		t.Fatalf("write reset: %v", err)
	}
	_, raw := readNext(conn, t, "snapshot")
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	for _, s := range snap.Leaderboard.Standings {
		if s.TotalScore != 0 {
			t.Fatalf("expected zero totals after reset, got %+v", s)
		}
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

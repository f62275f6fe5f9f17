package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"cookoff-scoreboard/internal/app"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSHandler pushes scoreboard snapshots to judges' screens and accepts
// rating, notes and reset commands over the same socket.
type WSHandler struct {
	board    *app.Scoreboard
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(board *app.Scoreboard, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		board:  board,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ratePayload struct {
	ParticipantID string `json:"participantId"`
	ChallengeID   string `json:"challengeId"`
	Rating        *int   `json:"rating"`
	Toggle        bool   `json:"toggle"`
}

type notesPayload struct {
	ParticipantID string `json:"participantId"`
	ChallengeID   string `json:"challengeId"`
	Notes         string `json:"notes"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades the request and streams a snapshot after every change.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	logger := h.logger.With("conn_id", connID)
	logger.Info("ws connected", "remote_addr", r.RemoteAddr)
	defer logger.Info("ws disconnected")

	ctx := r.Context()
	updates, cancel := h.board.Subscribe(ctx)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer goroutine; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Warn("ws write error", "error", err)
				// keep draining so producers never block on a dead socket
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "rate":
			var payload ratePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Rating == nil {
				send <- errorMessage("invalid rate payload")
				continue
			}
			rate := h.board.Rate
			if payload.Toggle {
				rate = h.board.ToggleRating
			}
			entry, err := rate(ctx, payload.ParticipantID, payload.ChallengeID, *payload.Rating)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "entry", Payload: entry}
		case "notes":
			var payload notesPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid notes payload")
				continue
			}
			entry, err := h.board.SetNotes(ctx, payload.ParticipantID, payload.ChallengeID, payload.Notes)
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "entry", Payload: entry}
		case "reset":
			if err := h.board.ResetScores(ctx); err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			logger.Info("scores reset over ws")
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

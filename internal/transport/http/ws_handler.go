package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"quizzone/internal/app"
	"quizzone/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *slog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
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

type playerPayload struct {
	Name string `json:"name"`
}

type configurePayload struct {
	Theme         string            `json:"theme"`
	Difficulty    domain.Difficulty `json:"difficulty"`
	QuestionCount int               `json:"questionCount"`
	TurnBased     bool              `json:"turnBased"`
}

type answerPayload struct {
	Player string `json:"player"`
	Option int    `json:"option"`
}

type answerCurrentPayload struct {
	Option int `json:"option"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS joins the connection to the game named in the route and relays its
// commands and events until either side closes.
// Every connection both controls the game and receives all of its events.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("id")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if _, err := h.service.Open(ctx, gameID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer h.service.Leave(context.WithoutCancel(ctx), gameID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", "game", gameID, "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: string(ev.Type), Payload: ev.View}:
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
		if err := h.dispatch(ctx, gameID, inbound); err != nil {
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch runs one inbound command. State changes reach the client through
// the subscription, so only failures are answered directly.
func (h *WSHandler) dispatch(ctx context.Context, gameID string, msg inboundMessage) error {
	var err error
	switch msg.Type {
	case "add_player":
		var p playerPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.service.AddPlayer(ctx, gameID, p.Name)
		}
	case "remove_player":
		var p playerPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.service.RemovePlayer(ctx, gameID, p.Name)
		}
	case "configure":
		var p configurePayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.service.Configure(ctx, gameID, domain.Settings{
				Theme:         p.Theme,
				Difficulty:    p.Difficulty,
				QuestionCount: p.QuestionCount,
				TurnBased:     p.TurnBased,
			})
		}
	case "start":
		_, err = h.service.StartQuiz(ctx, gameID)
	case "answer":
		var p answerPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.service.RecordAnswer(ctx, gameID, p.Player, p.Option)
		}
	case "answer_current":
		var p answerCurrentPayload
		if err = decode(msg.Payload, &p); err == nil {
			_, err = h.service.AnswerCurrent(ctx, gameID, p.Option)
		}
	case "check":
		_, err = h.service.CheckAnswers(ctx, gameID)
	case "next":
		_, err = h.service.Advance(ctx, gameID)
	case "reset":
		_, err = h.service.Reset(ctx, gameID)
	default:
		return errUnsupported
	}
	return err
}

var (
	errUnsupported    = errors.New("unsupported message type")
	errInvalidPayload = errors.New("invalid payload")
)

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidPayload
	}
	return nil
}

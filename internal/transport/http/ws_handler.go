package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
)

// WSHandler drives one quiz session per websocket connection. The engine
// stays transport-agnostic; this handler owns the session handle and the
// timer driver for the lifetime of the connection.
// defaultQuestionLimit caps the deck when a start request carries no limit.
const defaultQuestionLimit = 10

type WSHandler struct {
	engine       *app.Engine
	timer        *app.TimerDriver
	defaultLimit int
	upgrader     websocket.Upgrader
}

func NewWSHandler(engine *app.Engine, timer *app.TimerDriver, defaultLimit int) *WSHandler {
	if defaultLimit <= 0 {
		defaultLimit = defaultQuestionLimit
	}
	return &WSHandler{
		engine:       engine,
		timer:        timer,
		defaultLimit: defaultLimit,
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

type startPayload struct {
	Minutes int `json:"minutes"`
	Limit   int `json:"limit"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

type movePayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type questionView struct {
	QuestionID  string              `json:"questionId"`
	Type        domain.QuestionType `json:"questionType"`
	Prompt      string              `json:"text"`
	Options     []string            `json:"options,omitempty"`
	Position    int                 `json:"position"`
	Total       int                 `json:"total"`
	UserAnswer  string              `json:"userAnswer"`
	Answered    bool                `json:"answered"`
	CanPrevious bool                `json:"canPrevious"`
	CanNext     bool                `json:"canNext"`
}

type remainingView struct {
	RemainingMillis int64 `json:"remainingMillis"`
	Timed           bool  `json:"timed"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz
// session use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	title := r.URL.Query().Get("title")
	username := r.URL.Query().Get("user")
	if category == "" || title == "" {
		http.Error(w, "missing category or title", http.StatusBadRequest)
		return
	}
	if username == "" {
		username = domain.GuestUser
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan any, 16)
	writerDone := make(chan struct{})
	connDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// Keep draining so a push never blocks on a dead writer.
				for range send {
				}
				return
			}
		}
	}()

	// push is used by the timer goroutine as well as the read loop; it must
	// never block forever once the connection is gone.
	push := func(msg any) {
		select {
		case send <- msg:
		case <-connDone:
		}
	}

	var session *app.QuizSession
	stopTimer := func() {}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid start payload"}})
				continue
			}
			stopTimer()
			limit := payload.Limit
			if limit <= 0 {
				limit = h.defaultLimit
			}
			started, err := h.engine.StartSession(r.Context(), category, title, payload.Minutes, limit)
			if err != nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			session = started
			// The closures pin this session, not the handler variable, so a
			// later start cannot leak a stale timer into the new deck.
			stopTimer = h.timer.Start(started,
				func(remaining time.Duration) {
					push(outboundMessage[remainingView]{Type: "remaining", Payload: remainingView{RemainingMillis: remaining.Milliseconds(), Timed: true}})
				},
				func() {
					result, err := h.engine.Submit(r.Context(), started, username, true)
					if err != nil {
						log.Printf("forced submit: %v", err)
					}
					push(outboundMessage[domain.SessionResult]{Type: "result", Payload: result})
				})
			push(outboundMessage[questionView]{Type: "question", Payload: viewOf(session)})

		case "answer":
			if session == nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "no active session"}})
				continue
			}
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			if err := session.RecordAnswer(payload.QuestionID, payload.Value); err != nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			push(outboundMessage[questionView]{Type: "question", Payload: viewOf(session)})

		case "move", "next", "previous":
			if session == nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "no active session"}})
				continue
			}
			var err error
			switch inbound.Type {
			case "next":
				err = session.Next()
			case "previous":
				err = session.Previous()
			default:
				var payload movePayload
				if jsonErr := json.Unmarshal(inbound.Payload, &payload); jsonErr != nil {
					push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid move payload"}})
					continue
				}
				err = session.MoveTo(payload.Index)
			}
			if err != nil && !errors.Is(err, domain.ErrPositionOutOfRange) {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			// Out-of-range navigation is absorbed: resend the current view.
			push(outboundMessage[questionView]{Type: "question", Payload: viewOf(session)})

		case "submit":
			if session == nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "no active session"}})
				continue
			}
			stopTimer()
			result, err := h.engine.Submit(r.Context(), session, username, false)
			if err != nil {
				// The session is graded even when the history write failed;
				// still deliver the result.
				log.Printf("submit: %v", err)
			}
			push(outboundMessage[domain.SessionResult]{Type: "result", Payload: result})

		case "remaining":
			if session == nil {
				push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "no active session"}})
				continue
			}
			remaining, timed := session.Remaining(h.timer.Now())
			push(outboundMessage[remainingView]{Type: "remaining", Payload: remainingView{RemainingMillis: remaining.Milliseconds(), Timed: timed}})

		default:
			push(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	// Leaving the quiz view cancels the timer; an unsubmitted session is
	// simply discarded. connDone is closed first so a timer callback stuck
	// in push can drain, then the blocking stopTimer joins the timer
	// goroutine before send is closed under it.
	close(connDone)
	stopTimer()
	close(send)
	<-writerDone
}

func viewOf(s *app.QuizSession) questionView {
	view := questionView{
		Position: s.Position(),
		Total:    s.Len(),
	}
	q, ok := s.Current()
	if !ok {
		return view
	}
	view.QuestionID = q.ID
	view.Type = q.Type
	view.Prompt = q.Prompt
	view.Options = q.Options
	view.UserAnswer, view.Answered = s.Answer(q.ID)
	view.CanPrevious = s.CanPrevious()
	view.CanNext = s.CanNext()
	return view
}

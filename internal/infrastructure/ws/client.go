package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/ourlittlekingdom/asocijacije/internal/game"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
)

const (
	maxInboundFrame = 4 << 10
	outBufferSize   = 64

	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	// Must be shorter than pongWait.
	pingPeriod = 50 * time.Second
)

// Client pairs one websocket connection with one room. It implements
// game.Sender: Send never blocks, slow consumers lose frames.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	room *game.Room

	id      string
	limiter *rate.Limiter
	out     chan outEnvelope
	done    chan struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, room *game.Room, id string) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		room:    room,
		id:      id,
		limiter: rate.NewLimiter(rate.Limit(hub.msgRate), hub.msgBurst),
		out:     make(chan outEnvelope, outBufferSize),
		done:    make(chan struct{}),
	}
}

// Send queues an event for the write pump. Called from inside the room
// lock, so it must not block: a full buffer drops the frame.
func (c *Client) Send(event string, data any) {
	select {
	case c.out <- outEnvelope{Type: event, Data: data}:
	default:
		c.hub.logger.Warn(logging.Realtime, logging.RateLimiting, "outbound buffer full, dropping frame", map[logging.ExtraKey]any{
			logging.RoomCode: c.room.Code(),
		})
	}
}

func (c *Client) readPump() {
	defer func() {
		c.room.Disconnect(c.id)
		close(c.done)
		_ = c.conn.Close()
		c.hub.metrics.ConnectedClients.Dec()
	}()

	c.conn.SetReadLimit(maxInboundFrame)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn(logging.Realtime, logging.ExternalService, "read failed", map[logging.ExtraKey]any{
					logging.RoomCode:     c.room.Code(),
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		if !c.limiter.Allow() {
			c.Send(game.EventError, game.ErrorPayload{Message: "slow down"})
			continue
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
			c.Send(game.EventError, game.ErrorPayload{Message: "malformed frame"})
			continue
		}

		c.hub.metrics.InboundEvents.WithLabelValues(env.Type).Inc()
		c.dispatch(env)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// dispatch routes one inbound command to the room. Unknown types and
// bad payloads get an error frame; the room itself silently ignores
// commands the sender is not allowed to make.
func (c *Client) dispatch(env Envelope) {
	decode := func(v any) bool {
		if len(env.Data) == 0 {
			return false
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			c.Send(game.EventError, game.ErrorPayload{Message: "malformed payload for " + env.Type})
			return false
		}
		return true
	}

	switch env.Type {
	case CmdLeave:
		c.room.Leave(c.id)
		_ = c.conn.Close()

	case CmdChatSend:
		var p textPayload
		if decode(&p) {
			c.room.Chat(c.id, p.Text)
		}

	case CmdSeatMove:
		var p slotPayload
		if decode(&p) {
			c.room.MoveSeat(c.id, p.Slot)
		}
	case CmdSeatRandomize:
		c.room.RandomizeSeats(c.id)
	case CmdSeatKick:
		var p slotPayload
		if decode(&p) {
			c.room.Kick(c.id, p.Slot)
		}

	case CmdGameStart:
		c.room.StartGame(c.id)
	case CmdGameCountdown:
		var p secondsPayload
		if decode(&p) {
			c.room.StartCountdown(c.id, p.Seconds)
		}
	case CmdGameCancelCountdown:
		c.room.CancelCountdown(c.id)
	case CmdGameReset:
		c.room.ResetGame(c.id)

	case CmdGameSecret:
		var p wordPayload
		if decode(&p) {
			c.room.SubmitSecret(c.id, p.Word)
		}
	case CmdGameClue:
		var p wordPayload
		if decode(&p) {
			c.room.SubmitClue(c.id, p.Word)
		}
	case CmdGameGuess:
		var p wordPayload
		if decode(&p) {
			c.room.SubmitGuess(c.id, p.Word)
		}

	case CmdSettingsWinScore:
		var p valuePayload
		if decode(&p) {
			c.room.SetWinScore(c.id, p.Value)
		}
	case CmdSettingsGuessTime:
		var p valuePayload
		if decode(&p) {
			c.room.SetGuessTime(c.id, p.Value)
		}
	case CmdSettingsSchedule:
		var p schedulePayload
		if decode(&p) {
			c.applySchedule(p)
		}

	case CmdQuizStart:
		c.room.StartQuiz(c.id)
	case CmdQuizStop:
		c.room.StopQuiz(c.id)

	case CmdTestFill:
		c.room.TestFill(c.id)
	case CmdTestActAs:
		var p actAsPayload
		if decode(&p) {
			c.room.ActAs(c.id, p.Slot, p.Kind, p.Word)
		}

	default:
		c.Send(game.EventError, game.ErrorPayload{Message: "unknown command " + env.Type})
	}
}

func (c *Client) applySchedule(p schedulePayload) {
	if p.At == nil {
		c.room.SetSchedule(c.id, nil)
		return
	}
	at, err := time.Parse(time.RFC3339, *p.At)
	if err != nil {
		c.Send(game.EventError, game.ErrorPayload{Message: "bad schedule timestamp"})
		return
	}
	c.room.SetSchedule(c.id, &at)
}

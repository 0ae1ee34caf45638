package ws

import "encoding/json"

// Envelope is the wire frame in both directions: a type tag and a
// type-specific payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Inbound command types.
const (
	CmdLeave = "room.leave"

	CmdChatSend = "chat.send"

	CmdSeatMove      = "seat.move"
	CmdSeatRandomize = "seat.randomize"
	CmdSeatKick      = "seat.kick"

	CmdGameStart           = "game.start"
	CmdGameCountdown       = "game.countdown"
	CmdGameCancelCountdown = "game.cancelCountdown"
	CmdGameReset           = "game.reset"
	CmdGameSecret          = "game.secret"
	CmdGameClue            = "game.clue"
	CmdGameGuess           = "game.guess"

	CmdSettingsWinScore  = "settings.winScore"
	CmdSettingsGuessTime = "settings.guessTime"
	CmdSettingsSchedule  = "settings.schedule"

	CmdQuizStart = "quiz.start"
	CmdQuizStop  = "quiz.stop"

	CmdTestFill  = "test.fill"
	CmdTestActAs = "test.actAs"
)

type wordPayload struct {
	Word string `json:"word"`
}

type textPayload struct {
	Text string `json:"text"`
}

type slotPayload struct {
	Slot int `json:"slot"`
}

type valuePayload struct {
	Value int `json:"value"`
}

type secondsPayload struct {
	Seconds int `json:"seconds"`
}

type schedulePayload struct {
	At *string `json:"at"` // RFC 3339, null clears the schedule
}

type actAsPayload struct {
	Slot int    `json:"slot"`
	Kind string `json:"kind"`
	Word string `json:"word"`
}

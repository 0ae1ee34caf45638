package game

import "time"

type ErrorPayload struct {
	Message string `json:"message"`
}

type SeatAssignment struct {
	Slot           int    `json:"slot"`
	Name           string `json:"name"`
	ReconnectToken string `json:"reconnectToken,omitempty"`
}

type TickPayload struct {
	Remaining int `json:"remaining"`
}

type KickedPayload struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

type RoomRefPayload struct {
	Code string `json:"code"`
}

// QuizScore is one scoreboard line. Keyed by participant so two
// players sharing a display name keep separate scores.
type QuizScore struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Points        int    `json:"points"`
}

type QuizQuestionPayload struct {
	Prompt   string      `json:"prompt"`
	Seconds  int         `json:"seconds"`
	Tally    []QuizScore `json:"tally"`
	Position int         `json:"position"`
}

type QuizCorrectPayload struct {
	Name   string      `json:"name"`
	Answer string      `json:"answer"`
	Tally  []QuizScore `json:"tally"`
}

type QuizRevealPayload struct {
	Prompt string      `json:"prompt"`
	Answer string      `json:"answer"`
	Tally  []QuizScore `json:"tally"`
}

type QuizStoppedPayload struct {
	Tally []QuizScore `json:"tally"`
}

// SeatView is a seat as any participant may see it.
type SeatView struct {
	Slot         int    `json:"slot"`
	Name         string `json:"name,omitempty"`
	Occupied     bool   `json:"occupied"`
	Disconnected bool   `json:"disconnected,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	GamesPlayed  int    `json:"gamesPlayed,omitempty"`
	GamesWon     int    `json:"gamesWon,omitempty"`
}

// TurnView names the three active roles for the current rotation/turn.
type TurnView struct {
	SecretHolder int `json:"secretHolder"`
	Receiver     int `json:"receiver"`
	ClueGiver    int `json:"clueGiver"`
	Guesser      int `json:"guesser"`
}

// StateView is one participant's redacted snapshot of the room. The
// secret word appears only for the secret holder and the receiver.
type StateView struct {
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	Phase          Phase       `json:"phase"`
	Seats          []SeatView  `json:"seats"`
	AdminSlot      int         `json:"adminSlot"`
	YourSlot       int         `json:"yourSlot"`
	Scores         Scores      `json:"scores"`
	WinScore       int         `json:"winScore"`
	GuessSeconds   int         `json:"guessSeconds"`
	Rotation       int         `json:"rotation"`
	Turn           int         `json:"turn"`
	Roles          *TurnView   `json:"roles,omitempty"`
	ClueLog        []ClueEntry `json:"clueLog,omitempty"`
	SecretWord     string      `json:"secretWord,omitempty"`
	TimeLeft       int         `json:"timeLeft,omitempty"`
	Winner         string      `json:"winner,omitempty"`
	QuizActive     bool        `json:"quizActive,omitempty"`
	Spectators     int         `json:"spectators"`
	ScheduledStart *time.Time  `json:"scheduledStart,omitempty"`
}

// broadcastState sends each participant their own filtered view.
// Lock held.
func (r *Room) broadcastState() {
	for _, p := range r.participants {
		p.sender.Send(EventRoomState, r.viewFor(p))
	}
}

// viewFor builds the snapshot one participant is allowed to see.
// Lock held.
func (r *Room) viewFor(p *Participant) StateView {
	view := StateView{
		Code:           r.code,
		Name:           r.name,
		Phase:          r.state.phase(),
		AdminSlot:      r.adminSlot,
		YourSlot:       p.Slot,
		Scores:         r.scores,
		WinScore:       r.winScore,
		GuessSeconds:   r.guessSeconds,
		Rotation:       r.rotation,
		Turn:           r.turn,
		QuizActive:     r.quiz != nil,
		ScheduledStart: r.scheduledStart,
	}

	view.Seats = make([]SeatView, seatCount)
	for i := range r.seats {
		seat := &r.seats[i]
		sv := SeatView{
			Slot:         i,
			Occupied:     seat.occupied(),
			Disconnected: seat.Disconnected,
		}
		if seat.occupied() {
			sv.Name = seat.Name
		}
		if seat.Profile != nil {
			sv.AccountID = seat.Profile.ID
			sv.Avatar = seat.Profile.Avatar
			sv.GamesPlayed = seat.Profile.GamesPlayed
			sv.GamesWon = seat.Profile.GamesWon
		}
		view.Seats[i] = sv
	}

	for _, other := range r.participants {
		if other.Slot < 0 {
			view.Spectators++
		}
	}

	if r.gameActive() {
		roles := r.roles()
		view.Roles = &TurnView{
			SecretHolder: roles.SecretHolder,
			Receiver:     roles.Receiver,
			ClueGiver:    roles.ClueGiver,
			Guesser:      roles.Guesser,
		}
		view.ClueLog = r.clueLog

		secret := r.currentSecret()
		if secret != "" && (p.Slot == roles.SecretHolder || p.Slot == roles.Receiver) {
			view.SecretWord = secret
		}
		if guess, ok := r.state.(*guessState); ok {
			view.TimeLeft = guess.timeLeft
		}
	}

	switch state := r.state.(type) {
	case *countdownState:
		view.TimeLeft = state.remaining
	case *gameOverState:
		if state.winner == TeamA {
			view.Winner = "teamA"
		} else {
			view.Winner = "teamB"
		}
	}

	return view
}

func (r *Room) currentSecret() string {
	switch state := r.state.(type) {
	case *clueState:
		return state.secretWord
	case *guessState:
		return state.secretWord
	}
	return ""
}

// broadcast fans one event out to every participant. Lock held.
func (r *Room) broadcast(event string, data any) {
	for _, p := range r.participants {
		p.sender.Send(event, data)
	}
}

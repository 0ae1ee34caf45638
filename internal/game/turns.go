package game

import (
	"context"
	"strings"
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
)

// normalizeWord trims the input and keeps the first whitespace-separated
// token, enforcing the single-word rule. Empty input normalizes to "".
func normalizeWord(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (r *Room) roles() TurnRoles {
	return RoundConfig(r.rotation, r.turn)
}

// StartGame begins play immediately. Admin only, lobby only, and all
// four seats must be connected.
func (r *Room) StartGame(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.adminInLobby(connID) || !r.allSeatsConnected() {
		return
	}
	r.beginGame()
}

// StartCountdown schedules the start after a visible countdown. Admin
// only, lobby only. Seconds are clamped to [5, 300].
func (r *Room) StartCountdown(connID string, seconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.adminInLobby(connID) {
		return
	}
	if seconds < minCountdownSeconds {
		seconds = minCountdownSeconds
	}
	if seconds > maxCountdownSeconds {
		seconds = maxCountdownSeconds
	}

	state := &countdownState{remaining: seconds}
	r.state = state

	var c *Countdown
	c = StartCountdown(seconds,
		func(remaining int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.countdownTimer != c {
				return
			}
			state.remaining = remaining
			r.broadcast(EventCountdownTick, TickPayload{Remaining: remaining})
		},
		func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.countdownTimer != c {
				return
			}
			r.countdownTimer = nil
			if r.allSeatsConnected() {
				r.beginGame()
			} else {
				r.state = &lobbyState{}
				r.broadcastState()
			}
		},
	)
	r.countdownTimer = c

	r.broadcastState()
}

// CancelCountdown aborts a pending countdown. Admin only.
func (r *Room) CancelCountdown(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, counting := r.state.(*countdownState); !counting {
		return
	}
	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}

	r.clearCountdown()
	r.state = &lobbyState{}
	r.broadcastState()
}

// beginGame resets scores and rotation and enters the first round.
// Lock held.
func (r *Room) beginGame() {
	r.scores = Scores{}
	r.rotation = 0
	r.clearCountdown()
	r.stopQuizLocked(false)

	if r.deps.Metrics != nil {
		r.deps.Metrics.GamesStarted.Inc()
	}
	r.persistStatus(domain.RoomStatusPlaying)
	r.logf(logging.RoomLifecycle, "game started", r.adminSlot, nil)

	r.beginRound()
}

// beginRound starts a fresh round at the current rotation: clue log
// cleared, turn zero, secret holder prompted. Lock held.
func (r *Room) beginRound() {
	r.clearGuessTimer()
	r.clearPause()
	r.turn = 0
	r.clueLog = nil
	r.state = &secretState{}

	r.broadcastState()
	r.reevaluateGrace()
}

// beginClueTurn moves to the clue phase, preserving the secret word.
// Lock held.
func (r *Room) beginClueTurn(secretWord string) {
	r.clearGuessTimer()
	r.state = &clueState{secretWord: secretWord}

	r.broadcastState()
	r.reevaluateGrace()
}

// SubmitSecret records the round's secret word. Only the secret holder
// may submit; anything else is silently ignored.
func (r *Room) SubmitSecret(connID string, word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || p.Slot < 0 {
		return
	}
	r.submitSecretFromSlot(p.Slot, word)
}

func (r *Room) submitSecretFromSlot(slot int, word string) {
	if _, waiting := r.state.(*secretState); !waiting {
		return
	}
	if slot != r.roles().SecretHolder {
		return
	}
	word = normalizeWord(word)
	if word == "" {
		return
	}

	r.logf(logging.TurnFlow, "secret submitted", slot, nil)
	r.beginClueTurn(word)
}

// SubmitClue records a clue from the current clue giver and opens the
// guess window.
func (r *Room) SubmitClue(connID string, word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || p.Slot < 0 {
		return
	}
	r.submitClueFromSlot(p.Slot, word)
}

func (r *Room) submitClueFromSlot(slot int, word string) {
	state, ok := r.state.(*clueState)
	if !ok {
		return
	}
	if slot != r.roles().ClueGiver {
		return
	}
	word = normalizeWord(word)
	if word == "" {
		return
	}

	r.clueLog = append(r.clueLog, ClueEntry{Slot: slot, Word: word})
	r.beginGuess(state.secretWord)
}

// beginGuess enters the guess phase and arms the guess timer when one
// is configured. Lock held.
func (r *Room) beginGuess(secretWord string) {
	state := &guessState{secretWord: secretWord, timeLeft: r.guessSeconds}
	r.state = state

	if r.guessSeconds > 0 {
		var c *Countdown
		c = StartCountdown(r.guessSeconds,
			func(remaining int) {
				r.mu.Lock()
				defer r.mu.Unlock()
				if r.guessTimer != c {
					return
				}
				state.timeLeft = remaining
				r.broadcast(EventGuessTick, TickPayload{Remaining: remaining})
			},
			func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				if r.guessTimer != c {
					return
				}
				r.guessTimer = nil
				r.onGuessTimeout(state)
			},
		)
		r.guessTimer = c
	}

	r.broadcastState()
	r.reevaluateGrace()
}

// onGuessTimeout treats an expired guess window like a wrong guess:
// the turn advances and the same pair swaps roles. Lock held.
func (r *Room) onGuessTimeout(state *guessState) {
	if r.state != phaseState(state) {
		return
	}
	r.logf(logging.TurnFlow, "guess window expired", r.roles().Guesser, nil)
	r.turn++
	r.beginClueTurn(state.secretWord)
}

// SubmitGuess checks a guess from the current guesser. A correct guess
// scores the pair's team, checks the win condition and, short of a win,
// advances the rotation after a short pause. A wrong guess is logged
// and the turn advances.
func (r *Room) SubmitGuess(connID string, word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || p.Slot < 0 {
		return
	}
	r.submitGuessFromSlot(p.Slot, word)
}

func (r *Room) submitGuessFromSlot(slot int, word string) {
	state, ok := r.state.(*guessState)
	if !ok {
		return
	}
	if slot != r.roles().Guesser {
		return
	}
	word = normalizeWord(word)
	if word == "" {
		return
	}

	if strings.EqualFold(word, state.secretWord) {
		r.onCorrectGuess(slot)
		return
	}

	if r.deps.Metrics != nil {
		r.deps.Metrics.Guesses.WithLabelValues("wrong").Inc()
	}
	r.clueLog = append(r.clueLog, ClueEntry{Slot: slot, Word: word, IsGuess: true, Wrong: true})
	r.turn++
	r.beginClueTurn(state.secretWord)
}

func (r *Room) onCorrectGuess(slot int) {
	r.clearGuessTimer()

	team := TeamForSeat(slot)
	if team == TeamA {
		r.scores.TeamA++
	} else {
		r.scores.TeamB++
	}
	if r.deps.Metrics != nil {
		r.deps.Metrics.Guesses.WithLabelValues("correct").Inc()
	}
	r.logf(logging.TurnFlow, "round won", slot, nil)

	if winner, won := r.winner(); won {
		r.enterGameOver(winner)
		return
	}

	r.rotation = (r.rotation + 1) % seatCount
	r.state = &roundOverState{}
	r.clearGrace()
	r.broadcastState()

	var d *Delay
	d = StartDelay(roundOverPause, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.pauseTimer != d {
			return
		}
		r.pauseTimer = nil
		if _, paused := r.state.(*roundOverState); paused {
			r.beginRound()
		}
	})
	r.pauseTimer = d
}

// winner applies the win condition: a team leads with at least the
// target score and a margin of two.
func (r *Room) winner() (Team, bool) {
	a, b := r.scores.TeamA, r.scores.TeamB
	if a >= r.winScore && a-b >= 2 {
		return TeamA, true
	}
	if b >= r.winScore && b-a >= 2 {
		return TeamB, true
	}
	return TeamA, false
}

func (r *Room) enterGameOver(winner Team) {
	r.stopAllTimers()
	r.state = &gameOverState{winner: winner}

	if r.deps.Metrics != nil {
		r.deps.Metrics.GamesFinished.Inc()
	}
	r.persistStatus(domain.RoomStatusFinished)
	r.recordResults(winner)
	r.logf(logging.RoomLifecycle, "game over", -1, nil)

	r.broadcastState()
}

// recordResults bumps played/won counters for every seated linked
// account. Lock held; writes are best-effort.
func (r *Room) recordResults(winner Team) {
	if r.deps.Profiles == nil {
		return
	}
	for i := range r.seats {
		seat := &r.seats[i]
		if seat.Profile == nil {
			continue
		}
		userID := seat.Profile.ID
		won := TeamForSeat(i) == winner
		r.persist("record result", func(ctx context.Context) error {
			if won {
				return r.deps.Profiles.AddGameWon(ctx, userID)
			}
			return r.deps.Profiles.AddGamePlayed(ctx, userID)
		})
	}
}

// ResetGame returns the room to the lobby. Admin only, from the lobby
// or a finished game.
func (r *Room) ResetGame(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state.(type) {
	case *lobbyState, *gameOverState:
	default:
		return
	}
	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}

	r.resetLocked()
	r.broadcast(EventRoomReset, RoomRefPayload{Code: r.code})
	r.broadcastState()
}

// resetLocked clears all game state, drops reservations and keeps only
// currently-connected occupants in their seats. Lock held.
func (r *Room) resetLocked() {
	r.stopAllTimers()
	r.quiz = nil

	r.scores = Scores{}
	r.rotation = 0
	r.turn = 0
	r.clueLog = nil
	r.state = &lobbyState{}

	adminConnected := r.adminSlot >= 0 && r.seats[r.adminSlot].connected()
	for i := range r.seats {
		if !r.seats[i].connected() {
			if r.seats[i].Profile != nil {
				r.removeParticipantRecord(r.seats[i].Profile.ID)
			}
			r.seats[i] = Seat{}
			for _, p := range r.participants {
				if p.Slot == i {
					p.Slot = -1
				}
			}
		}
	}
	if !adminConnected {
		r.reassignAdmin()
	}

	r.persistStatus(domain.RoomStatusLobby)
	r.logf(logging.RoomLifecycle, "room reset", r.adminSlot, nil)
}

// reevaluateGrace arms, re-arms or cancels the auto-skip grace timer
// depending on whether the seat whose action is awaited is
// disconnected. Lock held.
func (r *Room) reevaluateGrace() {
	active := -1
	switch r.state.(type) {
	case *secretState:
		active = r.roles().SecretHolder
	case *clueState:
		active = r.roles().ClueGiver
	case *guessState:
		active = r.roles().Guesser
	}

	if active < 0 || !r.seats[active].Disconnected {
		r.clearGrace()
		return
	}
	if r.graceSlot == active && r.graceTimer != nil {
		return
	}

	r.clearGrace()
	grace := r.deps.Settings.DisconnectGrace
	if grace <= 0 {
		grace = 15 * time.Second
	}

	slot := active
	var d *Delay
	d = StartDelay(grace, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.graceTimer != d {
			return
		}
		r.graceTimer = nil
		r.graceSlot = -1
		r.onGraceExpired(slot)
	})
	r.graceTimer = d
	r.graceSlot = slot
}

// onGraceExpired skips the disconnected seat's pending action so the
// game keeps moving. Lock held.
func (r *Room) onGraceExpired(slot int) {
	if !r.seats[slot].Disconnected {
		return
	}

	switch state := r.state.(type) {
	case *secretState:
		if slot != r.roles().SecretHolder {
			return
		}
		r.logf(logging.TurnFlow, "secret skipped after grace", slot, nil)
		r.beginClueTurn(placeholderSecret)
	case *clueState:
		if slot != r.roles().ClueGiver {
			return
		}
		r.logf(logging.TurnFlow, "clue skipped after grace", slot, nil)
		r.turn++
		r.beginClueTurn(state.secretWord)
	case *guessState:
		if slot != r.roles().Guesser {
			return
		}
		r.logf(logging.TurnFlow, "guess skipped after grace", slot, nil)
		r.turn++
		r.beginClueTurn(state.secretWord)
	}
}

package game

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
)

type sentEvent struct {
	name string
	data any
}

type fakeSender struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeSender) Send(event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{name: event, data: data})
}

func (f *fakeSender) last(event string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].name == event {
			return f.events[i].data, true
		}
	}
	return nil, false
}

func (f *fakeSender) lastState() (StateView, bool) {
	data, ok := f.last(EventRoomState)
	if !ok {
		return StateView{}, false
	}
	view, ok := data.(StateView)
	return view, ok
}

func (f *fakeSender) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.name == event {
			n++
		}
	}
	return n
}

func conn(slot int) string { return fmt.Sprintf("conn%d", slot) }

func testSettings() Settings {
	return Settings{
		DefaultWinScore:     10,
		DefaultGuessSeconds: 30,
		DisconnectGrace:     20 * time.Millisecond,
		QuizQuestionSeconds: 20,
		TestAccount:         "smoke",
	}
}

func newLobbyRoom(t *testing.T) (*Room, []*fakeSender) {
	t.Helper()

	room := NewRoom("ABCDEF", "Friday night", "creator-1", Deps{Settings: testSettings()})
	t.Cleanup(room.Close)

	names := []string{"Ana", "Boro", "Ceca", "Duke"}
	senders := make([]*fakeSender, 4)
	for i := 0; i < 4; i++ {
		senders[i] = &fakeSender{}
		room.Join(NewParticipant(conn(i), names[i], nil, senders[i]), "")
	}
	return room, senders
}

func currentRoles(r *Room) TurnRoles {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roles()
}

func currentSecret(r *Room) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentSecret()
}

func currentScores(r *Room) Scores {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores
}

// finishRoundPause fast-forwards the between-rounds pause.
func finishRoundPause(t *testing.T, r *Room) {
	t.Helper()
	r.mu.Lock()
	require.IsType(t, &roundOverState{}, r.state)
	r.clearPause()
	r.beginRound()
	r.mu.Unlock()
}

// expireGuessTimer fast-forwards the guess window.
func expireGuessTimer(t *testing.T, r *Room) {
	t.Helper()
	r.mu.Lock()
	state, ok := r.state.(*guessState)
	require.True(t, ok, "not in the guess phase")
	r.clearGuessTimer()
	r.onGuessTimeout(state)
	r.mu.Unlock()
}

func TestJoinSeating(t *testing.T) {
	t.Parallel()

	t.Run("First Four Joiners Take Seats In Order", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		for i := 0; i < 4; i++ {
			data, ok := senders[i].last(EventSeatAssigned)
			require.True(t, ok)
			assignment := data.(SeatAssignment)
			assert.Equal(t, i, assignment.Slot)
			assert.NotEmpty(t, assignment.ReconnectToken)
		}

		view, ok := senders[0].lastState()
		require.True(t, ok)
		assert.Equal(t, PhaseLobby, view.Phase)
		assert.Equal(t, 0, view.AdminSlot)
		assert.Equal(t, 4, room.SeatedCount())
	})

	t.Run("Fifth Joiner Spectates", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		extra := &fakeSender{}
		room.Join(NewParticipant("conn4", "Eva", nil, extra), "")

		data, ok := extra.last(EventSeatAssigned)
		require.True(t, ok)
		assert.Equal(t, -1, data.(SeatAssignment).Slot)

		view, _ := extra.lastState()
		assert.Equal(t, 1, view.Spectators)
	})

	t.Run("Linked Account Name Wins Over Supplied Name", func(t *testing.T) {
		t.Parallel()
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{Settings: testSettings()})
		t.Cleanup(room.Close)

		account := &domain.Profile{ID: "u1", Username: "stvarna_ana"}
		sender := &fakeSender{}
		room.Join(NewParticipant("c1", "whatever", account, sender), "")

		view, ok := sender.lastState()
		require.True(t, ok)
		assert.Equal(t, "stvarna_ana", view.Seats[0].Name)
		assert.Equal(t, "u1", view.Seats[0].AccountID)
	})

	t.Run("Linked Account Seat Carries Avatar And Record", func(t *testing.T) {
		t.Parallel()
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{Settings: testSettings()})
		t.Cleanup(room.Close)

		account := &domain.Profile{
			ID:          "u1",
			Username:    "ana",
			Avatar:      "fox",
			GamesPlayed: 12,
			GamesWon:    7,
		}
		sender := &fakeSender{}
		room.Join(NewParticipant("c1", "ana", account, sender), "")

		guest := &fakeSender{}
		room.Join(NewParticipant("c2", "boro", nil, guest), "")

		view, ok := guest.lastState()
		require.True(t, ok)
		assert.Equal(t, "fox", view.Seats[0].Avatar)
		assert.Equal(t, 12, view.Seats[0].GamesPlayed)
		assert.Equal(t, 7, view.Seats[0].GamesWon)

		assert.Empty(t, view.Seats[1].Avatar)
		assert.Zero(t, view.Seats[1].GamesPlayed)
	})
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	t.Run("Admin Starts With Four Connected Seats", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.StartGame(conn(0))
		assert.Equal(t, PhaseSecret, room.Phase())

		roles := currentRoles(room)
		assert.Equal(t, 0, roles.SecretHolder)
		assert.Equal(t, 1, roles.Receiver)
	})

	t.Run("Non Admin Cannot Start", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.StartGame(conn(2))
		assert.Equal(t, PhaseLobby, room.Phase())
	})

	t.Run("Missing Seat Blocks The Start", func(t *testing.T) {
		t.Parallel()
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{Settings: testSettings()})
		t.Cleanup(room.Close)
		for i := 0; i < 3; i++ {
			room.Join(NewParticipant(conn(i), fmt.Sprintf("p%d", i), nil, &fakeSender{}), "")
		}

		room.StartGame(conn(0))
		assert.Equal(t, PhaseLobby, room.Phase())
	})
}

func TestTurnFlow(t *testing.T) {
	t.Parallel()

	t.Run("Secret Clue And Correct Guess Score A Round", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)
		room.StartGame(conn(0))

		// Seat 0 holds, seat 1 receives and gives the first clue,
		// seat 2 guesses.
		room.SubmitSecret(conn(0), "  APPLE  pie ")
		assert.Equal(t, PhaseClue, room.Phase())
		assert.Equal(t, "APPLE", currentSecret(room))

		// Holder and receiver see the word; the guessing pair must not.
		holderView, _ := senders[0].lastState()
		receiverView, _ := senders[1].lastState()
		guesserView, _ := senders[2].lastState()
		assert.Equal(t, "APPLE", holderView.SecretWord)
		assert.Equal(t, "APPLE", receiverView.SecretWord)
		assert.Empty(t, guesserView.SecretWord)

		room.SubmitClue(conn(1), "fruit")
		assert.Equal(t, PhaseGuess, room.Phase())

		room.SubmitGuess(conn(2), "apple")
		assert.Equal(t, PhaseRoundOver, room.Phase())
		assert.Equal(t, Scores{TeamA: 0, TeamB: 1}, currentScores(room))

		finishRoundPause(t, room)
		assert.Equal(t, PhaseSecret, room.Phase())
		assert.Equal(t, 1, currentRoles(room).SecretHolder, "rotation advanced")
	})

	t.Run("Wrong Guess Swaps The Pair", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))
		room.SubmitSecret(conn(0), "apple")
		room.SubmitClue(conn(1), "fruit")

		room.SubmitGuess(conn(2), "banana")
		assert.Equal(t, PhaseClue, room.Phase())
		assert.Equal(t, Scores{}, currentScores(room))

		roles := currentRoles(room)
		assert.Equal(t, 0, roles.ClueGiver, "holder gives the clue on the odd turn")
		assert.Equal(t, 3, roles.Guesser)

		room.mu.Lock()
		require.Len(t, room.clueLog, 2)
		assert.Equal(t, ClueEntry{Slot: 1, Word: "fruit"}, room.clueLog[0])
		assert.Equal(t, ClueEntry{Slot: 2, Word: "banana", IsGuess: true, Wrong: true}, room.clueLog[1])
		room.mu.Unlock()
	})

	t.Run("Guess Timeout Counts As A Wrong Guess", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))
		room.SubmitSecret(conn(0), "apple")
		room.SubmitClue(conn(1), "fruit")

		expireGuessTimer(t, room)
		assert.Equal(t, PhaseClue, room.Phase())
		assert.Equal(t, "apple", currentSecret(room))
		assert.Equal(t, 0, currentRoles(room).ClueGiver)
	})

	t.Run("Submissions From The Wrong Seat Are Ignored", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.SubmitSecret(conn(2), "apple")
		assert.Equal(t, PhaseSecret, room.Phase())

		room.SubmitSecret(conn(0), "apple")
		room.SubmitClue(conn(3), "fruit")
		assert.Equal(t, PhaseClue, room.Phase())

		room.SubmitClue(conn(1), "fruit")
		room.SubmitGuess(conn(0), "apple")
		assert.Equal(t, PhaseGuess, room.Phase())
		assert.Equal(t, Scores{}, currentScores(room))
	})

	t.Run("Empty Words Are Ignored", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.SubmitSecret(conn(0), "   ")
		assert.Equal(t, PhaseSecret, room.Phase())
	})
}

func TestWinCondition(t *testing.T) {
	t.Parallel()

	// Brings the room to a guess phase where the given slot guesses.
	toGuessPhase := func(t *testing.T, room *Room) int {
		t.Helper()
		room.SubmitSecret(conn(0), "apple")
		room.SubmitClue(conn(1), "fruit")
		return currentRoles(room).Guesser
	}

	t.Run("Target Reached With Margin Of Two Ends The Game", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.mu.Lock()
		room.scores = Scores{TeamA: 8, TeamB: 9}
		room.mu.Unlock()

		guesser := toGuessPhase(t, room) // seat 2, team B
		room.SubmitGuess(conn(guesser), "apple")

		assert.Equal(t, PhaseGameOver, room.Phase())
		assert.Equal(t, Scores{TeamA: 8, TeamB: 10}, currentScores(room))
	})

	t.Run("Target Reached Without The Margin Keeps Playing", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.mu.Lock()
		room.scores = Scores{TeamA: 9, TeamB: 9}
		room.mu.Unlock()

		guesser := toGuessPhase(t, room)
		room.SubmitGuess(conn(guesser), "apple")

		assert.Equal(t, PhaseRoundOver, room.Phase())
		assert.Equal(t, Scores{TeamA: 9, TeamB: 10}, currentScores(room))
	})

	t.Run("Winner Appears In The Snapshot", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.mu.Lock()
		room.scores = Scores{TeamA: 8, TeamB: 9}
		room.mu.Unlock()

		guesser := toGuessPhase(t, room)
		room.SubmitGuess(conn(guesser), "apple")

		view, ok := senders[0].lastState()
		require.True(t, ok)
		assert.Equal(t, "teamB", view.Winner)
	})
}

func TestDisconnectAndReconnect(t *testing.T) {
	t.Parallel()

	t.Run("Active Phase Reserves The Seat", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.Disconnect(conn(2))

		room.mu.Lock()
		seat := room.seats[2]
		room.mu.Unlock()
		assert.True(t, seat.Disconnected)
		assert.NotEmpty(t, seat.Reservation.Token)
		assert.Equal(t, 4, room.SeatedCount())
	})

	t.Run("Reconnect By Token Reclaims The Seat", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)
		room.StartGame(conn(0))

		data, _ := senders[2].last(EventSeatAssigned)
		token := data.(SeatAssignment).ReconnectToken
		room.Disconnect(conn(2))

		back := &fakeSender{}
		room.Join(NewParticipant("conn2b", "Ceca", nil, back), token)

		assigned, ok := back.last(EventSeatAssigned)
		require.True(t, ok)
		assert.Equal(t, 2, assigned.(SeatAssignment).Slot)
		assert.Equal(t, PhaseSecret, room.Phase())
	})

	t.Run("Reconnect By Account Reclaims The Seat", func(t *testing.T) {
		t.Parallel()
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{Settings: testSettings()})
		t.Cleanup(room.Close)

		account := &domain.Profile{ID: "u7", Username: "boro"}
		room.Join(NewParticipant("c0", "ana", nil, &fakeSender{}), "")
		room.Join(NewParticipant("c1", "x", account, &fakeSender{}), "")
		room.Join(NewParticipant("c2", "ceca", nil, &fakeSender{}), "")
		room.Join(NewParticipant("c3", "duke", nil, &fakeSender{}), "")
		room.StartGame("c0")

		room.Disconnect("c1")

		back := &fakeSender{}
		room.Join(NewParticipant("c1b", "y", account, back), "")

		assigned, ok := back.last(EventSeatAssigned)
		require.True(t, ok)
		assert.Equal(t, 1, assigned.(SeatAssignment).Slot)
	})

	t.Run("Grace Expiry Skips The Missing Secret Holder", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.Disconnect(conn(0)) // holder's move is pending

		assert.Eventually(t, func() bool {
			return room.Phase() == PhaseClue
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, placeholderSecret, currentSecret(room))
	})

	t.Run("Grace Expiry Skips The Missing Guesser", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))
		room.SubmitSecret(conn(0), "apple")
		room.SubmitClue(conn(1), "fruit")

		room.Disconnect(conn(2))

		assert.Eventually(t, func() bool {
			return room.Phase() == PhaseClue && currentRoles(room).ClueGiver == 0
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, "apple", currentSecret(room))
	})

	t.Run("Reconnect Within Grace Cancels The Skip", func(t *testing.T) {
		t.Parallel()
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{Settings: Settings{
			DefaultWinScore:     10,
			DefaultGuessSeconds: 0,
			DisconnectGrace:     300 * time.Millisecond,
		}})
		t.Cleanup(room.Close)

		senders := make([]*fakeSender, 4)
		for i := 0; i < 4; i++ {
			senders[i] = &fakeSender{}
			room.Join(NewParticipant(conn(i), fmt.Sprintf("p%d", i), nil, senders[i]), "")
		}
		room.StartGame(conn(0))

		data, _ := senders[0].last(EventSeatAssigned)
		token := data.(SeatAssignment).ReconnectToken
		room.Disconnect(conn(0))
		room.Join(NewParticipant("conn0b", "p0", nil, &fakeSender{}), token)

		time.Sleep(400 * time.Millisecond)
		assert.Equal(t, PhaseSecret, room.Phase(), "skip must not fire after the return")
	})

	t.Run("Lobby Disconnect Releases The Seat", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.Disconnect(conn(1))
		assert.Equal(t, 3, room.SeatedCount())
	})

	t.Run("Admin Disconnect Promotes The Next Seat", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.Disconnect(conn(0))

		view, ok := senders[1].lastState()
		require.True(t, ok)
		assert.Equal(t, 1, view.AdminSlot)
	})

	t.Run("All Seats Gone Resets The Room", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))
		room.SubmitSecret(conn(0), "apple")

		for i := 0; i < 4; i++ {
			room.Disconnect(conn(i))
		}

		assert.Equal(t, PhaseLobby, room.Phase())
		assert.Equal(t, 0, room.SeatedCount(), "reservations dropped")
	})
}

func TestCountdownPhase(t *testing.T) {
	t.Parallel()

	t.Run("Countdown Enters And Cancel Returns To Lobby", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.StartCountdown(conn(0), 60)
		assert.Equal(t, PhaseCountdown, room.Phase())

		room.CancelCountdown(conn(0))
		assert.Equal(t, PhaseLobby, room.Phase())
	})

	t.Run("Seconds Clamp To The Floor", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.StartCountdown(conn(0), 1)

		view, ok := senders[0].lastState()
		require.True(t, ok)
		assert.Equal(t, minCountdownSeconds, view.TimeLeft)
		room.CancelCountdown(conn(0))
	})

	t.Run("Seat Loss Aborts The Countdown", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.StartCountdown(conn(0), 60)
		room.Disconnect(conn(3))

		assert.Equal(t, PhaseLobby, room.Phase())
	})

	t.Run("Non Admin Cannot Cancel", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.StartCountdown(conn(0), 60)
		room.CancelCountdown(conn(2))
		assert.Equal(t, PhaseCountdown, room.Phase())
	})
}

func TestResetGame(t *testing.T) {
	t.Parallel()

	t.Run("After Game Over The Admin Can Reset", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))

		room.mu.Lock()
		room.enterGameOver(TeamA)
		room.mu.Unlock()

		room.ResetGame(conn(0))
		assert.Equal(t, PhaseLobby, room.Phase())
		assert.Equal(t, Scores{}, currentScores(room))
		assert.Equal(t, 4, room.SeatedCount(), "connected players keep their seats")
	})

	t.Run("Mid Round Reset Is Refused", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		room.StartGame(conn(0))
		room.SubmitSecret(conn(0), "apple")

		room.ResetGame(conn(0))
		assert.Equal(t, PhaseClue, room.Phase())
	})
}

func TestKick(t *testing.T) {
	t.Parallel()

	t.Run("Admin Kick Frees The Seat And Demotes To Spectator", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.Kick(conn(0), 2)

		assert.Equal(t, 3, room.SeatedCount())
		_, ok := senders[2].last(EventKicked)
		assert.True(t, ok)

		view, _ := senders[0].lastState()
		assert.Equal(t, 1, view.Spectators)
	})

	t.Run("Non Admin Cannot Kick", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.Kick(conn(1), 2)
		assert.Equal(t, 4, room.SeatedCount())
	})

	t.Run("Admin Cannot Kick Themselves", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.Kick(conn(0), 0)
		assert.Equal(t, 4, room.SeatedCount())
	})
}

func TestSeatManagement(t *testing.T) {
	t.Parallel()

	t.Run("Spectator Claims A Freed Seat", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		extra := &fakeSender{}
		room.Join(NewParticipant("conn4", "Eva", nil, extra), "")

		room.Disconnect(conn(3))
		room.MoveSeat("conn4", 3)

		view, ok := extra.lastState()
		require.True(t, ok)
		assert.Equal(t, 3, view.YourSlot)
	})

	t.Run("Moving To An Occupied Seat Is Refused", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.MoveSeat(conn(0), 1)

		view, _ := senders[0].lastState()
		assert.Equal(t, 0, view.YourSlot)
	})

	t.Run("Seat Moves Are Lobby Only", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)
		extra := &fakeSender{}
		room.Join(NewParticipant("conn4", "Eva", nil, extra), "")
		room.Disconnect(conn(3))

		room.mu.Lock()
		room.state = &secretState{}
		room.mu.Unlock()

		room.MoveSeat("conn4", 3)

		room.mu.Lock()
		occupied := room.seats[3].occupied()
		room.mu.Unlock()
		assert.False(t, occupied, "the freed seat must stay empty outside the lobby")
	})

	t.Run("Randomize Keeps The Same Players Seated", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.RandomizeSeats(conn(0))

		room.mu.Lock()
		defer room.mu.Unlock()
		names := map[string]bool{}
		for i := range room.seats {
			require.True(t, room.seats[i].occupied())
			names[room.seats[i].Name] = true
		}
		assert.Len(t, names, 4)
		assert.True(t, room.adminSlot >= 0 && room.seats[room.adminSlot].Name == "Ana",
			"admin badge follows the admin")
	})
}

func TestRoomSettings(t *testing.T) {
	t.Parallel()

	t.Run("Win Score Clamps To Range", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.SetWinScore(conn(0), 0)
		view, _ := senders[0].lastState()
		assert.Equal(t, 1, view.WinScore)

		room.SetWinScore(conn(0), 1000)
		view, _ = senders[0].lastState()
		assert.Equal(t, maxWinScore, view.WinScore)
	})

	t.Run("Guess Time Zero Disables The Timer", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.SetGuessTime(conn(0), 0)
		room.StartGame(conn(0))
		room.SubmitSecret(conn(0), "apple")
		room.SubmitClue(conn(1), "fruit")

		room.mu.Lock()
		timer := room.guessTimer
		room.mu.Unlock()
		assert.Nil(t, timer)
		assert.Equal(t, PhaseGuess, room.Phase())
	})

	t.Run("Settings Are Admin And Lobby Only", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.SetWinScore(conn(1), 5)
		view, _ := senders[0].lastState()
		assert.Equal(t, 10, view.WinScore)

		room.StartGame(conn(0))
		room.SetWinScore(conn(0), 5)

		room.mu.Lock()
		winScore := room.winScore
		room.mu.Unlock()
		assert.Equal(t, 10, winScore)
	})
}

func TestChat(t *testing.T) {
	t.Parallel()

	t.Run("Messages Reach Everyone", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.Chat(conn(1), " zdravo svima ")

		for _, s := range senders {
			data, ok := s.last(EventChatMessage)
			require.True(t, ok)
			entry := data.(ChatEntry)
			assert.Equal(t, "zdravo svima", entry.Text)
			assert.Equal(t, 1, entry.Slot)
		}
	})

	t.Run("Blank Messages Are Dropped", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		room.Chat(conn(0), "   ")
		_, ok := senders[1].last(EventChatMessage)
		assert.False(t, ok)
	})

	t.Run("Long Messages Are Cut At A Rune Boundary", func(t *testing.T) {
		t.Parallel()
		room, senders := newLobbyRoom(t)

		// The second byte of "ž" lands exactly on the length cap.
		text := strings.Repeat("a", maxChatLength-1) + "ž" + strings.Repeat("b", 20)
		room.Chat(conn(2), text)

		data, ok := senders[0].last(EventChatMessage)
		require.True(t, ok)
		entry := data.(ChatEntry)
		assert.True(t, utf8.ValidString(entry.Text))
		assert.Equal(t, strings.Repeat("a", maxChatLength-1), entry.Text)
	})

	t.Run("Transcript Is Capped", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		for i := 0; i < maxChatHistory+25; i++ {
			room.Chat(conn(0), fmt.Sprintf("msg %d", i))
		}

		room.mu.Lock()
		defer room.mu.Unlock()
		assert.Len(t, room.chat, maxChatHistory)
		assert.Equal(t, "msg 25", room.chat[0].Text)
	})
}

func TestTestMode(t *testing.T) {
	t.Parallel()

	newOperatorRoom := func(t *testing.T) (*Room, *fakeSender) {
		t.Helper()
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{Settings: testSettings()})
		t.Cleanup(room.Close)

		operator := &domain.Profile{ID: "op", Username: "smoke"}
		sender := &fakeSender{}
		room.Join(NewParticipant("op-conn", "op", operator, sender), "")
		return room, sender
	}

	t.Run("Fill Seats Bots And The Game Can Start", func(t *testing.T) {
		t.Parallel()
		room, _ := newOperatorRoom(t)

		room.TestFill("op-conn")
		assert.Equal(t, 4, room.SeatedCount())

		room.StartGame("op-conn")
		assert.Equal(t, PhaseSecret, room.Phase())
	})

	t.Run("Act As Drives Any Seat", func(t *testing.T) {
		t.Parallel()
		room, _ := newOperatorRoom(t)
		room.TestFill("op-conn")
		room.StartGame("op-conn")

		room.ActAs("op-conn", 0, "secret", "apple")
		room.ActAs("op-conn", 1, "clue", "fruit")
		room.ActAs("op-conn", 2, "guess", "apple")

		assert.Equal(t, PhaseRoundOver, room.Phase())
		assert.Equal(t, Scores{TeamB: 1}, currentScores(room))
	})

	t.Run("Bots Do Not Keep An Abandoned Room Alive", func(t *testing.T) {
		t.Parallel()
		emptied := make(chan string, 1)
		room := NewRoom("ABCDEF", "x", "creator-1", Deps{
			Settings: testSettings(),
			OnEmpty:  func(code string) { emptied <- code },
		})
		t.Cleanup(room.Close)

		operator := &domain.Profile{ID: "op", Username: "smoke"}
		room.Join(NewParticipant("op-conn", "op", operator, &fakeSender{}), "")
		room.TestFill("op-conn")
		room.StartGame("op-conn")
		require.Equal(t, PhaseSecret, room.Phase())

		room.Disconnect("op-conn")

		select {
		case code := <-emptied:
			assert.Equal(t, "ABCDEF", code)
		default:
			t.Fatal("room never reported empty")
		}
		assert.Equal(t, 0, room.SeatedCount())
		assert.Equal(t, PhaseLobby, room.Phase())
	})

	t.Run("Kicked Bots Are Gone For Good", func(t *testing.T) {
		t.Parallel()
		room, sender := newOperatorRoom(t)
		room.TestFill("op-conn")

		room.Kick("op-conn", 2)

		view, ok := sender.lastState()
		require.True(t, ok)
		assert.False(t, view.Seats[2].Occupied)
		assert.Equal(t, 0, view.Spectators)
	})

	t.Run("Ordinary Players Cannot Use Test Mode", func(t *testing.T) {
		t.Parallel()
		room, _ := newLobbyRoom(t)

		room.TestFill(conn(0))
		room.ActAs(conn(0), 0, "secret", "apple")

		assert.Equal(t, PhaseLobby, room.Phase())
	})
}

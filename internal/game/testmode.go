package game

import (
	"fmt"

	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
)

// isTestOperator reports whether the participant is logged in as the
// configured test account. Test-mode commands from anyone else are
// ignored like any other invalid input.
func (r *Room) isTestOperator(p *Participant) bool {
	test := r.deps.Settings.TestAccount
	return test != "" && p.Account != nil && p.Account.Username == test
}

// TestFill seats placeholder players in every empty seat so a single
// developer can exercise the full game loop.
func (r *Room) TestFill(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || !r.isTestOperator(p) {
		return
	}
	if !r.seatJoinAllowed() {
		return
	}

	for i := range r.seats {
		if r.seats[i].occupied() {
			continue
		}
		bot := NewParticipant(fmt.Sprintf("bot-%s-%d", r.code, i), fmt.Sprintf("Bot %d", i+1), nil, nopSender{})
		bot.Bot = true
		r.participants[bot.ID] = bot
		r.occupySeat(i, bot)
	}
	if r.adminSlot == -1 {
		r.reassignAdmin()
	}

	r.logf(logging.RoomLifecycle, "test fill", p.Slot, p)
	r.broadcastState()
}

// ActAs submits a word on behalf of an arbitrary seat: "secret",
// "clue" or "guess". Test account only.
func (r *Room) ActAs(connID string, slot int, kind string, word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || !r.isTestOperator(p) {
		return
	}
	if slot < 0 || slot >= seatCount {
		return
	}

	switch kind {
	case "secret":
		r.submitSecretFromSlot(slot, word)
	case "clue":
		r.submitClueFromSlot(slot, word)
	case "guess":
		r.submitGuessFromSlot(slot, word)
	}
}

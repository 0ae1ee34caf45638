package game

// TurnRoles is the per-turn role assignment derived from the rotation
// index and the turn counter. The secret holder whispers the word to the
// receiver; the clue giver and guesser alternate with turn parity.
type TurnRoles struct {
	SecretHolder int `json:"secretHolder"`
	Receiver     int `json:"receiver"`
	ClueGiver    int `json:"clueGiver"`
	Guesser      int `json:"guesser"`
}

// rotationTable maps rotation start x turn parity to the (clueGiver,
// guesser) pair. Even turns: the receiver gives the clue and the seat
// after them guesses. Odd turns: the holder gives the clue and the
// remaining seat guesses.
var rotationTable = [4][2]struct{ clueGiver, guesser int }{
	{{1, 2}, {0, 3}},
	{{2, 3}, {1, 0}},
	{{3, 0}, {2, 1}},
	{{0, 1}, {3, 2}},
}

// RoundConfig derives the active roles for a turn. Pure and
// deterministic: identical inputs always yield identical roles.
func RoundConfig(rotation, turn int) TurnRoles {
	// Callers keep rotation in [0,3]; take it modulo 4 anyway.
	s := ((rotation % 4) + 4) % 4
	p := ((turn % 2) + 2) % 2

	pair := rotationTable[s][p]

	return TurnRoles{
		SecretHolder: s,
		Receiver:     (s + 1) % 4,
		ClueGiver:    pair.clueGiver,
		Guesser:      pair.guesser,
	}
}

type Team int

const (
	TeamA Team = iota // seats 0 and 3
	TeamB             // seats 1 and 2
)

// TeamForSeat returns the fixed team a seat belongs to.
func TeamForSeat(slot int) Team {
	if slot == 0 || slot == 3 {
		return TeamA
	}
	return TeamB
}

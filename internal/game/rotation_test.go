package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundConfig(t *testing.T) {
	t.Parallel()

	t.Run("Holder And Receiver Follow The Rotation", func(t *testing.T) {
		t.Parallel()
		for rotation := 0; rotation < 4; rotation++ {
			roles := RoundConfig(rotation, 0)
			assert.Equal(t, rotation, roles.SecretHolder)
			assert.Equal(t, (rotation+1)%4, roles.Receiver)
		}
	})

	t.Run("Even Turns The Receiver Gives The Clue", func(t *testing.T) {
		t.Parallel()
		for rotation := 0; rotation < 4; rotation++ {
			roles := RoundConfig(rotation, 0)
			assert.Equal(t, roles.Receiver, roles.ClueGiver)
			assert.Equal(t, (rotation+2)%4, roles.Guesser)
		}
	})

	t.Run("Odd Turns The Holder Gives The Clue", func(t *testing.T) {
		t.Parallel()
		for rotation := 0; rotation < 4; rotation++ {
			roles := RoundConfig(rotation, 1)
			assert.Equal(t, roles.SecretHolder, roles.ClueGiver)
			assert.Equal(t, (rotation+3)%4, roles.Guesser)
		}
	})

	t.Run("Clue Giver And Guesser Are Always Opponents", func(t *testing.T) {
		t.Parallel()
		for rotation := 0; rotation < 4; rotation++ {
			for turn := 0; turn < 8; turn++ {
				roles := RoundConfig(rotation, turn)
				assert.NotEqual(t, TeamForSeat(roles.ClueGiver), TeamForSeat(roles.Guesser),
					"rotation %d turn %d", rotation, turn)
			}
		}
	})

	t.Run("Only Turn Parity Matters", func(t *testing.T) {
		t.Parallel()
		for rotation := 0; rotation < 4; rotation++ {
			assert.Equal(t, RoundConfig(rotation, 0), RoundConfig(rotation, 6))
			assert.Equal(t, RoundConfig(rotation, 1), RoundConfig(rotation, 7))
		}
	})

	t.Run("Negative And Overflowing Indexes Wrap", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, RoundConfig(0, 0), RoundConfig(4, 0))
		assert.Equal(t, RoundConfig(1, 1), RoundConfig(5, 3))
		assert.Equal(t, RoundConfig(3, 0), RoundConfig(-1, -2))
	})
}

func TestTeamForSeat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TeamA, TeamForSeat(0))
	assert.Equal(t, TeamB, TeamForSeat(1))
	assert.Equal(t, TeamB, TeamForSeat(2))
	assert.Equal(t, TeamA, TeamForSeat(3))
}

package game

const (
	EventSeatAssigned  = "seat.assigned"
	EventRoomState     = "room.state"
	EventRoomJoined    = "room.joined"
	EventRoomReset     = "room.reset"
	EventRoomDeleted   = "room.deleted"
	EventKicked        = "room.kicked"
	EventGuessTick     = "game.tick"
	EventCountdownTick = "countdown.tick"
	EventChatMessage   = "chat.message"

	EventQuizQuestion = "quiz.question"
	EventQuizTick     = "quiz.tick"
	EventQuizCorrect  = "quiz.correct"
	EventQuizReveal   = "quiz.reveal"
	EventQuizStopped  = "quiz.stopped"

	EventError = "error"
)

// Sender delivers one event to one participant. Implementations must
// not block: the Room calls Send while holding its lock.
type Sender interface {
	Send(event string, data any)
}

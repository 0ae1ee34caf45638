package game

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/metrics"
)

const (
	seatCount = 4

	minCountdownSeconds = 5
	maxCountdownSeconds = 300
	maxGuessSeconds     = 300
	maxWinScore         = 100
	maxChatHistory      = 200
	maxChatLength       = 500

	roundOverPause = 3 * time.Second

	// Substituted when the secret holder's grace period runs out.
	placeholderSecret = "mystery"
)

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseCountdown Phase = "countdown"
	PhaseSecret    Phase = "secret"
	PhaseClue      Phase = "clue"
	PhaseGuess     Phase = "guess"
	PhaseRoundOver Phase = "roundOver"
	PhaseGameOver  Phase = "gameOver"
)

// phaseState is a sum type over phases: each variant carries only the
// fields valid for that phase, so e.g. a secret word cannot exist in
// the lobby.
type phaseState interface {
	phase() Phase
}

type lobbyState struct{}

type countdownState struct {
	remaining int
}

type secretState struct{}

type clueState struct {
	secretWord string
}

type guessState struct {
	secretWord string
	timeLeft   int // 0 = unlimited, no timer running
}

type roundOverState struct{}

type gameOverState struct {
	winner Team
}

func (*lobbyState) phase() Phase     { return PhaseLobby }
func (*countdownState) phase() Phase { return PhaseCountdown }
func (*secretState) phase() Phase    { return PhaseSecret }
func (*clueState) phase() Phase      { return PhaseClue }
func (*guessState) phase() Phase     { return PhaseGuess }
func (*roundOverState) phase() Phase { return PhaseRoundOver }
func (*gameOverState) phase() Phase  { return PhaseGameOver }

// Reservation binds a vacated seat to a returning identity: a linked
// account id, or a one-time token handed out at seat assignment.
type Reservation struct {
	AccountID string
	Token     string
}

func (rv Reservation) isZero() bool {
	return rv.AccountID == "" && rv.Token == ""
}

// Seat is one of the four fixed positions. Exactly one of
// {connected, reserved-disconnected, empty} holds at any time.
type Seat struct {
	ConnID       string
	Name         string
	Profile      *domain.Profile
	Disconnected bool
	Reservation  Reservation
}

func (s *Seat) connected() bool {
	return s.ConnID != "" && !s.Disconnected
}

func (s *Seat) occupied() bool {
	return s.ConnID != "" || s.Disconnected
}

// Participant is the ephemeral per-connection record.
type Participant struct {
	ID             string
	Name           string
	Slot           int // -1 for spectators
	Account        *domain.Profile
	ReconnectToken string
	Bot            bool

	sender Sender
}

func NewParticipant(id, name string, account *domain.Profile, sender Sender) *Participant {
	if account != nil && account.Username != "" {
		name = account.Username
	}
	return &Participant{
		ID:      id,
		Name:    name,
		Slot:    -1,
		Account: account,
		sender:  sender,
	}
}

type nopSender struct{}

func (nopSender) Send(string, any) {}

type ClueEntry struct {
	Slot    int    `json:"slot"`
	Word    string `json:"word"`
	IsGuess bool   `json:"isGuess,omitempty"`
	Wrong   bool   `json:"wrong,omitempty"`
}

type ChatEntry struct {
	Slot int       `json:"slot"`
	Name string    `json:"name"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type Scores struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

func (s Scores) forTeam(t Team) int {
	if t == TeamA {
		return s.TeamA
	}
	return s.TeamB
}

// Settings are the engine-wide defaults a new room starts from.
type Settings struct {
	DefaultWinScore     int
	DefaultGuessSeconds int
	DisconnectGrace     time.Duration
	QuizQuestionSeconds int
	TestAccount         string
}

// Deps are the room's external collaborators. Repositories are
// best-effort: a failed write is logged and play continues.
type Deps struct {
	Logger       logging.Logger
	Metrics      *metrics.Metrics
	Profiles     domain.ProfileRepository
	Rooms        domain.RoomRepository
	Participants domain.ParticipantRepository
	Settings     Settings

	// OnEmpty fires when the last connection leaves the room.
	OnEmpty func(code string)
}

// Room is the in-memory authority for one game. A single mutex
// serializes connection events and timer callbacks, the moral
// equivalent of the one event loop the protocol assumes.
type Room struct {
	mu   sync.Mutex
	deps Deps

	code      string
	name      string
	createdBy string
	createdAt time.Time

	seats        [seatCount]Seat
	participants map[string]*Participant
	adminSlot    int

	state    phaseState
	scores   Scores
	rotation int
	turn     int
	clueLog  []ClueEntry
	chat     []ChatEntry

	winScore       int
	guessSeconds   int
	scheduledStart *time.Time

	countdownTimer *Countdown
	guessTimer     *Countdown
	pauseTimer     *Delay
	graceTimer     *Delay
	graceSlot      int

	quiz      *quizRun
	quizTimer *Countdown
	quizPause *Delay

	closed bool
}

func NewRoom(code, name, createdBy string, deps Deps) *Room {
	winScore := deps.Settings.DefaultWinScore
	if winScore <= 0 {
		winScore = 10
	}
	guessSeconds := deps.Settings.DefaultGuessSeconds
	if guessSeconds < 0 {
		guessSeconds = 30
	}

	return &Room{
		deps:         deps,
		code:         code,
		name:         name,
		createdBy:    createdBy,
		createdAt:    time.Now(),
		participants: make(map[string]*Participant),
		adminSlot:    -1,
		state:        &lobbyState{},
		winScore:     winScore,
		guessSeconds: guessSeconds,
		graceSlot:    -1,
	}
}

func (r *Room) Code() string { return r.code }
func (r *Room) Name() string { return r.name }

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.phase()
}

// ConnectedCount reports open connections, seated or spectating.
func (r *Room) ConnectedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// SeatedCount reports seats that are occupied, connected or reserved.
func (r *Room) SeatedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range r.seats {
		if r.seats[i].occupied() {
			n++
		}
	}
	return n
}

// Join attaches a connection to the room. A reserved seat is reclaimed
// by account id or reconnect token; otherwise a free seat is taken when
// no game is running, else the participant spectates.
func (r *Room) Join(p *Participant, reconnectToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		p.sender.Send(EventError, ErrorPayload{Message: "room is closed"})
		return
	}

	r.participants[p.ID] = p
	p.Slot = -1

	if slot := r.matchReservation(p, reconnectToken); slot >= 0 {
		seat := &r.seats[slot]
		seat.ConnID = p.ID
		seat.Disconnected = false
		if p.Account != nil {
			seat.Profile = p.Account
		}
		p.Slot = slot
		p.ReconnectToken = seat.Reservation.Token

		r.logf(logging.Reconnect, "seat reclaimed", slot, p)
	} else if r.seatJoinAllowed() {
		if slot := r.firstEmptySeat(); slot >= 0 {
			r.occupySeat(slot, p)
		}
	}

	if p.Slot >= 0 && r.adminSlot == -1 {
		r.adminSlot = p.Slot
	}

	if p.Slot >= 0 && p.Account != nil {
		r.persistParticipant(p.Account.ID, p.Slot)
	}

	p.sender.Send(EventSeatAssigned, SeatAssignment{
		Slot:           p.Slot,
		Name:           p.Name,
		ReconnectToken: p.ReconnectToken,
	})

	r.reevaluateGrace()
	r.broadcastState()
}

func (r *Room) matchReservation(p *Participant, reconnectToken string) int {
	for i := range r.seats {
		seat := &r.seats[i]
		if !seat.Disconnected || seat.Reservation.isZero() {
			continue
		}
		if p.Account != nil && seat.Reservation.AccountID == p.Account.ID {
			return i
		}
		if reconnectToken != "" && seat.Reservation.Token == reconnectToken {
			return i
		}
	}
	return -1
}

func (r *Room) seatJoinAllowed() bool {
	switch r.state.(type) {
	case *lobbyState, *countdownState:
		return true
	}
	return false
}

func (r *Room) firstEmptySeat() int {
	for i := range r.seats {
		if !r.seats[i].occupied() {
			return i
		}
	}
	return -1
}

func (r *Room) occupySeat(slot int, p *Participant) {
	reservation := Reservation{Token: uuid.NewString()}
	if p.Account != nil {
		reservation.AccountID = p.Account.ID
	}

	r.seats[slot] = Seat{
		ConnID:      p.ID,
		Name:        p.Name,
		Profile:     p.Account,
		Reservation: reservation,
	}
	p.Slot = slot
	p.ReconnectToken = reservation.Token
}

// humanCount counts participants backed by a real connection. Lock held.
func (r *Room) humanCount() int {
	n := 0
	for _, p := range r.participants {
		if !p.Bot {
			n++
		}
	}
	return n
}

// dropBotsLocked removes test-fill bots and frees their seats, so a
// room holding only bots can empty out and reset like any other.
// Lock held.
func (r *Room) dropBotsLocked() {
	for id, p := range r.participants {
		if !p.Bot {
			continue
		}
		delete(r.participants, id)
		if p.Slot >= 0 {
			r.seats[p.Slot] = Seat{}
		}
	}
	if r.adminSlot >= 0 && !r.seats[r.adminSlot].occupied() {
		r.reassignAdmin()
	}
}

func (r *Room) releaseSeat(slot int) {
	r.seats[slot] = Seat{}
	for _, p := range r.participants {
		if p.Slot == slot {
			p.Slot = -1
		}
	}
	if r.adminSlot == slot {
		r.reassignAdmin()
	}
}

func (r *Room) reassignAdmin() {
	r.adminSlot = -1
	for i := range r.seats {
		if r.seats[i].connected() {
			r.adminSlot = i
			return
		}
	}
}

// Disconnect handles a dropped connection. During an active round the
// seat is reserved for a matched return; otherwise it is fully
// released.
func (r *Room) Disconnect(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok {
		return
	}
	delete(r.participants, connID)
	if r.humanCount() == 0 {
		r.dropBotsLocked()
	}

	if p.Slot >= 0 {
		seat := &r.seats[p.Slot]

		if r.gameActive() {
			seat.ConnID = ""
			seat.Disconnected = true
		} else {
			if p.Account != nil {
				r.removeParticipantRecord(p.Account.ID)
			}
			r.releaseSeat(p.Slot)
		}

		if r.adminSlot == p.Slot {
			r.reassignAdmin()
		}

		if _, counting := r.state.(*countdownState); counting {
			r.clearCountdown()
			r.state = &lobbyState{}
		}

		if r.noSeatConnected() {
			r.resetLocked()
		}
	}

	r.reevaluateGrace()
	r.broadcastState()

	if len(r.participants) == 0 && r.deps.OnEmpty != nil {
		r.deps.OnEmpty(r.code)
	}
}

// Leave is a voluntary exit: the seat and its reservation are released
// regardless of phase.
func (r *Room) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok {
		return
	}
	delete(r.participants, connID)
	if r.humanCount() == 0 {
		r.dropBotsLocked()
	}

	if p.Slot >= 0 {
		if p.Account != nil {
			r.removeParticipantRecord(p.Account.ID)
		}
		r.releaseSeat(p.Slot)

		if _, counting := r.state.(*countdownState); counting {
			r.clearCountdown()
			r.state = &lobbyState{}
		}

		if r.noSeatConnected() {
			r.resetLocked()
		}
	}

	r.reevaluateGrace()
	r.broadcastState()

	if len(r.participants) == 0 && r.deps.OnEmpty != nil {
		r.deps.OnEmpty(r.code)
	}
}

// Kick vacates a seat. Admin only; the kicked player, if connected,
// stays in the room as a spectator.
func (r *Room) Kick(connID string, slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}
	if slot < 0 || slot >= seatCount || slot == p.Slot {
		return
	}

	seat := &r.seats[slot]
	if !seat.occupied() {
		return
	}

	kickedName := seat.Name
	if seat.Profile != nil {
		r.removeParticipantRecord(seat.Profile.ID)
	}

	// A kicked bot has no connection to spectate with.
	for id, q := range r.participants {
		if q.Slot == slot && q.Bot {
			delete(r.participants, id)
		}
	}

	r.releaseSeat(slot)
	r.broadcast(EventKicked, KickedPayload{Slot: slot, Name: kickedName})

	r.reevaluateGrace()
	r.broadcastState()
}

// MoveSeat lets a player claim an empty seat, or a spectator sit down.
// Only before the game starts.
func (r *Room) MoveSeat(connID string, slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, idle := r.state.(*lobbyState); !idle {
		return
	}
	if slot < 0 || slot >= seatCount {
		return
	}

	p, ok := r.participants[connID]
	if !ok || r.seats[slot].occupied() {
		return
	}

	wasAdmin := p.Slot >= 0 && p.Slot == r.adminSlot

	if p.Slot >= 0 {
		r.seats[p.Slot] = Seat{}
	}
	r.occupySeat(slot, p)

	if wasAdmin || r.adminSlot == -1 {
		r.adminSlot = slot
	}
	if p.Account != nil {
		r.persistParticipant(p.Account.ID, slot)
	}

	r.broadcastState()
}

// RandomizeSeats shuffles the seated players. Admin only, lobby only.
func (r *Room) RandomizeSeats(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, idle := r.state.(*lobbyState); !idle {
		return
	}
	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}

	occupied := make([]int, 0, seatCount)
	for i := range r.seats {
		if r.seats[i].occupied() {
			occupied = append(occupied, i)
		}
	}
	if len(occupied) < 2 {
		return
	}

	targets := make([]int, len(occupied))
	copy(targets, occupied)
	rand.Shuffle(len(targets), func(i, j int) {
		targets[i], targets[j] = targets[j], targets[i]
	})

	oldSeats := r.seats
	oldAdmin := r.adminSlot
	byConn := make(map[string]int, len(occupied))

	for i, from := range occupied {
		to := targets[i]
		r.seats[to] = oldSeats[from]
		byConn[oldSeats[from].ConnID] = to
		if from == oldAdmin {
			r.adminSlot = to
		}
	}

	for _, other := range r.participants {
		if slot, ok := byConn[other.ID]; ok {
			other.Slot = slot
			if other.Account != nil {
				r.persistParticipant(other.Account.ID, slot)
			}
		}
	}

	r.broadcastState()
}

// SetWinScore adjusts the target score. Admin only, before the game.
func (r *Room) SetWinScore(connID string, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.adminInLobby(connID) {
		return
	}
	if score < 1 {
		score = 1
	}
	if score > maxWinScore {
		score = maxWinScore
	}

	r.winScore = score
	r.broadcastState()
}

// SetGuessTime adjusts the guess timer. 0 disables it. Admin only,
// before the game.
func (r *Room) SetGuessTime(connID string, seconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.adminInLobby(connID) {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > maxGuessSeconds {
		seconds = maxGuessSeconds
	}

	r.guessSeconds = seconds
	r.broadcastState()
}

// SetSchedule stores a planned start time on the durable record.
func (r *Room) SetSchedule(connID string, at *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}

	r.scheduledStart = at
	if r.deps.Rooms != nil {
		r.persist("update schedule", func(ctx context.Context) error {
			return r.deps.Rooms.UpdateSchedule(ctx, r.code, at)
		})
	}

	r.broadcastState()
}

// Chat appends to the transcript and, when a quiz question is pending,
// checks the message as an answer.
func (r *Room) Chat(connID string, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok {
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(text) > maxChatLength {
		cut := maxChatLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	entry := ChatEntry{
		Slot: p.Slot,
		Name: p.Name,
		Text: text,
		At:   time.Now(),
	}
	r.chat = append(r.chat, entry)
	if len(r.chat) > maxChatHistory {
		r.chat = r.chat[len(r.chat)-maxChatHistory:]
	}

	r.broadcast(EventChatMessage, entry)
	r.checkQuizAnswer(p, text)
}

func (r *Room) adminInLobby(connID string) bool {
	if _, idle := r.state.(*lobbyState); !idle {
		return false
	}
	p, ok := r.participants[connID]
	return ok && r.adminSlot != -1 && p.Slot == r.adminSlot
}

func (r *Room) gameActive() bool {
	switch r.state.(type) {
	case *secretState, *clueState, *guessState, *roundOverState:
		return true
	}
	return false
}

func (r *Room) noSeatConnected() bool {
	for i := range r.seats {
		if r.seats[i].connected() {
			return false
		}
	}
	return true
}

func (r *Room) allSeatsConnected() bool {
	for i := range r.seats {
		if !r.seats[i].connected() {
			return false
		}
	}
	return true
}

// Close stops all timers and marks the room dead. Called by the
// registry on garbage collection or explicit deletion.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.stopAllTimers()
	r.broadcast(EventRoomDeleted, RoomRefPayload{Code: r.code})
}

func (r *Room) stopAllTimers() {
	r.clearCountdown()
	r.clearGuessTimer()
	r.clearPause()
	r.clearGrace()
	r.clearQuizTimers()
}

func (r *Room) clearCountdown() {
	if r.countdownTimer != nil {
		r.countdownTimer.Stop()
		r.countdownTimer = nil
	}
}

func (r *Room) clearGuessTimer() {
	if r.guessTimer != nil {
		r.guessTimer.Stop()
		r.guessTimer = nil
	}
}

func (r *Room) clearPause() {
	if r.pauseTimer != nil {
		r.pauseTimer.Stop()
		r.pauseTimer = nil
	}
}

func (r *Room) clearGrace() {
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
	}
	r.graceSlot = -1
}

// persist runs a best-effort durable write off the room lock. Failures
// are logged and swallowed: play never depends on storage.
func (r *Room) persist(what string, fn func(ctx context.Context) error) {
	code := r.code
	logger := r.deps.Logger

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := fn(ctx); err != nil && logger != nil {
			logger.Warn(logging.Game, logging.Persistence, "durable write failed", map[logging.ExtraKey]any{
				logging.RoomCode:     code,
				logging.ErrorMessage: what + ": " + err.Error(),
			})
		}
	}()
}

func (r *Room) persistParticipant(userID string, slot int) {
	if r.deps.Participants == nil {
		return
	}
	record := &domain.ParticipantRecord{RoomCode: r.code, UserID: userID, Slot: slot}
	r.persist("upsert participant", func(ctx context.Context) error {
		return r.deps.Participants.Upsert(ctx, record)
	})
}

func (r *Room) removeParticipantRecord(userID string) {
	if r.deps.Participants == nil {
		return
	}
	r.persist("remove participant", func(ctx context.Context) error {
		return r.deps.Participants.Remove(ctx, r.code, userID)
	})
}

func (r *Room) persistStatus(status domain.RoomStatus) {
	if r.deps.Rooms == nil {
		return
	}
	r.persist("update status", func(ctx context.Context) error {
		return r.deps.Rooms.UpdateStatus(ctx, r.code, status)
	})
}

func (r *Room) logf(sub logging.SubCategory, msg string, slot int, p *Participant) {
	if r.deps.Logger == nil {
		return
	}
	extra := map[logging.ExtraKey]any{
		logging.RoomCode: r.code,
		logging.Seat:     slot,
		logging.Phase:    string(r.state.phase()),
	}
	if p != nil && p.Account != nil {
		extra[logging.UserId] = p.Account.ID
	}
	r.deps.Logger.Info(logging.Game, sub, msg, extra)
}

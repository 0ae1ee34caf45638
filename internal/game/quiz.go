package game

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
)

const quizNextQuestionPause = 3 * time.Second

// quizRun is the state of the lobby quiz. It rides alongside the room
// phase and never outlives a game start.
type quizRun struct {
	order    []int
	position int
	current  *Question
	timeLeft int
	tally    map[string]int    // participant id -> points
	names    map[string]string // participant id -> display name
	answered bool
}

// scoreboard flattens the tally for broadcasting, best first.
func (q *quizRun) scoreboard() []QuizScore {
	scores := make([]QuizScore, 0, len(q.tally))
	for id, points := range q.tally {
		scores = append(scores, QuizScore{
			ParticipantID: id,
			Name:          q.names[id],
			Points:        points,
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Points != scores[j].Points {
			return scores[i].Points > scores[j].Points
		}
		return scores[i].Name < scores[j].Name
	})
	return scores
}

// StartQuiz launches the time-filler quiz. Admin only, and only while
// no game is running.
func (r *Room) StartQuiz(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state.(type) {
	case *lobbyState, *countdownState:
	default:
		return
	}
	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}
	if r.quiz != nil {
		return
	}

	r.quiz = &quizRun{
		order: rand.Perm(len(quizQuestions)),
		tally: make(map[string]int),
		names: make(map[string]string),
	}
	r.logf(logging.Quiz, "quiz started", p.Slot, nil)
	r.nextQuizQuestion()
}

// StopQuiz ends the quiz early. Admin only.
func (r *Room) StopQuiz(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[connID]
	if !ok || p.Slot != r.adminSlot || r.adminSlot == -1 {
		return
	}
	r.stopQuizLocked(true)
}

// stopQuizLocked tears the quiz down. Lock held. When announce is
// false (a game is starting over it) the stop is silent.
func (r *Room) stopQuizLocked(announce bool) {
	if r.quiz == nil {
		return
	}
	scores := r.quiz.scoreboard()
	r.quiz = nil
	r.clearQuizTimers()

	if announce {
		r.broadcast(EventQuizStopped, QuizStoppedPayload{Tally: scores})
	}
}

func (r *Room) clearQuizTimers() {
	if r.quizTimer != nil {
		r.quizTimer.Stop()
		r.quizTimer = nil
	}
	if r.quizPause != nil {
		r.quizPause.Stop()
		r.quizPause = nil
	}
}

// nextQuizQuestion deals the next question, reshuffling the pool when
// it runs out. Lock held.
func (r *Room) nextQuizQuestion() {
	q := r.quiz
	if q == nil {
		return
	}
	if q.position >= len(q.order) {
		q.order = rand.Perm(len(quizQuestions))
		q.position = 0
	}

	q.current = &quizQuestions[q.order[q.position]]
	q.position++
	q.answered = false

	seconds := r.deps.Settings.QuizQuestionSeconds
	if seconds <= 0 {
		seconds = 20
	}
	q.timeLeft = seconds

	if r.deps.Metrics != nil {
		r.deps.Metrics.QuizQuestions.Inc()
	}
	r.broadcast(EventQuizQuestion, QuizQuestionPayload{
		Prompt:   q.current.Prompt,
		Seconds:  seconds,
		Tally:    q.scoreboard(),
		Position: q.position,
	})

	var c *Countdown
	c = StartCountdown(seconds,
		func(remaining int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.quizTimer != c || r.quiz != q {
				return
			}
			q.timeLeft = remaining
			r.broadcast(EventQuizTick, TickPayload{Remaining: remaining})
		},
		func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.quizTimer != c || r.quiz != q {
				return
			}
			r.quizTimer = nil
			r.onQuizTimeout(q)
		},
	)
	r.quizTimer = c
}

// onQuizTimeout reveals the answer nobody found and schedules the next
// question. Lock held.
func (r *Room) onQuizTimeout(q *quizRun) {
	if q.current == nil || q.answered {
		return
	}
	q.answered = true

	r.broadcast(EventQuizReveal, QuizRevealPayload{
		Prompt: q.current.Prompt,
		Answer: q.current.Answer,
		Tally:  q.scoreboard(),
	})
	r.scheduleNextQuestion(q)
}

func (r *Room) scheduleNextQuestion(q *quizRun) {
	var d *Delay
	d = StartDelay(quizNextQuestionPause, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.quizPause != d || r.quiz != q {
			return
		}
		r.quizPause = nil
		r.nextQuizQuestion()
	})
	r.quizPause = d
}

// checkQuizAnswer scores a chat message against the pending question.
// First correct answer wins the point and ends the question. Lock held.
func (r *Room) checkQuizAnswer(p *Participant, text string) {
	q := r.quiz
	if q == nil || q.current == nil || q.answered {
		return
	}
	if !answerMatches(text, q.current) {
		return
	}

	q.answered = true
	q.tally[p.ID]++
	q.names[p.ID] = p.Name

	if r.quizTimer != nil {
		r.quizTimer.Stop()
		r.quizTimer = nil
	}
	r.logf(logging.Quiz, "quiz answered", p.Slot, p)

	r.broadcast(EventQuizCorrect, QuizCorrectPayload{
		Name:   p.Name,
		Answer: q.current.Answer,
		Tally:  q.scoreboard(),
	})
	r.scheduleNextQuestion(q)
}

// answerMatches accepts the canonical answer or an alternate,
// case-insensitively, and tolerates the answer embedded in a longer
// message (both sides at least three characters, to keep "a" from
// matching everything).
func answerMatches(text string, q *Question) bool {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return false
	}

	candidates := append([]string{q.Answer}, q.Alternates...)
	for _, cand := range candidates {
		want := strings.ToLower(cand)
		if msg == want {
			return true
		}
		if len(msg) >= 3 && len(want) >= 3 &&
			(strings.Contains(msg, want) || strings.Contains(want, msg)) {
			return true
		}
	}
	return false
}

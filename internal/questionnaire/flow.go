// Package questionnaire walks a user through an ordered list of yes/no
// dietary questions, accumulates the answers, and submits them atomically as
// a single preference mapping once the last question is answered.
package questionnaire

import (
	"context"
	"errors"
	"sync"

	"diet-coach-bot/internal/dietapi"
)

// State of a Flow.
type State int

const (
	// StateAsking: a question at the current index awaits an answer.
	StateAsking State = iota
	// StateSubmitting: all questions answered, the mapping is ready to send.
	// A failed submission stays here so the user can resubmit manually.
	StateSubmitting
	// StateCompleted: the mapping was accepted by the backend.
	StateCompleted
)

// ErrNoAnswerSelected is returned by Next when nothing has been marked for
// the current question. The index and answer mapping are left untouched.
var ErrNoAnswerSelected = errors.New("no answer selected")

// ErrNotReady is returned by Submit outside of StateSubmitting.
var ErrNotReady = errors.New("questionnaire not ready to submit")

// FoodFilterer sends the completed preference mapping to the backend.
type FoodFilterer interface {
	FilterFood(ctx context.Context, userID int, prefs map[string]bool) ([]dietapi.FilteredFood, error)
}

// Flow is the intake state machine. All state lives in memory for the
// lifetime of the conversation step; it is not resumable across restarts.
// Going back to a previous question is not supported.
//
// Flow is safe for concurrent use: answer and advance updates arrive on
// separate handler goroutines when the user taps buttons in quick succession.
type Flow struct {
	mu        sync.Mutex
	questions []Question
	index     int
	answers   map[string]bool
	marked    *bool
	state     State
}

// NewFlow starts a flow over the given ordered questions. An empty set goes
// straight to StateSubmitting with an empty preference mapping.
func NewFlow(questions []Question) *Flow {
	f := &Flow{
		questions: questions,
		answers:   make(map[string]bool, len(questions)),
	}
	if len(questions) == 0 {
		f.state = StateSubmitting
	}
	return f
}

// State returns the current machine state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Index returns the current question index.
func (f *Flow) Index() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

// Total returns the number of questions in this flow's set.
func (f *Flow) Total() int {
	return len(f.questions)
}

// Current returns the question awaiting an answer. ok is false once every
// question has been answered.
func (f *Flow) Current() (Question, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAsking {
		return Question{}, false
	}
	return f.questions[f.index], true
}

// Mark records the answer for the current question and returns the canned
// feedback line. Marking again before Next overwrites the previous choice.
func (f *Flow) Mark(answer bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAsking {
		return ""
	}
	q := f.questions[f.index]
	f.marked = &answer
	f.answers[q.Key] = answer
	return FeedbackFor(q.Key, answer)
}

// Next advances to the next question, or into StateSubmitting after the
// last one. Without a marked answer it fails and changes nothing.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAsking {
		return ErrNotReady
	}
	if f.marked == nil {
		return ErrNoAnswerSelected
	}
	f.marked = nil
	f.index++
	if f.index >= len(f.questions) {
		f.state = StateSubmitting
	}
	return nil
}

// Answers returns a copy of the accumulated preference mapping.
func (f *Flow) Answers() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answersCopy()
}

func (f *Flow) answersCopy() map[string]bool {
	out := make(map[string]bool, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return out
}

// Submit sends the whole mapping once. On success the flow completes and the
// filtered-food response is handed back to the caller; on failure the flow
// stays in StateSubmitting and the caller may resubmit. The lock is not held
// across the network call, so a slow backend never blocks reads of the flow.
func (f *Flow) Submit(ctx context.Context, filterer FoodFilterer, userID int) ([]dietapi.FilteredFood, error) {
	f.mu.Lock()
	if f.state != StateSubmitting {
		f.mu.Unlock()
		return nil, ErrNotReady
	}
	prefs := f.answersCopy()
	f.mu.Unlock()

	foods, err := filterer.FilterFood(ctx, userID, prefs)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.state = StateCompleted
	f.mu.Unlock()
	return foods, nil
}

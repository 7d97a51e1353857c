package session

import (
	"errors"
	"sync"
	"time"

	"github.com/EduQuest-2025/quizplayer-service/internal/evaluation"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
)

var (
	ErrSessionFinished      = errors.New("session has reached its terminal state")
	ErrSessionClosed        = errors.New("session has been closed")
	ErrPageAlreadySubmitted = errors.New("answers already submitted for current page")
	ErrSessionActive        = errors.New("session has not reached its terminal state")
)

// Presenter pacing. The session only decides the delay after which it
// expects control back; sounds and dialog layout belong to the caller.
const (
	FeedbackDelay = 1200 * time.Millisecond
	SummaryDelay  = 3 * time.Second
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Labels for the advance control. The choice of label is decided here; how
// it is rendered is not.
const (
	LabelNext   = "Next"
	LabelFinish = "Finish"
)

// Summary is the immutable terminal result of a session.
type Summary struct {
	SessionID  string `json:"session_id"`
	ActivityID uint   `json:"activity_id"`
	Score      int    `json:"score"`
	TotalUnits int    `json:"total_units"`
}

// PageResult reports the evaluation of one submitted page.
type PageResult struct {
	PageIndex     int                  `json:"page_index"`
	Verdicts      []evaluation.Verdict `json:"verdicts"`
	AllCorrect    bool                 `json:"all_correct"`
	Score         int                  `json:"score"`
	FeedbackDelay time.Duration        `json:"feedback_delay"`
	NextLabel     string               `json:"next_label"`
}

// Session is one play-through of an activity: ephemeral, exclusively owned
// by the player that started it, discarded without trace on early exit.
// Progression, scoring and termination all live here; content loading and
// feedback presentation are the caller's collaborators.
type Session struct {
	id         string
	activityID uint
	kind       models.UnitVariant
	units      []models.QuestionUnit
	pageSize   int

	mu            sync.Mutex
	currentPage   int
	score         int
	status        Status
	summary       *Summary
	submittedPage map[int]bool

	evaluator *evaluation.Evaluator
	scheduler *Scheduler
	startedAt time.Time
}

// New builds a session over an already loaded and validated unit sequence.
// The page size defaults by variant (four for paged quiz flows, one for
// single-unit flows) unless overridden with a positive value.
func New(id string, activity *models.Activity, units []models.QuestionUnit, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = activity.Kind.DefaultPageSize()
	}
	s := &Session{
		id:            id,
		activityID:    activity.ID,
		kind:          activity.Kind,
		units:         units,
		pageSize:      pageSize,
		status:        StatusInProgress,
		submittedPage: make(map[int]bool),
		evaluator:     evaluation.New(),
		scheduler:     NewScheduler(),
		startedAt:     time.Now(),
	}
	s.skipUnplayableLocked()
	return s
}

func (s *Session) ID() string               { return s.id }
func (s *Session) ActivityID() uint         { return s.activityID }
func (s *Session) Kind() models.UnitVariant { return s.kind }
func (s *Session) PageSize() int            { return s.pageSize }
func (s *Session) StartedAt() time.Time     { return s.startedAt }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

func (s *Session) TotalUnits() int { return len(s.units) }

// TotalPages is ceil(total/pageSize).
func (s *Session) TotalPages() int {
	return (len(s.units) + s.pageSize - 1) / s.pageSize
}

func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// CurrentUnits returns the ordered unit slice for the current page, or an
// empty slice once the session is terminal. Callers must treat empty as
// "no more content".
func (s *Session) CurrentUnits() []models.QuestionUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUnitsLocked()
}

func (s *Session) currentUnitsLocked() []models.QuestionUnit {
	start := s.currentPage * s.pageSize
	if start >= len(s.units) {
		return nil
	}
	end := start + s.pageSize
	if end > len(s.units) {
		end = len(s.units)
	}
	return s.units[start:end]
}

// IsTerminal reports whether the progression has moved past the last unit.
func (s *Session) IsTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isTerminalLocked()
}

func (s *Session) isTerminalLocked() bool {
	return s.currentPage*s.pageSize >= len(s.units)
}

// NextLabel decides whether the advance control reads "Next" or "Finish".
func (s *Session) NextLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLabelLocked()
}

func (s *Session) nextLabelLocked() string {
	if s.currentPage >= s.TotalPages()-1 {
		return LabelFinish
	}
	return LabelNext
}

// SubmitAnswers evaluates the current page against the supplied responses,
// keyed by unit ID. Units without a response evaluate incorrect; units the
// progression skips are neither evaluated nor scored. A page can only be
// submitted once, which keeps the score equal to the count of correct
// evaluations times each variant's point value.
func (s *Session) SubmitAnswers(responses map[string]any) (*PageResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusAbandoned {
		return nil, ErrSessionClosed
	}
	if s.isTerminalLocked() {
		return nil, ErrSessionFinished
	}
	if s.submittedPage[s.currentPage] {
		return nil, ErrPageAlreadySubmitted
	}

	result := &PageResult{
		PageIndex:     s.currentPage,
		AllCorrect:    true,
		FeedbackDelay: FeedbackDelay,
	}
	for _, unit := range s.currentUnitsLocked() {
		if evaluation.Skippable(unit) {
			continue
		}
		verdict := evaluation.Verdict{UnitID: unit.ID}
		if response, ok := responses[unit.ID]; ok {
			v, err := s.evaluator.Evaluate(unit, response)
			if err != nil {
				return nil, err
			}
			verdict = v
		}
		if verdict.Correct {
			s.score += verdict.Points
		} else {
			result.AllCorrect = false
		}
		result.Verdicts = append(result.Verdicts, verdict)
	}
	s.submittedPage[s.currentPage] = true

	result.Score = s.score
	result.NextLabel = s.nextLabelLocked()
	return result, nil
}

// Advance moves to the next page or unit. It performs no bounds check of its
// own; callers consult IsTerminal immediately afterwards. Single-unit flows
// additionally skip past unplayable units without consuming a feedback round.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPage++
	s.skipUnplayableLocked()
}

// skipUnplayableLocked advances past units the evaluator cannot score, such
// as an unscramble word with no correct-flagged option. Only single-unit
// flows skip whole positions; paged flows skip at evaluation time instead.
func (s *Session) skipUnplayableLocked() {
	if s.pageSize != 1 {
		return
	}
	for !s.isTerminalLocked() && evaluation.Skippable(s.units[s.currentPage]) {
		s.currentPage++
	}
}

// Summarize freezes and returns the terminal summary. It is idempotent:
// every call after the first returns the identical summary, and the score
// can no longer change once frozen. The frozen flag is true for exactly one
// caller, the one whose call performed the transition to completed.
func (s *Session) Summarize() (summary Summary, frozen bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary != nil {
		return *s.summary, false, nil
	}
	if !s.isTerminalLocked() {
		return Summary{}, false, ErrSessionActive
	}
	s.status = StatusCompleted
	s.summary = &Summary{
		SessionID:  s.id,
		ActivityID: s.activityID,
		Score:      s.score,
		TotalUnits: len(s.units),
	}
	return *s.summary, true, nil
}

// ScheduleFeedback arms a pacing timer owned by this session. The returned
// cancel stops the single task; Close invalidates all pending tasks.
func (s *Session) ScheduleFeedback(d time.Duration, fn func()) (cancel func()) {
	return s.scheduler.Schedule(d, fn)
}

// Close tears the session down: pending timers are invalidated so nothing
// fires against a disposed session, and an unfinished play-through is marked
// abandoned, discarding its score.
func (s *Session) Close() {
	s.scheduler.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusInProgress {
		s.status = StatusAbandoned
	}
}

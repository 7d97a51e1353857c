package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/EduQuest-2025/quizplayer-service/internal/events"
	"github.com/EduQuest-2025/quizplayer-service/internal/models"
	"github.com/EduQuest-2025/quizplayer-service/internal/session"
)

// ===== REQUEST / RESPONSE TYPES =====

type SubmitPageRequest struct {
	// Responses is keyed by unit ID; each value is the variant-shaped
	// answer document for that unit.
	Responses map[string]json.RawMessage `json:"responses" validate:"required"`
}

// PageView is what the player renders for one step of the session.
type PageView struct {
	SessionID  string                `json:"session_id"`
	ActivityID uint                  `json:"activity_id"`
	Kind       models.UnitVariant    `json:"kind"`
	PageIndex  int                   `json:"page_index"`
	TotalPages int                   `json:"total_pages"`
	Units      []models.QuestionUnit `json:"units"`
	Score      int                   `json:"score"`
	Terminal   bool                  `json:"terminal"`
	NextLabel  string                `json:"next_label,omitempty"`
}

// ===== SERVICE INTERFACE =====

// PlayerService owns the session lifecycle: it loads content through the
// activity service, keeps live sessions in the in-memory store, and emits
// lifecycle events. A session that fails to load is never created.
type PlayerService interface {
	Start(ctx context.Context, activityID uint) (*PageView, error)
	GetPage(ctx context.Context, sessionID string) (*PageView, error)
	SubmitPage(ctx context.Context, sessionID string, req *SubmitPageRequest) (*session.PageResult, error)
	Advance(ctx context.Context, sessionID string) (*PageView, error)
	Summary(ctx context.Context, sessionID string) (*session.Summary, error)
	Close(ctx context.Context, sessionID string) error
}

type playerService struct {
	activities ActivityService
	store      *session.Store
	publisher  events.EventPublisher
	logger     *slog.Logger
}

func NewPlayerService(activities ActivityService, store *session.Store, publisher events.EventPublisher, logger *slog.Logger) PlayerService {
	return &playerService{
		activities: activities,
		store:      store,
		publisher:  publisher,
		logger:     logger,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *playerService) Start(ctx context.Context, activityID uint) (*PageView, error) {
	s.logger.Info("Starting play session", "activity_id", activityID)

	playable, err := s.activities.GetForPlay(ctx, activityID)
	if err != nil {
		// All load failures abort here; no session exists to clean up.
		s.logger.Warn("Play session aborted at load", "activity_id", activityID, "error", err)
		return nil, err
	}

	sess := session.New(session.NewID(), playable.Activity, playable.Units, 0)
	s.store.Put(sess)

	s.publish(ctx, events.NewSessionEvent(
		events.SessionStarted, sess.ID(), activityID, string(playable.Activity.Kind)))

	s.logger.Info("Play session started",
		"session_id", sess.ID(),
		"activity_id", activityID,
		"kind", playable.Activity.Kind,
		"total_units", sess.TotalUnits(),
		"page_size", sess.PageSize())

	return s.pageView(sess), nil
}

func (s *playerService) GetPage(ctx context.Context, sessionID string) (*PageView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return s.pageView(sess), nil
}

func (s *playerService) SubmitPage(ctx context.Context, sessionID string, req *SubmitPageRequest) (*session.PageResult, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	responses, err := s.decodeResponses(sess.CurrentUnits(), req.Responses)
	if err != nil {
		return nil, err
	}

	result, err := sess.SubmitAnswers(responses)
	if err != nil {
		return nil, err
	}

	// Feedback pacing belongs to the session so teardown can cancel it.
	sess.ScheduleFeedback(result.FeedbackDelay, func() {
		s.logger.Debug("Feedback window elapsed",
			"session_id", sessionID,
			"page_index", result.PageIndex)
	})

	s.logger.Info("Page submitted",
		"session_id", sessionID,
		"page_index", result.PageIndex,
		"all_correct", result.AllCorrect,
		"score", result.Score)

	return result, nil
}

func (s *playerService) Advance(ctx context.Context, sessionID string) (*PageView, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	sess.Advance()
	return s.pageView(sess), nil
}

func (s *playerService) Summary(ctx context.Context, sessionID string) (*session.Summary, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	// The frozen flag comes out of the same critical section that performs
	// the completed transition, so concurrent callers cannot both take the
	// first-terminal branch.
	summary, frozen, err := sess.Summarize()
	if err != nil {
		return nil, ErrSessionNotFinished
	}

	if frozen {
		event := events.NewSessionEvent(
			events.SessionCompleted, sess.ID(), sess.ActivityID(), "").
			WithSummary(summary.Score, summary.TotalUnits)
		s.publish(ctx, event)

		// The summary screen holds for its own pacing window before the
		// session leaves the store.
		sess.ScheduleFeedback(session.SummaryDelay, func() {
			s.store.Remove(sessionID)
			s.logger.Debug("Completed session removed", "session_id", sessionID)
		})

		s.logger.Info("Play session completed",
			"session_id", sessionID,
			"activity_id", summary.ActivityID,
			"score", summary.Score,
			"total_units", summary.TotalUnits)
	}

	return &summary, nil
}

func (s *playerService) Close(ctx context.Context, sessionID string) error {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return ErrSessionNotFound
	}

	abandoned := sess.Status() == session.StatusInProgress
	s.store.Remove(sessionID)

	if abandoned {
		s.publish(ctx, events.NewSessionEvent(
			events.SessionAbandoned, sess.ID(), sess.ActivityID(), ""))
		s.logger.Info("Play session abandoned",
			"session_id", sessionID,
			"activity_id", sess.ActivityID())
	}
	return nil
}

// ===== HELPERS =====

// pageView renders entirely from session-owned state. The loader is only
// consulted at Start; a live session keeps serving pages even after the
// backing activity disappears.
func (s *playerService) pageView(sess *session.Session) *PageView {
	view := &PageView{
		SessionID:  sess.ID(),
		ActivityID: sess.ActivityID(),
		Kind:       sess.Kind(),
		PageIndex:  sess.CurrentPage(),
		TotalPages: sess.TotalPages(),
		Units:      sess.CurrentUnits(),
		Score:      sess.Score(),
		Terminal:   sess.IsTerminal(),
	}
	if !view.Terminal {
		view.NextLabel = sess.NextLabel()
	}
	return view
}

// decodeResponses unmarshals each raw response into the answer shape its
// unit's variant expects. Units without a response stay absent and evaluate
// incorrect downstream.
func (s *playerService) decodeResponses(units []models.QuestionUnit, raw map[string]json.RawMessage) (map[string]any, error) {
	responses := make(map[string]any, len(raw))
	for _, unit := range units {
		payload, ok := raw[unit.ID]
		if !ok {
			continue
		}
		answer, err := decodeAnswer(unit.Variant, payload)
		if err != nil {
			return nil, NewValidationError(
				fmt.Sprintf("responses.%s", unit.ID),
				fmt.Sprintf("invalid %s answer: %v", unit.Variant, err),
				string(payload),
			)
		}
		responses[unit.ID] = answer
	}
	return responses, nil
}

func decodeAnswer(variant models.UnitVariant, payload json.RawMessage) (any, error) {
	switch variant {
	case models.VariantMCQ:
		var a models.MultipleChoiceAnswer
		return a, json.Unmarshal(payload, &a)
	case models.VariantTrueFalse:
		var a models.TrueFalseAnswer
		return a, json.Unmarshal(payload, &a)
	case models.VariantFillBlank:
		var a models.FillBlankAnswer
		return a, json.Unmarshal(payload, &a)
	case models.VariantImageMCQ:
		var a models.SingleChoiceAnswer
		return a, json.Unmarshal(payload, &a)
	case models.VariantMatchText, models.VariantMatchImage, models.VariantMatchTextImage:
		var a models.MatchingAnswer
		return a, json.Unmarshal(payload, &a)
	case models.VariantDragDrop:
		var a models.OrderingAnswer
		return a, json.Unmarshal(payload, &a)
	case models.VariantUnscramble:
		var a models.UnscrambleAnswer
		return a, json.Unmarshal(payload, &a)
	default:
		return nil, fmt.Errorf("unsupported unit variant: %s", variant)
	}
}

func (s *playerService) publish(ctx context.Context, event *events.SessionEvent) {
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishSessionEvent(publishCtx, event); err != nil {
		// Event loss never fails the player-facing operation.
		s.logger.Error("Failed to publish session event",
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
	}
}

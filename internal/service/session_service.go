package service

import (
	"brainarcade/internal/cache"
	"brainarcade/internal/difficulty"
	"brainarcade/internal/metrics"
	"brainarcade/internal/model"
	"brainarcade/internal/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("session not found")

// DifficultySuggester returns an optimal-difficulty estimate and its source.
// It must not fail; oracle.Resilient satisfies it.
type DifficultySuggester interface {
	Suggest(ctx context.Context, profile model.UserProfile, pc model.PlayContext) (float64, string)
}

// liveSession is one registry entry. mu serializes every controller call for the session.
type liveSession struct {
	mu     sync.Mutex
	id     string
	userID string
	gameID string
	ctrl   *difficulty.Controller
	ended  bool
}

func (ls *liveSession) snapshot() model.SessionState {
	st := ls.ctrl.State()
	st.SessionID = ls.id
	st.UserID = ls.userID
	st.GameID = ls.gameID
	return st
}

// SessionService owns the live session registry. Different sessions run in
// parallel; calls on the same session are serialized.
type SessionService struct {
	suggester     DifficultySuggester
	profiles      ProfileSource
	sessions      cache.SessionCache
	plays         cache.PlayHistoryCache
	archive       repository.SessionRepo
	authSvc       *AuthService
	newController func() *difficulty.Controller
	broadcaster   Broadcaster
	logger        zerolog.Logger
	now           func() time.Time

	mu   sync.RWMutex
	live map[string]*liveSession
}

// NewSessionService creates a new session service. newController must return
// a fresh controller on every call.
func NewSessionService(
	suggester DifficultySuggester,
	profiles ProfileSource,
	sessions cache.SessionCache,
	plays cache.PlayHistoryCache,
	archive repository.SessionRepo,
	authSvc *AuthService,
	newController func() *difficulty.Controller,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		suggester:     suggester,
		profiles:      profiles,
		sessions:      sessions,
		plays:         plays,
		archive:       archive,
		authSvc:       authSvc,
		newController: newController,
		logger:        logger,
		now:           time.Now,
		live:          make(map[string]*liveSession),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a session and picks its starting difficulty. Profile and oracle
// failures degrade to defaults; only token signing can fail the call.
func (s *SessionService) Start(ctx context.Context, req model.StartSessionRequest) (*model.SessionStartResponse, error) {
	req.Context = req.Context.Sanitized()
	profile, err := s.profiles.GetUserProfile(ctx, req.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("profile unavailable, using defaults")
		profile = model.UserProfile{UserID: req.UserID}
	}

	value, source := s.suggester.Suggest(ctx, profile, req.Context)

	sessionID := uuid.New().String()
	token, err := s.authSvc.GenerateSessionToken(sessionID, req.UserID, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	ls := &liveSession{
		id:     sessionID,
		userID: req.UserID,
		gameID: req.GameID,
		ctrl:   s.newController(),
	}
	res := ls.ctrl.Initialize(req.GameID, profile, req.Context, difficulty.Suggestion{Value: value, Source: source})

	s.mu.Lock()
	s.live[sessionID] = ls
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()
	metrics.DifficultyLevel.Observe(res.Difficulty)

	s.persist(ctx, ls.snapshot())
	if err := s.plays.RecordPlay(ctx, req.UserID, req.GameID, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("failed to record play")
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("user_id", req.UserID).
		Str("game_id", req.GameID).
		Float64("difficulty", res.Difficulty).
		Str("oracle_source", source).
		Msg("session started")

	return &model.SessionStartResponse{
		SessionID:  sessionID,
		Token:      token,
		InitResult: res,
	}, nil
}

// Adjust evaluates one telemetry event for the session
func (s *SessionService) Adjust(ctx context.Context, sessionID string, e model.TelemetryEvent) (model.AdjustResult, error) {
	ls, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.AdjustResult{}, err
	}

	ls.mu.Lock()
	if ls.ended {
		ls.mu.Unlock()
		return model.AdjustResult{}, ErrSessionNotFound
	}
	res := ls.ctrl.Adjust(ls.gameID, e)
	state := ls.snapshot()
	// persisted under the lock so a snapshot never lands after End drops it
	s.persist(ctx, state)
	ls.mu.Unlock()

	if !res.Adjusted {
		metrics.DifficultyEvaluations.WithLabelValues(outcome(res.Reason)).Inc()
		return res, nil
	}
	if state.LastAdjustment != nil {
		metrics.RecordAdjustment(state.LastAdjustment.Delta)
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, MsgSettingsUpdate, res)
	}
	return res, nil
}

func outcome(reason string) string {
	switch reason {
	case difficulty.ReasonStabilizing:
		return "stabilizing"
	default:
		return "no_trigger"
	}
}

// Get returns the session state from the registry, the snapshot cache or the archive
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.SessionState, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if ok {
		ls.mu.Lock()
		st := ls.snapshot()
		if ls.ended {
			st.Status = model.SessionEnded
		}
		ls.mu.Unlock()
		return &st, nil
	}

	snap, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}
	if snap != nil {
		return snap, nil
	}

	archived, err := s.archive.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read archived session: %w", err)
	}
	if archived == nil {
		return nil, ErrSessionNotFound
	}
	return archived, nil
}

// End archives the session with its adjustment history and drops it from the registry
func (s *SessionService) End(ctx context.Context, sessionID string) (*model.SessionState, error) {
	ls, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	if ls.ended {
		ls.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	state := ls.snapshot()
	endedAt := s.now()
	state.Status = model.SessionEnded
	state.EndedAt = &endedAt
	if err := s.archive.Archive(ctx, &state); err != nil {
		ls.mu.Unlock()
		return nil, fmt.Errorf("failed to archive session: %w", err)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to drop session snapshot")
	}
	ls.ended = true
	ls.mu.Unlock()

	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()
	metrics.ActiveSessions.Dec()

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, MsgSessionEnded, map[string]interface{}{
			"sessionId":         sessionID,
			"currentDifficulty": state.CurrentDifficulty,
			"adjustments":       len(state.AdjustmentHistory),
		})
		s.broadcaster.DisconnectSession(sessionID)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("adjustments", len(state.AdjustmentHistory)).
		Int("events", state.EventsSeen).
		Float64("difficulty", state.CurrentDifficulty).
		Msg("session ended")
	return &state, nil
}

// ActiveCount reports how many sessions the registry holds
func (s *SessionService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.live)
}

// lookup returns the live entry, resuming it from the snapshot cache when this
// process has not seen the session yet. A resumed session starts with an empty
// metrics window.
func (s *SessionService) lookup(ctx context.Context, sessionID string) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if ok {
		return ls, nil
	}

	snap, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session snapshot: %w", err)
	}
	if snap == nil || snap.Status == model.SessionEnded {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ls, ok := s.live[sessionID]; ok {
		return ls, nil
	}
	ls = &liveSession{
		id:     snap.SessionID,
		userID: snap.UserID,
		gameID: snap.GameID,
		ctrl:   s.newController(),
	}
	ls.ctrl.Restore(*snap)
	s.live[sessionID] = ls
	metrics.ActiveSessions.Inc()

	s.logger.Info().Str("session_id", sessionID).Int("events", snap.EventsSeen).Msg("session resumed from snapshot")
	return ls, nil
}

func (s *SessionService) persist(ctx context.Context, state model.SessionState) {
	if err := s.sessions.Set(ctx, &state); err != nil {
		s.logger.Warn().Err(err).Str("session_id", state.SessionID).Msg("failed to save session snapshot")
	}
}

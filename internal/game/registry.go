package game

import (
	"crypto/rand"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns every live session, keyed by join code. All reads and
// mutations go through a single mutex; returned sessions are copies.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	defaults Settings
	codes    io.Reader
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

type Options struct {
	Logger   *slog.Logger
	Defaults *Settings
	// Codes is the entropy source for join codes. Defaults to crypto/rand.
	Codes io.Reader
	Now   func() time.Time
	NewID func() string
}

func NewRegistry(opts Options) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		defaults: DefaultSettings(),
		codes:    opts.Codes,
		now:      opts.Now,
		newID:    opts.NewID,
		logger:   opts.Logger,
	}
	if opts.Defaults != nil {
		r.defaults = *opts.Defaults
	}
	if r.codes == nil {
		r.codes = rand.Reader
	}
	if r.now == nil {
		r.now = timeNowUTC
	}
	if r.newID == nil {
		r.newID = uuid.NewString
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// CreateSession opens a lobby with the caller as game master. It only fails
// when the code entropy source fails.
func (r *Registry) CreateSession(connectionID, name string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueCode()
	if err != nil {
		return Session{}, err
	}
	gm := Participant{
		ID:           r.newID(),
		ConnectionID: connectionID,
		Name:         name,
		IsGameMaster: true,
	}
	session := &Session{
		Code:         code,
		GameMasterID: gm.ID,
		Participants: []Participant{gm},
		Status:       StatusLobby,
		Answers:      []Answer{},
		Settings:     r.defaults,
		CreatedAt:    r.now(),
	}
	r.sessions[code] = session
	r.logger.Info("session created", "code", code, "participant_id", gm.ID)
	return session.clone(), nil
}

func (r *Registry) uniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeDrawAttempts; attempt++ {
		code, err := drawCode(r.codes)
		if err != nil {
			return "", err
		}
		if _, taken := r.sessions[code]; !taken {
			return code, nil
		}
	}
	return "", errCodeSpaceExhausted
}

func (r *Registry) JoinSession(code, connectionID, name string) (Session, Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookup(code)
	if err != nil {
		return Session{}, Participant{}, err
	}
	if session.Status != StatusLobby {
		return Session{}, Participant{}, ErrInvalidState
	}
	if len(session.Participants) >= MaxParticipants {
		return Session{}, Participant{}, ErrFull
	}
	for _, p := range session.Participants {
		if strings.EqualFold(p.Name, name) {
			return Session{}, Participant{}, ErrNameTaken
		}
	}
	player := Participant{
		ID:           r.newID(),
		ConnectionID: connectionID,
		Name:         name,
		Lives:        session.Settings.LivesPerPlayer,
	}
	session.Participants = append(session.Participants, player)
	r.logger.Info("participant joined", "code", session.Code, "participant_id", player.ID)
	return session.clone(), player, nil
}

// ConfigureSettings merges patch into the session settings and resets every
// player's lives to the resulting LivesPerPlayer.
func (r *Registry) ConfigureSettings(code, connectionID string, patch SettingsPatch) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookupAsGameMaster(code, connectionID)
	if err != nil {
		return Session{}, err
	}
	session.Settings = patch.apply(session.Settings)
	for i := range session.Participants {
		if !session.Participants[i].IsGameMaster {
			session.Participants[i].Lives = session.Settings.LivesPerPlayer
		}
	}
	r.logger.Debug("settings updated", "code", session.Code,
		"lives", session.Settings.LivesPerPlayer, "total_questions", session.Settings.TotalQuestions)
	return session.clone(), nil
}

func (r *Registry) StartSession(code, connectionID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookupAsGameMaster(code, connectionID)
	if err != nil {
		return Session{}, err
	}
	if session.Status != StatusLobby {
		return Session{}, ErrInvalidState
	}
	if len(session.Participants) < MinParticipants {
		return Session{}, ErrInsufficientPlayers
	}
	session.Status = StatusPlaying
	session.CurrentQuestion = 1
	r.logger.Info("session started", "code", session.Code, "players", len(session.Participants)-1)
	return session.clone(), nil
}

// AdvanceQuestion moves to the next question and clears the answers. When
// the question budget is exhausted the session flips to StatusEnded but stays
// registered so final standings remain readable until it is ended or the game
// master leaves.
func (r *Registry) AdvanceQuestion(code, connectionID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookupAsGameMaster(code, connectionID)
	if err != nil {
		return Session{}, err
	}
	if session.Status == StatusEnded {
		return Session{}, ErrInvalidState
	}
	session.CurrentQuestion++
	session.Answers = []Answer{}
	if total := session.Settings.TotalQuestions; total > 0 && session.CurrentQuestion > total {
		session.Status = StatusEnded
		r.logger.Info("session ended", "code", session.Code, "reason", "questions_exhausted")
	}
	return session.clone(), nil
}

// SubmitAnswer records a pending answer for the current question. Answers
// are only taken while the session is playing: a lobby or ended session
// fails with ErrInvalidState rather than recording a question-0 answer.
func (r *Registry) SubmitAnswer(code, connectionID, text string) (Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookup(code)
	if err != nil {
		return Answer{}, err
	}
	player := session.findByConnection(connectionID)
	if player == nil {
		return Answer{}, ErrNotParticipant
	}
	if player.IsGameMaster {
		return Answer{}, ErrForbidden
	}
	if session.Status != StatusPlaying {
		return Answer{}, ErrInvalidState
	}
	if session.pendingAnswer(player.ID) != nil {
		return Answer{}, ErrDuplicatePending
	}
	answer := Answer{
		ID:             r.newID(),
		ParticipantID:  player.ID,
		Name:           player.Name,
		Text:           text,
		SubmittedAt:    r.now(),
		QuestionNumber: session.CurrentQuestion,
	}
	session.Answers = append(session.Answers, answer)
	return answer, nil
}

// ValidateAnswer grades the participant's pending answer. A correct answer is
// worth PointsPerCorrect; a wrong one costs a life, never going below zero.
func (r *Registry) ValidateAnswer(code, connectionID, participantID string, isCorrect bool) (Participant, Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookupAsGameMaster(code, connectionID)
	if err != nil {
		return Participant{}, Answer{}, err
	}
	player := session.findParticipant(participantID)
	if player == nil {
		return Participant{}, Answer{}, ErrNotParticipant
	}
	answer := session.pendingAnswer(participantID)
	if answer == nil {
		return Participant{}, Answer{}, ErrNoPendingAnswer
	}
	answer.Validated = true
	answer.IsCorrect = isCorrect
	if isCorrect {
		player.Score += PointsPerCorrect
	} else {
		player.Lives = max(0, player.Lives-1)
	}
	return *player, *answer, nil
}

// EndSession ends the game and drops it from the registry.
func (r *Registry) EndSession(code, connectionID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookupAsGameMaster(code, connectionID)
	if err != nil {
		return Session{}, err
	}
	session.Status = StatusEnded
	delete(r.sessions, session.Code)
	r.logger.Info("session ended", "code", session.Code, "reason", "ended_by_game_master")
	return session.clone(), nil
}

// LeaveSession removes the caller. A departing game master takes the whole
// session with them.
func (r *Registry) LeaveSession(code, connectionID string) (LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookup(code)
	if err != nil {
		return LeaveResult{}, err
	}
	participant := session.findByConnection(connectionID)
	if participant == nil {
		return LeaveResult{}, ErrNotParticipant
	}
	return r.remove(session, *participant, "left"), nil
}

// HandleDisconnection applies LeaveSession semantics to the session the
// connection belongs to. Callers keep a connection in at most one session.
// It reports false when the connection was in none.
func (r *Registry) HandleDisconnection(connectionID string) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, session := range r.sessions {
		if participant := session.findByConnection(connectionID); participant != nil {
			return r.remove(session, *participant, "disconnected"), true
		}
	}
	return LeaveResult{}, false
}

// SessionOf reports the code of the session the connection currently
// belongs to, as game master or player.
func (r *Registry) SessionOf(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for code, session := range r.sessions {
		if session.findByConnection(connectionID) != nil {
			return code, true
		}
	}
	return "", false
}

func (r *Registry) remove(session *Session, participant Participant, reason string) LeaveResult {
	if participant.IsGameMaster {
		session.Status = StatusEnded
		delete(r.sessions, session.Code)
		r.logger.Info("session ended", "code", session.Code, "reason", "game_master_"+reason)
		return LeaveResult{SessionDeleted: true, Session: session.clone(), Participant: participant}
	}
	session.removeParticipant(participant.ID)
	r.logger.Info("participant left", "code", session.Code, "participant_id", participant.ID, "reason", reason)
	return LeaveResult{Session: session.clone(), Participant: participant}
}

func (r *Registry) Get(code string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.lookup(code)
	if err != nil {
		return Session{}, err
	}
	return session.clone(), nil
}

// List returns summaries of all live sessions, oldest first.
func (r *Registry) List() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]Summary, 0, len(r.sessions))
	for _, session := range r.sessions {
		list = append(list, Summary{
			Code:            session.Code,
			Status:          session.Status,
			Players:         len(session.Participants),
			CurrentQuestion: session.CurrentQuestion,
			CreatedAt:       session.CreatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].Code < list[j].Code
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) lookup(code string) (*Session, error) {
	session, ok := r.sessions[NormalizeCode(code)]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (r *Registry) lookupAsGameMaster(code, connectionID string) (*Session, error) {
	session, err := r.lookup(code)
	if err != nil {
		return nil, err
	}
	if !session.isGameMaster(connectionID) {
		return nil, ErrForbidden
	}
	return session, nil
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

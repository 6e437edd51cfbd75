package game

import "time"

type Status string

const (
	StatusLobby   Status = "lobby"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

const (
	MaxParticipants     = 6
	MinParticipants     = 2
	CodeLength          = 6
	PointsPerCorrect    = 10
	defaultLives        = 3
	defaultQuestions    = 10
	codeAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxCodeDrawAttempts = 1000
)

type Settings struct {
	LivesPerPlayer int `json:"lives"`
	TotalQuestions int `json:"totalQuestions"`
}

// DefaultSettings are applied to every new session unless the registry was
// built with other defaults.
func DefaultSettings() Settings {
	return Settings{
		LivesPerPlayer: defaultLives,
		TotalQuestions: defaultQuestions,
	}
}

// SettingsPatch carries the fields a game master wants to change. Nil fields
// keep their current value.
type SettingsPatch struct {
	LivesPerPlayer *int `json:"lives,omitempty"`
	TotalQuestions *int `json:"totalQuestions,omitempty"`
}

func (p SettingsPatch) apply(current Settings) Settings {
	if p.LivesPerPlayer != nil {
		current.LivesPerPlayer = *p.LivesPerPlayer
	}
	if p.TotalQuestions != nil {
		current.TotalQuestions = *p.TotalQuestions
	}
	return current
}

type Participant struct {
	ID           string `json:"id"`
	ConnectionID string `json:"-"`
	Name         string `json:"name"`
	IsGameMaster bool   `json:"isGameMaster"`
	Lives        int    `json:"lives"`
	Score        int    `json:"score"`
}

type Answer struct {
	ID             string    `json:"id"`
	ParticipantID  string    `json:"playerId"`
	Name           string    `json:"playerName"`
	Text           string    `json:"text"`
	SubmittedAt    time.Time `json:"timestamp"`
	Validated      bool      `json:"validated"`
	IsCorrect      bool      `json:"isCorrect"`
	QuestionNumber int       `json:"questionNumber"`
}

type Session struct {
	Code            string        `json:"code"`
	GameMasterID    string        `json:"gameMasterId"`
	Participants    []Participant `json:"players"`
	Status          Status        `json:"status"`
	CurrentQuestion int           `json:"currentQuestion"`
	Answers         []Answer      `json:"answers"`
	Settings        Settings      `json:"settings"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// GameMaster returns the session's game master participant.
func (s Session) GameMaster() (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == s.GameMasterID {
			return p, true
		}
	}
	return Participant{}, false
}

func (s Session) Participant(id string) (Participant, bool) {
	for _, p := range s.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

func (s Session) clone() Session {
	out := s
	out.Participants = append([]Participant(nil), s.Participants...)
	out.Answers = append([]Answer(nil), s.Answers...)
	return out
}

func (s *Session) findParticipant(id string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return &s.Participants[i]
		}
	}
	return nil
}

func (s *Session) findByConnection(connectionID string) *Participant {
	for i := range s.Participants {
		if s.Participants[i].ConnectionID == connectionID {
			return &s.Participants[i]
		}
	}
	return nil
}

func (s *Session) pendingAnswer(participantID string) *Answer {
	for i := range s.Answers {
		if s.Answers[i].ParticipantID == participantID && !s.Answers[i].Validated {
			return &s.Answers[i]
		}
	}
	return nil
}

func (s *Session) isGameMaster(connectionID string) bool {
	gm := s.findParticipant(s.GameMasterID)
	return gm != nil && gm.ConnectionID == connectionID
}

func (s *Session) removeParticipant(id string) {
	participants := s.Participants[:0]
	for _, p := range s.Participants {
		if p.ID != id {
			participants = append(participants, p)
		}
	}
	s.Participants = participants
	answers := s.Answers[:0]
	for _, a := range s.Answers {
		if a.ParticipantID != id {
			answers = append(answers, a)
		}
	}
	s.Answers = answers
}

// Summary is the lobby-listing view of a live session.
type Summary struct {
	Code            string    `json:"code"`
	Status          Status    `json:"status"`
	Players         int       `json:"players"`
	CurrentQuestion int       `json:"currentQuestion"`
	CreatedAt       time.Time `json:"createdAt"`
}

type LeaveResult struct {
	SessionDeleted bool
	Session        Session
	Participant    Participant
}

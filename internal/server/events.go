package server

import (
	"encoding/json"

	"live-trivia/internal/game"
)

const (
	msgCreateGame     = "create-game"
	msgJoinGame       = "join-game"
	msgConfigureGame  = "configure-game"
	msgStartGame      = "start-game"
	msgNextQuestion   = "next-question"
	msgSubmitAnswer   = "submit-answer"
	msgValidateAnswer = "validate-answer"
	msgEndGame        = "end-game"
	msgLeaveGame      = "leave-game"
)

const (
	evtGameCreated    = "game-created"
	evtGameJoined     = "game-joined"
	evtPlayerJoined   = "player-joined"
	evtGameConfigured = "game-configured"
	evtGameStarted    = "game-started"
	evtQuestionChange = "question-changed"
	evtAnswerSent     = "answer-submitted"
	evtAnswerReceived = "answer-received"
	evtAnswerChecked  = "answer-validated"
	evtPlayerUpdated  = "player-updated"
	evtAnswersUpdated = "answers-updated"
	evtGameEnded      = "game-ended"
	evtPlayerLeft     = "player-left"
	evtError          = "error"
)

const (
	endReasonGameMaster     = "ended_by_game_master"
	endReasonQuestionsDone  = "questions_exhausted"
	endReasonGameMasterLeft = "game_master_left"
	endReasonGameMasterGone = "game_master_disconnected"
	leaveReasonLeft         = "left"
	leaveReasonDisconnected = "disconnected"
)

const (
	journalGameCreated      = "game_created"
	journalPlayerJoined     = "player_joined"
	journalSettingsUpdated  = "settings_updated"
	journalGameStarted      = "game_started"
	journalQuestionAdvanced = "question_advanced"
	journalAnswerSubmitted  = "answer_submitted"
	journalAnswerValidated  = "answer_validated"
	journalGameEnded        = "game_ended"
	journalPlayerLeft       = "player_left"
)

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type createGameRequest struct {
	PlayerName string `json:"playerName" binding:"required"`
}

type joinGameRequest struct {
	GameCode   string `json:"gameCode" binding:"required,gamecode"`
	PlayerName string `json:"playerName" binding:"required"`
}

type settingsRequest struct {
	Lives          *int `json:"lives" binding:"omitempty,min=0,max=99"`
	TotalQuestions *int `json:"totalQuestions" binding:"omitempty,min=0,max=500"`
}

type configureGameRequest struct {
	GameCode string           `json:"gameCode" binding:"required,gamecode"`
	Settings *settingsRequest `json:"settings" binding:"required"`
}

type gameCodeRequest struct {
	GameCode string `json:"gameCode" binding:"required,gamecode"`
}

type submitAnswerRequest struct {
	GameCode   string `json:"gameCode" binding:"required,gamecode"`
	AnswerText string `json:"answerText" binding:"required"`
}

type validateAnswerRequest struct {
	GameCode  string `json:"gameCode" binding:"required,gamecode"`
	PlayerID  string `json:"playerId" binding:"required"`
	IsCorrect *bool  `json:"isCorrect" binding:"required"`
}

type EventPayload struct {
	JoinCode      string         `json:"join_code,omitempty"`
	ParticipantID string         `json:"participant_id,omitempty"`
	PlayerName    string         `json:"player,omitempty"`
	Question      int            `json:"question,omitempty"`
	Status        game.Status    `json:"status,omitempty"`
	Settings      *game.Settings `json:"settings,omitempty"`
	AnswerID      string         `json:"answer_id,omitempty"`
	Answer        string         `json:"answer,omitempty"`
	IsCorrect     *bool          `json:"is_correct,omitempty"`
	Lives         *int           `json:"lives,omitempty"`
	Score         *int           `json:"score,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	PlayersInGame int            `json:"players,omitempty"`
}

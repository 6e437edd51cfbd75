package server

import (
	"encoding/json"
	"time"

	"live-trivia/internal/db"
	"live-trivia/internal/game"

	"gorm.io/datatypes"
)

// The journal is write-only: rows are appended for audit and never read back,
// so a restart still starts with an empty registry. Failures are logged and
// never fail the player's action.

func (s *Server) persistGame(session game.Session) {
	if s.db == nil {
		return
	}
	record := db.Game{
		JoinCode:       session.Code,
		Status:         string(session.Status),
		LivesPerPlayer: session.Settings.LivesPerPlayer,
		TotalQuestions: session.Settings.TotalQuestions,
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.logger.Warn("journal write failed", "code", session.Code, "event", journalGameCreated, "error", err)
		return
	}
	s.journalMu.Lock()
	s.journal[session.Code] = record.ID
	s.journalMu.Unlock()

	if gm, ok := session.GameMaster(); ok {
		s.insertPlayer(record.ID, gm)
	}
	s.persistEvent(session.Code, journalGameCreated, session.GameMasterID, 0, EventPayload{
		JoinCode: session.Code,
		Settings: &session.Settings,
	})
}

func (s *Server) persistPlayer(session game.Session, player game.Participant) {
	gameID, ok := s.journalID(session.Code)
	if !ok {
		return
	}
	s.insertPlayer(gameID, player)
	s.persistEvent(session.Code, journalPlayerJoined, player.ID, 0, EventPayload{
		PlayerName:    player.Name,
		PlayersInGame: len(session.Participants),
	})
}

func (s *Server) insertPlayer(gameID uint, player game.Participant) {
	record := db.Player{
		GameID:        gameID,
		ParticipantID: player.ID,
		Name:          player.Name,
		IsGameMaster:  player.IsGameMaster,
		Lives:         player.Lives,
		JoinedAt:      time.Now().UTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.logger.Warn("journal write failed", "game_id", gameID, "participant_id", player.ID, "error", err)
	}
}

func (s *Server) persistSettings(session game.Session) {
	gameID, ok := s.journalID(session.Code)
	if !ok {
		return
	}
	updates := map[string]any{
		"lives_per_player": session.Settings.LivesPerPlayer,
		"total_questions":  session.Settings.TotalQuestions,
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", gameID).Updates(updates).Error; err != nil {
		s.logger.Warn("journal write failed", "code", session.Code, "event", journalSettingsUpdated, "error", err)
	}
	if err := s.db.Model(&db.Player{}).
		Where("game_id = ? AND is_game_master = ? AND left_at IS NULL", gameID, false).
		Update("lives", session.Settings.LivesPerPlayer).Error; err != nil {
		s.logger.Warn("journal write failed", "code", session.Code, "event", journalSettingsUpdated, "error", err)
	}
	s.persistEvent(session.Code, journalSettingsUpdated, "", session.CurrentQuestion, EventPayload{
		Settings: &session.Settings,
	})
}

func (s *Server) persistStatus(session game.Session, eventType string, payload EventPayload) {
	gameID, ok := s.journalID(session.Code)
	if !ok {
		return
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", gameID).Update("status", string(session.Status)).Error; err != nil {
		s.logger.Warn("journal write failed", "code", session.Code, "event", eventType, "error", err)
	}
	payload.Status = session.Status
	s.persistEvent(session.Code, eventType, "", session.CurrentQuestion, payload)
}

func (s *Server) persistValidation(code string, player game.Participant, answer game.Answer) {
	gameID, ok := s.journalID(code)
	if !ok {
		return
	}
	updates := map[string]any{
		"lives": player.Lives,
		"score": player.Score,
	}
	if err := s.db.Model(&db.Player{}).
		Where("game_id = ? AND participant_id = ?", gameID, player.ID).
		Updates(updates).Error; err != nil {
		s.logger.Warn("journal write failed", "code", code, "event", journalAnswerValidated, "error", err)
	}
	isCorrect := answer.IsCorrect
	lives := player.Lives
	score := player.Score
	s.persistEvent(code, journalAnswerValidated, player.ID, answer.QuestionNumber, EventPayload{
		AnswerID:  answer.ID,
		IsCorrect: &isCorrect,
		Lives:     &lives,
		Score:     &score,
	})
}

func (s *Server) persistDeparture(code string, participant game.Participant, reason string) {
	gameID, ok := s.journalID(code)
	if !ok {
		return
	}
	if err := s.db.Model(&db.Player{}).
		Where("game_id = ? AND participant_id = ?", gameID, participant.ID).
		Update("left_at", time.Now().UTC()).Error; err != nil {
		s.logger.Warn("journal write failed", "code", code, "event", journalPlayerLeft, "error", err)
	}
	s.persistEvent(code, journalPlayerLeft, participant.ID, 0, EventPayload{
		PlayerName: participant.Name,
		Reason:     reason,
	})
}

func (s *Server) persistEnd(session game.Session, reason string) {
	gameID, ok := s.journalID(session.Code)
	if !ok {
		return
	}
	now := time.Now().UTC()
	updates := map[string]any{
		"status":   string(game.StatusEnded),
		"ended_at": now,
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", gameID).Updates(updates).Error; err != nil {
		s.logger.Warn("journal write failed", "code", session.Code, "event", journalGameEnded, "error", err)
	}
	for _, p := range session.Participants {
		if err := s.db.Model(&db.Player{}).
			Where("game_id = ? AND participant_id = ?", gameID, p.ID).
			Updates(map[string]any{"lives": p.Lives, "score": p.Score}).Error; err != nil {
			s.logger.Warn("journal write failed", "code", session.Code, "participant_id", p.ID, "error", err)
		}
	}
	s.persistEvent(session.Code, journalGameEnded, "", session.CurrentQuestion, EventPayload{
		Status:        game.StatusEnded,
		Reason:        reason,
		PlayersInGame: len(session.Participants),
	})
	s.journalMu.Lock()
	if s.journal[session.Code] == gameID {
		delete(s.journal, session.Code)
	}
	s.journalMu.Unlock()
}

func (s *Server) persistEvent(code, eventType, participantID string, question int, payload EventPayload) {
	gameID, ok := s.journalID(code)
	if !ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	event := db.Event{
		GameID:   gameID,
		Question: question,
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	if participantID != "" {
		event.ParticipantID = &participantID
	}
	if err := s.db.Create(&event).Error; err != nil {
		s.logger.Warn("journal write failed", "code", code, "event", eventType, "error", err)
	}
}

func (s *Server) journalID(code string) (uint, bool) {
	if s.db == nil {
		return 0, false
	}
	s.journalMu.Lock()
	defer s.journalMu.Unlock()
	id, ok := s.journal[code]
	return id, ok
}

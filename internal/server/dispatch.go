package server

import (
	"encoding/json"
	"errors"

	"live-trivia/internal/game"

	"github.com/gin-gonic/gin"
)

type handlerFunc func(connID string, data json.RawMessage) error

func (s *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		msgCreateGame:     s.handleCreateGame,
		msgJoinGame:       s.handleJoinGame,
		msgConfigureGame:  s.handleConfigureGame,
		msgStartGame:      s.handleStartGame,
		msgNextQuestion:   s.handleNextQuestion,
		msgSubmitAnswer:   s.handleSubmitAnswer,
		msgValidateAnswer: s.handleValidateAnswer,
		msgEndGame:        s.handleEndGame,
		msgLeaveGame:      s.handleLeaveGame,
	}
}

// dispatch runs one inbound message. Failures go back to the sender only.
func (s *Server) dispatch(connID string, msg inbound) {
	handle, ok := s.handlers()[msg.Type]
	if !ok {
		s.sendError(connID, errUnknownMessage)
		return
	}
	if err := handle(connID, msg.Data); err != nil {
		s.logger.Debug("action rejected", "type", msg.Type, "connection_id", connID, "error", err)
		s.sendError(connID, err)
	}
}

func (s *Server) sendError(connID string, err error) {
	code := game.ErrorCode(err)
	var reqErr requestError
	if errors.As(err, &reqErr) {
		code = "invalid_request"
	}
	message := err.Error()
	if code == "internal" {
		s.logger.Warn("action failed", "connection_id", connID, "error", err)
		message = "internal error"
	}
	s.ws.Send(connID, outbound{
		Type: evtError,
		Data: gin.H{"message": message, "code": code},
	})
}

func (s *Server) handleCreateGame(connID string, data json.RawMessage) error {
	var req createGameRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	name, err := validateName(req.PlayerName, s.cfg.MaxNameLength)
	if err != nil {
		return err
	}
	if err := s.ensureUnattached(connID); err != nil {
		return err
	}
	session, err := s.games.CreateSession(connID, name)
	if err != nil {
		return err
	}
	s.ws.Join(session.Code, connID)
	gm, _ := session.GameMaster()
	s.persistGame(session)
	s.ws.Send(connID, outbound{Type: evtGameCreated, Data: gin.H{
		"gameCode": session.Code,
		"player":   gm,
		"settings": session.Settings,
	}})
	return nil
}

func (s *Server) handleJoinGame(connID string, data json.RawMessage) error {
	var req joinGameRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	name, err := validateName(req.PlayerName, s.cfg.MaxNameLength)
	if err != nil {
		return err
	}
	if err := s.ensureUnattached(connID); err != nil {
		return err
	}
	session, player, err := s.games.JoinSession(req.GameCode, connID, name)
	if err != nil {
		return err
	}
	if !s.ws.JoinLive(session.Code, connID, s.sessionLive) {
		// The game master left between the join and the group subscription.
		return game.ErrNotFound
	}
	s.persistPlayer(session, player)
	s.ws.Send(connID, outbound{Type: evtGameJoined, Data: gin.H{
		"gameCode":     session.Code,
		"player":       player,
		"players":      session.Participants,
		"settings":     session.Settings,
		"isGameMaster": false,
	}})
	s.ws.Broadcast(session.Code, outbound{Type: evtPlayerJoined, Data: gin.H{
		"players": session.Participants,
	}})
	return nil
}

// ensureUnattached keeps each socket in at most one session, so a lost
// connection tears down everything it was part of.
func (s *Server) ensureUnattached(connID string) error {
	if code, ok := s.games.SessionOf(connID); ok {
		s.logger.Debug("socket already in a game", "connection_id", connID, "code", code)
		return errAlreadyInGame
	}
	return nil
}

func (s *Server) sessionLive(code string) bool {
	_, err := s.games.Get(code)
	return err == nil
}

func (s *Server) handleConfigureGame(connID string, data json.RawMessage) error {
	var req configureGameRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	session, err := s.games.ConfigureSettings(req.GameCode, connID, game.SettingsPatch{
		LivesPerPlayer: req.Settings.Lives,
		TotalQuestions: req.Settings.TotalQuestions,
	})
	if err != nil {
		return err
	}
	s.persistSettings(session)
	s.ws.Broadcast(session.Code, outbound{Type: evtGameConfigured, Data: gin.H{
		"settings": session.Settings,
		"players":  session.Participants,
	}})
	return nil
}

func (s *Server) handleStartGame(connID string, data json.RawMessage) error {
	var req gameCodeRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	session, err := s.games.StartSession(req.GameCode, connID)
	if err != nil {
		return err
	}
	s.persistStatus(session, journalGameStarted, EventPayload{
		Question:      session.CurrentQuestion,
		PlayersInGame: len(session.Participants),
	})
	s.ws.Broadcast(session.Code, outbound{Type: evtGameStarted, Data: gin.H{
		"currentQuestion": session.CurrentQuestion,
		"players":         session.Participants,
	}})
	return nil
}

func (s *Server) handleNextQuestion(connID string, data json.RawMessage) error {
	var req gameCodeRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	session, err := s.games.AdvanceQuestion(req.GameCode, connID)
	if err != nil {
		return err
	}
	s.persistStatus(session, journalQuestionAdvanced, EventPayload{Question: session.CurrentQuestion})
	s.ws.Broadcast(session.Code, outbound{Type: evtQuestionChange, Data: gin.H{
		"currentQuestion": session.CurrentQuestion,
		"status":          session.Status,
	}})
	if session.Status == game.StatusEnded {
		// The registry keeps the session so standings stay readable; the
		// game master still has to end it to free the code.
		s.persistStatus(session, journalGameEnded, EventPayload{Reason: endReasonQuestionsDone})
		s.ws.Broadcast(session.Code, outbound{Type: evtGameEnded, Data: gin.H{
			"reason":  endReasonQuestionsDone,
			"players": session.Participants,
		}})
	}
	return nil
}

func (s *Server) handleSubmitAnswer(connID string, data json.RawMessage) error {
	var req submitAnswerRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	text, err := validateAnswerText(req.AnswerText, s.cfg.MaxAnswerLength)
	if err != nil {
		return err
	}
	answer, err := s.games.SubmitAnswer(req.GameCode, connID, text)
	if err != nil {
		return err
	}
	s.ws.Send(connID, outbound{Type: evtAnswerSent, Data: gin.H{"answerId": answer.ID}})
	session, err := s.games.Get(req.GameCode)
	if err != nil {
		// Ended between the two calls; nobody is left to grade it.
		return nil
	}
	s.persistEvent(session.Code, journalAnswerSubmitted, answer.ParticipantID, answer.QuestionNumber, EventPayload{
		AnswerID: answer.ID,
		Answer:   answer.Text,
	})
	if gm, ok := session.GameMaster(); ok {
		s.ws.Send(gm.ConnectionID, outbound{Type: evtAnswerReceived, Data: gin.H{"answer": answer}})
	}
	return nil
}

func (s *Server) handleValidateAnswer(connID string, data json.RawMessage) error {
	var req validateAnswerRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	player, answer, err := s.games.ValidateAnswer(req.GameCode, connID, req.PlayerID, *req.IsCorrect)
	if err != nil {
		return err
	}
	code := game.NormalizeCode(req.GameCode)
	s.persistValidation(code, player, answer)
	s.ws.Send(player.ConnectionID, outbound{Type: evtAnswerChecked, Data: gin.H{
		"isCorrect": answer.IsCorrect,
		"lives":     player.Lives,
		"score":     player.Score,
	}})
	s.ws.Broadcast(code, outbound{Type: evtPlayerUpdated, Data: gin.H{"player": player}})
	if session, err := s.games.Get(code); err == nil {
		s.ws.Send(connID, outbound{Type: evtAnswersUpdated, Data: gin.H{"answers": session.Answers}})
	}
	return nil
}

func (s *Server) handleEndGame(connID string, data json.RawMessage) error {
	var req gameCodeRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	session, err := s.games.EndSession(req.GameCode, connID)
	if err != nil {
		return err
	}
	s.closeGame(session, endReasonGameMaster)
	return nil
}

func (s *Server) handleLeaveGame(connID string, data json.RawMessage) error {
	var req gameCodeRequest
	if err := bindPayload(data, &req); err != nil {
		return err
	}
	result, err := s.games.LeaveSession(req.GameCode, connID)
	if err != nil {
		return err
	}
	s.afterDeparture(connID, result, endReasonGameMasterLeft, leaveReasonLeft)
	return nil
}

func (s *Server) handleDisconnect(connID string) {
	result, ok := s.games.HandleDisconnection(connID)
	if !ok {
		return
	}
	s.afterDeparture(connID, result, endReasonGameMasterGone, leaveReasonDisconnected)
}

func (s *Server) afterDeparture(connID string, result game.LeaveResult, endReason, leaveReason string) {
	code := result.Session.Code
	s.ws.Leave(code, connID)
	if result.SessionDeleted {
		s.closeGame(result.Session, endReason)
		return
	}
	s.persistDeparture(code, result.Participant, leaveReason)
	s.ws.Broadcast(code, outbound{Type: evtPlayerLeft, Data: gin.H{
		"playerId": result.Participant.ID,
		"players":  result.Session.Participants,
	}})
}

func (s *Server) closeGame(session game.Session, reason string) {
	s.persistEnd(session, reason)
	s.ws.Broadcast(session.Code, outbound{Type: evtGameEnded, Data: gin.H{
		"reason":  reason,
		"players": session.Participants,
	}})
	s.ws.Drop(session.Code)
}

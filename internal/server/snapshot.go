package server

import "live-trivia/internal/game"

// publicSnapshot is what anyone holding the code may see. Answers are for the
// game master's socket only.
func publicSnapshot(session game.Session) map[string]any {
	return map[string]any{
		"code":            session.Code,
		"status":          session.Status,
		"currentQuestion": session.CurrentQuestion,
		"settings":        session.Settings,
		"players":         session.Participants,
		"createdAt":       session.CreatedAt,
	}
}

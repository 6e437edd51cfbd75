package server

import (
	"errors"
	"net/http"

	"live-trivia/internal/game"

	"github.com/gin-gonic/gin"
)

type sessionURI struct {
	Code string `uri:"code" binding:"required,gamecode"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.games.Len(),
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.games.List()})
}

func (s *Server) handleGetSession(c *gin.Context) {
	var req sessionURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrNotFound.Error()})
		return
	}
	session, err := s.games.Get(req.Code)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, publicSnapshot(session))
}

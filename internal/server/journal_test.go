package server

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"live-trivia/internal/db"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func journalSize(s *Server) int {
	s.journalMu.Lock()
	defer s.journalMu.Unlock()
	return len(s.journal)
}

func TestJournalFailuresDoNotBlockPlay(t *testing.T) {
	conn, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "postgres://trivia@127.0.0.1:1/trivia?sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true, Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	_ = sqlDB.Close()

	logs := &lockedBuffer{}
	srv, ts := newTestAppWith(t, conn, logs)
	gmConn := dialWS(t, ts)
	playerConn := dialWS(t, ts)

	code := createGameWS(t, gmConn, "Quizmaster")
	playerID := joinGameWS(t, playerConn, code, "Ada")
	sendWS(t, gmConn, msgStartGame, map[string]any{"gameCode": code})
	waitForWS(t, playerConn, evtGameStarted)
	sendWS(t, playerConn, msgSubmitAnswer, map[string]any{"gameCode": code, "answerText": "Lima"})
	waitForWS(t, gmConn, evtAnswerReceived)
	sendWS(t, gmConn, msgValidateAnswer, map[string]any{"gameCode": code, "playerId": playerID, "isCorrect": true})
	validated := waitForWS(t, playerConn, evtAnswerChecked)
	if validated.Data["score"] != float64(10) {
		t.Fatalf("expected score 10, got %#v", validated.Data["score"])
	}
	sendWS(t, gmConn, msgEndGame, map[string]any{"gameCode": code})
	waitForWS(t, playerConn, evtGameEnded)

	if !strings.Contains(logs.String(), "journal write failed") {
		t.Fatalf("expected journal failure logged, got:\n%s", logs.String())
	}
	if journalSize(srv) != 0 {
		t.Fatalf("expected no journal ids tracked, got %d", journalSize(srv))
	}
}

func TestJournalRecordsGame(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	conn, err := db.Open(dsn, db.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(conn, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logs := &lockedBuffer{}
	srv, ts := newTestAppWith(t, conn, logs)
	gmConn := dialWS(t, ts)
	playerConn := dialWS(t, ts)

	code := createGameWS(t, gmConn, "Quizmaster")
	if journalSize(srv) != 1 {
		t.Fatalf("expected game tracked in journal, got %d", journalSize(srv))
	}
	playerID := joinGameWS(t, playerConn, code, "Ada")
	sendWS(t, gmConn, msgStartGame, map[string]any{"gameCode": code})
	waitForWS(t, playerConn, evtGameStarted)
	sendWS(t, playerConn, msgSubmitAnswer, map[string]any{"gameCode": code, "answerText": "Lima"})
	waitForWS(t, gmConn, evtAnswerReceived)
	sendWS(t, gmConn, msgValidateAnswer, map[string]any{"gameCode": code, "playerId": playerID, "isCorrect": false})
	waitForWS(t, playerConn, evtAnswerChecked)
	sendWS(t, gmConn, msgEndGame, map[string]any{"gameCode": code})
	waitForWS(t, playerConn, evtGameEnded)

	if journalSize(srv) != 0 {
		t.Fatalf("expected journal id released after end, got %d", journalSize(srv))
	}

	var record db.Game
	if err := conn.Where("join_code = ?", code).Order("id desc").First(&record).Error; err != nil {
		t.Fatalf("load game: %v", err)
	}
	t.Cleanup(func() {
		conn.Where("game_id = ?", record.ID).Delete(&db.Event{})
		conn.Where("game_id = ?", record.ID).Delete(&db.Player{})
		conn.Delete(&db.Game{}, record.ID)
	})
	if record.Status != "ended" || record.EndedAt == nil {
		t.Fatalf("expected ended game row, got status=%s ended_at=%v", record.Status, record.EndedAt)
	}

	var player db.Player
	if err := conn.Where("game_id = ? AND participant_id = ?", record.ID, playerID).First(&player).Error; err != nil {
		t.Fatalf("load player: %v", err)
	}
	if player.Name != "Ada" || player.Lives != 2 || player.Score != 0 {
		t.Fatalf("unexpected player row %+v", player)
	}

	var types []string
	if err := conn.Model(&db.Event{}).Where("game_id = ?", record.ID).Order("id").Pluck("type", &types).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}
	want := []string{
		journalGameCreated,
		journalPlayerJoined,
		journalGameStarted,
		journalAnswerSubmitted,
		journalAnswerValidated,
		journalGameEnded,
	}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("expected events %v, got %v", want, types)
	}
	if strings.Contains(logs.String(), "journal write failed") {
		t.Fatalf("unexpected journal failure:\n%s", logs.String())
	}
}

package db

import (
	"time"

	"gorm.io/datatypes"
)

// Game is the journal row for one session. Join codes are recycled once a
// session ends, so they are indexed but not unique.
type Game struct {
	ID             uint       `gorm:"primaryKey"`
	JoinCode       string     `gorm:"size:6;index;not null"`
	Status         string     `gorm:"size:16;not null"`
	LivesPerPlayer int        `gorm:"not null;default:3"`
	TotalQuestions int        `gorm:"not null;default:10"`
	EndedAt        *time.Time `gorm:"index"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
	Players        []Player
	Events         []Event
}

type Player struct {
	ID            uint       `gorm:"primaryKey"`
	GameID        uint       `gorm:"index;not null;uniqueIndex:idx_players_game_participant"`
	ParticipantID string     `gorm:"size:36;not null;uniqueIndex:idx_players_game_participant"`
	Name          string     `gorm:"size:64;not null"`
	IsGameMaster  bool       `gorm:"not null;default:false"`
	Lives         int        `gorm:"not null;default:0"`
	Score         int        `gorm:"not null;default:0"`
	JoinedAt      time.Time  `gorm:"not null"`
	LeftAt        *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

type Event struct {
	ID            uint           `gorm:"primaryKey"`
	GameID        uint           `gorm:"index;not null"`
	ParticipantID *string        `gorm:"size:36;index"`
	Question      int            `gorm:"not null;default:0"`
	Type          string         `gorm:"size:64;not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"not null"`
}

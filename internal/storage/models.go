package storage

import (
	"time"

	"github.com/google/uuid"
)

// Game is one browser session's game against the computer.
type Game struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string
	FEN         string
	PGN         string
	Status      string
	Result      string
	Active      bool `gorm:"index"`
	CompletedAt *time.Time
	LastSeen    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Moves       []Move `gorm:"constraint:OnDelete:CASCADE;"`
}

// Move stores a single move in a game.
type Move struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GameID    uuid.UUID `gorm:"type:uuid;index"`
	Ply       int
	SAN       string
	Side      string
	Computer  bool
	FEN       string
	CreatedAt time.Time
}

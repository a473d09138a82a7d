package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB instance and provides helper methods for persisting games.
// A nil *Store is valid and turns every method into a no-op.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// GameStateUpdate represents a partial update to a game row.
type GameStateUpdate struct {
	FEN            *string
	PGN            *string
	Status         *string
	Result         *string
	Active         *bool
	LastSeen       *time.Time
	CompletedAt    *time.Time
	ClearCompleted bool
}

// columns maps the set fields to column names.
func (u GameStateUpdate) columns() map[string]any {
	updates := make(map[string]any)
	if u.FEN != nil {
		updates["fen"] = *u.FEN
	}
	if u.PGN != nil {
		updates["pgn"] = *u.PGN
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.Result != nil {
		updates["result"] = *u.Result
	}
	if u.Active != nil {
		updates["active"] = *u.Active
	}
	if u.LastSeen != nil {
		updates["last_seen"] = *u.LastSeen
	}
	if u.CompletedAt != nil {
		updates["completed_at"] = *u.CompletedAt
	} else if u.ClearCompleted {
		updates["completed_at"] = nil
	}
	return updates
}

// CreateGame inserts a new game row. Creating an existing id is a no-op.
func (s *Store) CreateGame(ctx context.Context, id uuid.UUID, name, fen string, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	game := Game{
		ID:       id,
		Name:     name,
		FEN:      fen,
		Result:   "*",
		Active:   true,
		LastSeen: lastSeen,
	}
	return insertGame(s.db.WithContext(ctx), &game).Error
}

// SaveGameState applies partial updates to the game row.
func (s *Store) SaveGameState(ctx context.Context, id uuid.UUID, upd GameStateUpdate) error {
	if s == nil {
		return nil
	}
	updates := upd.columns()
	if len(updates) == 0 {
		return nil
	}
	return updateGame(s.db.WithContext(ctx), id, updates).Error
}

// RecordMove inserts a move row and advances the game's position.
func (s *Store) RecordMove(ctx context.Context, gameID uuid.UUID, ply int, san, side string, computer bool, fen string) error {
	if s == nil {
		return nil
	}
	move := Move{
		GameID:   gameID,
		Ply:      ply,
		SAN:      san,
		Side:     side,
		Computer: computer,
		FEN:      fen,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&move).Error; err != nil {
			return err
		}
		return updateGame(tx, gameID, GameStateUpdate{FEN: &fen}.columns()).Error
	})
}

// CompleteGame marks a game as finished with the provided status and result.
func (s *Store) CompleteGame(ctx context.Context, id uuid.UUID, status, result, pgn string, completedAt time.Time) error {
	if s == nil {
		return nil
	}
	active := false
	return s.SaveGameState(ctx, id, GameStateUpdate{
		PGN:         &pgn,
		Status:      &status,
		Result:      &result,
		Active:      &active,
		CompletedAt: &completedAt,
	})
}

// ResetGame reopens a game at fen and drops its moves.
func (s *Store) ResetGame(ctx context.Context, id uuid.UUID, fen string, at time.Time) error {
	if s == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteMoves(tx, id).Error; err != nil {
			return err
		}
		return updateGame(tx, id, reopened(fen, at).columns()).Error
	})
}

// reopened is the row state of a game restarted at fen.
func reopened(fen string, at time.Time) GameStateUpdate {
	empty, unset, active := "", "*", true
	return GameStateUpdate{
		FEN:            &fen,
		PGN:            &empty,
		Status:         &empty,
		Result:         &unset,
		Active:         &active,
		LastSeen:       &at,
		ClearCompleted: true,
	}
}

// UpdateLastSeen updates the last seen timestamp for a game.
func (s *Store) UpdateLastSeen(ctx context.Context, id uuid.UUID, lastSeen time.Time) error {
	if s == nil {
		return nil
	}
	return s.SaveGameState(ctx, id, GameStateUpdate{LastSeen: &lastSeen})
}

// PersistedGame is a game row with its moves in play order.
type PersistedGame struct {
	Game  Game
	Moves []Move
}

// LoadGame fetches a persisted game and its moves.
func (s *Store) LoadGame(ctx context.Context, id uuid.UUID) (*PersistedGame, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	var game Game
	if err := s.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return nil, err
	}
	var moves []Move
	if err := findMoves(s.db.WithContext(ctx), id, &moves).Error; err != nil {
		return nil, err
	}
	return &PersistedGame{Game: game, Moves: moves}, nil
}

// Stats represents aggregate counts for games.
type Stats struct {
	Started   int64 `json:"started"`
	Completed int64 `json:"completed"`
	Active    int64 `json:"active"`
	Won       int64 `json:"won"`
}

// FetchStats aggregates counts for display on the home page.
func (s *Store) FetchStats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s == nil {
		return stats, nil
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Count(&stats.Started).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("completed_at IS NOT NULL").Count(&stats.Completed).Error; err != nil {
		return stats, err
	}
	if err := s.db.WithContext(ctx).Model(&Game{}).Where("result = ?", "1-0").Count(&stats.Won).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

func insertGame(tx *gorm.DB, game *Game) *gorm.DB {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(game)
}

func updateGame(tx *gorm.DB, id uuid.UUID, cols map[string]any) *gorm.DB {
	return tx.Model(&Game{}).Where("id = ?", id).Updates(cols)
}

func deleteMoves(tx *gorm.DB, gameID uuid.UUID) *gorm.DB {
	return tx.Where("game_id = ?", gameID).Delete(&Move{})
}

func findMoves(tx *gorm.DB, gameID uuid.UUID, dest *[]Move) *gorm.DB {
	return tx.Where("game_id = ?", gameID).Order("ply asc").Find(dest)
}

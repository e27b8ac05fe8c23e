package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/4-in-a-row/server/internal/domain"
)

type GameRepo struct {
	db *DB
}

func NewGameRepo(db *DB) *GameRepo {
	return &GameRepo{db: db}
}

// SaveGame stores a finished game. Saving the same room twice keeps the first row.
func (r *GameRepo) SaveGame(ctx context.Context, record *domain.GameRecord) error {
	if len(record.Players) != 2 {
		return fmt.Errorf("game %s has %d players", record.RoomID, len(record.Players))
	}

	players, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}
	board, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}
	moves, err := json.Marshal(record.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}

	var winner sql.NullString
	if record.Winner != nil {
		winner = sql.NullString{String: *record.Winner, Valid: true}
	}

	query := r.db.rebind(`
	INSERT INTO games (room_id, player1, player2, players, board, moves, winner, reason, move_count, created_at, ended_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (room_id) DO NOTHING;
	`)

	_, err = r.db.ExecContext(ctx, query,
		record.RoomID,
		record.Players[0].Username,
		record.Players[1].Username,
		string(players),
		string(board),
		string(moves),
		winner,
		record.Reason,
		len(record.Moves),
		record.CreatedAt.UnixMilli(),
		record.EndedAt.UnixMilli(),
		record.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game record: %w", err)
	}
	return nil
}

// GetGame returns the stored game, or nil when roomID is unknown.
func (r *GameRepo) GetGame(ctx context.Context, roomID string) (*domain.GameRecord, error) {
	query := r.db.rebind(`
	SELECT room_id, players, board, moves, winner, reason, created_at, ended_at, duration_ms
	FROM games
	WHERE room_id = ?;
	`)

	var (
		rec                   domain.GameRecord
		players, board, moves string
		winner                sql.NullString
		createdAt, endedAt    int64
	)
	err := r.db.QueryRowContext(ctx, query, roomID).Scan(
		&rec.RoomID, &players, &board, &moves, &winner, &rec.Reason, &createdAt, &endedAt, &rec.DurationMs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by room id: %w", err)
	}

	if err := json.Unmarshal([]byte(players), &rec.Players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	if err := json.Unmarshal([]byte(board), &rec.Board); err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}
	if err := json.Unmarshal([]byte(moves), &rec.Moves); err != nil {
		return nil, fmt.Errorf("failed to decode moves: %w", err)
	}
	if winner.Valid {
		w := winner.String
		rec.Winner = &w
	}
	rec.CreatedAt = time.UnixMilli(createdAt)
	rec.EndedAt = time.UnixMilli(endedAt)

	return &rec, nil
}

// Leaderboard counts wins per username, most wins first.
func (r *GameRepo) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := r.db.rebind(`
	SELECT winner, COUNT(*) AS wins
	FROM games
	WHERE winner IS NOT NULL
	GROUP BY winner
	ORDER BY wins DESC, winner ASC
	LIMIT ?;
	`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteGamesBefore removes games that ended before cutoff.
func (r *GameRepo) DeleteGamesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.rebind(`DELETE FROM games WHERE ended_at < ?;`), cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old games: %w", err)
	}
	return res.RowsAffected()
}

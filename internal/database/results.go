// internal/database/results.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GameResult is one player's final line in a finished game, as recorded by
// the historian.
type GameResult struct {
	RoomCode   string
	PlayerName string
	GrandTotal int
	Rank       int
	FinishedAt time.Time
}

// RecordGameResults persists the final standings of one finished game in a
// single transaction. Re-recording the same room/player pair overwrites the
// previous row, which makes the historian's drain loop idempotent.
func RecordGameResults(ctx context.Context, results []GameResult) error {
	if len(results) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO game_results (room_code, player_name, grand_total, rank, finished_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (room_code, player_name)
			DO UPDATE SET grand_total=$3, rank=$4, finished_at=$5
		`
		for _, res := range results {
			if _, e := tx.Exec(ctx, q, res.RoomCode, res.PlayerName, res.GrandTotal, res.Rank, res.FinishedAt); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert game results: %w", err)
	}
	return nil
}

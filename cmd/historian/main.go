// cmd/historian/main.go is an asynchronous historian service that drains the
// action journal from Redis and persists finished-game results to PostgreSQL.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/cpether/mobile-yahtzee/internal/cache"
	"github.com/cpether/mobile-yahtzee/internal/config"
	"github.com/cpether/mobile-yahtzee/internal/database"
)

// Historian accumulates final standings popped off the journal and flushes
// them to the database in batches.
type Historian struct {
	journal    *cache.Journal
	dbURL      string
	batchSize  int
	flushDelay time.Duration

	batchMu sync.Mutex
	batch   []database.GameResult

	ctx      context.Context
	cancelFn context.CancelFunc
}

// NewHistorian builds a Historian from the environment. The journal address
// is required here; without Redis there is nothing to drain.
func NewHistorian(cfg config.Config) (*Historian, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	journal, err := cache.NewJournal(addr, cfg.RedisQueue, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Historian{
		journal:    journal,
		dbURL:      cfg.DatabaseURL,
		batchSize:  20,
		flushDelay: 500 * time.Millisecond,
		batch:      make([]database.GameResult, 0, 20),
		ctx:        ctx,
		cancelFn:   cancel,
	}, nil
}

// Run connects to the database and drains the journal until Stop is called.
func (h *Historian) Run() {
	database.ConnectDB(h.dbURL)
	go h.drainLoop()

	log.Println("yahtzee-historian service started.")
	<-h.ctx.Done()
	h.flush()
	log.Println("yahtzee-historian shutting down.")
}

// Stop gracefully stops the historian.
func (h *Historian) Stop() {
	h.cancelFn()
}

// drainLoop pops journal records, keeping only finished-game entries, and
// flushes on a timer or when the batch fills.
func (h *Historian) drainLoop() {
	ticker := time.NewTicker(h.flushDelay)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.flush()
		default:
			// Bounded Pop so context cancellation gets a look-in.
			rec, err := h.journal.Pop(h.ctx, 3*time.Second)
			if err != nil {
				if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) {
					log.Printf("[ERROR] journal pop: %v", err)
				}
				continue
			}
			if rec.ActionType != "game-ended" {
				continue
			}
			h.append(resultsFromRecord(rec))
		}
	}
}

func (h *Historian) append(results []database.GameResult) {
	if len(results) == 0 {
		return
	}
	h.batchMu.Lock()
	h.batch = append(h.batch, results...)
	full := len(h.batch) >= h.batchSize
	h.batchMu.Unlock()
	if full {
		h.flush()
	}
}

func (h *Historian) flush() {
	h.batchMu.Lock()
	if len(h.batch) == 0 {
		h.batchMu.Unlock()
		return
	}
	batch := make([]database.GameResult, len(h.batch))
	copy(batch, h.batch)
	h.batch = h.batch[:0]
	h.batchMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.RecordGameResults(ctx, batch); err != nil {
		log.Printf("[ERROR] flush batch: %v", err)
		return
	}
	log.Printf("Flushed %d game results to DB.", len(batch))
}

// resultsFromRecord converts a game-ended journal payload into database rows.
// Malformed entries are skipped rather than poisoning the batch.
func resultsFromRecord(rec *cache.ActionRecord) []database.GameResult {
	rankings, ok := rec.Payload["rankings"].([]interface{})
	if !ok {
		log.Printf("game-ended record for room %s has no rankings, skipping", rec.RoomCode)
		return nil
	}
	finished := time.Unix(rec.Timestamp, 0)
	results := make([]database.GameResult, 0, len(rankings))
	for _, raw := range rankings {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := entry["playerName"].(string)
		total, _ := entry["grandTotal"].(float64)
		rank, _ := entry["rank"].(float64)
		if name == "" {
			continue
		}
		results = append(results, database.GameResult{
			RoomCode:   rec.RoomCode,
			PlayerName: name,
			GrandTotal: int(total),
			Rank:       int(rank),
			FinishedAt: finished,
		})
	}
	return results
}

func main() {
	cfg := config.Load()
	h, err := NewHistorian(cfg)
	if err != nil {
		log.Fatalf("historian init: %v", err)
	}
	go h.Run()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	h.Stop()
	log.Println("Historian shutdown complete.")
}

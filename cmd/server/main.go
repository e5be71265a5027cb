// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/cpether/mobile-yahtzee/internal/auth"
	"github.com/cpether/mobile-yahtzee/internal/cache"
	"github.com/cpether/mobile-yahtzee/internal/config"
	"github.com/cpether/mobile-yahtzee/internal/handlers"
	"github.com/cpether/mobile-yahtzee/internal/middleware"
	"github.com/cpether/mobile-yahtzee/internal/room"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	tokens, err := auth.NewTokenIssuer(cfg.RejoinTokenTTL)
	if err != nil {
		log.Fatalf("token issuer init: %v", err)
	}

	var journal *cache.Journal
	if cfg.RedisAddr != "" {
		journal, err = cache.NewJournal(cfg.RedisAddr, cfg.RedisQueue, cfg.RedisDB)
		if err != nil {
			logger.Warnf("action journal disabled, redis unreachable: %v", err)
			journal = nil
		}
	}

	registry := room.NewRegistry(nil)
	stopReaper := registry.StartReaper(cfg.SweepInterval, cfg.RetentionWindow)
	defer stopReaper()

	srv := handlers.NewServer(logger, registry, tokens, journal)
	srv.RollDelay = cfg.RollDelay

	mux := http.NewServeMux()
	mux.Handle("/ws", handlers.WSHandler(srv))
	mux.Handle("/health", middleware.LogMiddleware(logger)(handlers.HealthHandler(srv)))
	mux.Handle("/rooms/", middleware.LogMiddleware(logger)(handlers.RoomHandler(srv)))

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

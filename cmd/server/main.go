// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/trolleyparty/trolley/internal/cache"
	"github.com/trolleyparty/trolley/internal/game"
	"github.com/trolleyparty/trolley/internal/handlers"
	"github.com/trolleyparty/trolley/internal/middleware"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// The action historian is optional; without Redis the server still runs,
	// it just logs nothing to the queue.
	if os.Getenv("REDIS_ADDR") != "" {
		if err := cache.ConnectRedis(); err != nil {
			logger.Warnf("historian disabled: %v", err)
		}
	}

	var regOpts []game.RegistryOption
	if raw := os.Getenv("ROOM_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil {
			regOpts = append(regOpts, game.WithIdleTTL(ttl))
		} else {
			logger.Warnf("invalid ROOM_TTL %q, using default: %v", raw, err)
		}
	}
	reg := game.NewRegistry(regOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reg.RunJanitor(ctx, time.Minute)

	srv := handlers.NewServer(reg, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.WSHandler(logger, srv),
	)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

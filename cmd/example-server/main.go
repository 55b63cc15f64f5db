package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/coursebase/ratelimit/middleware"
	"github.com/coursebase/ratelimit/pkg/limiter"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	svc, err := limiter.New(limiter.ConfigFromEnv(),
		limiter.WithLogger(logger),
		limiter.WithTimeout(500*time.Millisecond),
	)
	if err != nil {
		logger.Fatal("rate limiter init failed", zap.Error(err))
	}
	defer svc.Close()

	authPolicy, _ := limiter.PolicyByName("auth")
	apiPolicy, _ := limiter.PolicyByName("api")

	mux := http.NewServeMux()
	mux.Handle("/auth/login", middleware.RateLimit(middleware.Config{
		Service: svc,
		Policy:  authPolicy,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("login ok\n"))
	})))
	mux.Handle("/api/ping", middleware.RateLimit(middleware.Config{
		Service: svc,
		Policy:  apiPolicy,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong\n"))
	})))

	logger.Info("server listening on :8080",
		zap.Bool("distributed", svc.Distributed()))
	if err := http.ListenAndServe(":8080", mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

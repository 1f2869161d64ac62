// Command mock-backend emulates the three vendor streaming APIs on one
// port for local development. Replies are streamed word by word.
//
// Point the client at it with:
//
//	HF_INFERENCE_ENDPOINT=http://localhost:9090/huggingface/generate
//	TOGETHER_BASE_URL=http://localhost:9090/together/v1
//	REPLICATE_BASE_URL=http://localhost:9090/replicate/v1
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 9090)
//	MOCK_DELAY - Delay between words (default: 60ms)
//	MOCK_REPLY - Reply text (default: a short canned answer)
//	MOCK_KEY   - Require this API key when set
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/greemwahr/GeorgianGPT/pkg/provider/providertest"
)

const defaultReply = "Georgian College has campuses across central Ontario, " +
	"including Barrie, Orillia and Owen Sound. Ask me about programs, " +
	"admissions or student services."

func main() {
	if err := run(); err != nil {
		slog.Error("mock backend failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	port := envOrDefault("MOCK_PORT", "9090")
	delay, err := time.ParseDuration(envOrDefault("MOCK_DELAY", "60ms"))
	if err != nil {
		return fmt.Errorf("invalid MOCK_DELAY: %w", err)
	}

	backend := &providertest.Backend{
		Tokens: providertest.Words(envOrDefault("MOCK_REPLY", defaultReply)),
		Delay:  delay,
		APIKey: os.Getenv("MOCK_KEY"),
	}

	srv := &http.Server{Addr: ":" + port, Handler: logRequests(backend.Handler())}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock backend starting", "port", port, "delay", delay, "words", len(backend.Tokens))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("mock backend shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

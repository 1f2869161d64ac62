// Command chat is an interactive terminal client for the configured
// inference provider. Each reply is streamed to stdout as it arrives.
//
// Configuration is read by config.Load (config.yaml, .env, environment):
//
//	INFERENCE_PROVIDER  - huggingface, together or replicate (default: huggingface)
//	LLM_METRICS_ADDR    - serve Prometheus metrics on this address (optional)
//	LLM_DEBUG           - debug categories: providers, streaming, config, all
//
// Press Ctrl-C while a reply is streaming to stop it; press it at the
// prompt to exit. History lives in memory for the session only.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greemwahr/GeorgianGPT/pkg/config"
	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/provider"
	"github.com/greemwahr/GeorgianGPT/pkg/provider/factory"
)

const defaultSystemPrompt = "You are a helpful assistant for Georgian College students. " +
	"Answer concisely and say so when you do not know."

func main() {
	if err := run(); err != nil {
		slog.Error("chat failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	providerName := flag.String("provider", "", "override the configured provider")
	system := flag.String("system", defaultSystemPrompt, "system prompt")
	temperature := flag.Float64("temperature", provider.DefaultTemperature, "sampling temperature")
	maxTokens := flag.Int("max-tokens", provider.DefaultMaxTokens, "maximum tokens to generate")
	topP := flag.Float64("top-p", provider.DefaultTopP, "nucleus sampling probability")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	debug.Init(cfg.Log.Debug, cfg.Log.Level, cfg.Log.Format)

	name := cfg.Provider
	if *providerName != "" {
		name = *providerName
	}
	prov, err := factory.New(name, cfg)
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}
	defer prov.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if m := cfg.Observability.Metrics; m.Enabled && m.Addr != "" {
		srv := startMetrics(m.Addr, m.Path)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	opts := provider.GenerationOptions{
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        topP,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	sess := newSession(prov, *system, opts, os.Stdout)
	info := prov.ModelInfo()
	fmt.Fprintln(os.Stdout, headerStyle.Render(fmt.Sprintf("%s · %s", info.Provider, info.ModelName)))
	fmt.Fprintln(os.Stdout, hintStyle.Render("/reset clears history, /info shows the model, /quit exits"))

	return repl(ctx, sess, os.Stdin, os.Stdout)
}

// startMetrics serves the default Prometheus registry in the background.
func startMetrics(addr, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET "+path, promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		slog.Info("metrics listening", "addr", addr, "path", path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// repl reads user turns until EOF, /quit, ctx cancellation or an
// interrupt at the prompt.
func repl(ctx context.Context, sess *session, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	intr := newInterrupter(cancel)
	defer intr.stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(out, promptStyle.Render("you> "))
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			sess.reset()
			fmt.Fprintln(out, hintStyle.Render("history cleared"))
			continue
		case "/info":
			info := sess.prov.ModelInfo()
			fmt.Fprintln(out, hintStyle.Render(fmt.Sprintf("provider=%s model=%s cost_per_1m_tokens=%g",
				info.Provider, info.ModelName, info.CostPer1MTokens)))
			continue
		}

		turnCtx, turnCancel := context.WithCancel(ctx)
		intr.arm(turnCancel)
		fmt.Fprint(out, assistantStyle.Render("assistant> "))
		err := sess.turn(turnCtx, line)
		intr.disarm()
		turnCancel()
		fmt.Fprintln(out)

		switch {
		case err == nil:
		case errors.Is(err, context.Canceled) && ctx.Err() == nil:
			fmt.Fprintln(out, hintStyle.Render("(stopped)"))
		case ctx.Err() != nil:
			return nil
		default:
			fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
		}
	}
}

// interrupter routes SIGINT to the in-flight turn when there is one and
// to the session otherwise.
type interrupter struct {
	mu      sync.Mutex
	turn    context.CancelFunc
	session context.CancelFunc
	sigCh   chan os.Signal
	done    chan struct{}
}

func newInterrupter(session context.CancelFunc) *interrupter {
	i := &interrupter{
		session: session,
		sigCh:   make(chan os.Signal, 1),
		done:    make(chan struct{}),
	}
	signal.Notify(i.sigCh, os.Interrupt)
	go i.loop()
	return i
}

func (i *interrupter) loop() {
	for {
		select {
		case <-i.sigCh:
			i.fire()
		case <-i.done:
			return
		}
	}
}

func (i *interrupter) fire() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.turn != nil {
		i.turn()
		i.turn = nil
		return
	}
	i.session()
}

func (i *interrupter) arm(cancel context.CancelFunc) {
	i.mu.Lock()
	i.turn = cancel
	i.mu.Unlock()
}

func (i *interrupter) disarm() {
	i.mu.Lock()
	i.turn = nil
	i.mu.Unlock()
}

func (i *interrupter) stop() {
	signal.Stop(i.sigCh)
	close(i.done)
}

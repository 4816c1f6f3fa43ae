// Command petchat es el cliente de terminal: elige trainer, aplica el cuidado
// diario de la mascota y abre el chat contra el backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pet-companion-chat/internal/adapters/backendapi"
	"pet-companion-chat/internal/domain/lifecycle"
	"pet-companion-chat/internal/domain/session"
	"pet-companion-chat/internal/platform/logger"
)

const helpText = "Commands: /status, /release to let your Pokémon go, /logout to switch trainer, /quit."

type options struct {
	backendURL string
	trainer    string
	cachePath  string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	opts := options{}
	cmd := &cobra.Command{
		Use:   "petchat",
		Short: "Chat with your Pokémon companion",
		Long: `petchat connects to the trainer service, applies the daily care rules
(friendship decay, talking streak, evolution) and opens a chat with your pet.

` + helpText,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.backendURL, "backend", os.Getenv("BACKEND_URL"), "trainer service URL (env BACKEND_URL)")
	f.StringVar(&opts.trainer, "trainer", "", "trainer name; overrides the cached one")
	f.StringVar(&opts.cachePath, "cache", "", "file that remembers the last trainer")
	f.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	return cmd
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(opts.logLevel),
		Format: logger.ParseFormat(os.Getenv("LOG_FORMAT")),
		App:    "petchat",
		Output: os.Stderr,
	})

	client, err := backendapi.New(opts.backendURL, log)
	if err != nil {
		return fmt.Errorf("backend url: %w", err)
	}

	cache := newNameCache(opts.cachePath)
	prompt := newLinePrompter(in, out)
	orch := session.NewOrchestrator(client, client, prompt, session.WithLogger(log))

	cached := strings.TrimSpace(opts.trainer)
	if cached == "" {
		cached = cache.Load()
	}

	for {
		s, err := orch.Bootstrap(ctx, cached)
		if err != nil {
			return quietEOF(err)
		}
		if err := cache.Save(s.Trainer().ID); err != nil {
			log.Warn("could not remember trainer", map[string]any{"err": err.Error()})
		}

		printMessages(out, s.Transcript())
		fmt.Fprintln(out, statusLine(s.Pet()))
		fmt.Fprintln(out, helpText)

		if err := chatLoop(ctx, s, prompt, out); err != nil {
			return quietEOF(err)
		}
		if !s.Closed() {
			return nil
		}

		// logout: se olvida el trainer y se vuelve a elegir
		if err := cache.Clear(); err != nil {
			log.Warn("could not forget trainer", map[string]any{"err": err.Error()})
		}
		cached = ""
	}
}

// chatLoop devuelve nil al salir con /quit o /logout.
func chatLoop(ctx context.Context, s *session.Session, prompt *linePrompter, out io.Writer) error {
	for {
		line, err := prompt.Line(ctx, "> ")
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, helpText)
			continue
		case "/status":
			fmt.Fprintln(out, statusLine(s.Pet()))
			continue
		case "/logout":
			s.Logout()
			fmt.Fprintf(out, "Logged out %s.\n", s.Trainer().ID)
			return nil
		case "/release":
			before := s.Pet().ID
			msgs, err := s.Release(ctx)
			if err != nil {
				return err
			}
			printMessages(out, msgs)
			if s.Pet().ID != before {
				fmt.Fprintln(out, statusLine(s.Pet()))
			}
			continue
		}

		msgs, err := s.Send(ctx, line)
		if err != nil {
			return err
		}
		// el primero es el eco del trainer
		printMessages(out, skipEcho(msgs))
	}
}

func skipEcho(msgs []lifecycle.Message) []lifecycle.Message {
	if len(msgs) == 0 {
		return msgs
	}
	return msgs[1:]
}

// quietEOF: cerrar la entrada o cortar con Ctrl+C es una salida normal.
func quietEOF(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

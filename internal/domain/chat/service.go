package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-companion-chat/internal/platform/logger"
)

type Service struct {
	completer Completer
	timeout   time.Duration
	log       logger.Logger
}

type Option func(*Service)

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = logger.OrNop(l) }
}

func NewService(c Completer, opts ...Option) *Service {
	s := &Service{
		completer: c,
		timeout:   DefaultTimeout,
		log:       logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Complete valida los turnos y pide la respuesta con timeout.
func (s *Service) Complete(ctx context.Context, messages []Message) (string, error) {
	clean := make([]Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		default:
			return "", ErrBadRole
		}
		clean = append(clean, m)
	}
	if len(clean) == 0 {
		return "", ErrNoMessages
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.completer.Complete(ctx, clean)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.log.Warn("chat completion timed out", map[string]any{"timeout": s.timeout.String()})
			return "", ErrTimeout
		}
		s.log.Error("chat completion failed", map[string]any{"err": err.Error()})
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrNoReply
	}

	s.log.Debug("chat completion ok", map[string]any{
		"turns":       len(clean),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return reply, nil
}

// Package chat arma el prompt de roleplay y habla con el proveedor de chat completions.
package chat

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultTimeout para una respuesta del proveedor.
const DefaultTimeout = 60 * time.Second

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completer devuelve el texto de la respuesta del asistente para los turnos dados.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

var (
	ErrNoMessages = errors.New("messages are required")
	ErrBadRole    = errors.New("message role must be system, user or assistant")
	ErrNoReply    = errors.New("the pet is thinking but hasn't replied yet")
	ErrTimeout    = errors.New("chat completion timed out")
)

// UpstreamError: el proveedor respondió con error. Status 0 = sin respuesta HTTP.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return "chat provider error"
	}
	return "chat provider error: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

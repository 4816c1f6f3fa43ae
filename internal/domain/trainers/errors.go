package trainers

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// TransportError: no se pudo hablar con el servicio de trainers
// (red caída o respuesta no-2xx). Status 0 = error de red.
type TransportError struct {
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		if e.Message != "" {
			return e.Message
		}
		return "network error"
	}
	if e.Message != "" {
		return fmt.Sprintf("trainer service error: status=%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("trainer service error: status=%d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedError: el servidor respondió 2xx pero el payload no respeta el contrato.
type MalformedError struct {
	Status int
	Err    error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed trainer payload (status=%d): %v", e.Status, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

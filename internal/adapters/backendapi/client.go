// Package backendapi es el cliente HTTP del servicio de trainers y de /chat.
// Implementa persistence.TrainerStore y chat.Completer para la CLI.
package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/platform/httpclient"
	"pet-companion-chat/internal/platform/logger"
)

const (
	DefaultBaseURL = "http://localhost:3000"

	userAgent   = "petchat"
	dataTimeout = 15 * time.Second
	// el server corta a los 60s; margen para que llegue su respuesta de error
	chatTimeout = chat.DefaultTimeout + 5*time.Second
)

type Client struct {
	data *httpclient.Client
	chat *httpclient.Client
	log  logger.Logger
}

// New crea el cliente. baseURL sin esquema se interpreta como http://.
func New(baseURL string, log logger.Logger) (*Client, error) {
	base := NormalizeBaseURL(baseURL)

	data, err := httpclient.New(httpclient.Config{BaseURL: base, Timeout: dataTimeout, UserAgent: userAgent})
	if err != nil {
		return nil, err
	}
	ch, err := httpclient.New(httpclient.Config{BaseURL: base, Timeout: chatTimeout, UserAgent: userAgent})
	if err != nil {
		return nil, err
	}

	return &Client{
		data: data,
		chat: ch,
		log:  logger.OrNop(log).With(map[string]any{"component": "backendapi"}),
	}, nil
}

// NormalizeBaseURL agrega http:// si falta el esquema y quita la barra final.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	return strings.TrimRight(raw, "/")
}

func (c *Client) BaseURL() string { return c.data.BaseURL }

// ---- trainers ----

func (c *Client) GetTrainer(ctx context.Context, trainerID string) (trainers.Trainer, error) {
	return c.doTrainer(ctx, http.MethodGet, trainerPath(trainerID), nil)
}

// CreateTrainer registra el trainer. Si ya existe devuelve el existente junto con trainers.ErrAlreadyExists.
func (c *Client) CreateTrainer(ctx context.Context, trainerID, petName string) (trainers.Trainer, error) {
	body := map[string]string{"name": strings.TrimSpace(trainerID)}
	if strings.TrimSpace(petName) != "" {
		body["petName"] = strings.TrimSpace(petName)
	}

	var raw json.RawMessage
	err := c.data.DoJSON(ctx, http.MethodPost, "/users", nil, body, &raw)
	if err != nil {
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusConflict {
			t, perr := parseTrainer(he.StatusCode, []byte(he.Body))
			if perr != nil {
				return trainers.Trainer{}, perr
			}
			return t, trainers.ErrAlreadyExists
		}
		return trainers.Trainer{}, c.mapErr("create trainer", err)
	}
	return parseTrainer(http.StatusCreated, raw)
}

func (c *Client) UpsertPetFields(ctx context.Context, trainerID, petID string, fields trainers.Pet) (trainers.Trainer, error) {
	return c.doTrainer(ctx, http.MethodPatch, petPath(trainerID, petID), toPetFieldsWire(fields))
}

func (c *Client) CreatePet(ctx context.Context, trainerID, name string) (trainers.Trainer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return trainers.Trainer{}, trainers.ErrInvalidInput
	}
	return c.doTrainer(ctx, http.MethodPost, trainerPath(trainerID)+"/pets", map[string]string{"name": name})
}

func (c *Client) DeletePet(ctx context.Context, trainerID, petID string) error {
	if err := c.data.DoJSON(ctx, http.MethodDelete, petPath(trainerID, petID), nil, nil, nil); err != nil {
		return c.mapErr("delete pet", err)
	}
	return nil
}

func (c *Client) doTrainer(ctx context.Context, method, path string, in any) (trainers.Trainer, error) {
	var raw json.RawMessage
	if err := c.data.DoJSON(ctx, method, path, nil, in, &raw); err != nil {
		return trainers.Trainer{}, c.mapErr(strings.ToLower(method)+" "+path, err)
	}
	return parseTrainer(http.StatusOK, raw)
}

// ---- chat ----

// Complete implementa chat.Completer contra POST /chat del backend.
func (c *Client) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	var resp chat.CompletionResponse
	err := c.chat.DoJSON(ctx, http.MethodPost, "/chat", nil, map[string]any{"messages": messages}, &resp)
	if err != nil {
		var he *httpclient.HTTPError
		var de *httpclient.DecodeError
		switch {
		case errors.As(err, &he):
			msg := he.ServerMessage()
			if msg == "" {
				msg = http.StatusText(he.StatusCode)
			}
			return "", &chat.UpstreamError{Status: he.StatusCode, Err: errors.New(msg)}
		case errors.As(err, &de):
			return "", chat.ErrNoReply
		case ctx.Err() != nil:
			return "", ctx.Err()
		}
		c.log.Warn("chat request failed", map[string]any{"err": err.Error()})
		return "", &chat.UpstreamError{Err: err}
	}

	reply := resp.Reply()
	if reply == "" {
		return "", chat.ErrNoReply
	}
	return reply, nil
}

// ---- errores ----

func (c *Client) mapErr(op string, err error) error {
	var he *httpclient.HTTPError
	var de *httpclient.DecodeError

	switch {
	case errors.As(err, &he):
		msg := he.ServerMessage()
		switch he.StatusCode {
		case http.StatusNotFound:
			return trainers.ErrNotFound
		case http.StatusBadRequest:
			if msg == "" {
				return trainers.ErrInvalidInput
			}
			return fmt.Errorf("%w: %s", trainers.ErrInvalidInput, msg)
		}
		c.log.Warn("backend returned an error", map[string]any{"op": op, "status": he.StatusCode})
		return &trainers.TransportError{Status: he.StatusCode, Message: msg, Err: err}

	case errors.As(err, &de):
		return &trainers.MalformedError{Status: de.StatusCode, Err: de.Err}
	}

	c.log.Warn("backend unreachable", map[string]any{"op": op, "err": err.Error()})
	return &trainers.TransportError{
		Status:  0,
		Message: "Unable to reach the trainer service. Check your connection and try again.",
		Err:     err,
	}
}

func trainerPath(trainerID string) string {
	return "/users/" + url.PathEscape(strings.TrimSpace(trainerID))
}

func petPath(trainerID, petID string) string {
	return trainerPath(trainerID) + "/pets/" + url.PathEscape(strings.TrimSpace(petID))
}

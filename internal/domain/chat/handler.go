package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/chat", completeHandler(svc))
}

type completeRequest struct {
	Messages []Message `json:"messages"`
}

type choiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type choice struct {
	Index        int           `json:"index"`
	Message      choiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// completeResponse mantiene la forma de chat completions para que los clientes
// existentes puedan leer choices[0].message.content.
type completeResponse struct {
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Choices []choice `json:"choices"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// completeHandler godoc
// @Summary Chat con la mascota
// @Description Reenvía los turnos al proveedor de chat completions (timeout 60s) y devuelve la respuesta con la forma `choices[0].message.content`.
// @Tags chat
// @Accept json
// @Produce json
// @Param payload body completeRequest true "Turnos {role, content}"
// @Success 200 {object} completeResponse
// @Failure 400 {object} errorResponse
// @Failure 429 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 504 {object} errorResponse
// @Router /chat [post]
func completeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		reply, err := svc.Complete(r.Context(), req.Messages)
		if err != nil {
			switch {
			case errors.Is(err, ErrNoMessages), errors.Is(err, ErrBadRole):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ErrTimeout):
				writeError(w, http.StatusGatewayTimeout, "The pet took too long to answer. Please try again.")
			case errors.Is(err, ErrNoReply):
				writeError(w, http.StatusBadGateway, err.Error())
			default:
				writeError(w, http.StatusBadGateway, UserMessage(err))
			}
			return
		}

		writeJSON(w, http.StatusOK, completeResponse{
			Object:  "chat.completion",
			Created: time.Now().Unix(),
			Choices: []choice{{
				Index:        0,
				Message:      choiceMessage{Role: RoleAssistant, Content: reply},
				FinishReason: "stop",
			}},
		})
	}
}

// UserMessage traduce un error del proveedor a un texto mostrable.
func UserMessage(err error) string {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		switch {
		case ue.Status == http.StatusUnauthorized || ue.Status == http.StatusForbidden:
			return "The chat service rejected our credentials."
		case ue.Status == http.StatusTooManyRequests:
			return "The pet is tired of talking. Please wait a moment."
		case ue.Status >= 500:
			return "The chat service is having trouble. Please try again later."
		}
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return "The pet took too long to answer. Please try again."
	case errors.Is(err, ErrNoReply):
		return ErrNoReply.Error() + "."
	}
	return "Unable to reach the pet right now."
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

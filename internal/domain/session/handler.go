package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pet-companion-chat/internal/domain/lifecycle"
	"pet-companion-chat/internal/domain/trainers"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/users/{name}/session", func(sr chi.Router) {
		sr.Post("/", startSessionHandler(svc))
	})
}

type sessionResponse struct {
	Trainer     any                    `json:"trainer"`
	Pet         any                    `json:"pet,omitempty"`
	Stage       *lifecycle.StageDetail `json:"stage,omitempty"`
	NeedsPet    bool                   `json:"needsPet"`
	Lost        bool                   `json:"lost"`
	RunAway     any                    `json:"runAway,omitempty"`
	Evolution   *lifecycle.Evolution   `json:"evolution,omitempty"`
	Messages    []lifecycle.Message    `json:"messages"`
	Consistency lifecycle.Consistency  `json:"consistency"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// startSessionHandler godoc
// @Summary Arrancar sesión
// @Description Aplica el cuidado diario a la mascota activa (racha, decaimiento de amistad, evolución o huida) y devuelve el estado reconciliado. Si el trainer no tiene mascota, o se escapó, responde `needsPet=true`.
// @Tags session
// @Produce json
// @Param name path string true "ID del trainer"
// @Success 200 {object} sessionResponse
// @Failure 404 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /users/{name}/session [post]
func startSessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Start(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			switch {
			case errors.Is(err, trainers.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, "A trainer name is required.")
			case errors.Is(err, trainers.ErrNotFound):
				writeError(w, http.StatusNotFound, "We couldn't find that trainer. Please create one.")
			case trainers.IsMalformed(err), trainers.IsTransport(err):
				writeError(w, http.StatusBadGateway, "We couldn't load your trainer. Please try again.")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		resp := sessionResponse{
			Trainer:     trainers.ToResponse(st.Trainer),
			NeedsPet:    st.NeedsPet,
			Lost:        st.RunAway != nil,
			Evolution:   st.Evolution,
			Messages:    st.Messages,
			Consistency: st.Consistency,
		}
		if resp.Messages == nil {
			resp.Messages = []lifecycle.Message{}
		}
		if st.Pet != nil {
			resp.Pet = trainers.PetToResponse(*st.Pet)
			detail := lifecycle.StageDetailFor(st.Pet.Stage)
			resp.Stage = &detail
		}
		if st.RunAway != nil {
			resp.RunAway = trainers.PetToResponse(*st.RunAway)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

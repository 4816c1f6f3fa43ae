package trainers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/users", func(ur chi.Router) {
		ur.Post("/", createTrainerHandler(svc))
		ur.Get("/{name}", getTrainerHandler(svc))
		ur.Delete("/{name}", deleteTrainerHandler(svc))

		ur.Route("/{name}/pets", func(pr chi.Router) {
			pr.Get("/", listPetsHandler(svc))
			pr.Post("/", createPetHandler(svc))
			pr.Patch("/{petID}", updatePetHandler(svc))
			pr.Delete("/{petID}", deletePetHandler(svc))
		})
	})
}

// createTrainerRequest es el cuerpo para registrar un trainer (y opcionalmente su primera mascota).
type createTrainerRequest struct {
	Name    string `json:"name"`
	PetName string `json:"petName"`
}

// petRequest acepta tanto "talking-streak" como "talkingStreak".
type petRequest struct {
	Name             *string  `json:"name"`
	Stage            *float64 `json:"stage"`
	Friendship       *float64 `json:"friendship"`
	TalkingStreak    *float64 `json:"talking-streak"`
	TalkingStreakAlt *float64 `json:"talkingStreak"`
	LastChatted      *string  `json:"lastChatted"`
	LastEvaluated    *string  `json:"lastEvaluated"`
	Context          *string  `json:"context"`
}

type petResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Stage         int        `json:"stage"`
	Friendship    int        `json:"friendship"`
	TalkingStreak int        `json:"talking-streak"`
	LastChatted   time.Time  `json:"lastChatted"`
	LastEvaluated *time.Time `json:"lastEvaluated,omitempty"`
	Context       string     `json:"context,omitempty"`
}

type trainerResponse struct {
	ID        string        `json:"id"`
	Pets      []petResponse `json:"pets"`
	CreatedAt time.Time     `json:"createdAt"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// createTrainerHandler godoc
// @Summary Registrar trainer
// @Description Crea el trainer con el nombre elegido. Si viene `petName`, nace con su primera mascota (stage 1, friendship 50). Si el trainer ya existe responde 409 con el registro existente.
// @Tags trainers
// @Accept json
// @Produce json
// @Param payload body createTrainerRequest true "Nombre del trainer y de su mascota"
// @Success 201 {object} trainerResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} trainerResponse
// @Router /users [post]
func createTrainerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTrainerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "A trainer name is required.")
			return
		}

		t, err := svc.CreateTrainer(r.Context(), req.Name, req.PetName)
		if err != nil {
			if errors.Is(err, ErrAlreadyExists) {
				writeJSON(w, http.StatusConflict, toTrainerResponse(t))
				return
			}
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toTrainerResponse(t))
	}
}

// getTrainerHandler godoc
// @Summary Obtener trainer
// @Tags trainers
// @Produce json
// @Param name path string true "ID del trainer"
// @Success 200 {object} trainerResponse
// @Failure 404 {object} errorResponse
// @Router /users/{name} [get]
func getTrainerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.GetTrainer(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTrainerResponse(t))
	}
}

// deleteTrainerHandler godoc
// @Summary Borrar trainer
// @Tags trainers
// @Param name path string true "ID del trainer"
// @Success 204
// @Router /users/{name} [delete]
func deleteTrainerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteTrainer(r.Context(), chi.URLParam(r, "name")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas del trainer
// @Tags pets
// @Produce json
// @Param name path string true "ID del trainer"
// @Success 200 {array} petResponse
// @Failure 404 {object} errorResponse
// @Router /users/{name}/pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPets(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description Agrega una mascota al trainer. stage se acota a [1,3], friendship a [0,100], talking-streak negativo pasa a 0. lastChatted en RFC3339 (default: ahora).
// @Tags pets
// @Accept json
// @Produce json
// @Param name path string true "ID del trainer"
// @Param payload body petRequest true "Datos de la mascota"
// @Success 201 {object} trainerResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /users/{name}/pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusBadRequest, "A Pokémon name is required.")
			return
		}

		lastChatted, err := parseOptionalTime(req.LastChatted)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lastChatted must be RFC3339")
			return
		}

		t, err := svc.AddPet(r.Context(), chi.URLParam(r, "name"), PetInput{
			Name:          *req.Name,
			Stage:         req.Stage,
			Friendship:    req.Friendship,
			TalkingStreak: req.streak(),
			LastChatted:   lastChatted,
			Context:       req.Context,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toTrainerResponse(t))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial: los campos ausentes no se tocan. El stage no puede bajar.
// @Tags pets
// @Accept json
// @Produce json
// @Param name path string true "ID del trainer"
// @Param petID path string true "ID de la mascota"
// @Param payload body petRequest true "Campos a modificar"
// @Success 200 {object} trainerResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /users/{name}/pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		lastChatted, err := parseOptionalTime(req.LastChatted)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lastChatted must be RFC3339")
			return
		}
		lastEvaluated, err := parseOptionalTime(req.LastEvaluated)
		if err != nil {
			writeError(w, http.StatusBadRequest, "lastEvaluated must be RFC3339")
			return
		}

		t, err := svc.UpdatePet(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "petID"), PetPatch{
			Name:          req.Name,
			Stage:         req.Stage,
			Friendship:    req.Friendship,
			TalkingStreak: req.streak(),
			LastChatted:   lastChatted,
			LastEvaluated: lastEvaluated,
			Context:       req.Context,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTrainerResponse(t))
	}
}

// deletePetHandler godoc
// @Summary Liberar mascota
// @Tags pets
// @Param name path string true "ID del trainer"
// @Param petID path string true "ID de la mascota"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /users/{name}/pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeletePet(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "petID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (req petRequest) streak() *float64 {
	if req.TalkingStreak != nil {
		return req.TalkingStreak
	}
	return req.TalkingStreakAlt
}

func parseOptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ToResponse expone la forma JSON del trainer para otros módulos (p.ej. session).
func ToResponse(t Trainer) any { return toTrainerResponse(t) }

func PetToResponse(p Pet) any { return toPetResponse(p) }

func toTrainerResponse(t Trainer) trainerResponse {
	pets := make([]petResponse, 0, len(t.Pets))
	for _, p := range t.Pets {
		pets = append(pets, toPetResponse(p))
	}
	return trainerResponse{
		ID:        t.ID,
		Pets:      pets,
		CreatedAt: t.CreatedAt,
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:            p.ID,
		Name:          p.Name,
		Stage:         p.Stage,
		Friendship:    p.Friendship,
		TalkingStreak: p.TalkingStreak,
		LastChatted:   p.LastChatted,
		LastEvaluated: p.LastEvaluated,
		Context:       p.Context,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "trainer or pet not found")
	case errors.Is(err, ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// writeJSON está duplicado a propósito en los handlers de cada módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pet-companion-chat/internal/platform/metrics"
	"pet-companion-chat/internal/router"
)

func TestHTTP_EndToEnd_TrainerLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// 1) Registrar trainer con su primera mascota
	petID := createTrainer(t, ts.URL, "ash", "Sparky")

	// 2) Registrar de nuevo => 409 con el existente
	{
		st, body := doReq(t, ts.URL, "POST", "/users", map[string]any{"name": "ash", "petName": "Other"})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 on duplicate, got %d body=%s", st, string(body))
		}
		var tr trainerBody
		_ = json.Unmarshal(body, &tr)
		if len(tr.Pets) != 1 || tr.Pets[0].Name != "Sparky" {
			t.Fatalf("409 must return the existing trainer, got %s", string(body))
		}
	}

	// 3) Trainer inexistente => 404
	{
		st, _ := doReq(t, ts.URL, "GET", "/users/nobody", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", st)
		}
	}

	// 4) Dejar la mascota a un día de evolucionar (racha 6, última charla ayer)
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.RFC3339)
	{
		st, body := doReq(t, ts.URL, "PATCH", "/users/ash/pets/"+petID, map[string]any{
			"talking-streak": 6,
			"lastChatted":    yesterday,
			"friendship":     150.4,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
		}
		var tr trainerBody
		_ = json.Unmarshal(body, &tr)
		if tr.Pets[0].Friendship != 100 || tr.Pets[0].TalkingStreak != 6 {
			t.Fatalf("patch must sanitize values, got %s", string(body))
		}
	}

	// 5) Arrancar sesión => evoluciona
	{
		st, body := doReq(t, ts.URL, "POST", "/users/ash/session", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 session, got %d body=%s", st, string(body))
		}
		var resp struct {
			Pet       petBody `json:"pet"`
			Evolution *struct {
				From int `json:"from"`
				To   int `json:"to"`
			} `json:"evolution"`
			Consistency string `json:"consistency"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Evolution == nil || resp.Evolution.From != 1 || resp.Evolution.To != 2 {
			t.Fatalf("expected evolution 1->2, got %s", string(body))
		}
		if resp.Pet.Stage != 2 || resp.Pet.TalkingStreak != 0 || resp.Consistency != "canonical" {
			t.Fatalf("unexpected pet after session: %s", string(body))
		}
	}

	// 6) Repetir la sesión el mismo día no vuelve a aplicar cambios
	{
		st, body := doReq(t, ts.URL, "POST", "/users/ash/session", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 session, got %d body=%s", st, string(body))
		}
		if strings.Contains(string(body), `"evolution"`) {
			t.Fatalf("second session must be a no-op, got %s", string(body))
		}
	}

	// 7) El stage no puede bajar
	{
		st, _ := doReq(t, ts.URL, "PATCH", "/users/ash/pets/"+petID, map[string]any{"stage": 1})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 on stage decrease, got %d", st)
		}
	}

	// 8) Liberar mascota => la sesión pide una nueva
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/users/ash/pets/"+petID, nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 delete pet, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", "/users/ash/session", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"needsPet":true`) {
			t.Fatalf("expected needsPet after release, got %d body=%s", st, string(body))
		}
	}

	// 9) Crear la siguiente mascota
	{
		st, body := doReq(t, ts.URL, "POST", "/users/ash/pets", map[string]any{"name": "  "})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 on blank pet name, got %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "POST", "/users/ash/pets", map[string]any{"name": "Togepi"})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
		}
	}
}

func TestHTTP_SessionRunAway(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	petID := createTrainer(t, ts.URL, "misty", "Staryu")

	st, body := doReq(t, ts.URL, "PATCH", "/users/misty/pets/"+petID, map[string]any{
		"friendship":  20,
		"lastChatted": time.Now().UTC().AddDate(0, 0, -5).Format(time.RFC3339),
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 patch, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "POST", "/users/misty/session", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 session, got %d body=%s", st, string(body))
	}
	for _, want := range []string{`"lost":true`, `"needsPet":true`, "Staryu has ran away."} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected %q in %s", want, string(body))
		}
	}

	st, body = doReq(t, ts.URL, "GET", "/users/misty/pets", nil)
	if st != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("run-away pet must be deleted, got %d body=%s", st, string(body))
	}
}

func TestHTTP_Chat(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{ChatRatePerSec: 0.001, ChatRateBurst: 2}))
	defer ts.Close()

	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "system", "content": "You are shy."},
			{"role": "user", "content": "Pokémon roleplay\nUser Input: hello there"},
		},
	}

	st, body := doReq(t, ts.URL, "POST", "/chat", payload)
	if st != http.StatusOK {
		t.Fatalf("expected 200 chat, got %d body=%s", st, string(body))
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	_ = json.Unmarshal(body, &resp)
	if len(resp.Choices) != 1 || !strings.Contains(resp.Choices[0].Message.Content, `"hello there"`) {
		t.Fatalf("unexpected chat reply %s", string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/chat", map[string]any{"messages": []any{}})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty messages, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/chat", payload)
	if st != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", st)
	}
}

func TestHTTP_OpsEndpoints(t *testing.T) {
	m := metrics.New(nil)
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Metrics:     m,
		MetricsUser: "prom",
		MetricsPass: "secret",
	}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/health", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health %d %s", st, string(body))
	}

	_, _ = doReq(t, ts.URL, "GET", "/users/nobody", nil)

	st, _ = doReq(t, ts.URL, "GET", "/metrics", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", st)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer res.Body.Close()
	out, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(out), `route="/users/{name}"`) {
		t.Fatalf("expected request metrics by route pattern, got:\n%s", string(out))
	}

	st, body = doReq(t, ts.URL, "GET", "/swagger/doc.json", nil)
	if st != http.StatusOK || !strings.Contains(string(body), "/users/{name}/session") {
		t.Fatalf("expected swagger document, got %d", st)
	}
}

type petBody struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Stage         int    `json:"stage"`
	Friendship    int    `json:"friendship"`
	TalkingStreak int    `json:"talking-streak"`
}

type trainerBody struct {
	ID   string    `json:"id"`
	Pets []petBody `json:"pets"`
}

func createTrainer(t *testing.T, baseURL, name, petName string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/users", map[string]any{"name": name, "petName": petName})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create trainer, got %d body=%s", st, string(body))
	}

	var resp trainerBody
	_ = json.Unmarshal(body, &resp)
	if resp.ID != name || len(resp.Pets) != 1 || resp.Pets[0].ID == "" {
		t.Fatalf("create trainer: unexpected body=%s", string(body))
	}
	if resp.Pets[0].Stage != 1 || resp.Pets[0].Friendship != 50 {
		t.Fatalf("create trainer: pet must start with defaults, body=%s", string(body))
	}
	return resp.Pets[0].ID
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	return res.StatusCode, b
}

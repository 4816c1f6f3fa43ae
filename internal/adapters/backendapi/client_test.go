package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/ports/persistence"
)

var (
	_ persistence.TrainerStore = (*Client)(nil)
	_ chat.Completer           = (*Client)(nil)
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeBackend responde con status/body fijos por "METHOD path" y registra los requests.
func fakeBackend(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*Client, *[]recorded) {
	t.Helper()
	var got []recorded
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, recorded{method: r.Method, path: r.URL.EscapedPath(), body: string(b)})

		h, ok := routes[r.Method+" "+r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		h(w)
	}))
	t.Cleanup(ts.Close)

	c, err := New(ts.URL, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, &got
}

func reply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", DefaultBaseURL},
		{"  ", DefaultBaseURL},
		{"localhost:3000", "http://localhost:3000"},
		{"https://pets.example/", "https://pets.example"},
		{" http://10.0.0.5:8080// ", "http://10.0.0.5:8080"},
	}
	for _, tc := range cases {
		if got := NormalizeBaseURL(tc.in); got != tc.want {
			t.Fatalf("NormalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetTrainer_WireAliases(t *testing.T) {
	c, _ := fakeBackend(t, map[string]func(http.ResponseWriter){
		"GET /users/ash%20ketchum": reply(http.StatusOK, `{
			"_id": "ash ketchum",
			"createdAt": "2026-05-01T10:00:00Z",
			"pets": [
				{"_id": "p1", "name": " Sparky ", "stage": 2, "friendship": 72.6, "talkingStreak": -3,
				 "lastChatted": "2026-05-19", "lastEvaluated": "garbage", "context": "Shy."},
				{"id": "p2", "name": "Togepi", "talking-streak": 4, "talkingStreak": 9}
			]
		}`),
	})

	got, err := c.GetTrainer(context.Background(), " ash ketchum ")
	if err != nil {
		t.Fatalf("get trainer: %v", err)
	}

	want := trainers.Trainer{
		ID:        "ash ketchum",
		CreatedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Pets: []trainers.Pet{
			{
				ID: "p1", Name: "Sparky", Stage: 2, Friendship: 73, TalkingStreak: 0,
				LastChatted: time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC), Context: "Shy.",
			},
			{
				ID: "p2", Name: "Togepi", Stage: trainers.DefaultStage,
				Friendship: trainers.DefaultFriendship, TalkingStreak: 4,
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("trainer mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTrainer_Errors(t *testing.T) {
	c, _ := fakeBackend(t, map[string]func(http.ResponseWriter){
		"GET /users/missing": reply(http.StatusNotFound, `{"message":"trainer not found"}`),
		"GET /users/broken":  reply(http.StatusInternalServerError, `{"message":"database is down"}`),
		"GET /users/noid":    reply(http.StatusOK, `{"pets":[]}`),
		"GET /users/badpets": reply(http.StatusOK, `{"id":"badpets","pets":{"name":"x"}}`),
		"GET /users/nan":     reply(http.StatusOK, `{"id":"nan","pets":[{"id":"p","stage":"two"}]}`),
		"GET /users/garbage": reply(http.StatusOK, `<html>`),
		"GET /users/petnoid": reply(http.StatusOK, `{"id":"petnoid","pets":[{"name":"Sparky"}]}`),
		"GET /users/huge":    reply(http.StatusOK, `{"id":"huge","pets":[{"id":"p","friendship":1e19}]}`),
		"GET /users/tiny":    reply(http.StatusOK, `{"id":"tiny","pets":[{"id":"p","talkingStreak":-1e19}]}`),
	})
	ctx := context.Background()

	if _, err := c.GetTrainer(ctx, "missing"); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err := c.GetTrainer(ctx, "broken")
	var te *trainers.TransportError
	if !errors.As(err, &te) || te.Status != http.StatusInternalServerError || te.Message != "database is down" {
		t.Fatalf("expected TransportError 500 with server message, got %#v", err)
	}

	for _, id := range []string{"noid", "badpets", "nan", "garbage", "petnoid", "huge", "tiny"} {
		_, err := c.GetTrainer(ctx, id)
		var me *trainers.MalformedError
		if !errors.As(err, &me) {
			t.Fatalf("%s: expected MalformedError, got %v", id, err)
		}
		if errors.Is(err, trainers.ErrNotFound) {
			t.Fatalf("%s: malformed payload must not look like not-found", id)
		}
	}
}

func TestParsePet_Bounds(t *testing.T) {
	num := func(v float64) *float64 { return &v }
	id := "p1"

	cases := []struct {
		name           string
		friendship     *float64
		streak         *float64
		wantFriendship int
		wantStreak     int
		wantErr        bool
	}{
		{name: "in range", friendship: num(72.4), streak: num(3), wantFriendship: 72, wantStreak: 3},
		{name: "friendship above max", friendship: num(150), wantFriendship: 100},
		{name: "friendship below min", friendship: num(-20), wantFriendship: 0},
		{name: "negative streak", streak: num(-4), wantFriendship: trainers.DefaultFriendship},
		{name: "int32 edge", streak: num(math.MaxInt32), wantFriendship: trainers.DefaultFriendship, wantStreak: math.MaxInt32},
		{name: "huge friendship", friendship: num(1e19), wantErr: true},
		{name: "huge negative friendship", friendship: num(-1e19), wantErr: true},
		{name: "huge streak", streak: num(1e19), wantErr: true},
		{name: "infinite streak", streak: num(math.Inf(1)), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := parsePet(petWire{ID: &id, Friendship: tc.friendship, TalkingStreak: tc.streak})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if p.Friendship != tc.wantFriendship || p.TalkingStreak != tc.wantStreak {
				t.Fatalf("got friendship=%d streak=%d, want %d/%d", p.Friendship, p.TalkingStreak, tc.wantFriendship, tc.wantStreak)
			}
		})
	}
}

func TestGetTrainer_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := New(url, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = c.GetTrainer(context.Background(), "ash")
	var te *trainers.TransportError
	if !errors.As(err, &te) || te.Status != 0 {
		t.Fatalf("expected network TransportError, got %#v", err)
	}
	if errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("network failure must not look like not-found")
	}
}

func TestCreateTrainer(t *testing.T) {
	c, got := fakeBackend(t, map[string]func(http.ResponseWriter){
		"POST /users": reply(http.StatusCreated, `{"id":"ash","pets":[{"id":"p1","name":"Sparky","stage":1,"friendship":50}]}`),
	})

	tr, err := c.CreateTrainer(context.Background(), " ash ", " Sparky ")
	if err != nil {
		t.Fatalf("create trainer: %v", err)
	}
	if tr.ID != "ash" || len(tr.Pets) != 1 || tr.Pets[0].Name != "Sparky" {
		t.Fatalf("unexpected trainer %+v", tr)
	}

	var body map[string]string
	_ = json.Unmarshal([]byte((*got)[0].body), &body)
	if diff := cmp.Diff(map[string]string{"name": "ash", "petName": "Sparky"}, body); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateTrainer_ConflictReturnsExisting(t *testing.T) {
	c, _ := fakeBackend(t, map[string]func(http.ResponseWriter){
		"POST /users": reply(http.StatusConflict, `{"id":"ash","pets":[{"id":"p1","name":"Sparky"}]}`),
	})

	tr, err := c.CreateTrainer(context.Background(), "ash", "Other")
	if !errors.Is(err, trainers.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if tr.ID != "ash" || tr.Pets[0].Name != "Sparky" {
		t.Fatalf("conflict must carry the existing trainer, got %+v", tr)
	}
}

func TestCreatePet(t *testing.T) {
	c, got := fakeBackend(t, map[string]func(http.ResponseWriter){
		"POST /users/ash/pets": reply(http.StatusBadRequest, `{"message":"name is required"}`),
	})
	ctx := context.Background()

	if _, err := c.CreatePet(ctx, "ash", "   "); !errors.Is(err, trainers.ErrInvalidInput) {
		t.Fatalf("blank name must fail locally, got %v", err)
	}
	if len(*got) != 0 {
		t.Fatalf("blank name must not reach the server")
	}

	_, err := c.CreatePet(ctx, "ash", "Togepi")
	if !errors.Is(err, trainers.ErrInvalidInput) || !strings.HasSuffix(err.Error(), "name is required") {
		t.Fatalf("expected ErrInvalidInput with server message, got %v", err)
	}
}

func TestUpsertPetFields(t *testing.T) {
	c, got := fakeBackend(t, map[string]func(http.ResponseWriter){
		"PATCH /users/ash/pets/p1": reply(http.StatusOK, `{"id":"ash","pets":[{"id":"p1","name":"Sparky","stage":2,"friendship":60,"talking-streak":0}]}`),
	})

	evaluated := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)
	tr, err := c.UpsertPetFields(context.Background(), "ash", "p1", trainers.Pet{
		Name:          "Sparky",
		Stage:         2,
		Friendship:    60,
		LastChatted:   time.Date(2026, 5, 19, 22, 0, 0, 0, time.UTC),
		LastEvaluated: &evaluated,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if tr.Pets[0].Stage != 2 {
		t.Fatalf("unexpected trainer %+v", tr)
	}

	var body map[string]any
	_ = json.Unmarshal([]byte((*got)[0].body), &body)
	want := map[string]any{
		"name":           "Sparky",
		"stage":          float64(2),
		"friendship":     float64(60),
		"talking-streak": float64(0),
		"lastChatted":    "2026-05-19T22:00:00Z",
		"lastEvaluated":  "2026-05-20T09:00:00Z",
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("patch body mismatch (-want +got):\n%s", diff)
	}
}

func TestDeletePet(t *testing.T) {
	c, _ := fakeBackend(t, map[string]func(http.ResponseWriter){
		"DELETE /users/ash/pets/p1":   reply(http.StatusNoContent, ""),
		"DELETE /users/ash/pets/gone": reply(http.StatusNotFound, `{"message":"pet not found"}`),
	})
	ctx := context.Background()

	if err := c.DeletePet(ctx, "ash", "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeletePet(ctx, "ash", "gone"); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	c, got := fakeBackend(t, map[string]func(http.ResponseWriter){
		"POST /chat": reply(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":" Pika! "}}]}`),
	})

	text, err := c.Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
	if err != nil || text != "Pika!" {
		t.Fatalf("expected reply, got %q err=%v", text, err)
	}
	if !strings.Contains((*got)[0].body, `"messages":[{"role":"user","content":"hi"}]`) {
		t.Fatalf("unexpected chat request %s", (*got)[0].body)
	}
}

func TestComplete_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"message":"slow down"}`,
			check: func(t *testing.T, err error) {
				var ue *chat.UpstreamError
				if !errors.As(err, &ue) || ue.Status != http.StatusTooManyRequests {
					t.Fatalf("expected UpstreamError 429, got %v", err)
				}
				if chat.UserMessage(err) != "The pet is tired of talking. Please wait a moment." {
					t.Fatalf("unexpected user message %q", chat.UserMessage(err))
				}
			},
		},
		{
			name:   "empty reply",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, chat.ErrNoReply) {
					t.Fatalf("expected ErrNoReply, got %v", err)
				}
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `Pika`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, chat.ErrNoReply) {
					t.Fatalf("expected ErrNoReply, got %v", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := fakeBackend(t, map[string]func(http.ResponseWriter){
				"POST /chat": reply(tc.status, tc.body),
			})
			_, err := c.Complete(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "hi"}})
			tc.check(t, err)
		})
	}
}

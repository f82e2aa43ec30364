package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"checkin-backend/checkin"
	"checkin-backend/hub"
	"checkin-backend/models"
	"checkin-backend/session"
	"checkin-backend/stats"
	"checkin-backend/store"
)

type fakeGuestStore struct {
	mu     sync.Mutex
	guests map[uuid.UUID]*models.Guest
	byCode map[string]uuid.UUID
}

func newFakeGuestStore() *fakeGuestStore {
	return &fakeGuestStore{
		guests: make(map[uuid.UUID]*models.Guest),
		byCode: make(map[string]uuid.UUID),
	}
}

func (f *fakeGuestStore) add(g models.Guest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := g
	f.guests[g.ID] = &copied
	f.byCode[g.Code] = g.ID
}

func (f *fakeGuestStore) GuestByCode(ctx context.Context, code string) (models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byCode[code]
	if !ok {
		return models.Guest{}, store.ErrNotFound
	}
	return *f.guests[id], nil
}

func (f *fakeGuestStore) GuestByID(ctx context.Context, id uuid.UUID) (models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guests[id]
	if !ok {
		return models.Guest{}, store.ErrNotFound
	}
	return *g, nil
}

func (f *fakeGuestStore) MarkArrived(ctx context.Context, id uuid.UUID, at time.Time, by string, method string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.guests[id]
	if !ok || g.Arrived {
		return false, nil
	}
	g.Arrived = true
	g.ArrivedAt = &at
	g.ArrivedBy = &by
	g.ArrivalMethod = &method
	return true, nil
}

func (f *fakeGuestStore) EventCounts(ctx context.Context, eventID uuid.UUID) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total, arrived int
	for _, g := range f.guests {
		if g.EventID != eventID {
			continue
		}
		total++
		if g.Arrived {
			arrived++
		}
	}
	return total, arrived, nil
}

func (f *fakeGuestStore) ArrivalsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Guest
	for _, g := range f.guests {
		if g.EventID == eventID && g.Arrived {
			out = append(out, *g)
		}
	}
	return out, nil
}

type fakeEventStore struct {
	events map[string]models.Event
}

func (f *fakeEventStore) EventByCode(ctx context.Context, code string) (models.Event, error) {
	e, ok := f.events[code]
	if !ok {
		return models.Event{}, store.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventStore) EventByID(ctx context.Context, id uuid.UUID) (models.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Event{}, store.ErrNotFound
}

// testEnv wires the real core over in-memory stores behind the same route
// table main registers.
type testEnv struct {
	router *gin.Engine
	guests *fakeGuestStore
	hub    *hub.Hub
	event  models.Event
	guest  models.Guest
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("4217"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test PIN: %v", err)
	}
	event := models.Event{
		ID:        uuid.New(),
		Name:      "Ana & Luca",
		EventCode: "ANALUCA26",
		PINHash:   string(hash),
	}
	guest := models.Guest{
		ID:          uuid.New(),
		EventID:     event.ID,
		DisplayName: "Mara Ionescu",
		Code:        "QR-abc123",
	}

	guests := newFakeGuestStore()
	guests.add(guest)
	events := &fakeEventStore{events: map[string]models.Event{event.EventCode: event}}

	sessions := session.NewManager(events, "test-secret", time.Hour)
	aggregator := stats.NewAggregator(guests)
	broadcastHub := hub.New(4)
	coordinator := checkin.NewCoordinator(guests, sessions, aggregator, broadcastHub)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/staff/login", NewStaffHandler(sessions).Login)
	api.POST("/staff/logout", NewStaffHandler(sessions).Logout)
	api.POST("/checkin", NewCheckinHandler(coordinator).CheckIn)
	statsHandler := NewStatsHandler(aggregator, guests)
	authed := api.Group("/", RequireSession(sessions))
	authed.GET("/events/:id/stats", statsHandler.GetStats)
	authed.GET("/events/:id/arrivals", statsHandler.GetArrivals)
	api.GET("/events/:id/live", NewDashboardHandler(broadcastHub, sessions, nil).Live)

	return &testEnv{
		router: router,
		guests: guests,
		hub:    broadcastHub,
		event:  event,
		guest:  guest,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/v1/staff/login", "", gin.H{
		"event_code": e.event.EventCode,
		"pin":        "4217",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

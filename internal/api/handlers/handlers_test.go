package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ghi-core/backend/internal/auth"
	"github.com/ghi-core/backend/internal/storage/memory"
	"github.com/ghi-core/backend/internal/storage/models"
	"github.com/ghi-core/backend/internal/workflow"
)

func newTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	checker := auth.RoleChecker{}

	signalHandler := NewSignalHandler(store, workflow.NewTriageGate(store, checker))
	socialHandler := NewSocialHandler(store, workflow.NewPromotionBridge(store, checker))

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Get("/signals", signalHandler.ListSignals)
	api.Get("/signals/:id", signalHandler.GetSignal)
	api.Post("/signals/:id/accept", signalHandler.Accept)
	api.Post("/signals/:id/reject", signalHandler.Reject)
	api.Post("/social-signals/:id/promote", socialHandler.Promote)
	return app, store
}

func asAnalyst(req *http.Request) *http.Request {
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-User-Role", auth.RoleAnalyst)
	return req
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAcceptSignalEndpoint(t *testing.T) {
	app, store := newTestApp(t)
	seed := &models.Signal{
		ID:            "sig-1",
		TriageStatus:  models.TriagePending,
		CurrentStatus: models.StatusNew,
		DateReported:  time.Now(),
	}
	if err := store.InsertSignal(context.Background(), seed); err != nil {
		t.Fatal(err)
	}

	req := asAnalyst(jsonRequest(http.MethodPost, "/api/v1/signals/sig-1/accept", fiber.Map{"notes": "credible"}))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var body struct {
		Assessment models.Assessment `json:"assessment"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Assessment.SignalID != "sig-1" {
		t.Errorf("assessment not linked: %q", body.Assessment.SignalID)
	}

	// Second accept hits the one-shot gate.
	resp, err = app.Test(asAnalyst(jsonRequest(http.MethodPost, "/api/v1/signals/sig-1/accept", fiber.Map{})))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 on re-triage, got %d", resp.StatusCode)
	}
}

func TestAcceptWithoutRole(t *testing.T) {
	app, store := newTestApp(t)
	if err := store.InsertSignal(context.Background(), &models.Signal{
		ID: "sig-1", TriageStatus: models.TriagePending,
	}); err != nil {
		t.Fatal(err)
	}

	// No identity headers: the caller defaults to Viewer and is refused.
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/signals/sig-1/accept", fiber.Map{}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGetSignalNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/signals/missing", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	app, store := newTestApp(t)
	if err := store.InsertSignal(context.Background(), &models.Signal{
		ID: "sig-1", TriageStatus: models.TriagePending,
	}); err != nil {
		t.Fatal(err)
	}

	resp, err := app.Test(asAnalyst(jsonRequest(http.MethodPost, "/api/v1/signals/sig-1/reject", fiber.Map{})))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without a reason, got %d", resp.StatusCode)
	}
}

func TestPromoteConflict(t *testing.T) {
	app, store := newTestApp(t)
	promoted := time.Now()
	if _, err := store.InsertSocialSignalIfNew(context.Background(), &models.SocialSignal{
		ID:                 "soc-1",
		PostID:             "p1",
		VerificationStatus: models.VerificationPromoted,
		RelatedSignalID:    "sig-existing",
		PromotedAt:         &promoted,
	}); err != nil {
		t.Fatal(err)
	}

	req := asAnalyst(jsonRequest(http.MethodPost, "/api/v1/social-signals/soc-1/promote",
		fiber.Map{"disease": "Cholera", "country": "Yemen"}))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for repeat promotion, got %d", resp.StatusCode)
	}
}

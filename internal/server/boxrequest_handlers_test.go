package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Yahya-Naji/iron-knowledge/internal/config"
	"github.com/Yahya-Naji/iron-knowledge/internal/mailer"
	"github.com/Yahya-Naji/iron-knowledge/internal/models"
	"github.com/Yahya-Naji/iron-knowledge/internal/repository"
	"github.com/Yahya-Naji/iron-knowledge/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Customer{}, &models.BoxRequest{}, &models.StaffUser{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func newTestServer(t *testing.T, db *gorm.DB) *Server {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:     "test_secret",
		CancelBaseURL: "http://localhost:8002",
	}
	return &Server{
		config:       cfg,
		db:           db,
		customerRepo: repository.NewCustomerRepository(db),
		requestRepo:  repository.NewBoxRequestRepository(db),
		boxService:   service.NewBoxRequestService(db),
		mailer:       mailer.New(cfg),
	}
}

func seedCustomer(t *testing.T, db *gorm.DB, accountNumber string) {
	t.Helper()
	customer := models.Customer{
		AccountNumber: accountNumber,
		CustomerName:  "Sarah Johnson",
		CompanyName:   "Legal Associates",
		Address:       "Al Maryah Island, Abu Dhabi, UAE",
		BoxesRetained: 8,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
}

func TestRequestBoxesFlow(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	seedCustomer(t, db, "IM-10002")
	s := newTestServer(t, db)

	app := fiber.New()
	app.Post("/api/request-boxes", s.RequestBoxes)

	body := []byte(`{"account_number":"IM-10002","quantity":3,"delivery_address":"Al Maryah Island"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/request-boxes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var payload struct {
		Status string `json:"status"`
		Data   struct {
			Request   models.BoxRequest `json:"request"`
			Inventory models.Inventory  `json:"inventory"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Request.Status != models.BoxRequestStatusPending {
		t.Fatalf("expected pending request, got %s", payload.Data.Request.Status)
	}
	if payload.Data.Inventory.BoxesRequested != 3 {
		t.Fatalf("expected boxes_requested=3, got %d", payload.Data.Inventory.BoxesRequested)
	}

	// The token must never leak through the JSON surface; only the email
	// carries it.
	var stored models.BoxRequest
	if err := db.First(&stored).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if strings.Contains(string(raw), "cancellation_token") ||
		strings.Contains(string(raw), stored.CancellationToken) {
		t.Fatalf("cancellation token leaked in response: %s", raw)
	}
}

func TestRequestBoxesUnknownAccount(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newTestServer(t, db)

	app := fiber.New()
	app.Post("/api/request-boxes", s.RequestBoxes)

	body := []byte(`{"account_number":"IM-40404","quantity":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/request-boxes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestRequestBoxesInvalidQuantity(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	seedCustomer(t, db, "IM-10002")
	s := newTestServer(t, db)

	app := fiber.New()
	app.Post("/api/request-boxes", s.RequestBoxes)

	body := []byte(`{"account_number":"IM-10002","quantity":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/request-boxes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCancelFlowEndToEnd(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	seedCustomer(t, db, "IM-10002")
	s := newTestServer(t, db)

	issued, err := s.boxService.Issue(context.Background(), service.IssueInput{AccountNumber: "IM-10002", Quantity: 4})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	token := issued.CancellationToken

	app := fiber.New()
	app.Get("/cancel/:token", s.CancelRequestForm)
	app.Post("/cancel/:token/confirm", s.ConfirmCancellation)
	app.Get("/cancel/:token/keep", s.KeepRequest)

	// Confirmation page shows the request details.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/cancel/"+token, nil))
	if err != nil {
		t.Fatalf("form request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for form, got %d", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Sarah Johnson") {
		t.Fatalf("form page missing customer name")
	}
	if !strings.Contains(string(page), "/cancel/"+token+"/confirm") {
		t.Fatalf("form page missing confirm action")
	}

	// Keep is a no-op.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/cancel/"+token+"/keep", nil))
	if err != nil {
		t.Fatalf("keep request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for keep, got %d", resp.StatusCode)
	}
	var customer models.Customer
	if err := db.Where("account_number = ?", "IM-10002").First(&customer).Error; err != nil {
		t.Fatalf("load customer: %v", err)
	}
	if customer.BoxesRequested != 4 {
		t.Fatalf("keep must not change counter, got %d", customer.BoxesRequested)
	}

	// Confirm actually cancels.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/cancel/"+token+"/confirm", nil))
	if err != nil {
		t.Fatalf("confirm request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for confirm, got %d", resp.StatusCode)
	}
	if err := db.Where("account_number = ?", "IM-10002").First(&customer).Error; err != nil {
		t.Fatalf("reload customer: %v", err)
	}
	if customer.BoxesRequested != 0 {
		t.Fatalf("expected counter back to 0, got %d", customer.BoxesRequested)
	}

	// Replays of both pages get the generic error.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/cancel/"+token, nil))
	if err != nil {
		t.Fatalf("replay form request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for redeemed token form, got %d", resp.StatusCode)
	}
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/cancel/"+token+"/confirm", nil))
	if err != nil {
		t.Fatalf("replay confirm request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for redeemed token confirm, got %d", resp.StatusCode)
	}
}

func TestCancelUnknownTokenShowsErrorPage(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := newTestServer(t, db)

	app := fiber.New()
	app.Get("/cancel/:token", s.CancelRequestForm)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/cancel/bogus-token", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "not valid") {
		t.Fatalf("expected generic error page, got: %s", page)
	}
}

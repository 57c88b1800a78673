package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/auth"
	"github.com/openshelf/openshelf/adapters/clock"
	"github.com/openshelf/openshelf/adapters/email"
	"github.com/openshelf/openshelf/adapters/hasher"
	"github.com/openshelf/openshelf/adapters/idgen"
	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/adapters/sqlite"
	"github.com/openshelf/openshelf/adapters/storage"
	"github.com/openshelf/openshelf/app"
	"github.com/openshelf/openshelf/domain/identity"
)

// testServer wires the full stack over a temp SQLite database so
// requests exercise routing, validation, auth and storage end to end.
type testServer struct {
	srv    *httptest.Server
	tokens *auth.TokenService
	users  *sqlite.UserStore
	email  *email.MockSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	users := sqlite.NewUserStore(db)
	resets := sqlite.NewResetTokenStore(db)
	books := sqlite.NewBookStore(db)
	categories := sqlite.NewCategoryStore(db)
	purchases := sqlite.NewPurchaseStore(db)
	library := sqlite.NewLibraryStore(db)
	reviews := sqlite.NewReviewStore(db)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	sender := email.NewMockSender("OpenShelf")
	files := storage.NewMemory()
	clk := clock.NewFake(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	ids := idgen.NewSequential("id-")
	collector := metrics.NewWithRegistry(prometheus.NewRegistry())
	logger := zerolog.Nop()

	h := NewHandler(Deps{
		Auth:       app.NewAuthService(users, resets, hasher.Fake{}, tokens, sender, ids, clk, logger),
		Books:      app.NewBookService(books, categories, files, ids, clk, collector, logger),
		Categories: app.NewCategoryService(categories, ids, clk, logger),
		Purchases:  app.NewPurchaseService(purchases, books, library, users, sender, ids, clk, collector, logger),
		Library:    app.NewLibraryService(library, books, purchases, clk, logger),
		Reviews:    app.NewReviewService(reviews, library, books, ids, clk, collector, logger),
		Admin:      app.NewAdminService(users, books, categories, purchases, logger),
		User:       app.NewUserService(library, purchases, reviews, logger),
		Tokens:     tokens,
		Metrics:    collector,
		Logger:     logger,
	})

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, tokens: tokens, users: users, email: sender}
}

// seedAdmin creates a super admin directly in the store and returns a
// token for it.
func (ts *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	admin := identity.User{
		ID:           "admin-1",
		Email:        "admin@example.com",
		FullName:     "Store Admin",
		PasswordHash: "adminpass",
		Role:         identity.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := ts.users.Create(context.Background(), admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, err := ts.tokens.Issue(identity.Identity{
		UserID: admin.ID, Email: admin.Email, FullName: admin.FullName, Role: admin.Role,
	})
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	return token
}

type response struct {
	Status  int
	Success bool
	Data    json.RawMessage
	Message string
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	res, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope from %s %s: %v", method, path, err)
	}
	return response{Status: res.StatusCode, Success: env.Success, Data: env.Data, Message: env.Message}
}

func (ts *testServer) register(t *testing.T, emailAddr string) string {
	t.Helper()
	res := ts.do(t, "POST", "/api/v1/auth/register", "", map[string]any{
		"email":     emailAddr,
		"password":  "Secret123!",
		"full_name": "Ada Lovelace",
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("register: status %d message %q", res.Status, res.Message)
	}
	var out struct {
		Token string `json:"token"`
	}
	json.Unmarshal(res.Data, &out)
	return out.Token
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, "POST", "/api/v1/auth/register", "", map[string]any{
		"email":     "ada@example.com",
		"password":  "Secret123!",
		"full_name": "Ada Lovelace",
	})
	if res.Status != http.StatusCreated || !res.Success {
		t.Fatalf("register: %+v", res)
	}

	res = ts.do(t, "POST", "/api/v1/auth/login", "", map[string]any{
		"email":    "ada@example.com",
		"password": "Secret123!",
	})
	if res.Status != http.StatusOK {
		t.Fatalf("login: %+v", res)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	json.Unmarshal(res.Data, &out)
	if out.Token == "" || out.User.Email != "ada@example.com" {
		t.Fatalf("login payload: %s", res.Data)
	}

	res = ts.do(t, "GET", "/api/v1/auth/me", out.Token, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("me: %+v", res)
	}
}

func TestValidationMessages(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{
			name:    "bad email",
			body:    map[string]any{"email": "not-an-email", "password": "Secret123!", "full_name": "Ada"},
			wantMsg: "Enter a valid email",
		},
		{
			name:    "weak password",
			body:    map[string]any{"email": "ada@example.com", "password": "weak", "full_name": "Ada"},
			wantMsg: "Provide a strong password",
		},
		{
			name:    "missing field",
			body:    map[string]any{"email": "ada@example.com", "password": "Secret123!"},
			wantMsg: "full_name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.do(t, "POST", "/api/v1/auth/register", "", tt.body)
			if res.Status != http.StatusBadRequest {
				t.Fatalf("status = %d", res.Status)
			}
			if res.Success {
				t.Error("success should be false")
			}
			if res.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMsg)
			}
		})
	}
}

func TestInvalidJSONBody(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest("POST", ts.srv.URL+"/api/v1/auth/login", bytes.NewReader([]byte("{not json")))
	res, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var env struct {
		Message string `json:"message"`
	}
	json.NewDecoder(res.Body).Decode(&env)
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", res.StatusCode)
	}
	if env.Message != "Provide a valid JSON body" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestAuthGate(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.register(t, "reader@example.com")

	res := ts.do(t, "GET", "/api/v1/auth/me", "", nil)
	if res.Status != http.StatusUnauthorized || res.Message != "Access denied. No token provided" {
		t.Errorf("no token: %+v", res)
	}

	res = ts.do(t, "GET", "/api/v1/auth/me", "garbage", nil)
	if res.Status != http.StatusUnauthorized || res.Message != "Invalid token" {
		t.Errorf("bad token: %+v", res)
	}

	// Regular user hitting an admin route.
	res = ts.do(t, "GET", "/api/v1/admin/stats", userToken, nil)
	if res.Status != http.StatusForbidden || res.Message != "You do not have permission to access this route" {
		t.Errorf("forbidden: %+v", res)
	}
}

func TestTokenSources(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "reader@example.com")

	attach := []struct {
		name string
		mod  func(*http.Request)
	}{
		{"x-auth-token header", func(r *http.Request) { r.Header.Set("x-auth-token", token) }},
		{"accessToken query", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("accessToken", token)
			r.URL.RawQuery = q.Encode()
		}},
		{"accessToken cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: token}) }},
		{"authorization bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }},
	}

	for _, tt := range attach {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", ts.srv.URL+"/api/v1/auth/me", nil)
			tt.mod(req)
			res, err := ts.srv.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			res.Body.Close()
			if res.StatusCode != http.StatusOK {
				t.Errorf("status = %d", res.StatusCode)
			}
		})
	}
}

func TestBookLifecycle(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)

	res := ts.do(t, "POST", "/api/v1/categories", adminToken, map[string]any{
		"name": "Programming",
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("create category: %+v", res)
	}
	var cat struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &cat)

	res = ts.do(t, "POST", "/api/v1/books", adminToken, map[string]any{
		"title":        "The Go Programming Language",
		"author":       "Alan Donovan",
		"price":        29.99,
		"category_ids": []string{cat.ID},
		"is_active":    true,
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("create book: %+v", res)
	}
	var book struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &book)

	// Public listing sees the book.
	res = ts.do(t, "GET", "/api/v1/books?search=go", "", nil)
	if res.Status != http.StatusOK {
		t.Fatalf("list: %+v", res)
	}
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	json.Unmarshal(res.Data, &page)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != book.ID {
		t.Fatalf("page = %s", res.Data)
	}

	res = ts.do(t, "GET", "/api/v1/books/"+book.ID, "", nil)
	if res.Status != http.StatusOK {
		t.Fatalf("get: %+v", res)
	}

	res = ts.do(t, "DELETE", "/api/v1/books/"+book.ID, adminToken, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("delete: %+v", res)
	}
	res = ts.do(t, "GET", "/api/v1/books/"+book.ID, "", nil)
	if res.Status != http.StatusNotFound || res.Message != "Book not found" {
		t.Fatalf("get after delete: %+v", res)
	}
}

func TestPurchaseAndReviewFlow(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")

	res := ts.do(t, "POST", "/api/v1/books", adminToken, map[string]any{
		"title":     "SICP",
		"author":    "Abelson and Sussman",
		"price":     39.99,
		"is_active": true,
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("create book: %+v", res)
	}
	var book struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &book)

	// Reviewing before owning is rejected.
	res = ts.do(t, "POST", fmt.Sprintf("/api/v1/books/%s/reviews", book.ID), userToken, map[string]any{
		"rating": 5,
	})
	if res.Status != http.StatusForbidden {
		t.Fatalf("review before owning: %+v", res)
	}

	res = ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": book.ID})
	if res.Status != http.StatusCreated {
		t.Fatalf("create order: %+v", res)
	}
	var purchase struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	json.Unmarshal(res.Data, &purchase)
	if purchase.Status != "PENDING" {
		t.Errorf("status = %s", purchase.Status)
	}

	res = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", purchase.ID), adminToken, map[string]any{
		"status": "COMPLETED",
	})
	if res.Status != http.StatusOK {
		t.Fatalf("complete order: %+v", res)
	}

	// Completion grants the book.
	res = ts.do(t, "GET", "/api/v1/library", userToken, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("library: %+v", res)
	}
	var owned []struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &owned)
	if len(owned) != 1 || owned[0].ID != book.ID {
		t.Fatalf("library = %s", res.Data)
	}

	res = ts.do(t, "POST", fmt.Sprintf("/api/v1/books/%s/reviews", book.ID), userToken, map[string]any{
		"rating":  5,
		"comment": "A classic.",
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("review: %+v", res)
	}

	// Rating aggregates land on the book.
	res = ts.do(t, "GET", "/api/v1/books/"+book.ID, "", nil)
	var rated struct {
		AverageRating float64 `json:"average_rating"`
		ReviewCount   int64   `json:"review_count"`
	}
	json.Unmarshal(res.Data, &rated)
	if rated.AverageRating != 5 || rated.ReviewCount != 1 {
		t.Errorf("aggregates = %+v", rated)
	}

	res = ts.do(t, "GET", "/api/v1/admin/stats", adminToken, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("stats: %+v", res)
	}
	var stats struct {
		Orders  int64   `json:"orders"`
		Revenue float64 `json:"revenue"`
	}
	json.Unmarshal(res.Data, &stats)
	if stats.Orders != 1 || stats.Revenue != 39.99 {
		t.Errorf("stats = %s", res.Data)
	}
}

func TestOrderStatusValidation(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")

	res := ts.do(t, "POST", "/api/v1/books", adminToken, map[string]any{
		"title": "Book", "author": "Author", "price": 10.0, "is_active": true,
	})
	var book struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &book)

	res = ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": book.ID})
	var purchase struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &purchase)

	res = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", purchase.ID), adminToken, map[string]any{
		"status": "SHIPPED",
	})
	if res.Status != http.StatusBadRequest || res.Message != "Provide a valid order status" {
		t.Fatalf("invalid status: %+v", res)
	}
}

// createBook is a helper for tests that need a catalog entry.
func (ts *testServer) createBook(t *testing.T, adminToken, title string, price float64) string {
	t.Helper()
	res := ts.do(t, "POST", "/api/v1/books", adminToken, map[string]any{
		"title": title, "author": "Author", "price": price, "is_active": true,
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("create book %q: %+v", title, res)
	}
	var book struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &book)
	return book.ID
}

func TestFreeOrderCompletesImmediately(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")
	bookID := ts.createBook(t, adminToken, "Public Domain Classic", 0)

	res := ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": bookID})
	if res.Status != http.StatusCreated {
		t.Fatalf("order: %+v", res)
	}
	var purchase struct {
		Status string  `json:"status"`
		Amount float64 `json:"amount"`
	}
	json.Unmarshal(res.Data, &purchase)
	if purchase.Status != "COMPLETED" || purchase.Amount != 0 {
		t.Fatalf("purchase = %+v", purchase)
	}

	res = ts.do(t, "GET", "/api/v1/library", userToken, nil)
	var owned []struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &owned)
	if len(owned) != 1 || owned[0].ID != bookID {
		t.Fatalf("library = %s", res.Data)
	}
}

func TestLibraryEndpoints(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")
	freeID := ts.createBook(t, adminToken, "Free Book", 0)
	paidID := ts.createBook(t, adminToken, "Paid Book", 12.50)

	res := ts.do(t, "POST", "/api/v1/library", userToken, map[string]any{"book_id": freeID})
	if res.Status != http.StatusCreated || res.Message != "Book added to your library" {
		t.Fatalf("add free: %+v", res)
	}

	res = ts.do(t, "POST", "/api/v1/library", userToken, map[string]any{"book_id": freeID})
	if res.Status != http.StatusBadRequest || res.Message != "This book is already in your library" {
		t.Fatalf("add duplicate: %+v", res)
	}

	res = ts.do(t, "POST", "/api/v1/library", userToken, map[string]any{"book_id": paidID})
	if res.Status != http.StatusBadRequest || res.Message != "You need to purchase this book first" {
		t.Fatalf("add unpurchased: %+v", res)
	}

	res = ts.do(t, "DELETE", "/api/v1/library/"+freeID, userToken, nil)
	if res.Status != http.StatusOK || res.Message != "Book removed from your library" {
		t.Fatalf("remove: %+v", res)
	}

	res = ts.do(t, "DELETE", "/api/v1/library/"+freeID, userToken, nil)
	if res.Status != http.StatusNotFound || res.Message != "This book is not in your library" {
		t.Fatalf("remove again: %+v", res)
	}
}

func TestCategoryBooks(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)

	res := ts.do(t, "POST", "/api/v1/categories", adminToken, map[string]any{"name": "Fiction"})
	var cat struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &cat)

	res = ts.do(t, "POST", "/api/v1/books", adminToken, map[string]any{
		"title": "In Category", "author": "Author", "price": 5.0,
		"category_ids": []string{cat.ID}, "is_active": true,
	})
	if res.Status != http.StatusCreated {
		t.Fatalf("create book: %+v", res)
	}
	ts.createBook(t, adminToken, "Out of Category", 5.0)

	res = ts.do(t, "GET", "/api/v1/categories/"+cat.ID+"/books", "", nil)
	if res.Status != http.StatusOK {
		t.Fatalf("category books: %+v", res)
	}
	var page struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	json.Unmarshal(res.Data, &page)
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Title != "In Category" {
		t.Fatalf("page = %s", res.Data)
	}

	res = ts.do(t, "GET", "/api/v1/categories/missing/books", "", nil)
	if res.Status != http.StatusNotFound || res.Message != "Category not found" {
		t.Fatalf("unknown category: %+v", res)
	}
}

func TestUserStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")
	bookID := ts.createBook(t, adminToken, "Paid Book", 19.99)

	res := ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": bookID})
	var purchase struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &purchase)
	res = ts.do(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", purchase.ID), adminToken, map[string]any{
		"status": "COMPLETED",
	})
	if res.Status != http.StatusOK {
		t.Fatalf("complete: %+v", res)
	}

	res = ts.do(t, "GET", "/api/v1/user/stats", userToken, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("stats: %+v", res)
	}
	var stats struct {
		LibraryCount   int64   `json:"library_count"`
		PurchasesCount int64   `json:"purchases_count"`
		ReviewsCount   int64   `json:"reviews_count"`
		TotalSpent     float64 `json:"total_spent"`
	}
	json.Unmarshal(res.Data, &stats)
	if stats.LibraryCount != 1 || stats.PurchasesCount != 1 || stats.ReviewsCount != 0 || stats.TotalSpent != 19.99 {
		t.Fatalf("stats = %s", res.Data)
	}
}

func TestFinanceEndpoints(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")
	bookID := ts.createBook(t, adminToken, "Paid Book", 10.0)

	res := ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": bookID})
	var purchase struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &purchase)
	ts.do(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", purchase.ID), adminToken, map[string]any{
		"status": "COMPLETED",
	})

	res = ts.do(t, "GET", "/api/v1/admin/finance/overview", adminToken, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("overview: %+v", res)
	}
	var overview struct {
		Revenue         float64 `json:"revenue"`
		Orders          int64   `json:"orders"`
		OrdersCompleted int64   `json:"orders_completed"`
	}
	json.Unmarshal(res.Data, &overview)
	if overview.Revenue != 10.0 || overview.Orders != 1 || overview.OrdersCompleted != 1 {
		t.Fatalf("overview = %s", res.Data)
	}

	// The fake clock pins everything to 2024-06-01.
	res = ts.do(t, "GET", "/api/v1/admin/finance/trends?start_date=2024-06-01&end_date=2024-06-02", adminToken, nil)
	if res.Status != http.StatusOK {
		t.Fatalf("trends: %+v", res)
	}
	var points []struct {
		Day     string  `json:"day"`
		Orders  int64   `json:"orders"`
		Revenue float64 `json:"revenue"`
	}
	json.Unmarshal(res.Data, &points)
	if len(points) != 1 || points[0].Day != "2024-06-01" || points[0].Orders != 1 || points[0].Revenue != 10.0 {
		t.Fatalf("points = %s", res.Data)
	}

	res = ts.do(t, "GET", "/api/v1/admin/finance/trends?end_date=2024-06-02", adminToken, nil)
	if res.Status != http.StatusBadRequest || res.Message != "start_date is required" {
		t.Fatalf("missing start: %+v", res)
	}

	res = ts.do(t, "GET", "/api/v1/admin/finance/trends?start_date=2024-06-02&end_date=2024-06-01", adminToken, nil)
	if res.Status != http.StatusBadRequest || res.Message != "End date must not be before start date" {
		t.Fatalf("inverted range: %+v", res)
	}
}

func TestAdminOrdersStatusFilter(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)
	userToken := ts.register(t, "reader@example.com")
	firstID := ts.createBook(t, adminToken, "First", 5.0)
	secondID := ts.createBook(t, adminToken, "Second", 6.0)

	res := ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": firstID})
	var purchase struct {
		ID string `json:"id"`
	}
	json.Unmarshal(res.Data, &purchase)
	ts.do(t, "PATCH", fmt.Sprintf("/api/v1/orders/%s/status", purchase.ID), adminToken, map[string]any{
		"status": "CANCELLED",
	})
	ts.do(t, "POST", "/api/v1/orders", userToken, map[string]any{"book_id": secondID})

	res = ts.do(t, "GET", "/api/v1/admin/orders", adminToken, nil)
	var all []struct {
		Status string `json:"status"`
	}
	json.Unmarshal(res.Data, &all)
	if res.Status != http.StatusOK || len(all) != 2 {
		t.Fatalf("all orders: %+v %s", res, res.Data)
	}

	res = ts.do(t, "GET", "/api/v1/admin/orders?status=CANCELLED", adminToken, nil)
	var cancelled []struct {
		Status string `json:"status"`
	}
	json.Unmarshal(res.Data, &cancelled)
	if res.Status != http.StatusOK || len(cancelled) != 1 || cancelled[0].Status != "CANCELLED" {
		t.Fatalf("filtered: %+v %s", res, res.Data)
	}

	res = ts.do(t, "GET", "/api/v1/admin/orders?status=SHIPPED", adminToken, nil)
	if res.Status != http.StatusBadRequest || res.Message != "Provide a valid order status" {
		t.Fatalf("invalid filter: %+v", res)
	}
}

func TestBookPriceGuard(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.seedAdmin(t)

	// The guard must reject a negative price whether it arrives as a
	// number or as a numeric string.
	for _, price := range []any{-5.0, "-5"} {
		res := ts.do(t, "POST", "/api/v1/books", adminToken, map[string]any{
			"title": "Bargain", "author": "Author", "price": price, "is_active": true,
		})
		if res.Status != http.StatusBadRequest || res.Message != "price must not be negative" {
			t.Errorf("price %v: %+v", price, res)
		}
	}
}

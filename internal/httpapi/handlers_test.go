package httpapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoiceflow/backend/internal/cache"
	"invoiceflow/backend/internal/domain"
	"invoiceflow/backend/internal/service"
	"invoiceflow/backend/internal/store/memory"
)

// newTestAPI wires the real service and auth manager over the seeded
// in-memory store so handler tests exercise the full request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NoopReportCache{}, service.Options{Location: time.UTC})
	auth := NewAuthManager("test-secret-key", time.Hour, repo)

	return New(svc, auth, "*")
}

func login(t *testing.T, api *API, username, password string) string {
	t.Helper()

	body, _ := json.Marshal(domain.LoginRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login as %s failed, status %d (body: %s)", username, res.Code, res.Body.String())
	}

	var payload domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode login response failed: %v", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		t.Fatalf("expected access token in login response")
	}
	return payload.AccessToken
}

func loginAsAdmin(t *testing.T, api *API) string {
	return login(t, api, "admin", "admin123")
}

func loginAsViewer(t *testing.T, api *API) string {
	return login(t, api, "viewer", "viewer123")
}

func authedGet(t *testing.T, api *API, path string, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	return res
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	res := authedGet(t, api, "/healthz", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	payload, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrongpassword"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", res.Code, res.Body.String())
	}
}

func TestReportRoutesRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{
		"/api/v1/dashboard",
		"/api/v1/dashboard/sales",
		"/api/v1/reports",
		"/api/v1/receipts/1001",
		"/api/v1/items/low-stock",
		"/api/v1/users",
	} {
		if res := authedGet(t, api, path, ""); res.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, res.Code)
		}
		if res := authedGet(t, api, path, "not-a-jwt"); res.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 for garbage token, got %d", path, res.Code)
		}
	}
}

func TestHandleDashboard(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsViewer(t, api)

	res := authedGet(t, api, "/api/v1/dashboard", token)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}

	var body domain.DashboardResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.TotalCustomers != 6 {
		t.Fatalf("expected 6 customers, got %d", body.TotalCustomers)
	}
	if len(body.RecentOrders) != 6 || len(body.TopSelling) != 3 {
		t.Fatalf("expected 6 recent orders and 3 top sellers, got %d and %d", len(body.RecentOrders), len(body.TopSelling))
	}
	if body.LowStockItems != 2 {
		t.Fatalf("expected 2 low stock items, got %d", body.LowStockItems)
	}
}

func TestHandleSalesChartRanges(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsViewer(t, api)

	cases := map[string]int{
		"":          7,
		"today":     1,
		"yesterday": 1,
		"30":        30,
		"90d":       90,
	}
	for rangeKey, want := range cases {
		res := authedGet(t, api, "/api/v1/dashboard/sales?range="+rangeKey, token)
		if res.Code != http.StatusOK {
			t.Fatalf("range %q: expected 200, got %d", rangeKey, res.Code)
		}
		var body domain.SalesChartResponse
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(body.Series) != want {
			t.Fatalf("range %q: expected %d buckets, got %d", rangeKey, want, len(body.Series))
		}
	}
}

func TestHandleReportsIsAdminOnly(t *testing.T) {
	api := newTestAPI(t)

	if res := authedGet(t, api, "/api/v1/reports", loginAsViewer(t, api)); res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d", res.Code)
	}

	res := authedGet(t, api, "/api/v1/reports?note=Call+back+Desai+Retail", loginAsAdmin(t, api))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var body domain.ReportsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.MonthlyRevenue) != 12 {
		t.Fatalf("expected 12 monthly points, got %d", len(body.MonthlyRevenue))
	}
	last := body.Insights[len(body.Insights)-1]
	if last.Type != domain.InsightNote || last.Text != "Call back Desai Retail" {
		t.Fatalf("expected note insight last, got %+v", last)
	}
}

func TestHandleReportsCSV(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	res := authedGet(t, api, "/api/v1/reports?format=csv", token)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected csv content type, got %q", ct)
	}
	if cd := res.Header().Get("Content-Disposition"); !strings.Contains(cd, "reports-") {
		t.Fatalf("expected attachment filename, got %q", cd)
	}

	rows, err := csv.NewReader(res.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if strings.Join(rows[0], ",") != "section,key,value" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	monthly := 0
	for _, row := range rows {
		if row[0] == "monthly_revenue" {
			monthly++
		}
	}
	if monthly != 12 {
		t.Fatalf("expected 12 monthly rows, got %d", monthly)
	}

	if res := authedGet(t, api, "/api/v1/reports?format=xml", token); res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", res.Code)
	}
}

func TestHandleReceipt(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsViewer(t, api)

	res := authedGet(t, api, "/api/v1/receipts/1001", token)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var receipt domain.ReceiptResponse
	if err := json.NewDecoder(res.Body).Decode(&receipt); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if receipt.OrderID != 1001 || receipt.Customer != "Rao Caterers" {
		t.Fatalf("unexpected receipt header %+v", receipt)
	}
	if receipt.Breakdown.InterState || len(receipt.Breakdown.Components) != 2 {
		t.Fatalf("expected intra-state CGST/SGST split, got %+v", receipt.Breakdown.Components)
	}
	if !receipt.ShowTax {
		t.Fatalf("expected show_tax from settings")
	}

	if res := authedGet(t, api, "/api/v1/receipts/abc", token); res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", res.Code)
	}
	if res := authedGet(t, api, "/api/v1/receipts/99999", token); res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing order, got %d", res.Code)
	}
}

func TestHandleLowStock(t *testing.T) {
	api := newTestAPI(t)

	res := authedGet(t, api, "/api/v1/items/low-stock", loginAsViewer(t, api))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body domain.LowStockResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 2 || body.Items[0].ID != 2 {
		t.Fatalf("expected tea first then oil, got %+v", body.Items)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", fetchCSRFToken(t, api))
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.Code)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travelbot/internal/config"
	intdb "travelbot/internal/db"
	h "travelbot/internal/http/handlers"
	"travelbot/internal/services"
	"travelbot/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetLogger(zap.NewNop())
}

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var cfg config.Config
	config.ApplyDefaults(&cfg)
	cfg.Auth.JWTSecret = "test-secret"
	return NewRouter(&h.App{Config: &cfg, DB: db, Dialect: intdb.MySQL}), mock
}

func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthRoutesAndNoRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := do(r, http.MethodGet, "/api/health", "", ""); w.Code != http.StatusOK || decode(t, w)["status"] != "ok" {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
	w := do(r, http.MethodGet, "/api/routes", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/bookings/:id/receipt") {
		t.Fatalf("routes = %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/nope", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("no route = %d", w.Code)
	}
}

func TestSignupThenMe(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}))
	mock.ExpectExec("INSERT INTO users").WithArgs("Asha", "asha@example.com", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	w := do(r, http.MethodPost, "/api/auth/signup", `{"name":"Asha","email":"Asha@Example.com"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("signup = %d %s", w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("signup returned no token: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/auth/me", "", token)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"email":"asha@example.com"`) {
		t.Fatalf("me = %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/auth/me", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/auth/me", "", "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token me = %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDomainErrorMapping(t *testing.T) {
	r, _ := newTestRouter(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{"short query", http.MethodPost, "/api/chat/analyze", `{"query":"hi there"}`, http.StatusBadRequest,
			"Please enter a more detailed query (at least 4 words)."},
		{"anonymous booking", http.MethodGet, "/api/bookings", "", http.StatusBadRequest, "Please log in to continue."},
		{"bad canceled flag", http.MethodGet, "/api/bookings?canceled=maybe", "", http.StatusBadRequest, "canceled must be true or false"},
		{"unconfigured cars", http.MethodGet, "/api/live/cars?city=Pune", "", http.StatusBadGateway, "car search is not configured"},
		{"empty body", http.MethodPost, "/api/bookings/hotel", "", http.StatusBadRequest, "request body is empty"},
	}
	for _, tc := range cases {
		w := do(r, tc.method, tc.path, tc.body, "")
		if w.Code != tc.status {
			t.Fatalf("%s: status = %d, want %d (%s)", tc.name, w.Code, tc.status, w.Body.String())
		}
		if got := decode(t, w)["error"]; got != tc.msg {
			t.Fatalf("%s: error = %v, want %q", tc.name, got, tc.msg)
		}
	}
}

func TestExamplesAndSupport(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/chat/examples?service=hotel", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Deluxe room in Chennai") {
		t.Fatalf("examples = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/api/support", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "support@travelchat.com") {
		t.Fatalf("support = %d %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodGet, "/api/support/faq", "", "")
	if w.Code != http.StatusOK || decode(t, w)["count"].(float64) < 1 {
		t.Fatalf("faq = %d %s", w.Code, w.Body.String())
	}
}

func TestReceiptNotFound(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(1, "Asha", "asha@example.com", "", 1736400000))
	mock.ExpectQuery("FROM bookings WHERE booking_id").WithArgs("HL404", "asha@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_email", "service_type", "details", "booking_date", "canceled"}))

	w := do(r, http.MethodPost, "/api/auth/login", `{"email":"asha@example.com"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d %s", w.Code, w.Body.String())
	}
	token := decode(t, w)["token"].(string)

	w = do(r, http.MethodGet, "/api/bookings/HL404/receipt", "", token)
	if w.Code != http.StatusNotFound || decode(t, w)["error"] != "Booking ID: HL404 not found." {
		t.Fatalf("receipt = %d %s", w.Code, w.Body.String())
	}
}

func TestSupportFAQSearchUsesIndex(t *testing.T) {
	idx, err := services.NewFAQIndex(services.FAQs)
	if err != nil {
		t.Fatalf("NewFAQIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	r := NewRouter(&h.App{Config: &cfg, FAQ: idx})

	w := do(r, http.MethodGet, "/api/support/faq?q=cancel+booking", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("faq = %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Query string         `json:"query"`
		FAQs  []services.FAQ `json:"faqs"`
		Count int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Query != "cancel booking" || body.Count == 0 || body.FAQs[0].Question != "Can I cancel my booking through the chatbot?" {
		t.Fatalf("unexpected faq search: %+v", body)
	}
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sahilbajaj/khata/pkg/domain"
)

func staticToken(tok string) func() string {
	return func() string { return tok }
}

func writeEnvelope(w http.ResponseWriter, data any) {
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}) //nolint:errcheck
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if creds.Email != "sahil@example.com" || creds.Password != "hunter22" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "fresh-token"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	token, err := c.Login(context.Background(), "sahil@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token != "fresh-token" {
		t.Errorf("token = %q, want %q", token, "fresh-token")
	}
}

func TestLogin_BadCredentialsDoesNotEvict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"}) //nolint:errcheck
	}))
	defer srv.Close()

	evicted := false
	c := New(srv.URL, staticToken("stale"))
	c.OnUnauthorized(func() { evicted = true })

	_, err := c.Login(context.Background(), "sahil@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error for bad credentials")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(err, 401) = false, want true")
	}
	if evicted {
		t.Error("login failure must not trigger the eviction hook")
	}
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not authorized"}) //nolint:errcheck
			return
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		writeEnvelope(w, domain.User{ID: "u1", Name: "Sahil", Email: "sahil@example.com", ThemePreference: domain.ThemeDark})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("test-token"))
	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	if me.Name != "Sahil" {
		t.Errorf("Name = %q, want %q", me.Name, "Sahil")
	}
	if me.ThemePreference != domain.ThemeDark {
		t.Errorf("ThemePreference = %q, want %q", me.ThemePreference, domain.ThemeDark)
	}
}

func TestMe_UnauthorizedEvicts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not authorized"}) //nolint:errcheck
	}))
	defer srv.Close()

	evicted := false
	c := New(srv.URL, staticToken("expired"))
	c.OnUnauthorized(func() { evicted = true })

	_, err := c.Me(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !evicted {
		t.Error("expected eviction hook to fire on 401")
	}
	if got := err.Error(); !strings.Contains(got, "HTTP 401") {
		t.Errorf("error = %q, want it to contain 'HTTP 401'", got)
	}
}

func TestTokenCallbackConsultedPerRequest(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeEnvelope(w, domain.User{ID: "u1"})
	}))
	defer srv.Close()

	current := "first"
	c := New(srv.URL, func() string { return current })

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me() error: %v", err)
	}
	current = "second"
	if _, err := c.Me(context.Background()); err != nil {
		t.Fatalf("Me() error: %v", err)
	}

	want := []string{"Bearer first", "Bearer second"}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("request %d Authorization = %q, want %q", i, got[i], w)
		}
	}
}

func TestListTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("search") != "chai" || q.Get("type") != domain.TypeGave || q.Get("page") != "2" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("contactId") != "c7" {
			t.Errorf("contactId = %q, want %q", q.Get("contactId"), "c7")
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"success": true,
			"data": []domain.Transaction{
				{ID: "t1", Type: domain.TypeGave, Amount: 120},
				{ID: "t2", Type: domain.TypeGave, Amount: 40.5},
			},
			"pagination": domain.Pagination{Total: 31, Page: 2, Pages: 3},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	txs, page, err := c.ListTransactions(context.Background(), TransactionFilter{
		Search:    "chai",
		ContactID: "c7",
		Type:      domain.TypeGave,
		Page:      2,
		Limit:     15,
	})
	if err != nil {
		t.Fatalf("ListTransactions() error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	if txs[1].Amount != 40.5 {
		t.Errorf("txs[1].Amount = %v, want 40.5", txs[1].Amount)
	}
	if page.Pages != 3 {
		t.Errorf("page.Pages = %d, want 3", page.Pages)
	}
}

func TestCreateTransaction_PersonalEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req TransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Contact != nil {
			t.Errorf("Contact = %v, want nil for personal entry", *req.Contact)
		}
		w.WriteHeader(http.StatusCreated)
		writeEnvelope(w, domain.Transaction{ID: "t9", Type: req.Type, Amount: req.Amount, Note: req.Note})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	tx, err := c.CreateTransaction(context.Background(), TransactionRequest{
		Type:            domain.TypeTook,
		Amount:          500,
		Note:            "salary advance",
		TransactionDate: "2026-08-30",
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error: %v", err)
	}
	if tx.ID != "t9" {
		t.Errorf("tx.ID = %q, want %q", tx.ID, "t9")
	}
}

func TestContactBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contacts/balances" {
			http.NotFound(w, r)
			return
		}
		// Raw body in the server's shape: rows keyed by _id.
		w.Write([]byte(`{"success":true,"data":[` + //nolint:errcheck
			`{"_id":"c1","contactName":"Ravi","totalGave":900,"totalTook":200,"balance":700}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	balances, err := c.ContactBalances(context.Background())
	if err != nil {
		t.Fatalf("ContactBalances() error: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("got %d balances, want 1", len(balances))
	}
	if balances[0].ContactID != "c1" {
		t.Errorf("ContactID = %q, want %q", balances[0].ContactID, "c1")
	}
	if balances[0].Balance != 700 {
		t.Errorf("Balance = %v, want 700", balances[0].Balance)
	}
}

func TestUpdateTheme_BodyKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body["theme"] != "dark" {
			t.Errorf(`body = %v, want {"theme":"dark"}`, body)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	if err := c.UpdateTheme(context.Background(), "dark"); err != nil {
		t.Fatalf("UpdateTheme() error: %v", err)
	}
}

func TestUpdateTransaction_PersonalSendsNullContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		raw, ok := body["contact"]
		if !ok {
			t.Error("contact key missing; the server would keep the old contact link")
		} else if string(raw) != "null" {
			t.Errorf("contact = %s, want null", raw)
		}
		writeEnvelope(w, domain.Transaction{ID: "t1", Type: domain.TypeGave, Amount: 10})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	_, err := c.UpdateTransaction(context.Background(), "t1", TransactionRequest{
		Type:            domain.TypeGave,
		Amount:          10,
		TransactionDate: "2026-08-30",
	})
	if err != nil {
		t.Fatalf("UpdateTransaction() error: %v", err)
	}
}

func TestUpdatePassword_ReturnsRotatedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/updatepassword" || r.Method != http.MethodPut {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "rotated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("old"))
	token, err := c.UpdatePassword(context.Background(), "hunter22", "hunter333")
	if err != nil {
		t.Fatalf("UpdatePassword() error: %v", err)
	}
	if token != "rotated" {
		t.Errorf("token = %q, want %q", token, "rotated")
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	_, err := c.DashboardSummary(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := err.Error(); !strings.Contains(got, "boom") {
		t.Errorf("error = %q, want it to contain 'boom'", got)
	}
}

func TestDoRequest_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second) // slow server
		writeEnvelope(w, domain.User{})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.Me(ctx)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

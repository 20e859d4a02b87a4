package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sahilbajaj/khata/pkg/domain"
)

// Client is the Khata API client. The token callback is consulted on
// every request so the client never holds a stale credential after a
// login, logout, or password rotation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokenFn    func() string
	evictFn    func()
}

// New creates a new API client. tokenFn supplies the current bearer
// token; an empty return means the request goes out unauthenticated.
func New(baseURL string, tokenFn func() string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokenFn: tokenFn,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OnUnauthorized registers a hook invoked when the server rejects a
// request with 401. Login and register failures do not trigger it, so
// a wrong password never evicts an existing session.
func (c *Client) OnUnauthorized(fn func()) {
	c.evictFn = fn
}

// envelope is the standard response wrapper used by every endpoint.
type envelope struct {
	Success    bool               `json:"success"`
	Token      string             `json:"token"`
	Data       json.RawMessage    `json:"data"`
	Pagination *domain.Pagination `json:"pagination"`
}

// --- Auth ---

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("client.Login: %w", err)
	}
	return env.Token, nil
}

// Register creates a new account and returns its bearer token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	env, err := c.doRequest(ctx, http.MethodPost, "/auth/register", credentials{Name: name, Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("client.Register: %w", err)
	}
	return env.Token, nil
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodGet, "/auth/logout", nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// UpdateTheme persists the user's theme preference.
func (c *Client) UpdateTheme(ctx context.Context, theme string) error {
	if err := c.put(ctx, "/auth/theme", map[string]string{"theme": theme}, nil); err != nil {
		return fmt.Errorf("client.UpdateTheme: %w", err)
	}
	return nil
}

// UpdateDetails changes the user's name and email.
func (c *Client) UpdateDetails(ctx context.Context, name, email string) (*domain.User, error) {
	var u domain.User
	if err := c.put(ctx, "/auth/updatedetails", map[string]string{"name": name, "email": email}, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateDetails: %w", err)
	}
	return &u, nil
}

// UpdatePassword rotates the user's password and returns the fresh
// token the server issues alongside.
func (c *Client) UpdatePassword(ctx context.Context, current, newPassword string) (string, error) {
	body := map[string]string{"currentPassword": current, "newPassword": newPassword}
	env, err := c.doRequest(ctx, http.MethodPut, "/auth/updatepassword", body)
	if err != nil {
		return "", fmt.Errorf("client.UpdatePassword: %w", err)
	}
	return env.Token, nil
}

// --- Contacts ---

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// ListContacts fetches contacts, optionally filtered by a search term
// matched against name and phone.
func (c *Client) ListContacts(ctx context.Context, search string) ([]domain.Contact, error) {
	path := "/contacts"
	if search != "" {
		params := url.Values{}
		params.Set("search", search)
		path += "?" + params.Encode()
	}
	var contacts []domain.Contact
	if err := c.get(ctx, path, &contacts); err != nil {
		return nil, fmt.Errorf("client.ListContacts: %w", err)
	}
	return contacts, nil
}

// CreateContact adds a new contact.
func (c *Client) CreateContact(ctx context.Context, name, phone string) (*domain.Contact, error) {
	var created domain.Contact
	if err := c.post(ctx, "/contacts", contactRequest{Name: name, Phone: phone}, &created); err != nil {
		return nil, fmt.Errorf("client.CreateContact: %w", err)
	}
	return &created, nil
}

// UpdateContact edits an existing contact.
func (c *Client) UpdateContact(ctx context.Context, id, name, phone string) (*domain.Contact, error) {
	var updated domain.Contact
	if err := c.put(ctx, "/contacts/"+url.PathEscape(id), contactRequest{Name: name, Phone: phone}, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateContact: %w", err)
	}
	return &updated, nil
}

// DeleteContact removes a contact and its transactions.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, "/contacts/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("client.DeleteContact: %w", err)
	}
	return nil
}

// ContactBalances returns per-contact gave/took totals and net balance.
func (c *Client) ContactBalances(ctx context.Context) ([]domain.ContactBalance, error) {
	var balances []domain.ContactBalance
	if err := c.get(ctx, "/contacts/balances", &balances); err != nil {
		return nil, fmt.Errorf("client.ContactBalances: %w", err)
	}
	return balances, nil
}

// --- Transactions ---

// TransactionFilter narrows a transaction listing. Zero values are
// omitted from the query string.
type TransactionFilter struct {
	Search    string
	StartDate string
	EndDate   string
	ContactID string
	Type      string
	Page      int
	Limit     int
}

// TransactionRequest is the payload for creating or editing a
// transaction. A nil Contact marshals as an explicit null, which the
// server treats as "personal entry"; omitting the key would instead
// leave an existing contact link in place on edits.
type TransactionRequest struct {
	Type            string  `json:"type"`
	Amount          float64 `json:"amount"`
	Note            string  `json:"note,omitempty"`
	Contact         *string `json:"contact"`
	TransactionDate string  `json:"transactionDate"`
}

// ListTransactions fetches a page of transactions matching the filter.
func (c *Client) ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, domain.Pagination, error) {
	params := url.Values{}
	if filter.Search != "" {
		params.Set("search", filter.Search)
	}
	if filter.StartDate != "" {
		params.Set("startDate", filter.StartDate)
	}
	if filter.EndDate != "" {
		params.Set("endDate", filter.EndDate)
	}
	if filter.ContactID != "" {
		params.Set("contactId", filter.ContactID)
	}
	if filter.Type != "" {
		params.Set("type", filter.Type)
	}
	if filter.Page > 0 {
		params.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}

	path := "/transactions"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	env, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("client.ListTransactions: %w", err)
	}
	var txs []domain.Transaction
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &txs); err != nil {
			return nil, domain.Pagination{}, fmt.Errorf("client.ListTransactions: decode data: %w", err)
		}
	}
	var page domain.Pagination
	if env.Pagination != nil {
		page = *env.Pagination
	}
	return txs, page, nil
}

// CreateTransaction records a new GAVE or TOOK entry.
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (*domain.Transaction, error) {
	var created domain.Transaction
	if err := c.post(ctx, "/transactions", req, &created); err != nil {
		return nil, fmt.Errorf("client.CreateTransaction: %w", err)
	}
	return &created, nil
}

// UpdateTransaction edits an existing transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id string, req TransactionRequest) (*domain.Transaction, error) {
	var updated domain.Transaction
	if err := c.put(ctx, "/transactions/"+url.PathEscape(id), req, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateTransaction: %w", err)
	}
	return &updated, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil); err != nil {
		return fmt.Errorf("client.DeleteTransaction: %w", err)
	}
	return nil
}

// --- Dashboard ---

// DashboardSummary returns overall totals and recent activity.
func (c *Client) DashboardSummary(ctx context.Context) (*domain.Summary, error) {
	var s domain.Summary
	if err := c.get(ctx, "/dashboard/summary", &s); err != nil {
		return nil, fmt.Errorf("client.DashboardSummary: %w", err)
	}
	return &s, nil
}

// --- Plumbing ---

func (c *Client) get(ctx context.Context, path string, out any) error {
	env, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	env, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	env, err := c.doRequest(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

func decodeData(env *envelope, out any) error {
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func isAuthEntry(path string) bool {
	return strings.HasPrefix(path, "/auth/login") || strings.HasPrefix(path, "/auth/register")
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokenFn(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && !isAuthEntry(path) && c.evictFn != nil {
			c.evictFn()
		}
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

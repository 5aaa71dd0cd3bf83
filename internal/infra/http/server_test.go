package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"mercato/internal/config"
	"mercato/internal/domain"
	"mercato/internal/infra/ratelimit"
	"mercato/internal/infra/token"
	"mercato/internal/usecase"

	"github.com/gin-gonic/gin"
)

type fakeCustomerStore struct {
	mu      sync.Mutex
	byEmail map[string]domain.Customer
}

func (f *fakeCustomerStore) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	customer, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &customer, nil
}

func (f *fakeCustomerStore) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, customer := range f.byEmail {
		if customer.ID == id {
			return &customer, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCustomerStore) Create(ctx context.Context, customer domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEmail == nil {
		f.byEmail = make(map[string]domain.Customer)
	}
	f.byEmail[customer.EmailAddr] = customer
	return nil
}

func (f *fakeCustomerStore) UpdateProfile(ctx context.Context, id string, update domain.CustomerProfileUpdate) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, customer := range f.byEmail {
		if customer.ID == id {
			delete(f.byEmail, email)
			customer.Name = update.Name
			customer.EmailAddr = update.Email
			customer.Phone = update.Phone
			customer.City = update.City
			f.byEmail[customer.EmailAddr] = customer
			return &customer, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCustomerStore) UpdateSecret(ctx context.Context, id, storedSecret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, customer := range f.byEmail {
		if customer.ID == id {
			customer.StoredSecret = domain.SecretFromStored(storedSecret)
			f.byEmail[email] = customer
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeMerchantStore struct {
	mu      sync.Mutex
	byEmail map[string]domain.Merchant
}

func (f *fakeMerchantStore) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	merchant, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &merchant, nil
}

func (f *fakeMerchantStore) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, merchant := range f.byEmail {
		if merchant.ID == id {
			return &merchant, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMerchantStore) Create(ctx context.Context, merchant domain.Merchant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEmail == nil {
		f.byEmail = make(map[string]domain.Merchant)
	}
	f.byEmail[merchant.EmailAddr] = merchant
	return nil
}

func (f *fakeMerchantStore) UpdateProfile(ctx context.Context, id string, update domain.MerchantProfileUpdate) (*domain.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, merchant := range f.byEmail {
		if merchant.ID == id {
			delete(f.byEmail, email)
			merchant.Name = update.Name
			merchant.EmailAddr = update.Email
			merchant.Phone = update.Phone
			merchant.Address = update.Address
			merchant.Description = update.Description
			f.byEmail[merchant.EmailAddr] = merchant
			return &merchant, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMerchantStore) UpdateSecret(ctx context.Context, id, storedSecret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, merchant := range f.byEmail {
		if merchant.ID == id {
			merchant.StoredSecret = domain.SecretFromStored(storedSecret)
			f.byEmail[email] = merchant
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeSessionRecorder struct {
	mu       sync.Mutex
	sessions []domain.Session
	fail     error
}

func (f *fakeSessionRecorder) Record(ctx context.Context, session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sessions = append(f.sessions, session)
	return nil
}

type testEnv struct {
	server    *Server
	issuer    *token.Issuer
	customers *fakeCustomerStore
	merchants *fakeMerchantStore
	sessions  *fakeSessionRecorder
	clock     *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env := &testEnv{clock: &clock}
	issuer, err := token.NewIssuer("test-secret", 24*time.Hour, func() time.Time { return *env.clock })
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	env.issuer = issuer
	env.customers = &fakeCustomerStore{}
	env.merchants = &fakeMerchantStore{}
	env.sessions = &fakeSessionRecorder{}

	env.server = NewServerWithDeps(config.Config{}, ServerDeps{
		Login: &usecase.Login{
			Customers: env.customers,
			Merchants: env.merchants,
			Tokens:    issuer,
			Sessions:  env.sessions,
			Now:       func() time.Time { return *env.clock },
		},
		Signup: &usecase.Signup{
			Customers: env.customers,
			Merchants: env.merchants,
			Now:       func() time.Time { return *env.clock },
		},
		Profile: &usecase.Profile{
			Customers: env.customers,
			Merchants: env.merchants,
		},
		Verifier: issuer,
	})
	if env.server.initErr != nil {
		t.Fatalf("server init: %v", env.server.initErr)
	}
	return env
}

func (env *testEnv) addCustomer(t *testing.T, id, name, email, secret string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	_ = env.customers.Create(context.Background(), domain.Customer{
		ID:           id,
		Name:         name,
		EmailAddr:    email,
		StoredSecret: domain.SecretFromStored(string(hashed)),
	})
}

func (env *testEnv) addMerchant(t *testing.T, id, name, email, secret string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	_ = env.merchants.Create(context.Background(), domain.Merchant{
		ID:           id,
		Name:         name,
		EmailAddr:    email,
		StoredSecret: domain.SecretFromStored(string(hashed)),
	})
}

func (env *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	env.server.r.ServeHTTP(w, req)
	return w
}

func (env *testEnv) login(t *testing.T, email, secret string) loginResponse {
	t.Helper()
	w := env.do(http.MethodPost, "/api/auth/login", `{"email":"`+email+`","secret":"`+secret+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, strings.TrimSpace(w.Body.String()))
	}
	var resp loginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp
}

func TestLoginEndpoint_CustomerSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "s3cr3t")

	resp := env.login(t, "a@x.com", "s3cr3t")
	if resp.Token == "" {
		t.Fatal("expected token")
	}
	if resp.Principal.Role != "customer" || resp.Principal.Email != "a@x.com" || resp.Principal.Name != "Ana" {
		t.Fatalf("unexpected principal %+v", resp.Principal)
	}

	claims, err := env.issuer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Role != domain.RoleCustomer || claims.PrincipalID != "c-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if len(env.sessions.sessions) != 1 {
		t.Fatalf("expected 1 session row, got %d", len(env.sessions.sessions))
	}
	session := env.sessions.sessions[0]
	if session.Role != domain.RoleCustomer || session.OwnerID != "c-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.NetworkOrigin == "" {
		t.Fatal("expected network origin captured from request")
	}
}

func TestLoginEndpoint_EnumerationResistance(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "s3cr3t")

	wrongSecret := env.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","secret":"nope"}`, nil)
	unknownEmail := env.do(http.MethodPost, "/api/auth/login", `{"email":"ghost@x.com","secret":"s3cr3t"}`, nil)

	if wrongSecret.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongSecret.Code, unknownEmail.Code)
	}
	if wrongSecret.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("error bodies differ: %q vs %q", wrongSecret.Body.String(), unknownEmail.Body.String())
	}
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginEndpoint_CustomerPrecedence(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "both@x.com", "pass")
	env.addMerchant(t, "m-1", "Loja", "both@x.com", "pass")

	for i := 0; i < 3; i++ {
		resp := env.login(t, "both@x.com", "pass")
		if resp.Principal.Role != "customer" {
			t.Fatalf("attempt %d resolved role %q, want customer", i, resp.Principal.Role)
		}
	}
}

func TestLoginEndpoint_SessionWriteFailureStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "s3cr3t")
	env.sessions.fail = errors.New("sessions table down")

	resp := env.login(t, "a@x.com", "s3cr3t")
	if resp.Token == "" {
		t.Fatal("expected token despite audit-write failure")
	}
}

func TestSignupThenConflictThenLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/signup", `{"name":"Ana","email":"a@x.com","secret":"s3cr3t"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodPost, "/api/auth/signup", `{"name":"Ana","email":"a@x.com","secret":"other"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", w.Code)
	}

	resp := env.login(t, "a@x.com", "s3cr3t")
	claims, err := env.issuer.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Email != "a@x.com" || claims.Role != domain.RoleCustomer {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestSignupEndpoint_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/auth/signup", `{"email":"a@x.com","secret":"x"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMerchantSignupEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/commerces/signup", `{"name":"Loja","email":"m@x.com","secret":"s3cr3t","description":"padaria"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp principalResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Role != "merchant" {
		t.Fatalf("role = %q, want merchant", resp.Role)
	}

	login := env.login(t, "m@x.com", "s3cr3t")
	if login.Principal.Role != "merchant" {
		t.Fatalf("login role = %q, want merchant", login.Principal.Role)
	}
	if len(env.sessions.sessions) != 1 || env.sessions.sessions[0].Role != domain.RoleMerchant {
		t.Fatal("expected merchant session row")
	}
}

func TestProfileEndpoint_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		nil,
		{"Authorization": "Basic abc123"},
		{"Authorization": "Bearer"},
		{"Authorization": "Bearer not-a-token"},
	}
	for i, headers := range cases {
		w := env.do(http.MethodGet, "/api/auth/me", "", headers)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("case %d: expected 401, got %d", i, w.Code)
		}
	}
}

func TestProfileEndpoint_RoleScopedFields(t *testing.T) {
	env := newTestEnv(t)
	_ = env.customers.Create(context.Background(), domain.Customer{
		ID: "c-1", Name: "Ana", EmailAddr: "a@x.com", Phone: "555-0101", City: "Recife",
		StoredSecret: domain.SecretFromStored("pw"),
	})
	resp := env.login(t, "a@x.com", "pw")

	w := env.do(http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer " + resp.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var profile profileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.City != "Recife" || profile.Role != "customer" {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.Address != "" || profile.Description != "" {
		t.Fatal("merchant fields must not leak into a customer profile")
	}
}

func TestProfileEndpoint_NotFound(t *testing.T) {
	env := newTestEnv(t)
	tok, _, err := env.issuer.Issue(domain.Customer{ID: "ghost", EmailAddr: "g@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	w := env.do(http.MethodGet, "/api/auth/me", "", map[string]string{"Authorization": "Bearer " + tok})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestMerchantGate_CustomerTokenForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "pw")
	env.addMerchant(t, "m-1", "Loja", "m@x.com", "pw")

	customer := env.login(t, "a@x.com", "pw")
	merchant := env.login(t, "m@x.com", "pw")

	w := env.do(http.MethodGet, "/api/commerces/me", "", map[string]string{"Authorization": "Bearer " + customer.Token})
	if w.Code != http.StatusForbidden {
		t.Fatalf("customer on merchant route: expected 403, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/commerces/me", "", map[string]string{"Authorization": "Bearer " + merchant.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("merchant on merchant route: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// No token at all is a 401, not a 403: the gate never runs.
	w = env.do(http.MethodGet, "/api/commerces/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestTokenExpiryBoundary(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "pw")
	resp := env.login(t, "a@x.com", "pw")
	headers := map[string]string{"Authorization": "Bearer " + resp.Token}

	*env.clock = env.clock.Add(23*time.Hour + 59*time.Minute)
	if w := env.do(http.MethodGet, "/api/auth/me", "", headers); w.Code != http.StatusOK {
		t.Fatalf("expected 200 at T+23h59m, got %d", w.Code)
	}

	*env.clock = env.clock.Add(2 * time.Minute)
	if w := env.do(http.MethodGet, "/api/auth/me", "", headers); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 at T+24h01m, got %d", w.Code)
	}
}

func TestUpdateProfileEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "pw")
	resp := env.login(t, "a@x.com", "pw")

	w := env.do(http.MethodPut, "/api/auth/me",
		`{"name":"Ana Maria","email":"a@x.com","phone":"555-0102","city":"Olinda"}`,
		map[string]string{"Authorization": "Bearer " + resp.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var profile profileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Name != "Ana Maria" || profile.City != "Olinda" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.addCustomer(t, "c-1", "Ana", "a@x.com", "old-pw")
	resp := env.login(t, "a@x.com", "old-pw")
	headers := map[string]string{"Authorization": "Bearer " + resp.Token}

	w := env.do(http.MethodPut, "/api/auth/password", `{"current_secret":"wrong","new_secret":"new-pw"}`, headers)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrong current secret: expected 400, got %d", w.Code)
	}

	w = env.do(http.MethodPut, "/api/auth/password", `{"current_secret":"old-pw","new_secret":"new-pw"}`, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("change password: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	env.login(t, "a@x.com", "new-pw")
	if w := env.do(http.MethodPost, "/api/auth/login", `{"email":"a@x.com","secret":"old-pw"}`, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("old password: expected 401, got %d", w.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := token.NewIssuer("test-secret", 24*time.Hour, func() time.Time { return clock })
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	customers := &fakeCustomerStore{}
	server := NewServerWithDeps(config.Config{
		LoginRateLimitRequests:      2,
		LoginRateLimitWindowSeconds: 60,
	}, ServerDeps{
		Login: &usecase.Login{
			Customers: customers,
			Merchants: &fakeMerchantStore{},
			Tokens:    issuer,
			Sessions:  &fakeSessionRecorder{},
		},
		Verifier: issuer,
		RateLimiter: ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
			Now: func() time.Time { return clock },
		}),
	})

	body := `{"email":"a@x.com","secret":"pw"}`
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		server.r.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			t.Fatalf("attempt %d unexpectedly limited", i)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	server.r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third attempt, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

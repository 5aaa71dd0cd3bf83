package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mercato/internal/config"
	"mercato/internal/domain"
	"mercato/internal/infra/authz"
	"mercato/internal/infra/db"
	"mercato/internal/infra/ratelimit"
	"mercato/internal/infra/token"
	"mercato/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	loginUC  *usecase.Login
	signupUC *usecase.Signup
	profile  *usecase.Profile

	verifier TokenVerifier
	gate     domain.RoleGate

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool

	initErr error
}

// TokenVerifier validates a presented bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenStr string) (domain.TokenClaims, error)
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

type ServerDeps struct {
	Login       *usecase.Login
	Signup      *usecase.Signup
	Profile     *usecase.Profile
	Verifier    TokenVerifier
	Gate        domain.RoleGate
	RateLimiter domain.RateLimiter
}

// NewServerWithDeps wires explicitly constructed collaborators; tests use it
// to swap stores, clocks and signing configuration.
func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:      cfg,
		r:        r,
		loginUC:  deps.Login,
		signupUC: deps.Signup,
		profile:  deps.Profile,
		verifier: deps.Verifier,
		gate:     deps.Gate,
	}
	if s.gate == nil {
		if engine, err := authz.NewEngine(context.Background()); err == nil {
			s.gate = engine
		} else {
			s.initErr = err
		}
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	issuer, err := token.NewIssuer(s.cfg.JWTSecret, s.cfg.TokenTTL(), nil)
	if err != nil {
		s.initErr = err
		return
	}
	s.verifier = issuer

	gate, err := authz.NewEngine(context.Background())
	if err != nil {
		s.initErr = err
		return
	}
	s.gate = gate

	var (
		customerRepo *db.CustomerRepository
		merchantRepo *db.MerchantRepository
		sessionRepo  *db.SessionRepository
	)
	if s.store != nil {
		customerRepo = db.NewCustomerRepository(s.store.DB)
		merchantRepo = db.NewMerchantRepository(s.store.DB)
		sessionRepo = db.NewSessionRepository(s.store.DB)
	}

	s.loginUC = &usecase.Login{
		Customers: customerRepo,
		Merchants: merchantRepo,
		Tokens:    issuer,
		Sessions:  sessionRepo,
	}
	s.signupUC = &usecase.Signup{
		Customers: customerRepo,
		Merchants: merchantRepo,
	}
	s.profile = &usecase.Profile{
		Customers: customerRepo,
		Merchants: merchantRepo,
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.LoginRateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.LoginRateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.LoginRateLimitRequests
	s.rateLimitWindow = s.cfg.LoginRateLimitWindow()
	s.rateLimitFailClosed = s.cfg.LoginRateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.store != nil && s.store.DB != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	auth := s.r.Group("/api/auth")
	{
		auth.POST("/login", s.enforceLoginRateLimit, s.handleLogin)
		auth.POST("/signup", s.handleSignupCustomer)
		auth.GET("/me", s.authenticate, s.handleGetProfile)
		auth.PUT("/me", s.authenticate, s.handleUpdateProfile)
		auth.PUT("/password", s.authenticate, s.handleChangePassword)
	}

	commerces := s.r.Group("/api/commerces")
	{
		commerces.POST("/signup", s.handleSignupMerchant)

		// Merchant-only surface: authenticate first, then gate on the
		// validated role claim.
		gated := commerces.Group("", s.authenticate, s.requireRole(domain.RoleMerchant))
		gated.GET("/me", s.handleGetProfile)
		gated.PUT("/me", s.handleUpdateProfile)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	if s.verifier == nil {
		return errors.New("token verifier is not configured")
	}
	return s.r.Run(s.cfg.HTTPAddr)
}

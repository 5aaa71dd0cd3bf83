package http

import (
	"errors"
	"log"
	"net/http"

	"mercato/internal/domain"
	"mercato/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type principalResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	Principal principalResponse `json:"principal"`
}

type signupRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Secret      string `json:"secret"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	City        string `json:"city,omitempty"`
	Description string `json:"description,omitempty"`
}

type profileResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Phone       string `json:"phone,omitempty"`
	City        string `json:"city,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type changePasswordRequest struct {
	Current string `json:"current_secret"`
	New     string `json:"new_secret"`
}

func (s *Server) handleLogin(c *gin.Context) {
	if s.loginUC == nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.loginUC.Execute(c.Request.Context(), usecase.LoginRequest{
		Email:         req.Email,
		Secret:        req.Secret,
		DeviceInfo:    c.Request.UserAgent(),
		NetworkOrigin: c.ClientIP(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     result.Token,
		Principal: buildPrincipalResponse(result.Principal),
	})
}

func (s *Server) handleSignupCustomer(c *gin.Context) {
	if s.signupUC == nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	customer, err := s.signupUC.Customer(c.Request.Context(), usecase.SignupCustomerRequest{
		Name:    req.Name,
		Email:   req.Email,
		Secret:  req.Secret,
		Address: req.Address,
		Phone:   req.Phone,
		City:    req.City,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildPrincipalResponse(*customer))
}

func (s *Server) handleSignupMerchant(c *gin.Context) {
	if s.signupUC == nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	merchant, err := s.signupUC.Merchant(c.Request.Context(), usecase.SignupMerchantRequest{
		Name:        req.Name,
		Email:       req.Email,
		Secret:      req.Secret,
		Address:     req.Address,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildPrincipalResponse(*merchant))
}

func (s *Server) handleGetProfile(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok || s.profile == nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	principal, err := s.profile.Get(c.Request.Context(), claims)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProfileResponse(principal))
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok || s.profile == nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	switch claims.Role {
	case domain.RoleMerchant:
		merchant, err := s.profile.UpdateMerchant(c.Request.Context(), claims, domain.MerchantProfileUpdate{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Description: req.Description,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, buildProfileResponse(*merchant))
	default:
		customer, err := s.profile.UpdateCustomer(c.Request.Context(), claims, domain.CustomerProfileUpdate{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			City:  req.City,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, buildProfileResponse(*customer))
	}
}

func (s *Server) handleChangePassword(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok || s.profile == nil {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	err := s.profile.ChangePassword(c.Request.Context(), claims, usecase.ChangePasswordRequest{
		Current: req.Current,
		New:     req.New,
	})
	if err != nil {
		// Wrong current secret is a 400 here, not a 401: the caller is
		// already authenticated.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeErrorCode(c, http.StatusBadRequest, "WRONG_SECRET", "current secret is incorrect")
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func buildPrincipalResponse(principal domain.Principal) principalResponse {
	return principalResponse{
		ID:    principal.PrincipalID(),
		Email: principal.Email(),
		Name:  principal.DisplayName(),
		Role:  string(principal.Role()),
	}
}

func buildProfileResponse(principal domain.Principal) profileResponse {
	resp := profileResponse{
		ID:    principal.PrincipalID(),
		Name:  principal.DisplayName(),
		Email: principal.Email(),
		Role:  string(principal.Role()),
	}
	switch p := principal.(type) {
	case domain.Customer:
		resp.Phone = p.Phone
		resp.City = p.City
	case domain.Merchant:
		resp.Phone = p.Phone
		resp.Address = p.Address
		resp.Description = p.Description
	}
	return resp
}

func writeError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, "INTERNAL", "internal error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, code, message = http.StatusBadRequest, "VALIDATION", "missing required fields"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		status, code, message = http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrEmailTaken):
		status, code, message = http.StatusConflict, "EMAIL_TAKEN", "email already registered"
	case errors.Is(err, domain.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "not found"
	default:
		// Storage and signing failures stay server-side; the client sees
		// a generic 500.
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	writeErrorCode(c, status, code, message)
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}

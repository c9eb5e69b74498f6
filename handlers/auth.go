package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/auth"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/config"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/kvstore"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/listing"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/records"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/tokens"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// SubmitRequest is the body of /auth/login and /auth/register.
// Name and email are ignored on login.
type SubmitRequest struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Credential string `json:"credential"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg       *config.Config
	records   records.Store
	local     kvstore.Store
	blacklist *sessions.Blacklist
	verifier  middleware.Verifier
}

// NewAuthHandler wires the handler. local is the engine behind every device's
// session record; each device gets its own key prefix. Session tokens are only
// issued when cfg.JWT.Secret is set.
func NewAuthHandler(cfg *config.Config, rec records.Store, local kvstore.Store, bl *sessions.Blacklist) *AuthHandler {
	h := &AuthHandler{cfg: cfg, records: rec, local: local, blacklist: bl}
	if ver, err := tokens.NewVerifier(cfg); err == nil {
		h.verifier = ver
	}
	return h
}

// Verifier returns the session token verifier, or nil when tokens are disabled.
func (h *AuthHandler) Verifier() middleware.Verifier {
	return h.verifier
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth", middleware.DeviceMiddleware())
	a.GET("/session", h.Session)
	a.POST("/login", h.Login)
	a.POST("/register", h.RegisterStudent)
	a.POST("/logout", h.Logout)
}

// deviceSessions is the session record of the calling device.
func (h *AuthHandler) deviceSessions(c *gin.Context) *sessions.Store {
	return sessions.NewStore(kvstore.WithPrefix(h.local, "device:"+middleware.Device(c)+":"))
}

func (h *AuthHandler) authFlow(c *gin.Context, n nav.Navigator) *auth.Flow {
	return auth.NewFlow(h.records, h.deviceSessions(c), n, auth.Options{
		Timeout: h.cfg.Remote.Timeout,
		Retries: h.cfg.Remote.Retries,
		Backoff: h.cfg.Remote.Backoff,
	})
}

// Session runs the bootstrap check: with a stored session the client goes
// straight to the listing, otherwise it shows the form. Tokens are only
// issued by login and register.
func (h *AuthHandler) Session(c *gin.Context) {
	dest, sess, err := h.authFlow(c, nil).Bootstrap(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to read local session", "destination": nav.Auth})
		return
	}
	if dest != nav.Listing {
		c.JSON(http.StatusOK, gin.H{"destination": dest})
		return
	}
	// no token here: knowing a device id must not be enough to obtain one
	c.JSON(http.StatusOK, gin.H{"destination": dest, "session": sess})
}

// Login checks the identifier and credential against the stored record.
func (h *AuthHandler) Login(c *gin.Context) {
	h.submit(c, auth.ModeLogin, http.StatusOK)
}

// RegisterStudent creates the record and logs the device in.
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	h.submit(c, auth.ModeRegister, http.StatusCreated)
}

func (h *AuthHandler) submit(c *gin.Context, mode auth.Mode, okStatus int) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	form := &auth.Form{Mode: mode, Identifier: req.Identifier, Credential: req.Credential}
	if mode == auth.ModeRegister {
		form.Name = req.Name
		form.Email = req.Email
	}

	rec := &nav.Recorder{}
	sess, err := h.authFlow(c, rec).Submit(c.Request.Context(), form)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondSession(c, okStatus, rec.Current(), sess)
}

func (h *AuthHandler) respondSession(c *gin.Context, status int, dest nav.Destination, sess models.Session) {
	body := gin.H{"destination": dest, "session": sess}
	if h.verifier != nil {
		ttl := h.cfg.JWT.SessionTTL
		tok, err := tokens.GenerateSessionToken(h.cfg, sess, ttl)
		if err != nil {
			logger.Errorf("failed to sign session token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session token"})
			return
		}
		body["token"] = tok
		body["expiresIn"] = int(ttl.Seconds())
	}
	c.JSON(status, body)
}

// Logout clears the device session and blacklists the presented token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.revokeBearer(c.Request.Context(), c.GetHeader("Authorization")); err != nil {
		logger.Errorf("failed to blacklist session token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist session token"})
		return
	}
	rec := &nav.Recorder{}
	if err := listing.NewFlow(h.records, h.deviceSessions(c), rec).Logout(c.Request.Context()); err != nil {
		logger.Errorf("failed to clear session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "destination": rec.Current()})
}

// revokeBearer blacklists a valid bearer token. Missing or invalid tokens are ignored.
func (h *AuthHandler) revokeBearer(ctx context.Context, header string) error {
	if header == "" || h.verifier == nil {
		return nil
	}
	var raw string
	if n, _ := fmt.Sscanf(header, "Bearer %s", &raw); n != 1 {
		return nil
	}
	tok, err := h.verifier.Verify(ctx, raw)
	if err != nil {
		return nil
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		return nil
	}
	exp, ok := tokens.ExpiresAt(claims)
	if !ok {
		return nil
	}
	return h.blacklist.Revoke(ctx, raw, time.Until(exp))
}

// statusFor maps the auth error taxonomy to HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, auth.ErrConnectivity), errors.Is(err, auth.ErrConnectivityRequired):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	body := gin.H{"error": auth.Message(err), "code": auth.Outcome(err)}
	var ve *auth.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
	}
	c.JSON(statusFor(err), body)
}

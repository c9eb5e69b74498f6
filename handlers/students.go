package handlers

import (
	"net/http"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/listing"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterStudentRoutes registers the roster listing. When session tokens are
// enabled the request must also carry a valid bearer token for the device's user.
func (h *AuthHandler) RegisterStudentRoutes(rg *gin.RouterGroup) {
	chain := []gin.HandlerFunc{middleware.DeviceMiddleware()}
	if h.verifier != nil {
		chain = append(chain, middleware.AuthMiddleware(h.verifier, h.blacklist))
	}
	chain = append(chain, h.ListStudents)
	rg.GET("/students", chain...)
}

// ListStudents returns every registered student. A failed scan yields an empty list.
func (h *AuthHandler) ListStudents(c *gin.Context) {
	store := h.deviceSessions(c)
	sess, _, err := store.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to read local session"})
		return
	}
	if !sessions.Active(sess) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in", "destination": nav.Auth})
		return
	}
	if sub := middleware.Subject(c); sub != "" && sub != sess.Identifier {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token does not belong to this device session", "destination": nav.Auth})
		return
	}

	screen := listing.NewFlow(h.records, store, nil).NewScreen()
	screen.Mount(c.Request.Context())
	entries := screen.Entries()
	c.JSON(http.StatusOK, gin.H{"students": entries, "count": len(entries), "session": sess})
}

package http

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/contacts-service/internal/app/auth/service"
	contactsvc "github.com/Miraines/MoonyAndStarry/contacts-service/internal/app/contacts/service"
	customErrors "github.com/Miraines/MoonyAndStarry/contacts-service/internal/domain/auth/errors"
	lg "github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/log"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 5 << 20

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	auth     authsvc.Service
	contacts contactsvc.Service
	log      *zap.Logger
	checks   map[string]HealthCheck
}

func NewHandler(auth authsvc.Service, contacts contactsvc.Service, log *zap.Logger, checks map[string]HealthCheck) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{auth: auth, contacts: contacts, log: log, checks: checks}
}

// baseURL is the scheme and host the client used, with a trailing slash.
// Email links are built from it.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/"
}

/* ─────────────────────────────── auth ─────────────────────────────── */

func (h *Handler) signup(c *gin.Context) {
	var body dto.SignupDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	h.log.Info("/signup", lg.Email(body.Email))

	user, err := h.auth.Signup(c.Request.Context(), body, baseURL(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBind(&body); err != nil {
		bindError(c, err)
		return
	}
	h.log.Info("/login", lg.Email(body.Username))

	pair, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) refreshToken(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		middleware.AbortUnauthorized(c, "Not authenticated")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) logout(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.auth.Logout(c.Request.Context(), user); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) confirmedEmail(c *gin.Context) {
	msg, err := h.auth.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) requestEmail(c *gin.Context) {
	var body dto.RequestEmailDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	msg, err := h.auth.RequestEmail(c.Request.Context(), body, baseURL(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) passwordResetRequest(c *gin.Context) {
	var body dto.PasswordResetRequestDTO
	if err := c.ShouldBindQuery(&body); err != nil {
		bindError(c, err)
		return
	}
	h.log.Info("/password-reset-request", lg.Email(body.Email))

	msg, err := h.auth.RequestPasswordReset(c.Request.Context(), body, baseURL(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *Handler) passwordReset(c *gin.Context) {
	var body dto.PasswordResetDTO
	if err := c.ShouldBindQuery(&body); err != nil {
		bindError(c, err)
		return
	}

	msg, err := h.auth.ResetPassword(c.Request.Context(), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// passwordResetForm is where the emailed link lands. There is no UI yet,
// so it only echoes the token back.
func (h *Handler) passwordResetForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"new_password": "new_password", "token": c.Param("token")})
}

/* ─────────────────────────────── users ─────────────────────────────── */

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *Handler) updateAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		bindError(c, err)
		return
	}
	if fh.Size > MaxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": "File too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.handleError(c, customErrors.WrapInternal(err, "open upload"))
		return
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, MaxAvatarBytes))
	if err != nil {
		h.handleError(c, customErrors.WrapInternal(err, "read upload"))
		return
	}

	user, err := h.auth.UpdateAvatar(c.Request.Context(), middleware.CurrentUser(c), body, fh.Header.Get("Content-Type"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

/* ────────────────────────────── contacts ────────────────────────────── */

func contactID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "contact id must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) listContacts(c *gin.Context) {
	var q dto.ListContactsDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.contacts.List(c.Request.Context(), middleware.CurrentUser(c), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) getContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	contact, err := h.contacts.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *Handler) createContact(c *gin.Context) {
	var body dto.ContactDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	contact, err := h.contacts.Create(c.Request.Context(), middleware.CurrentUser(c), body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *Handler) updateContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	var body dto.ContactDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}
	contact, err := h.contacts.Update(c.Request.Context(), middleware.CurrentUser(c), id, body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (h *Handler) deleteContact(c *gin.Context) {
	id, ok := contactID(c)
	if !ok {
		return
	}
	if _, err := h.contacts.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) searchContacts(c *gin.Context) {
	var q dto.SearchContactsDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	found, err := h.contacts.Search(c.Request.Context(), middleware.CurrentUser(c), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) upcomingBirthdays(c *gin.Context) {
	var q dto.BirthdaysDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.contacts.UpcomingBirthdays(c.Request.Context(), middleware.CurrentUser(c), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

/* ─────────────────────────────── health ─────────────────────────────── */

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("component", name), zap.Error(err))
			report[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "components": report, "time": time.Now().Unix()})
}

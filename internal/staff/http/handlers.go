package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
	"github.com/sitecrew-app/sitecrew-backend/internal/session"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/service"
)

// AddStaff provisions a new employee or admin account. Super admin only.
func (h *Handler) AddStaff(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	if caller.RoleType != domain.RoleSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
		return
	}

	var body addStaffRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.provision.Provision(c.Request.Context(), &domain.ProvisionRequest{
		Name:                 body.Name,
		PhoneNumber:          body.PhoneNumber,
		Email:                body.Email,
		Password:             body.Password,
		JobRole:              body.JobRole,
		AssignedSiteLocation: body.AssignedSiteLocation,
		WorkingSchedule:      body.WorkingSchedule,
		RoleType:             body.RoleType,
		Approved:             body.Approved,
	})
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
		case errors.Is(err, identity.ErrEmailAlreadyInUse):
			c.JSON(http.StatusConflict, gin.H{"error": "this email address is already registered"})
		case errors.Is(err, identity.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": "password is too weak, please choose a stronger password"})
		case errors.Is(err, identity.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a valid email address"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add employee"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": profile})
}

// GetProfile returns the caller's own profile
func (h *Handler) GetProfile(c *gin.Context) {
	profile, ok := h.caller(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// UpdateProfile saves edits to the caller's own profile. No screen updates
// another user's record.
func (h *Handler) UpdateProfile(c *gin.Context) {
	profile, ok := h.caller(c)
	if !ok {
		return
	}

	var body updateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess := service.NewEditSession(profile)
	if err := sess.Begin(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	*sess.Form() = domain.ProfilePatch{
		Name:                 body.Name,
		PhoneNumber:          body.PhoneNumber,
		JobRole:              body.JobRole,
		AssignedSiteLocation: body.AssignedSiteLocation,
		WorkingSchedule:      body.WorkingSchedule,
	}

	if err := sess.Save(c.Request.Context(), h.profiles); err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile, please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": sess.Record()})
}

// GetRoster lists approved employees for the caller's site. Admins see
// their own assigned site; a super admin may pass ?site= explicitly.
func (h *Handler) GetRoster(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var (
		employees []domain.StaffProfile
		stats     *domain.RosterStats
		err       error
	)

	switch {
	case c.Query("site") != "":
		if caller.RoleType != domain.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "super admin access required"})
			return
		}
		employees, stats, err = h.roster.List(c.Request.Context(), c.Query("site"))
	case caller.RoleType == domain.RoleAdmin || caller.RoleType == domain.RoleSuperAdmin:
		employees, stats, err = h.roster.ListForAdmin(c.Request.Context(), caller.UID)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSiteAssigned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no assigned site location"})
		case errors.Is(err, domain.ErrProfileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "admin profile not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch employees data"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"employees": employees, "stats": stats})
}

// SignOut tears down the caller's session.
func (h *Handler) SignOut(c *gin.Context) {
	uid := session.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.sessions.SignOut(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// caller resolves the authenticated identity's profile, writing the error
// response itself when that fails.
func (h *Handler) caller(c *gin.Context) (*domain.StaffProfile, bool) {
	uid := session.UserUID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	profile, err := h.profiles.Fetch(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile data"})
		}
		return nil, false
	}

	return profile, true
}

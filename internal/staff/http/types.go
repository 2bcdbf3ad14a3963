package http

import (
	"context"

	"github.com/sitecrew-app/sitecrew-backend/internal/staff/service"
)

// SessionGateway is the slice of the session broker the handlers need.
type SessionGateway interface {
	SignOut(ctx context.Context, uid string) error
}

type Handler struct {
	provision *service.ProvisionService
	profiles  *service.ProfileService
	roster    *service.RosterService
	sessions  SessionGateway
}

func New(provision *service.ProvisionService, profiles *service.ProfileService, roster *service.RosterService, sessions SessionGateway) *Handler {
	return &Handler{
		provision: provision,
		profiles:  profiles,
		roster:    roster,
		sessions:  sessions,
	}
}

// addStaffRequest is the provisioning payload sent by the super-admin screen.
type addStaffRequest struct {
	Name                 string `json:"name"`
	PhoneNumber          string `json:"phone_number"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	JobRole              string `json:"job_role"`
	AssignedSiteLocation string `json:"assigned_site_location"`
	WorkingSchedule      string `json:"working_schedule"`
	RoleType             string `json:"role_type"`
	Approved             bool   `json:"approved"`
}

// updateProfileRequest carries the mutable profile fields.
type updateProfileRequest struct {
	Name                 string `json:"name"`
	PhoneNumber          string `json:"phone_number"`
	JobRole              string `json:"job_role"`
	AssignedSiteLocation string `json:"assigned_site_location"`
	WorkingSchedule      string `json:"working_schedule"`
}

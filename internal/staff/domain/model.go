package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role constants for the roleType field
const (
	RoleEmployee   = "employee"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// StaffProfile is the profile document stored in the users collection.
// The Firestore field names predate this service and are kept as-is so the
// existing mobile clients keep working against the same collection.
type StaffProfile struct {
	DocID                string    `json:"id" firestore:"-"`
	UID                  string    `json:"uid" firestore:"uid"`
	Name                 string    `json:"name" firestore:"name"`
	Email                string    `json:"email" firestore:"email"`
	PhoneNumber          string    `json:"phone_number" firestore:"phoneNumber"`
	JobRole              string    `json:"job_role" firestore:"jobRole"`
	AssignedSiteLocation string    `json:"assigned_site_location" firestore:"assignedSiteLocation"`
	WorkingSchedule      string    `json:"working_schedule" firestore:"workingSchedule"`
	RoleType             string    `json:"role_type" firestore:"type"`
	Approved             bool      `json:"approved" firestore:"action"`
	CreatedBy            string    `json:"created_by,omitempty" firestore:"createdBy"`
	CreatedAt            time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt            time.Time `json:"updated_at,omitempty" firestore:"updatedAt,omitempty"`
}

// ProfilePatch carries the mutable profile fields. Name and PhoneNumber are
// required; the rest may be empty.
type ProfilePatch struct {
	Name                 string `json:"name"`
	PhoneNumber          string `json:"phone_number"`
	JobRole              string `json:"job_role"`
	AssignedSiteLocation string `json:"assigned_site_location"`
	WorkingSchedule      string `json:"working_schedule"`
}

// Trim returns a copy with every field whitespace-trimmed.
func (p ProfilePatch) Trim() ProfilePatch {
	return ProfilePatch{
		Name:                 strings.TrimSpace(p.Name),
		PhoneNumber:          strings.TrimSpace(p.PhoneNumber),
		JobRole:              strings.TrimSpace(p.JobRole),
		AssignedSiteLocation: strings.TrimSpace(p.AssignedSiteLocation),
		WorkingSchedule:      strings.TrimSpace(p.WorkingSchedule),
	}
}

// ProvisionRequest is the input to account provisioning.
type ProvisionRequest struct {
	Name                 string
	PhoneNumber          string
	Email                string
	Password             string
	JobRole              string
	AssignedSiteLocation string
	WorkingSchedule      string
	RoleType             string
	Approved             bool
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the request field by field and reports the first failure.
// No remote call may happen before this passes.
func (r *ProvisionRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: "please enter employee name"}
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return &ValidationError{Field: "phone_number", Message: "please enter phone number"}
	}
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Message: "please enter email address"}
	}
	if len(r.Password) < 6 {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters long"}
	}
	if strings.TrimSpace(r.JobRole) == "" {
		return &ValidationError{Field: "job_role", Message: "please enter job role"}
	}
	if strings.TrimSpace(r.AssignedSiteLocation) == "" {
		return &ValidationError{Field: "assigned_site_location", Message: "please enter assigned site location"}
	}
	if strings.TrimSpace(r.WorkingSchedule) == "" {
		return &ValidationError{Field: "working_schedule", Message: "please enter working schedule"}
	}
	if !emailPattern.MatchString(r.Email) {
		return &ValidationError{Field: "email", Message: "please enter a valid email address"}
	}
	if r.RoleType != RoleEmployee && r.RoleType != RoleAdmin {
		return &ValidationError{Field: "role_type", Message: "role type must be employee or admin"}
	}
	return nil
}

// RosterStats is the headcount summary shown on the admin dashboard.
type RosterStats struct {
	TotalEmployees int `json:"total_employees"`
	PresentToday   int `json:"present_today"`
	AbsentToday    int `json:"absent_today"`
	OnLeave        int `json:"on_leave"`
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
)

// IdentityProvider is the slice of the identity backend the provisioner needs.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	RevokeSessions(ctx context.Context, uid string) error
}

// ProfileStore is the slice of the document store shared by the staff services.
type ProfileStore interface {
	Create(ctx context.Context, p *domain.StaffProfile) (string, error)
	GetByUID(ctx context.Context, uid string) (*domain.StaffProfile, error)
	Update(ctx context.Context, docID string, patch domain.ProfilePatch, updatedAt time.Time) (*domain.StaffProfile, error)
}

// OrphanLedger records identities whose profile write and compensating
// deletion both failed, for the reconciliation sweeper to retry.
type OrphanLedger interface {
	RecordOrphan(ctx context.Context, uid, email, reason string) error
}

// ProvisionService creates a new identity plus profile record for an
// employee or admin. The three remote steps are strictly ordered: the
// identity must exist before the profile references it, and the new
// identity's sessions are revoked right after its single write so the
// invoking super-admin session is never displaced.
type ProvisionService struct {
	ids    IdentityProvider
	store  ProfileStore
	ledger OrphanLedger // may be nil; orphans are then only logged
	now    func() time.Time
}

func NewProvisionService(ids IdentityProvider, store ProfileStore, ledger OrphanLedger) *ProvisionService {
	return &ProvisionService{
		ids:    ids,
		store:  store,
		ledger: ledger,
		now:    time.Now,
	}
}

// Provision validates the request, creates the identity, writes the profile
// and revokes the new identity's sessions. If the profile write fails after
// the identity was created, the identity is deleted again; if that also
// fails the orphan goes to the ledger. Provisioning is not idempotent: a
// retry after a partial failure reports email-already-in-use.
func (s *ProvisionService) Provision(ctx context.Context, req *domain.ProvisionRequest) (*domain.StaffProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uid, err := s.ids.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// Employees are visible immediately; admin visibility follows the
	// approval checkbox.
	approved := true
	if req.RoleType == domain.RoleAdmin {
		approved = req.Approved
	}

	profile := &domain.StaffProfile{
		UID:                  uid,
		Name:                 req.Name,
		Email:                req.Email,
		PhoneNumber:          req.PhoneNumber,
		JobRole:              req.JobRole,
		AssignedSiteLocation: req.AssignedSiteLocation,
		WorkingSchedule:      req.WorkingSchedule,
		RoleType:             req.RoleType,
		Approved:             approved,
		CreatedBy:            domain.RoleSuperAdmin,
		CreatedAt:            s.now(),
	}

	if _, err := s.store.Create(ctx, profile); err != nil {
		s.compensate(ctx, uid, req.Email, err)
		return nil, fmt.Errorf("write profile: %w", err)
	}

	if err := s.ids.RevokeSessions(ctx, uid); err != nil {
		// The account and profile exist; the stale session expires with the
		// ID token, so this is not worth failing the whole operation for.
		log.Printf("[warn] provision: revoke sessions for %s: %v", uid, err)
	}

	return profile, nil
}

// compensate deletes the identity left behind by a failed profile write.
func (s *ProvisionService) compensate(ctx context.Context, uid, email string, cause error) {
	if err := s.ids.DeleteUser(ctx, uid); err == nil {
		return
	} else if s.ledger == nil {
		log.Printf("[error] provision: orphaned identity %s (%s), no ledger configured: %v", uid, email, err)
		return
	}

	if err := s.ledger.RecordOrphan(ctx, uid, email, cause.Error()); err != nil {
		log.Printf("[error] provision: record orphan %s: %v", uid, err)
	}
}

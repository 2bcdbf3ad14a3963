package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
)

type fakeIdentity struct {
	nextUID   string
	createErr error
	deleteErr error
	revokeErr error

	created  []string
	deleted  []string
	revoked  []string
	existing map[string]bool
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.existing[email] {
		return "", identity.ErrEmailAlreadyInUse
	}

	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[email] = true
	f.created = append(f.created, email)
	return f.nextUID, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

func (f *fakeIdentity) RevokeSessions(_ context.Context, uid string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, uid)
	return nil
}

type fakeLedger struct {
	recordErr error
	orphans   []string
}

func (f *fakeLedger) RecordOrphan(_ context.Context, uid, _, _ string) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.orphans = append(f.orphans, uid)
	return nil
}

// fakeStore implements ProfileStore and RosterStore over an in-memory map.
type fakeStore struct {
	createErr error
	updateErr error

	profiles map[string]*domain.StaffProfile // by doc ID

	rosterErr    error
	rosterResult []domain.StaffProfile
	allEmployees []domain.StaffProfile
	allErr       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]*domain.StaffProfile)}
}

func (f *fakeStore) Create(_ context.Context, p *domain.StaffProfile) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}

	docID := fmt.Sprintf("doc-%d", len(f.profiles)+1)
	cp := *p
	cp.DocID = docID
	f.profiles[docID] = &cp
	p.DocID = docID
	return docID, nil
}

func (f *fakeStore) GetByUID(_ context.Context, uid string) (*domain.StaffProfile, error) {
	for _, p := range f.profiles {
		if p.UID == uid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

func (f *fakeStore) Update(_ context.Context, docID string, patch domain.ProfilePatch, updatedAt time.Time) (*domain.StaffProfile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	p, ok := f.profiles[docID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}

	p.Name = patch.Name
	p.PhoneNumber = patch.PhoneNumber
	p.JobRole = patch.JobRole
	p.AssignedSiteLocation = patch.AssignedSiteLocation
	p.WorkingSchedule = patch.WorkingSchedule
	p.UpdatedAt = updatedAt

	cp := *p
	return &cp, nil
}

func (f *fakeStore) QueryRoster(_ context.Context, _ string) ([]domain.StaffProfile, error) {
	if f.rosterErr != nil {
		return nil, f.rosterErr
	}
	return f.rosterResult, nil
}

func (f *fakeStore) QueryApprovedEmployees(_ context.Context) ([]domain.StaffProfile, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.allEmployees, nil
}

func validProvisionRequest() *domain.ProvisionRequest {
	return &domain.ProvisionRequest{
		Name:                 "Jane Field",
		PhoneNumber:          "+1 234 567 8900",
		Email:                "jane@example.com",
		Password:             "secret1",
		JobRole:              "Site Supervisor",
		AssignedSiteLocation: "Branch A",
		WorkingSchedule:      "9 AM - 5 PM, Mon-Fri",
		RoleType:             domain.RoleEmployee,
	}
}

package service

import (
	"context"
	"time"

	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
)

// ProfileService fetches the caller's own profile and applies edits to it.
// The in-memory view a caller holds is updated only after the remote write
// acknowledges, never optimistically. There is no server-side lock:
// concurrent saves to the same record are last-write-wins.
type ProfileService struct {
	store ProfileStore
	now   func() time.Time
}

func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{
		store: store,
		now:   time.Now,
	}
}

// Fetch retrieves the profile for an identity. Returns
// domain.ErrProfileNotFound when no record matches, distinct from
// transport failures.
func (s *ProfileService) Fetch(ctx context.Context, uid string) (*domain.StaffProfile, error) {
	return s.store.GetByUID(ctx, uid)
}

// Save trims and validates the patch, stamps updatedAt and persists it,
// returning the merged record. Name and phone number are required; the
// other patch fields may be empty.
func (s *ProfileService) Save(ctx context.Context, docID string, patch domain.ProfilePatch) (*domain.StaffProfile, error) {
	patch = patch.Trim()

	if patch.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Message: "please fill in all required fields"}
	}
	if patch.PhoneNumber == "" {
		return nil, &domain.ValidationError{Field: "phone_number", Message: "please fill in all required fields"}
	}

	return s.store.Update(ctx, docID, patch, s.now())
}

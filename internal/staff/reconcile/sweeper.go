package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
	"github.com/sitecrew-app/sitecrew-backend/internal/storage/postgres"
)

const sweepBatchSize = 50

// Ledger is the slice of the reconciliation store the sweeper needs.
type Ledger interface {
	ListUnresolved(ctx context.Context, limit int) ([]postgres.Orphan, error)
	MarkResolved(ctx context.Context, id string) error
}

// IdentityDeleter removes an orphaned identity.
type IdentityDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// Sweeper periodically retries deletion of identities that provisioning
// left orphaned (profile write failed, compensation failed too).
type Sweeper struct {
	ledger Ledger
	ids    IdentityDeleter
	c      *cron.Cron
}

func NewSweeper(ledger Ledger, ids IdentityDeleter) *Sweeper {
	return &Sweeper{
		ledger: ledger,
		ids:    ids,
	}
}

// Start schedules the sweep on a cron spec such as "@every 10m".
func (s *Sweeper) Start(spec string) error {
	s.c = cron.New()
	_, err := s.c.AddFunc(spec, func() {
		if err := s.Sweep(context.Background()); err != nil {
			log.Printf("[error] reconcile: sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule orphan sweep: %w", err)
	}

	s.c.Start()
	log.Printf("Orphan sweeper started (%s)", spec)
	return nil
}

func (s *Sweeper) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

// Sweep deletes each unresolved orphan identity and marks the row resolved.
// An identity that is already gone counts as resolved.
func (s *Sweeper) Sweep(ctx context.Context) error {
	orphans, err := s.ledger.ListUnresolved(ctx, sweepBatchSize)
	if err != nil {
		return err
	}

	for _, o := range orphans {
		err := s.ids.DeleteUser(ctx, o.UID)
		if err != nil && !errors.Is(err, identity.ErrUserNotFound) {
			log.Printf("[warn] reconcile: delete orphan %s: %v", o.UID, err)
			continue
		}

		if err := s.ledger.MarkResolved(ctx, o.ID); err != nil {
			log.Printf("[warn] reconcile: mark orphan %s resolved: %v", o.ID, err)
		}
	}

	return nil
}

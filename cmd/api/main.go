package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/sitecrew-app/sitecrew-backend/config"
	"github.com/sitecrew-app/sitecrew-backend/internal/bootstrap"
	"github.com/sitecrew-app/sitecrew-backend/internal/identity"
	"github.com/sitecrew-app/sitecrew-backend/internal/session"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/reconcile"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/repository"
	"github.com/sitecrew-app/sitecrew-backend/internal/staff/service"
	"github.com/sitecrew-app/sitecrew-backend/internal/storage/postgres"
)

const serviceName = "sitecrew-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	app, err := identity.InitializeApp(&cfg.Firebase)
	if err != nil {
		log.Fatalf("init firebase: %v", err)
	}

	ids, err := identity.NewClient(ctx, app)
	if err != nil {
		log.Fatalf("init auth client: %v", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("init firestore client: %v", err)
	}
	defer fs.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	broker := session.NewBroker(rdb, ids)
	defer broker.Close()

	profileRepo := repository.NewProfileRepository(fs)

	// The reconciliation ledger is optional; without it orphaned identities
	// are only logged.
	var ledger service.OrphanLedger
	var sweeper *reconcile.Sweeper
	if cfg.Database.DSN != "" {
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			log.Fatalf("init ledger db: %v", err)
		}
		defer db.Close()

		pl := postgres.NewProvisionLedger(db)
		ledger = pl
		sweeper = reconcile.NewSweeper(pl, ids)
	}

	provision := service.NewProvisionService(ids, profileRepo, ledger)
	profiles := service.NewProfileService(profileRepo)
	roster := service.NewRosterService(profileRepo, profileRepo)

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Verifier:       ids,
		Broker:         broker,
		Provision:      provision,
		Profiles:       profiles,
		Roster:         roster,
	})

	if sweeper != nil {
		if err := sweeper.Start(cfg.App.SweepSchedule); err != nil {
			log.Fatalf("start sweeper: %v", err)
		}
		defer sweeper.Stop()
	}

	log.Printf("listening on :%s", cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}

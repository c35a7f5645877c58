package commands

import (
	"context"
	"log/slog"

	"campusnet-client/lib/cachestore"
	"campusnet-client/lib/configutil"
	"campusnet-client/lib/gradelog"
	campusnet "campusnet-client/lib/scrapers/campusnet"
	"campusnet-client/lib/sqliteutil"
	"campusnet-client/lib/util/serviceutil"
	"campusnet-client/services/syncer"

	"github.com/dgraph-io/badger/v4"
)

type Config struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	cacheDir *string
	gradesDb *string
)

func init() {
	cacheDir = rootCmd.PersistentFlags().String("cache", ".dev/cache", "The directory holding the snapshot cache.")
	gradesDb = rootCmd.PersistentFlags().String("grades-db", ".dev/grades.db", "The database to record grade snapshots to.")
}

// createService reads config.json5, logs in and wires the full
// service. pass username "demo", password "demo" to stay offline.
func createService(ctx context.Context) (syncer.Service, func()) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	client, err := campusnet.NewClient(campusnet.ClientOptions{
		BaseUrl: cfg.BaseUrl,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}

	cache, err := badger.Open(
		badger.DefaultOptions(*cacheDir).WithLogger(nil),
	)
	if err != nil {
		serviceutil.Fatal("failed to open snapshot cache", err)
	}

	db, err := sqliteutil.OpenDB(gradelog.Schema, *gradesDb)
	if err != nil {
		serviceutil.Fatal("failed to open grade history db", err)
	}

	history := gradelog.NewStore(db)
	service := syncer.NewService(syncer.Options{
		Client:  client,
		Cache:   cachestore.NewStore(cache, cachestore.Options{}),
		History: &history,
	})

	slog.Info("logging in", "username", cfg.Username)
	if err := service.Login(ctx, cfg.Username, cfg.Password); err != nil {
		serviceutil.Fatal("failed to login", err)
	}

	return service, func() {
		db.Close()
		cache.Close()
	}
}

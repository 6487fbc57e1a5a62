package cmd

import (
	"log"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/rm-hull/godx"

	"github.com/rm-hull/inventory-console/internal/config"
	"github.com/rm-hull/inventory-console/internal/credentials"
	"github.com/rm-hull/inventory-console/internal/gateway"
	"github.com/rm-hull/inventory-console/internal/inventory"
	"github.com/rm-hull/inventory-console/internal/notify"
)

// Options are the persistent flags shared by every command. Empty values
// fall back to the environment.
type Options struct {
	SessionDB string
	BaseURL   string
}

type session struct {
	cfg     *config.Config
	store   *credentials.SQLiteStore
	gateway *gateway.Gateway
	client  *inventory.Client
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		log.Printf("failed to close session store: %v", err)
	}
}

func loadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if opts.SessionDB != "" {
		cfg.SessionDB = opts.SessionDB
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return cfg, nil
}

// bootstrap opens the persisted session and builds a gateway on top of it.
// Notifications go to sink.
func bootstrap(opts Options, sink notify.Sink) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	store, err := credentials.OpenSQLiteStore(cfg.SessionDB)
	if err != nil {
		return nil, err
	}

	gw := gateway.New(gateway.Config{
		BaseURL:        cfg.BaseURL,
		LoginPath:      cfg.LoginPath,
		RefreshPath:    cfg.RefreshPath,
		RefreshTimeout: cfg.RefreshTimeout,
		HTTPClient:     &http.Client{Timeout: cfg.RequestTimeout},
	}, store, sink)

	return &session{
		cfg:     cfg,
		store:   store,
		gateway: gw,
		client:  inventory.NewClient(gw),
	}, nil
}

func diagnostics() {
	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()
}

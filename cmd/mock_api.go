package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/rm-hull/inventory-console/internal/mockapi"
)

func MockApi(opts Options, port int) error {

	diagnostics()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set, tokens will not survive a restart")
	}

	server, err := mockapi.New(mockapi.Config{
		Username:       cfg.MockUsername,
		Password:       cfg.MockPassword,
		Secret:         cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting mock inventory API on port %d (access tokens live for %s)...", port, cfg.AccessTokenTTL)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("mock API failed to start on port %d: %v", port, err)
	}

	return nil
}

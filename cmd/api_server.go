package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Depado/ginprom"
	"github.com/aurowora/compress"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"

	"github.com/rm-hull/inventory-console/internal/dashboard"
	"github.com/rm-hull/inventory-console/internal/notify"
	"github.com/rm-hull/inventory-console/internal/routes"
)

func ApiServer(opts Options, port int, debug bool) error {

	diagnostics()

	feed := notify.NewFeed(0)
	sess, err := bootstrap(opts, notify.Multi(notify.NewLogSink(), feed))
	if err != nil {
		return err
	}
	defer sess.Close()

	summaries := dashboard.NewService(sess.client, dashboard.DefaultCacheTTL)
	if _, err := dashboard.StartCron(summaries); err != nil {
		return fmt.Errorf("failed to start CRON jobs: %w", err)
	}

	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
		compress.Compress(),
		cors.Default(),
	)

	if debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err = healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{
		sess.store.Check(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize healthcheck: %v", err)
	}

	routes.Register(r.Group("/v1"), routes.Console{
		Collections: sess.client,
		Dashboard:   summaries,
		Feed:        feed,
		Session:     sess.gateway,
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting HTTP API Server on port %d, forwarding to %s...", port, sess.cfg.BaseURL)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP API Server failed to start on port %d: %v", port, err)
	}

	return nil
}

package dashboard

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rm-hull/inventory-console/internal/inventory"
)

const CRON_SCHEDULE_WARM = "*/10 * * * *" // Every 10 minutes

const warmTimeout = 2 * time.Minute

func StartCron(svc *Service) (*cron.Cron, error) {

	c := cron.New()

	log.Print("Starting CRON job to keep the dashboard summary warm")

	if _, err := c.AddFunc(CRON_SCHEDULE_WARM, func() {
		ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
		defer cancel()

		summary, err := svc.Refresh(ctx)
		if err != nil {
			log.Printf("Error refreshing dashboard: %v\n", err)
			return
		}
		log.Printf("Refreshed dashboard summary over %d products", summary.Counts[inventory.Products])
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

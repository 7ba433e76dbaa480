package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"databroker/internal/amqpclient"
)

type Scheduler struct {
	c    *cron.Cron
	amqp *amqpclient.Client
}

func NewScheduler(amqp *amqpclient.Client) *Scheduler {
	return &Scheduler{
		c:    cron.New(),
		amqp: amqp,
	}
}

// Start schedules a periodic broker health probe. A dropped AMQP connection
// is re-dialed; provisioning state lives on the broker and in the
// credential store, so nothing needs re-declaring after reconnect.
func (s *Scheduler) Start() {
	if s.amqp == nil {
		return
	}
	_, _ = s.c.AddFunc("@every 30s", func() {
		hs := s.amqp.Health()
		if !hs.OK {
			log.Printf("[cron] broker unhealthy: %s - attempting reconnect", hs.Details)
			if err := s.amqp.Connect(); err != nil {
				log.Printf("[cron] reconnect failed: %v", err)
				return
			}
			log.Printf("[cron] reconnected at %s", time.Now().Format(time.RFC3339))
		}
	})
	s.c.Start()
}

func (s *Scheduler) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

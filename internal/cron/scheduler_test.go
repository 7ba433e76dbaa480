package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"databroker/internal/amqpclient"
)

func TestSchedulerNilClient(t *testing.T) {
	s := NewScheduler(nil)
	// Start is a no-op without a client; Stop must still be safe.
	s.Start()
	s.Stop()
	assert.NotNil(t, s)
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(amqpclient.New("amqp://localhost:5672/"))
	s.Start()
	s.Stop()
}

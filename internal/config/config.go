package config

import (
	"errors"
	"fmt"
	"strconv"
)

type LookupFunc func(key string) (string, bool)

// Fixed broker-side names. The provisioner binds adaptor exchanges to these
// pre-provisioned queues and never creates or deletes them per adaptor.
const (
	QueueData        = "data"
	QueueAdaptorLogs = "adaptorLogs"

	ExchangeType = "topic"

	// Routing key suffixes appended to the adaptor id when binding.
	RoutingKeyDataWildcard    = ".*"
	RoutingKeyHeartbeat       = "heartbeat"
	RoutingKeyDataIssue       = "data-issue"
	RoutingKeyDownstreamIssue = "downstream-issue"

	// Arguments applied when a queue is created through the directory API.
	QueueMessageTTL = 86400000
	QueueMaxLength  = 10000
	QueueMode       = "lazy"
)

type Config struct {
	AppHost       string
	AppPort       string
	PostgresURI   string
	RabbitAMQPURI string
	RabbitHTTPURI string

	// Broker connection parameters echoed verbatim in successful
	// registration records, not derived per call.
	BrokerHost  string
	BrokerPort  int
	BrokerVhost string
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func LoadFromEnv(lookup LookupFunc) (Config, error) {
	cfg := Config{}

	var ok bool
	if cfg.AppHost, ok = lookup("APP_HOST"); !ok || cfg.AppHost == "" {
		return Config{}, errors.New("APP_HOST is required")
	}
	if cfg.AppPort, ok = lookup("APP_PORT"); !ok || cfg.AppPort == "" {
		return Config{}, errors.New("APP_PORT is required")
	}

	// Optional at this stage; validated when specific integrations are enabled
	if cfg.PostgresURI, ok = lookup("POSTGRES_URI"); !ok {
		cfg.PostgresURI = ""
	}
	if cfg.RabbitAMQPURI, ok = lookup("RABBITMQ_AMQP_URI"); !ok {
		cfg.RabbitAMQPURI = ""
	}
	if cfg.RabbitHTTPURI, ok = lookup("RABBITMQ_HTTP_URI"); !ok {
		cfg.RabbitHTTPURI = ""
	}

	if cfg.BrokerHost, ok = lookup("BROKER_HOST"); !ok || cfg.BrokerHost == "" {
		cfg.BrokerHost = "localhost"
	}
	cfg.BrokerPort = 5672
	if port, ok := lookup("BROKER_PORT"); ok && port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("BROKER_PORT must be numeric: %w", err)
		}
		cfg.BrokerPort = n
	}
	if cfg.BrokerVhost, ok = lookup("BROKER_VHOST"); !ok || cfg.BrokerVhost == "" {
		cfg.BrokerVhost = "/"
	}
	return cfg, nil
}

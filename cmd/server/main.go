package main

import (
	"log"
	"os"

	"databroker/internal/adaptor"
	"databroker/internal/amqpclient"
	"databroker/internal/config"
	appcron "databroker/internal/cron"
	"databroker/internal/credstore"
	"databroker/internal/db"
	"databroker/internal/gateway"
	"databroker/internal/server"
	"databroker/internal/topology"
)

func main() {
	cfg, err := config.LoadFromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	if cfg.RabbitHTTPURI == "" {
		log.Fatal("RABBITMQ_HTTP_URI is required")
	}
	gw := gateway.New(cfg.RabbitHTTPURI)

	amqp := amqpclient.New(cfg.RabbitAMQPURI)
	if err := amqp.Connect(); err != nil {
		log.Fatalf("failed to connect to broker: %v", err)
	}

	sched := appcron.NewScheduler(amqp)
	sched.Start()
	defer func() {
		sched.Stop()
		_ = amqp.Close()
	}()

	creds := credstore.NewStore(database.DB)
	adaptors := adaptor.NewService(gw, creds, amqp, cfg)
	topo := topology.NewService(gw, cfg.BrokerVhost)

	s := server.New(cfg, adaptors, topo)
	if err := s.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

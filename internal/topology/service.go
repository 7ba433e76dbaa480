// Package topology exposes the flat directory operations on broker objects:
// vhost, exchange, queue, and binding CRUD used for administration outside
// the provisioning workflow.
package topology

import (
	"errors"
	"log"

	"databroker/internal/gateway"
)

// Gateway is the directory slice of the management API.
type Gateway interface {
	CreateVhost(vhost string) (gateway.Outcome, error)
	DeleteVhost(vhost string) error
	ListVhosts() ([]string, error)
	CreateExchange(vhost, name string) (gateway.Outcome, error)
	GetExchange(vhost, name string) (map[string]interface{}, error)
	DeleteExchange(vhost, name string) error
	ListExchangeBindings(vhost, exchange string) ([]gateway.Binding, error)
	CreateQueue(vhost, name string) (gateway.Outcome, error)
	GetQueue(vhost, name string) (map[string]interface{}, error)
	DeleteQueue(vhost, name string) error
	ListQueueBindings(vhost, queue string) ([]gateway.Binding, error)
	BindQueue(vhost, exchange, queue, routingKey string) error
	UnbindQueue(vhost, exchange, queue, routingKey string) error
}

type Service struct {
	gw    Gateway
	vhost string
}

func NewService(gw Gateway, vhost string) *Service {
	return &Service{gw: gw, vhost: vhost}
}

func (s *Service) CreateVhost(name string) (gateway.Outcome, error) {
	return s.gw.CreateVhost(name)
}

func (s *Service) DeleteVhost(name string) error {
	return s.gw.DeleteVhost(name)
}

func (s *Service) ListVhosts() ([]string, error) {
	return s.gw.ListVhosts()
}

func (s *Service) CreateExchange(name string) (gateway.Outcome, error) {
	return s.gw.CreateExchange(s.vhost, name)
}

func (s *Service) GetExchange(name string) (map[string]interface{}, error) {
	return s.gw.GetExchange(s.vhost, name)
}

func (s *Service) DeleteExchange(name string) error {
	return s.gw.DeleteExchange(s.vhost, name)
}

// ListExchangeSubscribers merges the exchange's bindings into a map from
// destination queue to the set of routing keys bound to it. A destination
// appearing under several keys accumulates all of them.
func (s *Service) ListExchangeSubscribers(exchange string) (map[string][]string, error) {
	bindings, err := s.gw.ListExchangeBindings(s.vhost, exchange)
	if err != nil {
		return nil, err
	}
	subscribers := map[string][]string{}
	for _, b := range bindings {
		subscribers[b.Destination] = append(subscribers[b.Destination], b.RoutingKey)
	}
	log.Printf("[topology] exchange %s has %d subscribers", exchange, len(subscribers))
	return subscribers, nil
}

func (s *Service) CreateQueue(name string) (gateway.Outcome, error) {
	return s.gw.CreateQueue(s.vhost, name)
}

func (s *Service) GetQueue(name string) (map[string]interface{}, error) {
	return s.gw.GetQueue(s.vhost, name)
}

func (s *Service) DeleteQueue(name string) error {
	return s.gw.DeleteQueue(s.vhost, name)
}

// ListQueueRoutingKeys returns the routing keys bound to a queue, skipping
// the default binding whose key equals the queue name.
func (s *Service) ListQueueRoutingKeys(queue string) ([]string, error) {
	bindings, err := s.gw.ListQueueBindings(s.vhost, queue)
	if err != nil {
		return nil, err
	}
	keys := []string{}
	for _, b := range bindings {
		if b.RoutingKey != "" && b.RoutingKey != queue {
			keys = append(keys, b.RoutingKey)
		}
	}
	return keys, nil
}

// BindQueue creates one binding per routing key. The calls are independent;
// the first failure aborts the remainder and is reported for the aggregate.
func (s *Service) BindQueue(exchange, queue string, routingKeys []string) error {
	for _, key := range routingKeys {
		if err := s.gw.BindQueue(s.vhost, exchange, queue, key); err != nil {
			return err
		}
	}
	return nil
}

// UnbindQueue deletes one binding per routing key.
func (s *Service) UnbindQueue(exchange, queue string, routingKeys []string) error {
	for _, key := range routingKeys {
		if err := s.gw.UnbindQueue(s.vhost, exchange, queue, key); err != nil {
			return err
		}
	}
	return nil
}

// IsNotFound reports whether err is the gateway's not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, gateway.ErrNotFound)
}

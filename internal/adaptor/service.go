// Package adaptor implements adaptor provisioning and decommissioning: the
// multi-step workflow that creates (or detects) the broker user, exchange,
// topic permission, and fixed-queue bindings a publisher needs, and its
// inverse. There is no transaction spanning the broker and the credential
// store; the workflow relies on fixed step ordering and idempotent-or-
// detectable steps instead. A failed step short-circuits the rest and no
// partial registration record is ever returned. No compensation is
// performed: partial broker state left by a mid-sequence failure is an
// operator concern.
package adaptor

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"databroker/internal/config"
	"databroker/internal/gateway"
	"databroker/internal/identity"
	"databroker/internal/models"
)

// Step failures. Each wraps the underlying cause and names the step that
// aborted the workflow.
var (
	ErrUserCreation     = errors.New("user creation failed")
	ErrExchangeConflict = errors.New("exchange exists with different properties")
	ErrExchangeCreation = errors.New("exchange creation failed")
	ErrPermission       = errors.New("topic permission set failed")
	ErrBinding          = errors.New("queue binding failed")
	ErrDecommission     = errors.New("decommission failed")
)

// Gateway is the slice of the management API the workflow consumes.
type Gateway interface {
	UserExists(userID string) (bool, error)
	CreateUser(userID, password string) (gateway.Outcome, error)
	SetVhostPermissions(vhost, userID string) (gateway.Outcome, error)
	CreateExchange(vhost, name string) (gateway.Outcome, error)
	SetTopicPermissions(vhost, userID, exchange string) (gateway.Outcome, error)
	GetExchange(vhost, name string) (map[string]interface{}, error)
}

// CredentialStore persists generated secrets keyed by derived user id.
type CredentialStore interface {
	Lookup(userID string) (string, bool, error)
	Insert(userID, secret string) error
}

// Binder performs the AMQP-side operations: binding the fixed queues and
// deleting exchanges.
type Binder interface {
	BindQueue(queue, exchange, routingKey string) error
	DeleteExchange(name string) error
}

type Service struct {
	gw     Gateway
	creds  CredentialStore
	binder Binder
	cfg    config.Config
}

func NewService(gw Gateway, creds CredentialStore, binder Binder, cfg config.Config) *Service {
	return &Service{gw: gw, creds: creds, binder: binder, cfg: cfg}
}

// Register provisions the full topology for one adaptor and returns the
// registration record. Steps run strictly in order: ensure user, create
// exchange, set topic permission, bind fixed queues. Re-registering an
// already provisioned adaptor succeeds and returns the originally stored
// secret.
func (s *Service) Register(req models.RegisterRequest) (*models.Registration, error) {
	userID, err := identity.DeriveUserID(req.Consumer)
	if err != nil {
		return nil, err
	}
	adaptorID, err := identity.DeriveAdaptorID(req.Provider, req.ResourceServer, req.ResourceGroup)
	if err != nil {
		return nil, err
	}

	secret, err := s.ensureUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserCreation, err)
	}
	log.Printf("[adaptor] user %s resolved", userID)

	outcome, err := s.gw.CreateExchange(s.cfg.BrokerVhost, adaptorID)
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrExchangeConflict, adaptorID)
		}
		return nil, fmt.Errorf("%w: %v", ErrExchangeCreation, err)
	}
	if outcome == gateway.AlreadyExists {
		// Idempotent re-registration: proceed with the existing exchange.
		log.Printf("[adaptor] exchange %s already exists, reusing", adaptorID)
	}

	if _, err := s.gw.SetTopicPermissions(s.cfg.BrokerVhost, userID, adaptorID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermission, err)
	}
	log.Printf("[adaptor] topic permission set for %s on %s", userID, adaptorID)

	if err := s.bindFixedQueues(adaptorID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBinding, err)
	}
	log.Printf("[adaptor] fixed queues bound for %s", adaptorID)

	return &models.Registration{
		UserID:    userID,
		APIKey:    secret,
		AdaptorID: adaptorID,
		URL:       s.cfg.BrokerHost,
		Port:      s.cfg.BrokerPort,
		Vhost:     s.cfg.BrokerVhost,
	}, nil
}

// ensureUser resolves the broker principal and its secret. An existing user
// reuses the stored secret; a fresh one gets a generated secret, vhost
// permissions, and a credential row, in that order.
func (s *Service) ensureUser(userID string) (string, error) {
	exists, err := s.gw.UserExists(userID)
	if err != nil {
		return "", err
	}
	if exists {
		secret, found, err := s.creds.Lookup(userID)
		if err != nil {
			return "", err
		}
		if !found {
			return "", fmt.Errorf("user %s exists on broker but has no stored credentials", userID)
		}
		return secret, nil
	}

	secret := identity.NewSecret()
	if _, err := s.gw.CreateUser(userID, secret); err != nil {
		return "", err
	}
	if _, err := s.gw.SetVhostPermissions(s.cfg.BrokerVhost, userID); err != nil {
		return "", err
	}
	if err := s.creds.Insert(userID, secret); err != nil {
		return "", err
	}
	log.Printf("[adaptor] created user %s", userID)
	return secret, nil
}

// bindFixedQueues binds the data queue and the adaptorLogs queue with the
// four fixed routing keys. The calls are issued concurrently; a failure
// does not retract its in-flight siblings, and the first failure to arrive
// is reported for the aggregate.
func (s *Service) bindFixedQueues(adaptorID string) error {
	bindings := []struct {
		queue      string
		routingKey string
	}{
		{config.QueueData, adaptorID + config.RoutingKeyDataWildcard},
		{config.QueueAdaptorLogs, adaptorID + config.RoutingKeyHeartbeat},
		{config.QueueAdaptorLogs, adaptorID + config.RoutingKeyDataIssue},
		{config.QueueAdaptorLogs, adaptorID + config.RoutingKeyDownstreamIssue},
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(bindings))
	for _, b := range bindings {
		wg.Add(1)
		go func(queue, key string) {
			defer wg.Done()
			if err := s.binder.BindQueue(queue, adaptorID, key); err != nil {
				errs <- fmt.Errorf("bind %s with key %s: %w", queue, key, err)
			}
		}(b.queue, b.routingKey)
	}
	wg.Wait()
	close(errs)
	return <-errs
}

// Deregister tears down an adaptor: the exchange is looked up and deleted.
// Bindings are left to the broker, which orphans them with the exchange.
// A missing exchange reports not-found without attempting the delete.
func (s *Service) Deregister(adaptorID string) error {
	if _, err := s.gw.GetExchange(s.cfg.BrokerVhost, adaptorID); err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDecommission, err)
	}
	if err := s.binder.DeleteExchange(adaptorID); err != nil {
		return fmt.Errorf("%w: %v", ErrDecommission, err)
	}
	log.Printf("[adaptor] deleted exchange %s", adaptorID)
	return nil
}

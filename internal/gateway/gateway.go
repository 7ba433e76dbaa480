// Package gateway is the client for the broker's management HTTP API. Each
// method issues one idempotent-intent call and translates the status code
// into a semantic outcome: created, already in the desired state, not found,
// or conflicting properties. Transport failures map to ErrUnavailable and
// are never retried here; retry policy belongs to the caller.
package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"databroker/internal/config"
)

var (
	// ErrUnavailable wraps any transport-level failure: connection refused,
	// timeout, malformed response.
	ErrUnavailable = errors.New("broker management API unavailable")

	// ErrNotFound reports an absent target on get/delete/list calls.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports an existing object whose properties differ from
	// the requested shape. Operator intervention is required; the caller
	// must not fold this into success.
	ErrConflict = errors.New("exists with different properties")
)

// Outcome distinguishes a state change from an idempotent no-op.
type Outcome int

const (
	Created Outcome = iota
	AlreadyExists
)

// Permission values understood by the broker ACL: ".*" allows everything,
// the empty string denies.
const (
	permAllow = ".*"
	permDeny  = ""
)

// Binding is one routing rule as reported by the management API.
type Binding struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	RoutingKey  string `json:"routing_key"`
}

type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// New builds a client from a management API URI. Credentials embedded in the
// URI are extracted and sent as basic auth; the stored URL never carries
// them.
func New(httpURI string) *Client {
	c := &Client{
		baseURL:  strings.TrimSuffix(httpURI, "/"),
		username: "guest",
		password: "guest",
		http:     &http.Client{},
	}
	if parsed, err := url.Parse(httpURI); err == nil && parsed.Host != "" {
		if parsed.User != nil {
			c.username = parsed.User.Username()
			if pwd, ok := parsed.User.Password(); ok {
				c.password = pwd
			}
		}
		c.baseURL = fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	}
	return c
}

// request performs one authenticated management API call. Names containing
// "/" or reserved characters must already be percent-encoded by the caller.
func (c *Client) request(method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+"/api"+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	return resp, nil
}

func encode(name string) string {
	return url.PathEscape(name)
}

// createOutcome folds the shared PUT-create status mapping.
func createOutcome(status int, what string) (Outcome, error) {
	switch status {
	case http.StatusCreated:
		return Created, nil
	case http.StatusNoContent:
		return AlreadyExists, nil
	case http.StatusBadRequest:
		return 0, fmt.Errorf("%s: %w", what, ErrConflict)
	default:
		return 0, fmt.Errorf("create %s: unexpected status %d", what, status)
	}
}

// CreateVhost creates a virtual host.
func (c *Client) CreateVhost(vhost string) (Outcome, error) {
	resp, err := c.request(http.MethodPut, "/vhosts/"+encode(vhost), nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return createOutcome(resp.StatusCode, "vhost "+vhost)
}

// DeleteVhost removes a virtual host.
func (c *Client) DeleteVhost(vhost string) error {
	resp, err := c.request(http.MethodDelete, "/vhosts/"+encode(vhost), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("vhost %s: %w", vhost, ErrNotFound)
	default:
		return fmt.Errorf("delete vhost %s: unexpected status %d", vhost, resp.StatusCode)
	}
}

// ListVhosts returns the names of all virtual hosts. An empty list is a
// valid result, distinct from not-found.
func (c *Client) ListVhosts() ([]string, error) {
	resp, err := c.request(http.MethodGet, "/vhosts", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var entries []struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
			return nil, fmt.Errorf("%w: decode vhost list: %v", ErrUnavailable, err)
		}
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name)
		}
		return names, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("list vhosts: unexpected status %d", resp.StatusCode)
	}
}

// CreateExchange declares a durable topic exchange named after the adaptor.
func (c *Client) CreateExchange(vhost, name string) (Outcome, error) {
	body := map[string]interface{}{
		"type":        config.ExchangeType,
		"durable":     true,
		"auto_delete": false,
	}
	resp, err := c.request(http.MethodPut, "/exchanges/"+encode(vhost)+"/"+encode(name), body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return createOutcome(resp.StatusCode, "exchange "+name)
}

// GetExchange fetches the exchange definition.
func (c *Client) GetExchange(vhost, name string) (map[string]interface{}, error) {
	resp, err := c.request(http.MethodGet, "/exchanges/"+encode(vhost)+"/"+encode(name), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var detail map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
			return nil, fmt.Errorf("%w: decode exchange %s: %v", ErrUnavailable, name, err)
		}
		return detail, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("exchange %s: %w", name, ErrNotFound)
	default:
		return nil, fmt.Errorf("get exchange %s: unexpected status %d", name, resp.StatusCode)
	}
}

// DeleteExchange removes an exchange.
func (c *Client) DeleteExchange(vhost, name string) error {
	resp, err := c.request(http.MethodDelete, "/exchanges/"+encode(vhost)+"/"+encode(name), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("exchange %s: %w", name, ErrNotFound)
	default:
		return fmt.Errorf("delete exchange %s: unexpected status %d", name, resp.StatusCode)
	}
}

// ListExchangeBindings returns the bindings whose source is the given
// exchange.
func (c *Client) ListExchangeBindings(vhost, exchange string) ([]Binding, error) {
	path := "/exchanges/" + encode(vhost) + "/" + encode(exchange) + "/bindings/source"
	return c.listBindings(path, "exchange "+exchange)
}

// CreateQueue declares a durable queue with the fixed TTL, length, and mode
// arguments.
func (c *Client) CreateQueue(vhost, name string) (Outcome, error) {
	body := map[string]interface{}{
		"durable": true,
		"arguments": map[string]interface{}{
			"x-message-ttl": config.QueueMessageTTL,
			"x-max-length":  config.QueueMaxLength,
			"x-queue-mode":  config.QueueMode,
		},
	}
	resp, err := c.request(http.MethodPut, "/queues/"+encode(vhost)+"/"+encode(name), body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return createOutcome(resp.StatusCode, "queue "+name)
}

// GetQueue fetches the queue definition.
func (c *Client) GetQueue(vhost, name string) (map[string]interface{}, error) {
	resp, err := c.request(http.MethodGet, "/queues/"+encode(vhost)+"/"+encode(name), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var detail map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
			return nil, fmt.Errorf("%w: decode queue %s: %v", ErrUnavailable, name, err)
		}
		return detail, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("queue %s: %w", name, ErrNotFound)
	default:
		return nil, fmt.Errorf("get queue %s: unexpected status %d", name, resp.StatusCode)
	}
}

// DeleteQueue removes a queue.
func (c *Client) DeleteQueue(vhost, name string) error {
	resp, err := c.request(http.MethodDelete, "/queues/"+encode(vhost)+"/"+encode(name), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("queue %s: %w", name, ErrNotFound)
	default:
		return fmt.Errorf("delete queue %s: unexpected status %d", name, resp.StatusCode)
	}
}

// ListQueueBindings returns all bindings targeting the given queue.
func (c *Client) ListQueueBindings(vhost, queue string) ([]Binding, error) {
	path := "/queues/" + encode(vhost) + "/" + encode(queue) + "/bindings"
	return c.listBindings(path, "queue "+queue)
}

func (c *Client) listBindings(path, what string) ([]Binding, error) {
	resp, err := c.request(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var bindings []Binding
		if err := json.NewDecoder(resp.Body).Decode(&bindings); err != nil {
			return nil, fmt.Errorf("%w: decode bindings for %s: %v", ErrUnavailable, what, err)
		}
		return bindings, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	default:
		return nil, fmt.Errorf("list bindings for %s: unexpected status %d", what, resp.StatusCode)
	}
}

// BindQueue creates one routing-key binding from exchange to queue.
func (c *Client) BindQueue(vhost, exchange, queue, routingKey string) error {
	path := "/bindings/" + encode(vhost) + "/e/" + encode(exchange) + "/q/" + encode(queue)
	resp, err := c.request(http.MethodPost, path, map[string]string{"routing_key": routingKey})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("binding %s -> %s: %w", exchange, queue, ErrNotFound)
	default:
		return fmt.Errorf("bind %s -> %s: unexpected status %d", exchange, queue, resp.StatusCode)
	}
}

// UnbindQueue deletes one routing-key binding.
func (c *Client) UnbindQueue(vhost, exchange, queue, routingKey string) error {
	path := "/bindings/" + encode(vhost) + "/e/" + encode(exchange) + "/q/" + encode(queue) + "/" + encode(routingKey)
	resp, err := c.request(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("binding %s -> %s: %w", exchange, queue, ErrNotFound)
	default:
		return fmt.Errorf("unbind %s -> %s: unexpected status %d", exchange, queue, resp.StatusCode)
	}
}

// UserExists checks whether a broker principal exists.
func (c *Client) UserExists(userID string) (bool, error) {
	resp, err := c.request(http.MethodGet, "/users/"+encode(userID), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("get user %s: unexpected status %d", userID, resp.StatusCode)
	}
}

// CreateUser creates a broker principal with the generated secret and no
// management tags.
func (c *Client) CreateUser(userID, password string) (Outcome, error) {
	body := map[string]string{"password": password, "tags": ""}
	resp, err := c.request(http.MethodPut, "/users/"+encode(userID), body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return createOutcome(resp.StatusCode, "user "+userID)
}

// SetVhostPermissions grants the user write and read across the vhost but
// no configure rights.
func (c *Client) SetVhostPermissions(vhost, userID string) (Outcome, error) {
	body := map[string]string{
		"configure": permDeny,
		"write":     permAllow,
		"read":      permAllow,
	}
	path := "/permissions/" + encode(vhost) + "/" + encode(userID)
	resp, err := c.request(http.MethodPut, path, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusCreated:
		return Created, nil
	case http.StatusNoContent:
		return AlreadyExists, nil
	default:
		return 0, fmt.Errorf("set vhost permissions for %s: unexpected status %d", userID, resp.StatusCode)
	}
}

// SetTopicPermissions scopes the user to write-only access on one exchange.
func (c *Client) SetTopicPermissions(vhost, userID, exchange string) (Outcome, error) {
	body := map[string]string{
		"exchange":  exchange,
		"write":     permAllow,
		"read":      permDeny,
		"configure": permDeny,
	}
	path := "/topic-permissions/" + encode(vhost) + "/" + encode(userID)
	resp, err := c.request(http.MethodPut, path, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusCreated:
		return Created, nil
	case http.StatusNoContent:
		return AlreadyExists, nil
	default:
		return 0, fmt.Errorf("set topic permissions for %s on %s: unexpected status %d", userID, exchange, resp.StatusCode)
	}
}

// Package amqpclient holds the AMQP connection used for the operations the
// provisioner performs over the wire protocol rather than the management
// API: binding the fixed queues to adaptor exchanges and deleting exchanges
// on decommission.
package amqpclient

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type HealthStatus struct {
	OK      bool
	Details string
}

type Client struct {
	uri  string
	conn *amqp.Connection
}

func New(uri string) *Client {
	return &Client{uri: uri}
}

func (c *Client) Connect() error {
	if c.uri == "" {
		return fmt.Errorf("RABBITMQ_AMQP_URI is required")
	}
	conn, err := amqp.Dial(c.uri)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) Health() HealthStatus {
	if c.conn == nil || c.conn.IsClosed() {
		return HealthStatus{OK: false, Details: "connection closed"}
	}
	return HealthStatus{OK: true, Details: "connected"}
}

// channel opens a fresh channel per operation. A channel that errors is
// closed by the broker, so sharing one across independent calls would let a
// single failure poison unrelated operations.
func (c *Client) channel() (*amqp.Channel, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("not connected")
	}
	return c.conn.Channel()
}

// BindQueue binds queue to exchange for one routing key.
func (c *Client) BindQueue(queue, exchange, routingKey string) error {
	ch, err := c.channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return ch.QueueBind(queue, routingKey, exchange, false, nil)
}

// UnbindQueue removes one routing-key binding.
func (c *Client) UnbindQueue(queue, exchange, routingKey string) error {
	ch, err := c.channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return ch.QueueUnbind(queue, routingKey, exchange, nil)
}

// DeleteExchange removes the exchange. Bindings referencing it are orphaned
// at the broker; they are not deleted separately.
func (c *Client) DeleteExchange(name string) error {
	ch, err := c.channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return ch.ExchangeDelete(name, false, false)
}

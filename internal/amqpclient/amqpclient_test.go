package amqpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectRequiresURI(t *testing.T) {
	c := New("")
	err := c.Connect()
	assert.Error(t, err)
}

func TestHealthNotConnected(t *testing.T) {
	c := New("amqp://localhost:5672/")
	hs := c.Health()
	assert.False(t, hs.OK)
	assert.Equal(t, "connection closed", hs.Details)
}

func TestOperationsRequireConnection(t *testing.T) {
	c := New("amqp://localhost:5672/")

	assert.Error(t, c.BindQueue("data", "ex1", "key"))
	assert.Error(t, c.UnbindQueue("data", "ex1", "key"))
	assert.Error(t, c.DeleteExchange("ex1"))
}

func TestCloseWithoutConnection(t *testing.T) {
	c := New("amqp://localhost:5672/")
	assert.NoError(t, c.Close())
}

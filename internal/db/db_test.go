package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectRequiresURI(t *testing.T) {
	_, err := Connect("")
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var d *Database
	assert.NoError(t, d.Close())
}

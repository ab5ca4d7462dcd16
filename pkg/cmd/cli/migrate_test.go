package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://arg", getDatabaseURL([]string{"postgres://arg"}, 0, "postgres://config"))
	assert.Equal(t, "postgres://config", getDatabaseURL(nil, 0, "postgres://config"))
	assert.Equal(t, "postgres://config", getDatabaseURL([]string{""}, 0, "postgres://config"))
	assert.Equal(t, "", getDatabaseURL(nil, 0, ""))
}

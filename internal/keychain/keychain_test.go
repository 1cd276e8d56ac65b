package keychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSetGet(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, Set("telegram", "123:abc"))
	v, err := Get("telegram")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", v)
}

func TestGetMissing(t *testing.T) {
	keyring.MockInit()

	_, err := Get("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

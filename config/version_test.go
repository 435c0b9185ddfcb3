package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientVersion(t *testing.T) {
	Version, GitCommit = "", ""
	assert.True(t, strings.HasPrefix(ClientVersion(), "evmrpc/unknown/"))

	Version, GitCommit = "v1.2.0", "1a2b3c4d5e6f"
	defer func() { Version, GitCommit = "", "" }()

	assert.True(t, strings.HasPrefix(ClientVersion(), "evmrpc/v1.2.0-1a2b3c4d/"))
	assert.Len(t, strings.Split(ClientVersion(), "/"), 4)
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_Use(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)
}

func TestMCPCmd_Short(t *testing.T) {
	assert.Equal(t, "Start the MCP server", mcpCmd.Short)
}

func TestMCPCmd_Long(t *testing.T) {
	assert.Contains(t, mcpCmd.Long, "stdio")
	assert.Contains(t, mcpCmd.Long, "Claude Desktop")
	assert.Contains(t, mcpCmd.Long, "mcpServers")
}

func TestMCPCmd_HasPortFlag(t *testing.T) {
	flag := mcpCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "port flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

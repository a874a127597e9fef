package commands_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsList(t *testing.T) {
	dir := initWithData(t)

	stdout, stderr, err := runIn(t, dir, nil, "accounts", "list")
	require.NoError(t, err, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "OWNERSHIP"))
	assert.True(t, strings.HasPrefix(lines[1], "gospaze"))
	assert.True(t, strings.HasPrefix(lines[5], "realtimate"))
	assert.Contains(t, stdout, "50200099990001")
	assert.Contains(t, stdout, "platform_fee")
}

func TestAccountsList_Ownership(t *testing.T) {
	dir := initWithData(t)

	stdout, stderr, err := runIn(t, dir, nil, "accounts", "list", "--ownership", "oroproptech")
	require.NoError(t, err, stderr)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "oroproptech"))
	assert.True(t, strings.HasPrefix(lines[2], "oroproptech"))
	assert.NotContains(t, stdout, "realtimate")
	assert.Contains(t, stdout, "savings", "empty account type defaults to savings")

	_, stderr, err = runIn(t, dir, nil, "accounts", "list", "--ownership", "acme")
	require.Error(t, err)
	assert.Contains(t, stderr, `no reference accounts for ownership "acme"`)
}

func TestAccountsList_Empty(t *testing.T) {
	dir := t.TempDir()
	_, err := runDisburse(t, "init", dir)
	require.NoError(t, err)

	stdout, _, err := runIn(t, dir, nil, "accounts", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No reference accounts configured.")
}

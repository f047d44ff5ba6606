package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchware/fleetsync/pkg/errors"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	assert.Equal(t, []string{"employeenumber", "fleetno"}, rules.CustomFieldKeys)

	strategies := rules.Strategies()
	require.Len(t, strategies, 3)
	assert.Equal(t, "custom-fields", strategies[0].Name())
	assert.Equal(t, "license-plate", strategies[1].Name())
	assert.Equal(t, "name", strategies[2].Name())
}

func TestLoadRules(t *testing.T) {
	path := writeRules(t, `
custom_field_keys:
  - badge_id
disable_name: true
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"badge_id"}, rules.CustomFieldKeys)
	assert.True(t, rules.DisableName)
	assert.False(t, rules.DisablePlate)

	strategies := rules.Strategies()
	require.Len(t, strategies, 2)
	assert.Equal(t, "custom-fields", strategies[0].Name())
	assert.Equal(t, "license-plate", strategies[1].Name())
}

func TestLoadRulesMissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestLoadRulesInvalidYAML(t *testing.T) {
	path := writeRules(t, "custom_field_keys: [unterminated")

	_, err := LoadRules(path)
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadRulesAllDisabled(t *testing.T) {
	path := writeRules(t, `
custom_field_keys: []
disable_plate: true
disable_name: true
`)

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

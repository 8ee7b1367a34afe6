package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// Flags the tests below drive through the config path. Registered once per test binary.
var (
	testStringFlag = flag.String("config_test_string", "default", "Exercised by config tests.")
	testIntFlag    = flag.Int("config_test_int", 1, "Exercised by config tests.")
	testBoolFlag   = flag.Bool("config_test_bool", false, "Exercised by config tests.")
	testFloatFlag  = flag.Float64("config_test_float", 1.5, "Exercised by config tests.")
)

// resetTestFlags restores the test flags to their defaults when the test finishes.
func resetTestFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		require.NoError(t, flag.Set("config_test_string", "default"))
		require.NoError(t, flag.Set("config_test_int", "1"))
		require.NoError(t, flag.Set("config_test_bool", "false"))
		require.NoError(t, flag.Set("config_test_float", "1.5"))
	})
}

func TestApplyConfig_SetsScalars(t *testing.T) {
	resetTestFlags(t)
	conf, err := structpb.NewStruct(map[string]any{
		"config_test_string": "configured",
		"config_test_int":    8081,
		"config_test_bool":   true,
		"config_test_float":  0.25,
	})
	require.NoError(t, err)

	require.NoError(t, applyConfig(conf))
	assert.Equal(t, "configured", *testStringFlag)
	assert.Equal(t, 8081, *testIntFlag, "Integral JSON numbers must parse into integer flags")
	assert.True(t, *testBoolFlag)
	assert.Equal(t, 0.25, *testFloatFlag)
}

func TestApplyConfig_NullKeepsDefault(t *testing.T) {
	resetTestFlags(t)
	conf, err := structpb.NewStruct(map[string]any{"config_test_string": nil})
	require.NoError(t, err)

	require.NoError(t, applyConfig(conf))
	assert.Equal(t, "default", *testStringFlag)
}

func TestApplyConfig_UnknownKey(t *testing.T) {
	conf, err := structpb.NewStruct(map[string]any{"no_such_flag": 1})
	require.NoError(t, err)

	gotErr := applyConfig(conf)
	assert.ErrorContains(t, gotErr, "no_such_flag")
	assert.ErrorContains(t, gotErr, "does not match any defined flag")
}

func TestApplyConfig_NonScalarValues(t *testing.T) {
	resetTestFlags(t)
	conf, err := structpb.NewStruct(map[string]any{
		"config_test_string": []any{"a", "b"},
		"config_test_int":    map[string]any{"nested": 1},
	})
	require.NoError(t, err)

	gotErr := applyConfig(conf)
	assert.ErrorContains(t, gotErr, "list values are not supported")
	assert.ErrorContains(t, gotErr, "nested objects are not supported")
}

func TestApplyConfig_GoodKeysApplyDespiteBadOnes(t *testing.T) {
	resetTestFlags(t)
	conf, err := structpb.NewStruct(map[string]any{
		"no_such_flag":       true,
		"config_test_string": "still applied",
	})
	require.NoError(t, err)

	assert.Error(t, applyConfig(conf))
	assert.Equal(t, "still applied", *testStringFlag)
}

func TestApply_FromFile(t *testing.T) {
	resetTestFlags(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"config_test_int": 4242, "config_test_bool": true}`), 0o644))

	require.NoError(t, Apply(path))
	assert.Equal(t, 4242, *testIntFlag)
	assert.True(t, *testBoolFlag)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.ErrorContains(t, err, "failed to read config file")
	})
	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"config_test_int": `), 0o644))
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "failed to parse config file")
	})
	t.Run("top level array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`[1, 2]`), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err, "A JSON array cannot unmarshal into an object")
	})
}

package engineclient

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialDummyMode(t *testing.T) {
	t.Setenv("MOD_DEV_HOST", "1")
	c, err := Dial(Config{})
	require.NoError(t, err)
	require.True(t, c.Dummy())
	require.NoError(t, c.Add("http://example.org/plugin", 0))
	require.NoError(t, c.ParamSet(0, "gain", 0.5))
	f, err := c.ParamGet(0, "gain")
	require.NoError(t, err)
	require.Zero(t, f)
}

func TestDummyModeEnvParsing(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"0":     false,
		"false": false,
		"off":   false,
		"1":     true,
		"true":  true,
		"yes":   true,
	}
	for v, want := range cases {
		os.Setenv("MOD_DEV_HOST", v)
		require.Equal(t, want, dummyModeEnabled(), "value=%q", v)
	}
	os.Unsetenv("MOD_DEV_HOST")
}

func TestValidateSymbolRejectsSpacesAndQuotes(t *testing.T) {
	require.Error(t, validateSymbol("bad symbol"))
	require.Error(t, validateSymbol(`bad"symbol`))
	require.NoError(t, validateSymbol("gain_db"))
}

func TestScopeDrainsInDummyMode(t *testing.T) {
	t.Setenv("MOD_DEV_HOST", "1")
	c, err := Dial(Config{})
	require.NoError(t, err)

	scope := c.NewScope()
	require.NoError(t, c.ParamSet(0, "a", 1))
	require.NoError(t, c.ParamSet(0, "b", 2))
	require.NoError(t, scope.Close())
}

func TestEngineErrorStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "instance is invalid", EngineErrorString(-101))
	require.Equal(t, "unknown engine error", EngineErrorString(-999999))
}

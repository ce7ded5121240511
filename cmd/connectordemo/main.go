// Command connectordemo is a thin, non-interactive smoke test for the
// connector package: it dials an engine client, loads a one-row bank with a
// single block, pushes a parameter write and a scene switch through it, and
// prints the resulting state. With no --host flag it sets MOD_DEV_HOST
// itself (the same dummy-mode switch engineclient's own tests use) so it
// runs without a live engine process.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/shaban/modconnector/connector"
	"github.com/shaban/modconnector/engineclient"
	"github.com/shaban/modconnector/model"
)

var demoPlugins = map[string]model.PluginInfo{
	"http://example.org/demo-gain": {
		URI: "http://example.org/demo-gain", Name: "Demo Gain",
		NumInputs: 1, NumOutputs: 1,
		Parameters: []model.ParameterInfo{
			{Symbol: "gain", Name: "Gain", Default: 0, Min: -60, Max: 12},
		},
	},
}

func main() {
	var (
		host   = pflag.StringP("host", "H", "", "engine host to dial; empty dials in dummy mode")
		port   = pflag.IntP("port", "p", 0, "engine port; 0 uses MOD_DEVICE_HOST_PORT or the engine default")
		uri    = pflag.StringP("plugin", "u", "http://example.org/demo-gain", "plugin URI to load into row 0, block 0")
		gain   = pflag.Float32P("gain", "g", -9, "gain value to write, within the plugin's declared range")
		strict = pflag.BoolP("strict", "s", false, "validate engine commands before sending them")
		quiet  = pflag.BoolP("quiet", "q", false, "suppress info-level logging")
	)
	pflag.Parse()

	level := zerolog.InfoLevel
	if *quiet {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *host == "" {
		os.Setenv("MOD_DEV_HOST", "1")
	} else {
		os.Unsetenv("MOD_DEV_HOST")
	}

	client, err := engineclient.Dial(engineclient.Config{Host: *host, Port: *port, Strict: *strict, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("dial engine")
	}
	if client.Dummy() {
		logger.Info().Msg("dialed in dummy mode, no engine process involved")
	}

	lookup := model.PluginLookupFunc(func(u string) (model.PluginInfo, bool) {
		info, ok := demoPlugins[u]
		return info, ok
	})

	c := connector.New(client, lookup, 1, connector.WithLogger(logger))

	var filenames [model.PresetsPerBank]string
	if err := c.LoadBankFromPresetFiles(filenames, 0); err != nil {
		logger.Fatal().Err(err).Msg("load bank")
	}
	if err := c.ReplaceBlock(0, 0, *uri, true); err != nil {
		logger.Fatal().Err(err).Msg("replace block")
	}
	if err := c.SetBlockParameter(0, 0, "gain", *gain, connector.SceneModeIgnore); err != nil {
		logger.Fatal().Err(err).Msg("set parameter")
	}
	if err := c.SwitchScene(1); err != nil {
		logger.Fatal().Err(err).Msg("switch scene")
	}

	b := c.Current().Block(0, 0)
	idx := b.ParameterIndexForSymbol("gain")
	fmt.Printf("row 0 block 0: %s\n", b.URI)
	fmt.Printf("gain = %.1f (scene %d)\n", b.Parameters[idx].Value, c.Current().Scene)
}

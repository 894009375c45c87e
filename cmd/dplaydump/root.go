package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/framing"
)

type configFlags struct {
	path         string
	framing      string
	filter       string
	noHeuristics bool
	overrides    []string
}

// load reads the config file if one is given, then applies the command line on top.
func (this *configFlags) load(cmd *cobra.Command) (*core.Config, error) {
	config := core.NewConfig()
	if this.path != "" {
		loaded, err := core.LoadConfig(this.path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if cmd.Flags().Changed("framing") || this.path == "" {
		config.Framing = core.FramingConfig{Type: this.framing}
	}
	if cmd.Flags().Changed("filter") {
		config.Filter = this.filter
	}
	if this.noHeuristics {
		off := false
		config.Heuristics = &off
	}
	for _, kv := range this.overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errors.Errorf("--set expects key=value, got %s", kv)
		}
		if err := config.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, err
		}
	}
	if err := config.Setup(); err != nil {
		return nil, err
	}
	return config, nil
}

func (this *configFlags) bind(cmd *cobra.Command, defaultFraming string) {
	cmd.Flags().StringVarP(&this.path, "config", "c", "", "config file, .yaml or .toml")
	cmd.Flags().StringVar(&this.framing, "framing", defaultFraming, "framing rule: "+strings.Join(core.FramingRuleNames(), ", "))
	cmd.Flags().StringVar(&this.filter, "filter", "", "CEL display filter, e.g. msg.command == 0x16")
	cmd.Flags().BoolVar(&this.noHeuristics, "no-heuristics", false, "only accept messages carrying the play tag")
	cmd.Flags().StringSliceVar(&this.overrides, "set", nil, "override a config key, e.g. tcp.max_connections=64")
}

// NewCommand returns the root command of the dplaydump CLI.
func NewCommand() *cobra.Command {
	framing.Register()
	cmd := &cobra.Command{
		Use:          "dplaydump",
		Short:        "DirectPlay traffic decoder",
		Long:         `dplaydump decodes legacy DirectPlay session traffic from capture files or live sockets.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		NewDecodeCommand(),
		NewListenCommand(),
	)
	return cmd
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "stepthrough",
		Short:         "Step through algorithm execution traces in the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default $STEPTHROUGH_CONFIG or ~/.config/stepthrough/config.toml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(playCmd(flags))
	root.AddCommand(validateCmd())
	root.AddCommand(catalogCmd(flags))
	root.AddCommand(versionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

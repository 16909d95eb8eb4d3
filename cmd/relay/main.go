package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rzbill/relay/internal/cmd/emit"
	"github.com/rzbill/relay/internal/runtime"
	logpkg "github.com/rzbill/relay/pkg/log"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "relay",
		Short:         "Relay channel runtime CLI",
		Long:          "Relay routes named channel events between a state store and its listeners. This CLI drives an in-process instance.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the relay version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "relay", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// The emit logger follows RELAY_LOG_* once the config is loaded.
	emitCmd := emit.NewEmitCommand(nil)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(emit.NewConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		cfg, _ := emit.LoadConfig("")
		runtime.NewLogger(cfg).Error("command failed", logpkg.Err(err))
		os.Exit(1)
	}
}

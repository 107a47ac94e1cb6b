// Command atproto-cli is a small diagnostic client over this module's
// packages: resolving identifiers, issuing XRPC queries, driving the
// OAuth authorization flow, and tailing the firehose. It exists to
// exercise the SDK end to end, not as a production agent; real
// applications are expected to import the packages directly.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func commandRoot() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "atproto-cli",
		Short: "Diagnostic client for the AT Protocol SDK",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(2)
		},
	}
	rootCmd.PersistentFlags().String("log-format", "text", "log output format (text, json)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(commandVersion())
	rootCmd.AddCommand(commandResolve())
	rootCmd.AddCommand(commandGetRecord())
	rootCmd.AddCommand(commandLogin())
	rootCmd.AddCommand(commandFirehose())
	return rootCmd
}

func main() {
	if err := commandRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
}

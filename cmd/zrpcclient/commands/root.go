// Package commands implements the CLI commands for zrpcclient, the example
// caller grounded on the original application's Zclient/integrated_client
// programs.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	confIni string
	mode    string
)

var rootCmd = &cobra.Command{
	Use:   "zrpcclient",
	Short: "Example RPC caller exercising CacheService and UserService",
	Long: `zrpcclient drives the example CacheService and UserService over the
zrpc client channel. Pick a mode with --mode (cache, user, integrated) or
omit it to choose interactively; when stdin is not a terminal, omitting it
runs the integrated demo.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClient,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "ambient config file (default: $XDG_CONFIG_HOME/zrpc/zrpc.yaml)")
	rootCmd.PersistentFlags().StringVarP(&confIni, "conf", "i", "", "rpc config file path (same format as zrpcserver's -i)")
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "", "demo to run: cache, user, or integrated (default: prompt, or integrated when stdin is not a terminal)")
}

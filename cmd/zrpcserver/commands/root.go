// Package commands implements the CLI commands for zrpcserver.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"

	// Global flags.
	cfgFile string
	confIni string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "zrpcserver",
	Short: "zrpc RPC server: service discovery, heartbeat, and a TTL cache service",
	Long: `zrpcserver hosts RPC services behind an etcd-backed resolver: each
registered service.method advertises its endpoint, a heartbeat supervisor
evicts endpoints that stop answering, and connections are dispatched to the
services registered in this process (by default CacheService and
UserService).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "ambient config file (default: $XDG_CONFIG_HOME/zrpc/zrpc.yaml)")
	rootCmd.PersistentFlags().StringVarP(&confIni, "conf", "i", "", "rpc config file path (rpcserverip=, rpcserverport=, zookeeperip=, zookeeperport=)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the zrpcserver version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("zrpcserver %s (%s)\n", Version, Commit)
		return nil
	},
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
	os.Exit(1)
}

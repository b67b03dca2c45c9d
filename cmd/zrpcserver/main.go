// Command zrpcserver hosts the RPC services defined in this repo
// (CacheService, UserService) behind an etcd-backed resolver and a
// heartbeat supervisor.
package main

import (
	"fmt"
	"os"

	"github.com/kora-zrpc/zrpc/cmd/zrpcserver/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

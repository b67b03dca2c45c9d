// Command zrpcclient is the example caller: it drives CacheService and
// UserService over the zrpc client channel in one of three demo modes
// (cache, user, integrated), grounded on the original application's
// Zclient.cc and integrated_client.cc example programs.
package main

import (
	"fmt"
	"os"

	"github.com/kora-zrpc/zrpc/cmd/zrpcclient/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

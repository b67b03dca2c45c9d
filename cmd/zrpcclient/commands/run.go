package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kora-zrpc/zrpc/internal/cli"
	"github.com/kora-zrpc/zrpc/pkg/config"
	"github.com/kora-zrpc/zrpc/rpc/client"
	"github.com/kora-zrpc/zrpc/rpc/controller"
	"github.com/kora-zrpc/zrpc/rpc/heartbeat"
	"github.com/kora-zrpc/zrpc/rpc/resolver"
	"github.com/spf13/cobra"
)

const (
	cacheServiceName = "CacheService"
	userServiceName  = "UserService"
)

func runClient(cmd *cobra.Command, args []string) error {
	if confIni == "" {
		return errors.New(config.Usage)
	}
	rpcConf, err := config.LoadRPCConf(confIni)
	if err != nil {
		return err
	}

	appConf, err := config.LoadAppConfig(cfgFile)
	if err != nil {
		return err
	}

	chosen := mode
	if chosen == "" {
		if fi, statErr := os.Stdin.Stat(); statErr == nil && fi.Mode()&os.ModeCharDevice == 0 {
			chosen = "integrated"
		} else {
			chosen, err = cli.SelectString("Choose a demo to run", []string{"cache", "user", "integrated"})
			if err != nil {
				return err
			}
		}
	}

	// This example caller talks directly to the single configured server
	// endpoint rather than discovering it through etcd, the way a
	// quick-start client would before wiring in full coordination-store
	// discovery; zrpcserver itself still registers through resolver.EtcdResolver.
	res := resolver.NewMapResolver()
	for _, svc := range []string{cacheServiceName, userServiceName} {
		for _, method := range []string{"Get", "Set", "Delete", "Exists", "BatchGet", "GetStats", "Login", "Register", "GetUserProfile"} {
			res.Set(resolver.ServicePath(svc, method), rpcConf.Endpoint())
		}
	}

	hb := heartbeat.New(appConf.Heartbeat.Interval, appConf.Heartbeat.ConnectDeadline, appConf.Heartbeat.Timeout)
	ch := client.NewChannel(res, hb)

	switch chosen {
	case "cache":
		return runCacheDemo(cmd, ch)
	case "user":
		return runUserDemo(cmd, ch)
	case "integrated":
		return runIntegratedDemo(cmd, ch)
	default:
		return fmt.Errorf("unknown mode %q", chosen)
	}
}

func call(ch *client.Channel, service, method string, payload []byte, timeout time.Duration) ([]byte, error) {
	ctrl := controller.New()
	ctrl.SetTimeout(timeout)
	reply, err := ch.CallMethod(context.Background(), ctrl, service, method, payload)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", service, method, err)
	}
	if ctrl.Failed() {
		return nil, fmt.Errorf("%s.%s: %s", service, method, ctrl.ErrorText())
	}
	return reply, nil
}

func runCacheDemo(cmd *cobra.Command, ch *client.Channel) error {
	if _, err := call(ch, cacheServiceName, "Set", []byte("demo:key|demo-value|60"), 3*time.Second); err != nil {
		return err
	}

	reply, err := call(ch, cacheServiceName, "Get", []byte("demo:key"), 3*time.Second)
	if err != nil {
		return err
	}
	cmd.Printf("Get demo:key -> %s\n", string(reply))

	stats, err := call(ch, cacheServiceName, "GetStats", nil, 3*time.Second)
	if err != nil {
		return err
	}
	printStats(cmd, stats)
	return nil
}

func runUserDemo(cmd *cobra.Command, ch *client.Channel) error {
	reply, err := call(ch, userServiceName, "Login", []byte("zhangsan|123456"), 10*time.Second)
	if err != nil {
		return err
	}
	cmd.Printf("Login -> %s\n", string(reply))

	reply, err = call(ch, userServiceName, "GetUserProfile", []byte("1001"), 5*time.Second)
	if err != nil {
		return err
	}
	cmd.Printf("GetUserProfile -> %s\n", string(reply))
	return nil
}

// runIntegratedDemo mirrors the original application's IntegratedClient:
// session-cache-checked login, profile lookup with a client-side cache
// layer, registration with cache invalidation, then a stats dump.
func runIntegratedDemo(cmd *cobra.Command, ch *client.Channel) error {
	username := "zhangsan"
	sessionKey := "session:" + username

	exists, err := call(ch, cacheServiceName, "Exists", []byte(sessionKey), 3*time.Second)
	if err != nil {
		return err
	}
	if string(exists) == "true" {
		cmd.Printf("user %s already has a live session, skipping login RPC\n", username)
	} else {
		if _, err := call(ch, userServiceName, "Login", []byte(username+"|123456"), 10*time.Second); err != nil {
			return err
		}
		token := "token_" + username + "_" + strconv.FormatInt(time.Now().Unix(), 10)
		if _, err := call(ch, cacheServiceName, "Set", []byte(sessionKey+"|"+token+"|1800"), 3*time.Second); err != nil {
			return err
		}
		cmd.Printf("user %s logged in, session cached\n", username)
	}

	profileKey := "profile:1001"
	cached, err := call(ch, cacheServiceName, "Get", []byte(profileKey), 3*time.Second)
	if err != nil {
		return err
	}
	// Get replies as "errcode|errmsg|exists|value"; exists=="1" means a hit.
	cachedParts := strings.SplitN(string(cached), "|", 4)
	if len(cachedParts) == 4 && cachedParts[2] == "1" {
		cmd.Printf("profile 1001 served from client-side cache: %s\n", cachedParts[3])
	} else {
		profile, err := call(ch, userServiceName, "GetUserProfile", []byte("1001"), 5*time.Second)
		if err != nil {
			return err
		}
		if _, err := call(ch, cacheServiceName, "Set", append(append([]byte(profileKey+"|"), profile...), []byte("|600")...), 3*time.Second); err != nil {
			return err
		}
		cmd.Printf("profile 1001 fetched from UserService and cached: %s\n", string(profile))
	}

	stats, err := call(ch, cacheServiceName, "GetStats", nil, 5*time.Second)
	if err != nil {
		return err
	}
	printStats(cmd, stats)
	return nil
}

func printStats(cmd *cobra.Command, reply []byte) {
	fields := strings.Split(string(reply), "|")
	labels := []string{"total_keys", "memory_usage_bytes", "hit_count", "miss_count", "hit_rate"}
	pairs := make([][2]string, 0, len(labels))
	for i, label := range labels {
		value := ""
		if i < len(fields) {
			value = fields[i]
		}
		pairs = append(pairs, [2]string{label, value})
	}
	cli.PrintKeyValueTable(cmd.OutOrStdout(), pairs)
}

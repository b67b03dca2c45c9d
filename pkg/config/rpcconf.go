// Package config loads the two configuration layers this repo carries: the
// literal key=value contract spec.md describes for the RPC application
// (RPCConf), and a richer YAML/env-overridable layer for everything spec.md
// is silent on (AppConfig).
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// RPCConf is the exact external contract from spec.md §6: a plain
// "key=value" file, one assignment per line, read via the application's
// "-i <path>" flag. Comment lines begin with '#'; blank lines are skipped.
type RPCConf struct {
	RPCServerIP   string
	RPCServerPort int
	ZookeeperIP   string
	ZookeeperPort int
}

const (
	keyRPCServerIP   = "rpcserverip"
	keyRPCServerPort = "rpcserverport"
	keyZookeeperIP   = "zookeeperip"
	keyZookeeperPort = "zookeeperport"
)

// LoadRPCConf reads an RPCConf from the file at path. Unknown keys are
// ignored, matching the original application's permissive line parser.
func LoadRPCConf(path string) (*RPCConf, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rpc config %q: %w", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rpc config %q: %w", path, err)
	}

	cfg := &RPCConf{
		RPCServerIP: values[keyRPCServerIP],
		ZookeeperIP: values[keyZookeeperIP],
	}

	if v, ok := values[keyRPCServerPort]; ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("rpc config %q: invalid %s: %w", path, keyRPCServerPort, err)
		}
		cfg.RPCServerPort = port
	}
	if v, ok := values[keyZookeeperPort]; ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("rpc config %q: invalid %s: %w", path, keyZookeeperPort, err)
		}
		cfg.ZookeeperPort = port
	}

	if cfg.RPCServerIP == "" || cfg.RPCServerPort == 0 {
		return nil, fmt.Errorf("rpc config %q: %s and %s are required", path, keyRPCServerIP, keyRPCServerPort)
	}

	return cfg, nil
}

// Endpoint returns the "ip:port" this process should bind or resolve.
func (c *RPCConf) Endpoint() string {
	return fmt.Sprintf("%s:%d", c.RPCServerIP, c.RPCServerPort)
}

// ResolverEndpoint returns the "ip:port" of the coordination store.
func (c *RPCConf) ResolverEndpoint() string {
	return fmt.Sprintf("%s:%d", c.ZookeeperIP, c.ZookeeperPort)
}

// Usage is returned as the command error (and so printed) when "-i <path>"
// is missing, mirroring the original application's getopt-driven usage
// message. "-?" is not a defined flag: cobra rejects it with its own
// unknown-flag error and this text is not printed.
const Usage = `usage: -i <config file path>

config file format (one per line):
  rpcserverip=<ip>
  rpcserverport=<port>
  zookeeperip=<ip>
  zookeeperport=<port>
`

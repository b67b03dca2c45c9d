package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	cacheengine "github.com/kora-zrpc/zrpc/cacheservice"
	"github.com/kora-zrpc/zrpc/examples/cacheservice"
	"github.com/kora-zrpc/zrpc/examples/userservice"
	"github.com/kora-zrpc/zrpc/internal/logger"
	"github.com/kora-zrpc/zrpc/pkg/config"
	"github.com/kora-zrpc/zrpc/pkg/debugserver"
	"github.com/kora-zrpc/zrpc/pkg/metrics"
	"github.com/kora-zrpc/zrpc/rpc/descriptor"
	"github.com/kora-zrpc/zrpc/rpc/heartbeat"
	"github.com/kora-zrpc/zrpc/rpc/resolver"
	"github.com/kora-zrpc/zrpc/rpc/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the RPC server, registering CacheService and UserService",
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
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

	if err := logger.Init(logger.Config{
		Level:  appConf.Logging.Level,
		Format: appConf.Logging.Format,
		Output: appConf.Logging.Output,
	}); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	resolverCfg := appConf.Resolver
	if rpcConf.ZookeeperIP != "" {
		resolverCfg.Endpoints = []string{rpcConf.ResolverEndpoint()}
	}

	res := resolver.NewEtcdResolver(resolverCfg)
	if err := res.Start(ctx); err != nil {
		return err
	}
	defer res.Close()

	hb := heartbeat.New(appConf.Heartbeat.Interval, appConf.Heartbeat.ConnectDeadline, appConf.Heartbeat.Timeout)

	reg := prometheus.NewRegistry()
	collectors := metrics.New(reg)
	hb.SetOnUnavailable(collectors.ObserveEviction)
	hb.Start(ctx)
	defer hb.Stop()

	cache := cacheengine.New(appConf.Cache.SweepInterval)
	cache.StartSweeper()
	defer cache.StopSweeper()

	services := descriptor.NewServiceMap()
	if err := services.Register(cacheservice.New(cache).Descriptor()); err != nil {
		return err
	}
	if err := services.Register(userservice.New(cache).Descriptor()); err != nil {
		return err
	}

	for _, svcName := range services.ServiceNames() {
		for _, method := range services.MethodNames(svcName) {
			path := resolver.ServicePath(svcName, method)
			if err := res.Register(ctx, path, rpcConf.Endpoint()); err != nil {
				return err
			}
		}
	}

	listener, err := net.Listen("tcp", rpcConf.Endpoint())
	if err != nil {
		return err
	}
	logger.Info("rpc server listening", logger.Endpoint(rpcConf.Endpoint()))

	provider := server.New(services).WithMetrics(collectors)

	var debugSrv *http.Server
	if appConf.Debug.Enabled {
		debugSrv = &http.Server{
			Addr:    appConf.Debug.ListenAddr,
			Handler: debugserver.NewRouter(services, reg),
		}
		go func() {
			logger.Info("debug server listening", logger.Endpoint(appConf.Debug.ListenAddr))
			if err := debugSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("debug server exited", logger.Err(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- provider.Serve(ctx, listener) }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	if debugSrv != nil {
		_ = debugSrv.Shutdown(context.Background())
	}
	return nil
}

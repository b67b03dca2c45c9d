package resolver

import (
	"context"
	"fmt"

	"github.com/kora-zrpc/zrpc/internal/logger"
	"github.com/kora-zrpc/zrpc/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdResolver is the concrete Resolver adapter backed by etcd. Server-side
// registrations are tied to a lease so a crashed process's entries vanish
// automatically, mirroring ZooKeeper's ephemeral znodes in the original
// application.
type EtcdResolver struct {
	cfg    config.ResolverConfig
	client *clientv3.Client

	leaseID     clientv3.LeaseID
	keepAliveCh <-chan *clientv3.LeaseKeepAliveResponse
	stopCh      chan struct{}
}

// NewEtcdResolver returns an EtcdResolver configured from cfg. Call Start
// before using it.
func NewEtcdResolver(cfg config.ResolverConfig) *EtcdResolver {
	return &EtcdResolver{cfg: cfg, stopCh: make(chan struct{})}
}

// Start dials the configured etcd endpoints.
func (r *EtcdResolver) Start(ctx context.Context) error {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   r.cfg.Endpoints,
		DialTimeout: r.cfg.DialTimeout,
		Context:     ctx,
	})
	if err != nil {
		return fmt.Errorf("resolver: dial etcd: %w", err)
	}
	r.client = client
	return nil
}

// GetData fetches the value stored at path (e.g. the ip:port a service.method
// is currently bound to).
func (r *EtcdResolver) GetData(ctx context.Context, path string) (string, error) {
	resp, err := r.client.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("resolver: get %q: %w", path, err)
	}

	var value string
	if len(resp.Kvs) > 0 {
		value = string(resp.Kvs[0].Value)
	}
	if err := validateAddress(path, value); err != nil {
		return "", err
	}
	return value, nil
}

// Register binds path to value under a lease with the resolver's configured
// TTL, and starts a background goroutine that keeps the lease alive until
// Close is called.
func (r *EtcdResolver) Register(ctx context.Context, path, value string) error {
	ttlSeconds := int64(r.cfg.LeaseTTL.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	grant, err := r.client.Grant(ctx, ttlSeconds)
	if err != nil {
		return fmt.Errorf("resolver: grant lease: %w", err)
	}
	r.leaseID = grant.ID

	if _, err := r.client.Put(ctx, path, value, clientv3.WithLease(r.leaseID)); err != nil {
		return fmt.Errorf("resolver: put %q: %w", path, err)
	}

	keepAlive, err := r.client.KeepAlive(ctx, r.leaseID)
	if err != nil {
		return fmt.Errorf("resolver: keepalive %q: %w", path, err)
	}
	r.keepAliveCh = keepAlive

	go r.drainKeepAlive(path)
	return nil
}

func (r *EtcdResolver) drainKeepAlive(path string) {
	for {
		select {
		case <-r.stopCh:
			return
		case resp, ok := <-r.keepAliveCh:
			if !ok || resp == nil {
				logger.Warn("resolver lease keepalive stopped", logger.ServiceKey(path))
				return
			}
		}
	}
}

// Close stops the keepalive goroutine and closes the etcd client.
func (r *EtcdResolver) Close() error {
	close(r.stopCh)
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

var _ Resolver = (*EtcdResolver)(nil)

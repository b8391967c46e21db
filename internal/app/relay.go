package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samvad-hq/unzer-simple/internal/config"
	"github.com/samvad-hq/unzer-simple/internal/logger"
	"github.com/samvad-hq/unzer-simple/internal/relay"
	"github.com/samvad-hq/unzer-simple/internal/storage"
	"github.com/samvad-hq/unzer-simple/pkg/httpclient"
	"github.com/samvad-hq/unzer-simple/pkg/publishers"
	"github.com/samvad-hq/unzer-simple/pkg/unzer"
)

// Relay is the webhook relay runtime: HTTP server, Unzer client, dedupe
// store and publisher fanout.
type Relay struct {
	cfg     *config.Config
	service *relay.Service
	fanout  *publishers.Fanout
	store   storage.Store
	server  *http.Server
	log     logger.Logger
}

// NewClient builds an Unzer client from config.
func NewClient(cfg *config.Config, log logger.Logger) *unzer.Client {
	opts := []unzer.Option{
		unzer.WithBaseURL(cfg.UnzerBaseURL),
		unzer.WithHTTPClient(httpclient.NewRestyClient(cfg.UnzerTimeout)),
	}
	if cfg.UnzerVerbose && log != nil {
		opts = append(opts, unzer.WithLogger(log))
	}
	return unzer.New(cfg.UnzerPrivateKey, opts...)
}

// NewRelay builds a relay runtime from config files.
func NewRelay(ctx context.Context, cfg *config.Config, log logger.Logger) (*Relay, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := cfg.RequirePrivateKey(); err != nil {
		return nil, err
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.StorageTTL,
		ClaimTimeout:    cfg.StorageClaimTimeout,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
		"claim_timeout_seconds":    int(cfg.StorageClaimTimeout.Seconds()),
	})

	client := NewClient(cfg, log)
	service, err := relay.NewService(client.Webhooks, fanout, store, log)
	if err != nil {
		_ = fanout.Close()
		_ = store.Close()
		return nil, err
	}

	return &Relay{
		cfg:     cfg,
		service: service,
		fanout:  fanout,
		store:   store,
		server:  &http.Server{Addr: cfg.RelayListenAddr, Handler: service.Router()},
		log:     log,
	}, nil
}

// Run registers missing webhooks and serves until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if r == nil || r.service == nil {
		return fmt.Errorf("relay is not initialized")
	}
	defer r.close()

	created, err := r.service.EnsureRegistered(ctx, r.cfg.RelayPublicURL, r.cfg.RelayEvents)
	if err != nil {
		return fmt.Errorf("ensure webhooks registered: %w", err)
	}
	r.log.InfoObj("relay starting", "relay_state", map[string]any{
		"listen_addr":        r.cfg.RelayListenAddr,
		"public_url":         r.cfg.RelayPublicURL,
		"events":             r.cfg.RelayEvents,
		"webhooks_created":   created,
		"publishers_count":   r.fanout.Size(),
		"unzer_api_endpoint": r.cfg.UnzerBaseURL,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("relay server: %w", err)
		}
		return nil
	case <-ctx.Done():
		r.log.InfoObj("relay shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), r.cfg.RelayShutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay shutdown: %w", err)
	}
	return nil
}

// close releases the store and publishers, logging any errors encountered.
func (r *Relay) close() {
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("publishers close failed", "error", err)
	}
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}

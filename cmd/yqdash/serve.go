package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/metrics"
	"github.com/komsit37/yqdash/pkg/yqdash/server"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().String("store", "memory", "memo store: memory or redis")
	_ = a.v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = a.v.BindPFlag("server.store", cmd.Flags().Lookup("store"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg.Server
	metrics.Register()

	var stores session.StoreFactory
	switch cfg.Store {
	case "redis":
		client, err := session.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		stores = session.RedisStoreFactory(client, a.cfg.Redis)
		a.log.Info("using redis memo store", logger.String("addr", a.cfg.Redis.Addr))
	default:
		stores = func(string) session.Store {
			return session.NewMemoryStore(cfg.MemoTTL, cfg.MemoSize)
		}
	}

	mgr := session.NewManager(a.dispatcher, a.factory(), stores, cfg.SessionIdle, a.log)
	go mgr.Run(ctx, cfg.SweepInterval)

	h := server.NewHandler(a.catalog, mgr, cfg.CookieName, a.log)
	srv := server.New(h, cfg, a.log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errCh
}

package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/housepricer/internal/observability"
	"github.com/YuminosukeSato/housepricer/internal/server"
	"github.com/YuminosukeSato/housepricer/pkg/log"
	"github.com/YuminosukeSato/housepricer/predict"
)

func newServeCmd(st *state) *cobra.Command {
	var addr, modelPath, redisAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction API",
		Long:  `Loads the artifact once and serves POST /predict. If the artifact cannot be loaded the process keeps running and /predict answers 503.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			c := st.cfg
			if f.Changed("addr") {
				c.HTTPAddr = addr
			}
			if f.Changed("model") {
				c.ModelPath = modelPath
			}
			if f.Changed("redis-addr") {
				c.RedisAddr = redisAddr
			}

			svc := predict.LoadService(c.ModelPath, log.GetLoggerWithName("serve"))
			var p predict.Predictor = svc
			if c.RedisAddr != "" {
				cache := predict.NewCache(c.RedisAddr, c.RedisPassword, c.RedisDB, c.CacheTTL())
				defer cache.Close()
				p = predict.NewCachedPredictor(svc, cache)
				zlog.Info().Str("addr", c.RedisAddr).Msg("prediction cache enabled")
			}

			srv := server.New(zlog.Logger, c.RequestTimeout())
			srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
			srv.MountHandlers(&server.Handlers{P: p})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			zlog.Info().Str("addr", c.HTTPAddr).Bool("model_loaded", svc.Ready()).Msg("API listening")
			httpSrv := &http.Server{Addr: c.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
			if err := serveHTTP(ctx, httpSrv, c.ShutdownTimeout()); err != nil {
				return err
			}
			zlog.Info().Msg("API stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&modelPath, "model", "", "artifact path (overrides config)")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for the prediction cache; empty disables it")
	return cmd
}

package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/housepricer/internal/ui"
)

func newUICmd(st *state) *cobra.Command {
	var addr, api string
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Serve the web form that calls the prediction API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := st.cfg
			if cmd.Flags().Changed("addr") {
				c.UIAddr = addr
			}
			if cmd.Flags().Changed("api") {
				c.APIURL = api
			}

			client := ui.NewClient(c.APIURL, c.UIRateRPS, c.UITimeout())
			mux := http.NewServeMux()
			mux.Handle("/", ui.NewHandler(client))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			zlog.Info().Str("addr", c.UIAddr).Str("api", c.APIURL).Msg("UI listening")
			srv := &http.Server{Addr: c.UIAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			return serveHTTP(ctx, srv, c.ShutdownTimeout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&api, "api", "", "prediction API base URL (overrides config)")
	return cmd
}

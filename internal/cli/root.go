package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/YuminosukeSato/housepricer/internal/config"
	"github.com/YuminosukeSato/housepricer/pkg/log"
)

// state is shared by every command of one root instance.
type state struct {
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	cfg *cfgpkg.Config
}

// NewRootCmd builds the housepricer command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "housepricer",
		Short:         "South African house price estimator",
		Long:          `housepricer trains a linear regression on listing data (bedrooms, bathrooms, erf size, property type) and serves price estimates over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(cmd)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&st.cfgFile, "config", "", "config file (default is ./"+cfgpkg.DefaultFile+" when present)")
	f.StringVar(&st.envFile, "env-file", "", "dotenv file to load before reading the environment (default is ./.env when present)")
	f.StringVar(&st.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.StringVar(&st.logFormat, "log-format", "", "log format: json or console (overrides config)")

	root.AddCommand(
		newTrainCmd(st),
		newServeCmd(st),
		newPredictCmd(st),
		newUICmd(st),
		newInspectCmd(st),
		newConfigCmd(st),
	)
	return root
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func (st *state) load(cmd *cobra.Command) error {
	c, err := cfgpkg.Load(st.cfgFile, st.envFile)
	if err != nil {
		return err
	}
	if st.logLevel != "" {
		c.LogLevel = st.logLevel
	}
	if st.logFormat != "" {
		c.LogFormat = st.logFormat
	}
	if err := log.SetupLogger(c.LogLevel, c.LogFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}
	st.cfg = c
	return nil
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down within grace.
func serveHTTP(ctx context.Context, srv *http.Server, grace time.Duration) error {
	if grace <= 0 {
		grace = 10 * time.Second
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

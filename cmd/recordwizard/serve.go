package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/poweradmin/go-recordwizard/pkg/api"
	"github.com/poweradmin/go-recordwizard/pkg/openapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr  string
		base  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the wizards as a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := opts.wizards(cmd)
			if err != nil {
				return err
			}
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watch && opts.configPath != "" {
				go func() {
					if err := w.Watch(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
						logger.Printf("config watch stopped: %v", err)
					}
				}()
			}

			handler := api.NewHandler(w, api.WithOpenAPI(openapi.JSON), api.WithLogger(logger))
			mux := http.NewServeMux()
			pattern, err := api.RegisterRoutes(mux, base, handler)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Printf("shutdown: %v", err)
				}
			}()

			logger.Printf("record wizards listening on %s (routes under %s)", addr, pattern)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&base, "base-path", "/api", "mount path for the API routes")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the configuration file when it changes")
	return cmd
}

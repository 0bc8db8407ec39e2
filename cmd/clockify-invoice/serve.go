package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()
			a, cfg, err := setup(log)
			if err != nil {
				return err
			}
			if host == "" {
				host = cfg.Serve.Host
			}
			if port == 0 {
				port = cfg.Serve.Port
			}

			srv := a.HTTPServer(fmt.Sprintf("%s:%d", host, port))

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to bind (default: config serve.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to bind (default: config serve.port)")
	return cmd
}

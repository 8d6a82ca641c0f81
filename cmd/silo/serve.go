package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cuemby/silo/pkg/log"
	"github.com/cuemby/silo/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /metrics, /health, /ready, and /live over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		metrics.RegisterComponent("store", true, "")
		metrics.RegisterComponent("locks", true, "")
		if st.SafeMode() {
			metrics.UpdateComponent("store", false, "safe-mode active")
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/health", metrics.HealthHandler())
		mux.HandleFunc("/ready", metrics.ReadyHandler())
		mux.HandleFunc("/live", metrics.LivenessHandler())

		logger := log.WithComponent("serve")
		logger.Info().Str("addr", addr).Msg("listening")
		return http.ListenAndServe(addr, mux)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":9090", "address to serve /metrics and health endpoints on")
}

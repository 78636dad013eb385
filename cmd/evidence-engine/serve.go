package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/audit"
	"github.com/pdiddy/evidence-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation and resolution HTTP API",
	Long: `Serve exposes validate, extract, and resolve over HTTP for the persistence and
UI layer. When an audit database is configured every resolution run is recorded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, v, err := newResolver()
		if err != nil {
			return err
		}

		opts := []server.Option{server.WithLogger(logger.With().Str("component", "server").Logger())}
		if path := auditPath(cmd); path != "" {
			store, err := audit.NewStore(path)
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, server.WithAudit(store))
		}

		serverCfg := cfg.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			serverCfg.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.New(r, v, opts...).ListenAndServe(ctx, serverCfg)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().String("audit-db", "", "record every resolution run in this SQLite file")

	rootCmd.AddCommand(serveCmd)
}

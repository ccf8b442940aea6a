package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/toolindex/internal/config"
	"github.com/agentstation/toolindex/internal/server"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Serve tool and comparison lookups by slug (retired slugs redirect
permanently to their current location), the published sitemaps, and a
health endpoint.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := openStore()
		if err != nil {
			return err
		}

		cfg := server.DefaultConfig()
		if serveFlags.addr != "" {
			cfg.Addr = serveFlags.addr
		} else if addr := config.GetString(config.KeyListenAddr); addr != "" {
			cfg.Addr = addr
		}

		srv, err := server.New(ctx, store, cfg)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dropforge/gitdrop/internal/config"
	"github.com/dropforge/gitdrop/internal/logger"
	"github.com/dropforge/gitdrop/internal/server"
)

var (
	serveAddr   string
	serveConfig string
	serveDev    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gitdrop HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(serveConfig)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveDev {
			cfg.Dev = true
			cfg.LogLevel = logger.LevelFromEnv(true)
		}

		logger.Configure(cfg.LogLevel, cfg.Dev)

		srv := server.New(cfg, nil, GetVersion())
		return srv.Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "path to gitdrop.yaml")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "development mode (pretty logs, debug level)")
	rootCmd.AddCommand(serveCmd)
}

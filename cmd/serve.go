package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/bookkeeping"
	"github.com/simonvc/bookkeeper/internal/logger"
	"github.com/simonvc/bookkeeper/internal/server"
	"github.com/simonvc/bookkeeper/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}

		log, err := logger.New(cfg.Server.Mode, cfg.Log.Level)
		if err != nil {
			return err
		}
		defer log.Sync()

		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(st, bookkeeping.New(st, log), log, cfg.Server.Addr)
		log.Debug("store opened", zap.String("db", cfg.Database.Path))
		if err := srv.ListenAndServe(); err != nil {
			log.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

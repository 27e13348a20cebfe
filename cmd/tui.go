package cmd

import (
	"context"
	"fmt"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simonvc/bookkeeper/internal/bookkeeping"
	"github.com/simonvc/bookkeeper/internal/client"
	"github.com/simonvc/bookkeeper/internal/ledger"
	"github.com/simonvc/bookkeeper/internal/server"
	"github.com/simonvc/bookkeeper/internal/store"
	"github.com/simonvc/bookkeeper/internal/tui"
)

var tuiAsOf string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse accounts, journals and reports in a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cid, err := company()
		if err != nil {
			return err
		}
		asOf := ledger.Day(time.Now())
		if tuiAsOf != "" {
			if asOf, err = ledger.ParseDate(tuiAsOf); err != nil {
				return err
			}
		}

		serverAddr := cfg.Client.URL
		if !cmd.Flags().Changed("server") {
			// Start an embedded server on a free loopback port.
			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			// The TUI owns the terminal, so the embedded server does not log.
			log := zap.NewNop()
			srv := server.New(st, bookkeeping.New(st, log), log, ln.Addr().String())
			go srv.Serve(ln)
			serverAddr = "http://" + ln.Addr().String()

			c := client.New(serverAddr)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for {
				if err := c.Ping(ctx); err == nil {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("timeout waiting for embedded server")
				}
				time.Sleep(50 * time.Millisecond)
			}
		}

		app := tui.NewApp(client.New(serverAddr), cid, asOf)
		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiAsOf, "as-of", "", "Initial report date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(tuiCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MJE43/sicbo-sim/internal/api"
	"github.com/MJE43/sicbo-sim/internal/logger"
	"github.com/MJE43/sicbo-sim/internal/store"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes cohort simulation, trial statistics, nonce verification
and the wager catalogue over HTTP. Run summaries are stored in SQLite when
database.path is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().String("db", "", "SQLite database path (empty disables persistence)")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("database.path", serveCmd.Flags().Lookup("db"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	var db store.DB
	if cfg.Database.Path != "" {
		sqlite, err := store.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer sqlite.Close()
		if err := sqlite.Migrate(); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		db = sqlite
		logger.Info("run persistence enabled", "path", cfg.Database.Path)
	}

	srv := api.NewServer(api.Options{
		Config:  cfg,
		Catalog: cat,
		DB:      db,
		Logger:  logger.L(),
	})
	httpServer := srv.HTTPServer()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("http server listening", "addr", httpServer.Addr, "version", api.EngineVersion)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

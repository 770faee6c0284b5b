// Command auditcore runs the audit dashboard server and its maintenance
// tasks against the configured stores.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auditcore/internal/auth"
	"auditcore/internal/blob"
	"auditcore/internal/config"
	"auditcore/internal/core"
	"auditcore/internal/httpapi"
	"auditcore/internal/ingest"
)

func main() {
	root := &cobra.Command{
		Use:           "auditcore",
		Short:         "Internal audit dashboard server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), importCmd(), hashPasswordCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			stores, err := core.OpenStores(ctx)
			if err != nil {
				return fmt.Errorf("open stores: %w", err)
			}
			blobs, err := blob.OpenFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			recorder, err := core.NewPrometheusMetricsRecorder(registry)
			if err != nil {
				return err
			}
			svc := core.NewService(stores, stores, blobs,
				core.WithLogger(log), core.WithMetrics(recorder))

			var verifierOpts []auth.StaticOption
			if cfg.PlaintextSecrets {
				log.Warn("plaintext credential comparison enabled; dev mode only")
				verifierOpts = append(verifierOpts, auth.WithPlaintextSecrets())
			}
			server := httpapi.NewServer(svc, httpapi.Options{
				Verifier:     auth.NewStaticVerifier(cfg.Users, verifierOpts...),
				Sessions:     auth.NewSessionManager(cfg.SessionTTL),
				Logger:       log,
				Registry:     registry,
				PollInterval: cfg.PollInterval,
			})

			log.Info("listening", zap.String("addr", cfg.Listen))
			httpServer := &http.Server{
				Addr:              cfg.Listen,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return httpServer.ListenAndServe()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tables from files",
	}
	cmd.AddCommand(importRosterCmd(), importDocumentsCmd())
	return cmd
}

func importRosterCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Upsert roster records from an xlsx workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, log *zap.Logger) error {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open workbook: %w", err)
				}
				defer func() { _ = f.Close() }()
				records, err := ingest.ReadRosterWorkbook(f)
				if err != nil {
					return err
				}
				created, updated, skipped, err := svc.ImportRoster(ctx, records)
				if err != nil {
					return err
				}
				fmt.Printf("roster import: %d created, %d updated, %d skipped\n", created, updated, skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "xlsx workbook to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func importDocumentsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Replace the document register from a CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *core.Service, log *zap.Logger) error {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open csv: %w", err)
				}
				defer func() { _ = f.Close() }()
				header, rows, err := ingest.ReadCSV(f)
				if err != nil {
					return err
				}
				cleaned, err := ingest.Clean(header, rows)
				if err != nil {
					return err
				}
				stored, err := svc.BulkReplaceDocuments(ctx, cleaned)
				if err != nil {
					return err
				}
				fmt.Printf("document register replaced: %d rows\n", stored)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "csv file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash for a config users entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func withService(ctx context.Context, fn func(context.Context, *core.Service, *zap.Logger) error) error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	stores, err := core.OpenStores(ctx)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	blobs, err := blob.OpenFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	svc := core.NewService(stores, stores, blobs, core.WithLogger(log))
	return fn(ctx, svc, log)
}

package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfrancani/patrimonio/internal/config"
	"github.com/mfrancani/patrimonio/internal/store/postgres"
	patsync "github.com/mfrancani/patrimonio/internal/sync"
)

var (
	exportOutput string
	exportToS3   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full dataset as JSONL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()

		if exportToS3 {
			if cfg.SyncS3Bucket == "" {
				return fmt.Errorf("--s3 requires PATRIMONIO_SYNC_S3_BUCKET to be set")
			}
			dest, err := patsync.NewS3Destination(ctx,
				cfg.SyncS3Bucket, cfg.SyncS3Key, cfg.SyncS3Region, cfg.SyncS3Endpoint)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := patsync.ExportJSONL(ctx, store, &buf); err != nil {
				return err
			}
			return dest.Write(ctx, buf.Bytes())
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		return patsync.ExportJSONL(ctx, store, out)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportToS3, "s3", false, "upload to the configured S3 bucket instead of writing locally")
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfrancani/patrimonio/internal/config"
	"github.com/mfrancani/patrimonio/internal/hrsync"
	"github.com/mfrancani/patrimonio/internal/store/postgres"
)

var applyFile string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a single HR event from stdin or a file",
	Long: `Reads one HR change event (JSON) and runs it through the same
parse, filter, and apply pipeline the consumer uses. Useful for replaying
events from a dead-letter dump.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		in := os.Stdin
		if applyFile != "" {
			f, err := os.Open(applyFile)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		raw, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		env, err := hrsync.ParseMessage(raw, logger)
		if err != nil {
			return err
		}
		if env == nil {
			return fmt.Errorf("event is malformed or missing required fields")
		}
		if !env.Relevant() {
			fmt.Println("skipped: event out of scope")
			return nil
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		engine := hrsync.NewEngine(store, logger)
		engine.SetRetryPolicy(cfg.ApplyMaxAttempts, cfg.ApplyBackoff)

		out, err := engine.Apply(cmd.Context(), env)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", "", "read the event from a file instead of stdin")
}

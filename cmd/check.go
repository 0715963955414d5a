package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/hlsrelay/internal/config"
	"github.com/smazurov/hlsrelay/internal/health"
	"github.com/smazurov/hlsrelay/internal/overlays/store"
	"github.com/spf13/cobra"
)

const checkTimeout = 10 * time.Second

// CreateCheckCmd creates the check command.
func CreateCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run readiness checks once",
		Long:  `Verifies the transcoder is on PATH, the HLS root is writable and the overlay store answers, then exits non-zero if any check failed.`,
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, opts *config.Options) {
			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()
			if err := runCheck(ctx, cmd.OutOrStdout(), opts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "check failed:", err)
				os.Exit(1)
			}
		}),
	}
}

func runCheck(ctx context.Context, w io.Writer, opts *config.Options) error {
	overlayStore, err := store.Open(ctx, StoreConfig(opts))
	if err != nil {
		return err
	}
	defer func() { _ = overlayStore.Close(context.Background()) }()

	checker := health.New(health.Options{
		TranscoderBin: opts.TranscoderBin,
		HLSRoot:       opts.HLSRoot,
		Store:         overlayStore,
	})

	results, err := checker.RunReadiness()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "FAIL %-14s %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", r.Name)
	}
	return err
}

// StoreConfig maps CLI options to the overlay store configuration.
func StoreConfig(opts *config.Options) store.Config {
	return store.Config{
		Driver:        opts.StoreDriver,
		File:          opts.StoreFile,
		MongoURI:      opts.MongoURI,
		MongoDatabase: opts.MongoDatabase,
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/hlsrelay/internal/config"
	"github.com/smazurov/hlsrelay/internal/streams"
	"github.com/spf13/cobra"
)

// CreateCommandCmd creates the command command.
func CreateCommandCmd() *cobra.Command {
	var streamID string

	cmd := &cobra.Command{
		Use:   "command <rtsp-url>",
		Short: "Print the transcoder invocation for an RTSP source",
		Long: `Prints the exact command line the server would spawn for the given RTSP URL, ` +
			`using the configured transcoder, HLS root and playlist settings. Nothing is started.`,
		Args: cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *config.Options) {
			if err := printCommand(cmd.OutOrStdout(), opts, args[0], streamID); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
				os.Exit(1)
			}
		}),
	}

	cmd.Flags().StringVar(&streamID, "stream-id", "", "Stream ID to render (default: a fresh UUID)")
	return cmd
}

func printCommand(w io.Writer, opts *config.Options, sourceURL, streamID string) error {
	mgr := streams.NewManager(StreamsConfig(opts), nil)
	line, err := mgr.Command(sourceURL, streamID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, line)
	return err
}

// StreamsConfig maps CLI options to the stream manager configuration.
func StreamsConfig(opts *config.Options) streams.Config {
	return streams.Config{
		TranscoderBin:   opts.TranscoderBin,
		OutputRoot:      opts.HLSRoot,
		Playlist:        opts.HLSPlaylist,
		SegmentFilename: opts.HLSSegmentFilename,
		PublicPrefix:    opts.HLSRoute,
		ShutdownWorkers: opts.ShutdownWorkers,
	}
}

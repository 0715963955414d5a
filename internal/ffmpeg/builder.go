package ffmpeg

import (
	"path/filepath"
	"strings"
)

// BaseArgs are prepended to every invocation. "level+info" makes ffmpeg tag
// each log line with its level so ParseLogLevel can map it.
func BaseArgs() []string {
	return []string{"-hide_banner", "-loglevel", "level+info"}
}

// BuildHLSArgs returns the argument vector (without the binary) that pulls
// p.SourceURL over TCP and writes a rolling live playlist into p.OutputDir.
func BuildHLSArgs(p HLSParams) []string {
	playlist := p.Playlist
	if playlist == "" {
		playlist = DefaultPlaylist
	}

	args := BaseArgs()

	// Input
	args = append(args,
		"-rtsp_transport", "tcp",
		"-i", p.SourceURL,
		"-fflags", "nobuffer",
		"-an",
	)

	// Encoder
	args = append(args,
		"-c:v", Encoder,
		"-preset", Preset,
		"-tune", Tune,
		"-g", GOP,
		"-sc_threshold", "0",
	)

	// Muxer
	args = append(args,
		"-f", "hls",
		"-hls_time", SegmentSeconds,
		"-hls_list_size", ListSize,
		"-hls_flags", HLSFlags,
	)
	if p.SegmentFilename != "" {
		args = append(args, "-hls_segment_filename", filepath.Join(p.OutputDir, p.SegmentFilename))
	}

	return append(args, filepath.Join(p.OutputDir, playlist))
}

// CommandLine renders bin and args as a single shell-pasteable line.
func CommandLine(bin string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(bin))
	for _, a := range args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$&;|<>()*?`!#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package ffmpeg

// HLSParams describes one RTSP to HLS transcode.
type HLSParams struct {
	SourceURL string // rtsp://camera.local/stream1
	OutputDir string // <hls_root>/<stream id>
	Playlist  string // index.m3u8

	// SegmentFilename is a pattern such as "seg_%05d.ts". Empty lets ffmpeg
	// name segments after the playlist.
	SegmentFilename string
}

// Canonical encoder and muxer settings. A 48 frame GOP with scene-cut
// detection off keeps every 2s segment starting on a keyframe.
const (
	DefaultPlaylist = "index.m3u8"
	Encoder         = "libx264"
	Preset          = "veryfast"
	Tune            = "zerolatency"
	GOP             = "48"
	SegmentSeconds  = "2"
	ListSize        = "5"
	HLSFlags        = "delete_segments+append_list"
)

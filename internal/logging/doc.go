// Package logging provides structured logging with per-module log level configuration.
//
// Logs go to stdout when a terminal, pipe or file is attached and to the
// systemd journal when journald is reachable; both when both are present.
//
// Initialize once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"process":    "debug",
//			"transcoder": "warn",
//		},
//	})
//
// Then fetch a logger per module:
//
//	logger := logging.GetLogger("streams").With("stream_id", id)
//	logger.Info("Stream started", "pid", pid)
//
// Levels can be changed at runtime with SetLevels, which is what the config
// file watcher calls after an edit to the [logging] table:
//
//	[logging]
//	level = "info"
//	format = "text"
//	transcoder = "warn"
//
// Journal entries carry SYSLOG_IDENTIFIER=hlsrelay and upper-cased attribute
// fields, so `journalctl -t hlsrelay STREAM_ID=<id>` filters one stream.
package logging

// Package process spawns transcoder subprocesses and tears them down
// together with everything they forked.
//
// Three pieces cooperate:
//
// Spawner starts a binary in its own process group and returns a Handle.
// ExecSpawner streams stdout and stderr into slog using a pluggable
// LogParser and reaps the child in the background.
//
// Registry maps stream IDs to live handles. It is the single source of
// truth for "currently running" and is safe for concurrent use.
//
// Terminator force-kills a handle's whole tree. Descendants are discovered
// from a full process snapshot (gopsutil), killed deepest first, then the
// root, then the root's process group as a final sweep. A process that is
// already gone counts as success.
//
// Example:
//
//	spawner := process.NewExecSpawner(logger, ffmpegLogger, ffmpeg.ParseLogLevel)
//	h, err := spawner.Spawn(ctx, "ffmpeg", args)
//	if err != nil {
//	    return err
//	}
//	_ = registry.Register(id, h)
//	...
//	process.NewTerminator(process.SystemTree{}, logger).Terminate(h)
//	registry.Unregister(id)
package process

package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// LogParser parses a log line and returns the log level and message.
// Used to extract structured log info from process output (ffmpeg etc.)
type LogParser func(line string) (level, msg string)

// Spawner starts a root process that keeps running after Spawn returns.
type Spawner interface {
	Spawn(ctx context.Context, bin string, args []string) (*Handle, error)
}

// DefaultWaitDelay bounds how long output copying may outlive the root
// when orphaned children still hold its stdout or stderr.
const DefaultWaitDelay = 2 * time.Second

// ExecSpawner runs binaries with os/exec in a fresh process group.
type ExecSpawner struct {
	logger       *slog.Logger
	outputLogger *slog.Logger
	parser       LogParser
	waitDelay    time.Duration
}

// NewExecSpawner creates a spawner. outputLogger receives the child's
// stdout and stderr lines; parser may be nil.
func NewExecSpawner(logger, outputLogger *slog.Logger, parser LogParser) *ExecSpawner {
	if outputLogger == nil {
		outputLogger = logger
	}
	return &ExecSpawner{
		logger:       logger,
		outputLogger: outputLogger,
		parser:       parser,
		waitDelay:    DefaultWaitDelay,
	}
}

// Spawn starts bin with args. The context only gates the launch; the child
// is not bound to it and lives until terminated.
func (s *ExecSpawner) Spawn(ctx context.Context, bin string, args []string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(bin, args...)
	cmd.SysProcAttr = newProcAttr()
	cmd.WaitDelay = s.waitDelay

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		_ = stdoutW.Close()
		_ = stderrW.Close()
		return nil, fmt.Errorf("start %s: %w", bin, err)
	}

	h := NewHandle(cmd.Process.Pid)
	s.logger.Info("Process started", "pid", h.PID(), "bin", bin)

	go s.streamOutput(stdoutR, "stdout")
	go s.streamOutput(stderrR, "stderr")

	go func() {
		err := cmd.Wait()
		_ = stdoutW.Close()
		_ = stderrW.Close()
		h.MarkExited(err)

		attrs := []any{"pid", h.PID(), "exit_code", h.ExitCode()}
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			attrs = append(attrs, "error", err)
		}
		s.logger.Info("Process exited", attrs...)
	}()

	return h, nil
}

// streamOutput forwards each line to the output logger at the level the
// parser reports. On a scan error the rest of the stream is discarded so
// the child never blocks on a full pipe.
func (s *ExecSpawner) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		level, msg := "info", line
		if s.parser != nil {
			level, msg = s.parser(line)
		}

		switch level {
		case "panic", "fatal", "error":
			s.outputLogger.Error(msg, "source", source)
		case "warning":
			s.outputLogger.Warn(msg, "source", source)
		case "verbose", "debug", "trace":
			s.outputLogger.Debug(msg, "source", source)
		default:
			s.outputLogger.Info(msg, "source", source)
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Warn("Error reading output", "source", source, "error", err)
		_, _ = io.Copy(io.Discard, reader)
	}
}

// Package tty runs a child process on a pseudo-terminal and hands its
// output to a consumer in bounded chunks.
package tty

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"

	"github.com/gridterm/gridterm/logger"
)

const (
	// Largest chunk handed to the consumer per read.
	readBufferSize = 4096

	// Depth of the output channel. The reader blocks once the consumer
	// falls this far behind, which is the backpressure keeping a
	// fast-printing child from buffering unbounded output in memory.
	channelDepth = 32
)

type Options struct {
	// Command and its arguments. Empty means the user's shell, falling
	// back to /bin/sh.
	Command string
	Args    []string

	// Extra environment entries appended to the parent environment.
	// TERM is added when not set.
	Env []string

	// Initial window size.
	Cols, Rows uint16

	Logger logger.Logger
}

// Session is a running child on a PTY. Output arrives on the channel
// returned by Output; the channel closes when the child hangs up.
type Session struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	output chan []byte
	logger logger.Logger
}

// Start spawns the child on a freshly allocated PTY and begins reading
// its output.
func Start(opts Options) (*Session, error) {
	command := opts.Command
	if command == "" {
		command = os.Getenv("SHELL")
	}
	if command == "" {
		command = "/bin/sh"
	}
	log := opts.Logger
	if log == nil {
		log = logger.DefaultLogger
	}

	cmd := exec.Command(command, opts.Args...)
	env := append(os.Environ(), opts.Env...)
	if !hasTermVar(env) {
		env = append(env, "TERM=xterm-256color")
	}
	cmd.Env = env

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: opts.Rows,
		Cols: opts.Cols,
	})
	if err != nil {
		return nil, fmt.Errorf("starting %s on pty: %w", command, err)
	}

	s := &Session{
		cmd:    cmd,
		ptmx:   ptmx,
		output: make(chan []byte, channelDepth),
		logger: log,
	}
	go s.readLoop()
	return s, nil
}

func hasTermVar(env []string) bool {
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			return true
		}
	}
	return false
}

// readLoop pumps PTY output into the channel until the child hangs up.
// Every chunk is a fresh allocation; the consumer owns it.
func (s *Session) readLoop() {
	defer close(s.output)
	for {
		buf := make([]byte, readBufferSize)
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.output <- buf[:n]
		}
		if err != nil {
			// Linux reports a closed slave side as EIO rather than EOF.
			if err != io.EOF {
				s.logger.Debug("pty read ended", "err", err)
			}
			return
		}
	}
}

// Output is the channel of output chunks. It closes when the child
// exits or the session is closed.
func (s *Session) Output() <-chan []byte {
	return s.output
}

// Write sends input (keystrokes, query responses) to the child.
func (s *Session) Write(p []byte) (int, error) {
	return s.ptmx.Write(p)
}

// Resize propagates a new window size to the kernel and thereby
// SIGWINCH to the child.
func (s *Session) Resize(cols, rows uint16) error {
	err := pty.Setsize(s.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return fmt.Errorf("resizing pty: %w", err)
	}
	return nil
}

// Close hangs up the PTY. The child sees EOF/SIGHUP and the output
// channel closes once the reader drains.
func (s *Session) Close() error {
	return s.ptmx.Close()
}

// Wait blocks until the child exits and releases its resources.
func (s *Session) Wait() error {
	return s.cmd.Wait()
}

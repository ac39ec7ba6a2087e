// Package server accepts TCP connections and services spec.md 6's
// line-oriented protocol against an *fsmanager.FS. One goroutine per
// connection, matching spec.md 5's "a worker services the connection until
// the client closes it or sends QUIT" model on top of Go's native
// concurrency unit; concurrency is bounded by a buffered semaphore channel
// rather than a fixed pre-spawned pool (SPEC_FULL Open Question).
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mnfs/tinyfsd/fserr"
	"github.com/mnfs/tinyfsd/fsmanager"
	"github.com/mnfs/tinyfsd/protocol"
	"github.com/mnfs/tinyfsd/util"
)

// Server owns the listener and the shared file system.
type Server struct {
	fs          *fsmanager.FS
	maxWorkers  int
	idleTimeout time.Duration
	sem         chan struct{}
}

// Config configures the server's own concerns, separate from fsmanager.FS's
// construction (which happens before the server is built).
type Config struct {
	MaxWorkers  int
	IdleTimeout time.Duration
}

// New returns a Server ready to Serve on behalf of fs.
func New(fs *fsmanager.FS, cfg Config) *Server {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 64
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	return &Server{
		fs:          fs,
		maxWorkers:  cfg.MaxWorkers,
		idleTimeout: cfg.IdleTimeout,
		sem:         make(chan struct{}, cfg.MaxWorkers),
	}
}

// Serve listens on addr and services connections until ctx is cancelled or
// the listener fails. It always closes the listener before returning.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	util.DPrintf(1, "server: listening on %s (max-workers=%d idle-timeout=%s)\n",
		addr, s.maxWorkers, s.idleTimeout)
	return s.ServeListener(ctx, ln)
}

// ServeListener drives the accept loop over an already-bound listener,
// closing it when ctx is cancelled. Split out from Serve so tests can bind
// an ephemeral port and learn its address before serving.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		select {
		case s.sem <- struct{}{}:
			go s.serveConn(conn)
		default:
			// At the concurrency bound: refuse rather than queue
			// unboundedly, matching the pool's fixed worker count.
			util.DPrintf(1, "server: at max-workers, rejecting connection from %s\n", conn.RemoteAddr())
			conn.Close()
		}
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer func() { <-s.sem }()
	defer conn.Close()

	id := uuid.NewString()
	util.DPrintf(2, "server[%s]: accepted connection from %s\n", id, conn.RemoteAddr())

	reader := bufio.NewReader(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		line, err := reader.ReadString('\n')
		if err != nil {
			util.DPrintf(2, "server[%s]: connection closed: %v\n", id, err)
			return
		}

		cmd, perr := protocol.Parse(line)
		if perr != nil {
			writeLine(conn, protocol.RenderError(perr))
			continue
		}

		if cmd.Verb == protocol.VerbQuit {
			writeLine(conn, "SUCCESS: Disconnecting.")
			util.DPrintf(2, "server[%s]: client sent QUIT\n", id)
			return
		}

		s.dispatch(conn, id, cmd)
	}
}

func (s *Server) dispatch(conn net.Conn, connID string, cmd protocol.Command) {
	switch cmd.Verb {
	case protocol.VerbCreate:
		if err := s.fs.Create(cmd.Name); err != nil {
			writeLine(conn, protocol.RenderError(err))
			return
		}
		writeLine(conn, fmt.Sprintf("SUCCESS: File '%s' created.", cmd.Name))

	case protocol.VerbWrite:
		if err := s.fs.Write(cmd.Name, cmd.Content); err != nil {
			writeLine(conn, protocol.RenderError(err))
			return
		}
		writeLine(conn, fmt.Sprintf("SUCCESS: File '%s' written.", cmd.Name))

	case protocol.VerbRead:
		data, err := s.fs.Read(cmd.Name)
		if err != nil {
			writeLine(conn, protocol.RenderError(err))
			return
		}
		conn.Write(data)
		conn.Write([]byte("\n"))

	case protocol.VerbDelete:
		if err := s.fs.Delete(cmd.Name); err != nil {
			writeLine(conn, protocol.RenderError(err))
			return
		}
		writeLine(conn, fmt.Sprintf("SUCCESS: File '%s' deleted.", cmd.Name))

	case protocol.VerbList:
		names := s.fs.List()
		if len(names) == 0 {
			writeLine(conn, "No files in filesystem.")
			return
		}
		writeLine(conn, strings.Join(names, ", "))

	case protocol.VerbStat:
		st, err := s.fs.Stat(cmd.Name)
		if err != nil {
			writeLine(conn, protocol.RenderError(err))
			return
		}
		writeLine(conn, fmt.Sprintf("SUCCESS: %s %d %d", st.Name, st.Size, st.Blocks))

	case protocol.VerbInfo:
		info := s.fs.Info()
		writeLine(conn, fmt.Sprintf(
			"SUCCESS: files %d/%d blocks %d/%d block-size %d",
			info.FilesUsed, info.MaxFiles, info.BlocksUsed, info.MaxBlocks, info.BlockSize))

	default:
		writeLine(conn, protocol.RenderError(fserr.New(fserr.Protocol, "Unknown command.")))
	}
	util.DPrintf(4, "server[%s]: served %v\n", connID, cmd.Verb)
}

func writeLine(conn net.Conn, line string) {
	conn.Write([]byte(line))
	conn.Write([]byte("\n"))
}

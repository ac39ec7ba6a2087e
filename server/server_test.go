package server

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mnfs/tinyfsd/fsmanager"
)

func startTestServer(t *testing.T) net.Addr {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vol.img")
	fs, err := fsmanager.Open(path, "test", 0)
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(fs, Config{MaxWorkers: 4, IdleTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.ServeListener(ctx, ln)

	return ln.Addr()
}

func dial(t *testing.T, addr net.Addr) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, bufio.NewReader(conn)
}

func TestServerCreateWriteReadRoundTrip(t *testing.T) {
	addr := startTestServer(t)
	conn, reader := dial(t, addr)

	conn.Write([]byte("CREATE a.txt\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "SUCCESS: File 'a.txt' created.\n", line)

	conn.Write([]byte("WRITE a.txt hello world\n"))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "SUCCESS: File 'a.txt' written.\n", line)

	conn.Write([]byte("READ a.txt\n"))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "hello world\n", line)
}

func TestServerListEmpty(t *testing.T) {
	addr := startTestServer(t)
	conn, reader := dial(t, addr)

	conn.Write([]byte("LIST\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "No files in filesystem.\n", line)
}

func TestServerReadGhostReturnsError(t *testing.T) {
	addr := startTestServer(t)
	conn, reader := dial(t, addr)

	conn.Write([]byte("READ ghost\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ERROR: file ghost does not exist\n", line)
}

func TestServerQuitClosesConnection(t *testing.T) {
	addr := startTestServer(t)
	conn, reader := dial(t, addr)

	conn.Write([]byte("QUIT\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "SUCCESS: Disconnecting.\n", line)

	_, err = reader.ReadString('\n')
	require.Error(t, err) // connection closed by server
}

func TestServerErrorDoesNotTerminateConnection(t *testing.T) {
	addr := startTestServer(t)
	conn, reader := dial(t, addr)

	conn.Write([]byte("BOGUS\n"))
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "ERROR: Unknown command.\n", line)

	conn.Write([]byte("CREATE works.txt\n"))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "SUCCESS: File 'works.txt' created.\n", line)
}

// Package remote scans directories over the SFTP subsystem of an SSH
// connection, exposing the result as the same entry stream the local
// walker produces.
package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"sort"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mietkow/duwalk/internal/walk"
)

const streamBuffer = 128

const defaultRemoteBlockSize int64 = 4096
const maxInt64 = int64(^uint64(0) >> 1)

// Config configures a remote connection.
type Config struct {
	Target Target
	// BatchMode disables interactive prompts; unknown hosts and password
	// auth fail instead of asking.
	BatchMode bool
	// Timeout bounds the dial and SSH handshake. Zero means 15 seconds.
	Timeout time.Duration
}

// sftpClient is the slice of *sftp.Client the walker needs. Extended
// capabilities (ReadDirContext, StatVFS) are discovered by type assertion.
type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Stat(string) (os.FileInfo, error)
	RealPath(string) (string, error)
}

// Walker enumerates a remote filesystem over one SFTP session.
//
// Enumeration is serial: the SFTP round trip, not local CPU, dominates, and
// a single recursive reader satisfies the depth-first ordering contract
// directly. SFTP carries no device or inode numbers, so entries report
// device 0, inode 0, and link count 1; the hard-link and cross-device gates
// then pass everything through. Size on disk is estimated by rounding the
// apparent size up to the server's block size.
type Walker struct {
	opts   walk.Options
	client sftpClient
	closer io.Closer
}

// Connect dials the target and starts an SFTP session. The caller owns the
// returned Walker and must Close it.
func Connect(ctx context.Context, cfg Config, opts walk.Options) (*Walker, error) {
	client, closer, err := dialSFTP(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Walker{opts: opts, client: client, closer: closer}, nil
}

// Close tears down the SFTP session and the SSH connection under it.
func (w *Walker) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// DeviceID verifies the remote path exists. SFTP does not expose device
// numbers, so every reachable path reports device 0.
func (w *Walker) DeviceID(path string) (uint64, error) {
	if _, err := w.client.Stat(cleanRemotePath(path)); err != nil {
		return 0, fmt.Errorf("cannot stat remote path %q: %w", path, err)
	}
	return 0, nil
}

func (w *Walker) Walk(ctx context.Context, path string, rootDevice uint64) <-chan walk.EntryResult {
	out := make(chan walk.EntryResult, streamBuffer)
	go w.run(ctx, path, out)
	return out
}

func (w *Walker) run(ctx context.Context, root string, out chan<- walk.EntryResult) {
	defer close(out)

	send := func(r walk.EntryResult) bool {
		select {
		case out <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}

	rootPath := cleanRemotePath(root)
	if resolved, err := w.client.RealPath(rootPath); err == nil {
		rootPath = cleanRemotePath(resolved)
	}

	info, err := w.client.Stat(rootPath)
	if err != nil {
		send(walk.EntryResult{Err: fmt.Errorf("cannot stat remote path %q: %w", rootPath, err)})
		return
	}

	blockSize := remoteBlockSize(w.client, rootPath)
	if !send(walk.EntryResult{Entry: walk.Entry{
		Path:   rootPath,
		Name:   pathpkg.Base(rootPath),
		Parent: pathpkg.Dir(rootPath),
		Meta:   &remoteMeta{info: info, blockSize: blockSize},
	}}) {
		return
	}
	if !info.IsDir() {
		return
	}
	w.walkDir(ctx, rootPath, 1, blockSize, send)
}

// walkDir emits one directory's children and recurses into subdirectories.
// Ignored directories still appear in the stream; only their contents are
// skipped. It returns false once a send was refused, which only happens on
// cancellation.
func (w *Walker) walkDir(ctx context.Context, dir string, depth int, blockSize int64, send func(walk.EntryResult) bool) bool {
	entries, err := readRemoteDir(ctx, w.client, dir)
	if err != nil {
		return send(walk.EntryResult{Err: err})
	}

	if w.opts.Sorting == walk.SortAlphabetical {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	}

	for _, e := range entries {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if isSpecialRemoteMode(e.Mode()) {
			continue
		}

		path := cleanRemotePath(pathpkg.Join(dir, e.Name()))
		descend := e.IsDir()
		if descend {
			if _, skip := w.opts.IgnoreDirs[path]; skip {
				descend = false
			}
		}

		if !send(walk.EntryResult{Entry: walk.Entry{
			Depth:  depth,
			Path:   path,
			Name:   e.Name(),
			Parent: dir,
			Meta:   &remoteMeta{info: e, blockSize: blockSize},
		}}) {
			return false
		}

		if descend {
			if !w.walkDir(ctx, path, depth+1, blockSize, send) {
				return false
			}
		}
	}
	return true
}

// remoteMeta adapts an SFTP FileInfo to the metadata contract. Symlinks are
// not followed; the link itself is a file of its own length, matching local
// enumeration below the root.
type remoteMeta struct {
	info      os.FileInfo
	blockSize int64
}

func (m *remoteMeta) IsDir() bool   { return m.info.IsDir() }
func (m *remoteMeta) Dev() uint64   { return 0 }
func (m *remoteMeta) Ino() uint64   { return 0 }
func (m *remoteMeta) Nlink() uint64 { return 1 }

func (m *remoteMeta) ApparentSize() uint64 {
	if s := m.info.Size(); s > 0 {
		return uint64(s)
	}
	return 0
}

func (m *remoteMeta) SizeOnDisk() (uint64, error) {
	return uint64(estimateDiskUsage(m.info.Size(), m.blockSize)), nil
}

func (m *remoteMeta) Modified() (time.Time, error) {
	return m.info.ModTime(), nil
}

func estimateDiskUsage(size, blockSize int64) int64 {
	if size <= 0 {
		return 0
	}
	if blockSize <= 0 {
		blockSize = defaultRemoteBlockSize
	}
	blocks := (size + blockSize - 1) / blockSize
	return blocks * blockSize
}

func remoteBlockSize(client sftpClient, rootPath string) int64 {
	vfsClient, ok := client.(interface {
		StatVFS(path string) (*sftp.StatVFS, error)
	})
	if !ok {
		return defaultRemoteBlockSize
	}

	stat, err := vfsClient.StatVFS(rootPath)
	if err != nil || stat == nil {
		return defaultRemoteBlockSize
	}

	if stat.Frsize > 0 && stat.Frsize <= uint64(maxInt64) {
		return int64(stat.Frsize)
	}
	if stat.Bsize > 0 && stat.Bsize <= uint64(maxInt64) {
		return int64(stat.Bsize)
	}
	return defaultRemoteBlockSize
}

func isSpecialRemoteMode(mode os.FileMode) bool {
	return mode&(os.ModeDevice|os.ModeCharDevice|os.ModeSocket|os.ModeNamedPipe|os.ModeIrregular) != 0
}

func readRemoteDir(ctx context.Context, client sftpClient, dirPath string) ([]os.FileInfo, error) {
	if rc, ok := client.(interface {
		ReadDirContext(context.Context, string) ([]os.FileInfo, error)
	}); ok {
		return rc.ReadDirContext(ctx, dirPath)
	}
	return client.ReadDir(dirPath)
}

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = func(conn net.Conn, addr string, config *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	return ssh.NewClientConn(conn, addr, config)
}

func dialSFTP(ctx context.Context, cfg Config) (sftpClient, io.Closer, error) {
	t := cfg.Target
	if t.Host == "" || t.User == "" {
		return nil, nil, fmt.Errorf("remote target is required")
	}

	hostCB, err := hostKeyCallback(t.Host, t.Port, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}

	auth, err := buildAuthMethods(t.User, t.Host, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshConfig := &ssh.ClientConfig{
		User:            t.User,
		Auth:            auth,
		HostKeyCallback: hostCB,
		Timeout:         timeout,
	}

	sshClient, err := connectSSH(dialCtx, t.Addr(), sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}

	return client, &remoteCloser{ssh: sshClient, sftp: client}, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Ensure cancellation interrupts handshake/authentication.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type remoteCloser struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *remoteCloser) Close() error {
	var retErr error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			retErr = err
		}
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}
	return retErr
}

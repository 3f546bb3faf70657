package remote

import (
	"fmt"
	pathpkg "path"
	"strconv"
	"strings"
)

const defaultRemotePath = "."

// Target identifies a remote scan root: user@host[:port][:path].
type Target struct {
	User string
	Host string
	Port int
	Path string
}

// Addr returns the host:port dial address.
func (t Target) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// IsTarget reports whether s is shaped like a remote target rather than a
// local path. A path separator before the first @ disqualifies it, so
// ./odd@name stays local.
func IsTarget(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return !strings.ContainsAny(s[:at], "/\\")
}

// ParseTarget parses user@host[:port][:path]. The port defaults to 22 and
// the path to the SSH login directory. A lone numeric segment after the
// host is read as a port, anything else as the remote path.
func ParseTarget(s string) (Target, error) {
	user, rest, ok := strings.Cut(s, "@")
	if !ok || user == "" || rest == "" {
		return Target{}, fmt.Errorf("invalid remote target %q: expected user@host[:port][:path]", s)
	}

	t := Target{User: user, Port: 22, Path: defaultRemotePath}

	host, tail, hasTail := strings.Cut(rest, ":")
	if host == "" {
		return Target{}, fmt.Errorf("invalid remote target %q: missing host", s)
	}
	t.Host = host

	if hasTail && tail != "" {
		if portStr, path, ok := strings.Cut(tail, ":"); ok {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Target{}, fmt.Errorf("invalid remote target %q: bad port %q", s, portStr)
			}
			t.Port = port
			if path != "" {
				t.Path = path
			}
		} else if port, err := strconv.Atoi(tail); err == nil {
			t.Port = port
		} else {
			t.Path = tail
		}
	}

	if t.Port < 1 || t.Port > 65535 {
		return Target{}, fmt.Errorf("invalid remote target %q: port must be between 1 and 65535", s)
	}
	t.Path = cleanRemotePath(t.Path)
	return t, nil
}

func cleanRemotePath(p string) string {
	if p == "" {
		return defaultRemotePath
	}
	clean := pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "" {
		return defaultRemotePath
	}
	return clean
}

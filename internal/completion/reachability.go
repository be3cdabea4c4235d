package completion

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// CheckReachable dials the host of baseURL and reports whether a TCP
// connection can be opened.
func CheckReachable(ctx context.Context, baseURL string) error {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	parsed, err := url.Parse(NormalizeBaseURL(raw))
	if err != nil || parsed == nil {
		return fmt.Errorf("invalid base_url %q: %w", raw, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	host := parsed.Hostname()
	if scheme == "" || host == "" {
		return fmt.Errorf("invalid base_url %q: scheme=%q host=%q", raw, parsed.Scheme, parsed.Host)
	}
	port := parsed.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		default:
			return fmt.Errorf("unsupported base_url scheme %q", parsed.Scheme)
		}
	}
	if _, err := strconv.Atoi(port); err != nil {
		return fmt.Errorf("invalid base_url port %q: %w", port, err)
	}

	addr := net.JoinHostPort(host, port)
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot connect to %s: %w", addr, err)
	}
	_ = conn.Close()
	return nil
}

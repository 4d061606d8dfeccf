package bootctl

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"ocrboot/internal/common/fsutil"
	"ocrboot/internal/config"
)

// loadProxyEnv parses a shell-style env file (KEY=VALUE lines, optional
// "export " prefix, # comments). The shell originals source this file;
// here the variables are merged into every network-touching child.
func loadProxyEnv(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	env := map[string]string{}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		v = strings.Trim(v, `"'`)
		if k == "" {
			continue
		}
		env[k] = v
	}
	return env, nil
}

// proxyEnv returns the proxy environment configured by the manifest,
// or an empty map when none is configured.
func proxyEnv(m *config.Manifest) (map[string]string, error) {
	if m.ProxyEnv == "" {
		return map[string]string{}, nil
	}
	p, err := fsutil.ExpandHome(m.ProxyEnv)
	if err != nil {
		return nil, err
	}
	env, err := loadProxyEnv(p)
	if err != nil {
		return nil, fmt.Errorf("proxy env: %w", err)
	}
	return env, nil
}

// proxyURL picks the proxy endpoint out of a proxy environment.
func proxyURL(env map[string]string) string {
	for _, k := range []string{"https_proxy", "HTTPS_PROXY", "http_proxy", "HTTP_PROXY", "all_proxy", "ALL_PROXY"} {
		if v := env[k]; v != "" {
			return v
		}
	}
	return ""
}

// proxyAddr reduces a proxy URL to a dialable host:port.
func proxyAddr(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// proxyReachable dials the configured proxy endpoint. A manifest without
// a proxy URL passes trivially.
func proxyReachable(env map[string]string, timeout time.Duration) error {
	raw := proxyURL(env)
	if raw == "" {
		return nil
	}
	addr := proxyAddr(raw)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("dial proxy %s: %w", addr, err)
	}
	_ = conn.Close()
	return nil
}

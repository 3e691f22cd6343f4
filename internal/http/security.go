package http

import (
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync/atomic"
)

// securityMetrics counts requests the security layer acted on.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

func (m *securityMetrics) snapshot() (rateLimited, suspicious int64) {
	return atomic.LoadInt64(&m.rateLimitHits), atomic.LoadInt64(&m.suspiciousRequests)
}

// setSecurityHeaders sets the response headers of every API response. The
// API serves no documents, so nothing may be loaded or framed.
func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cache-Control", "no-store")
}

// trustedProxies may set X-Forwarded-For and X-Real-IP: loopback and the
// private ranges a reverse proxy usually sits in.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy and the header holds a valid IP.
func extractClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if ap, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		peer = ap.Addr().String()
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !isTrustedProxy(addr) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if fwd, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return fwd.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if fwd, err := netip.ParseAddr(strings.TrimSpace(xri)); err == nil {
			return fwd.String()
		}
	}
	return peer
}

const (
	maxURLLength  = 2048
	maxProxyChain = 5
)

var (
	// probePatterns are fragments of paths and queries used by vulnerability
	// scanners, never by API clients.
	probePatterns = []string{
		"../", "..\\", ".env", ".git", ".ssh", "etc/passwd", "cmd.exe",
		"wp-admin", "wp-login", "phpmyadmin", "admin.php", "config.php",
		"<script", "javascript:", "eval(", "union select",
	}
	scannerAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
		"scanner", "crawler", "spider", "scraper",
	}
	unusualMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

func containsAny(s string, fragments []string) (string, bool) {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return f, true
		}
	}
	return "", false
}

// suspicionReason describes why r looks like a probe, or returns "" for an
// ordinary request. Suspicious requests are logged, not rejected.
func suspicionReason(r *http.Request) string {
	if f, ok := containsAny(strings.ToLower(r.URL.Path), probePatterns); ok {
		return "path contains " + f
	}
	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}
	if f, ok := containsAny(strings.ToLower(query), probePatterns); ok {
		return "query contains " + f
	}
	if a, ok := containsAny(strings.ToLower(r.UserAgent()), scannerAgents); ok {
		return "scanner user agent " + a
	}
	for _, m := range unusualMethods {
		if r.Method == m {
			return "method " + m
		}
	}
	if len(r.URL.String()) > maxURLLength {
		return "url too long"
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > maxProxyChain {
		return "long proxy chain"
	}
	return ""
}

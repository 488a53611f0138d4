package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/botyak1234/marketplace-task/utils"
)

// IPRateLimiter implements per-IP fixed-window counters with optional
// trusted-proxy parsing. In-memory on purpose: a single instance is enough
// for this service and the state is cheap to lose on restart.
type IPRateLimiter struct {
	max    int
	window time.Duration

	mu    sync.Mutex
	state map[string][]int64 // ip -> request times, unix nanos

	trustedCIDR []string
}

// NewIPRateLimiter creates a limiter allowing maxReq requests per window per IP.
func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		max:    maxReq,
		window: window,
		state:  make(map[string][]int64),
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop()
	return l
}

// clientIPGeneric returns the client IP string. X-Forwarded-For is honored
// only when the remote addr is inside one of the trusted CIDRs or IPs.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
		} else if cidr == remoteHost {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[0]); ip != "" {
				return ip
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	return remoteHost
}

func (l *IPRateLimiter) allow(ip string) bool {
	now := time.Now().UnixNano()
	cutoff := now - l.window.Nanoseconds()

	l.mu.Lock()
	defer l.mu.Unlock()

	times := l.state[ip]
	kept := times[:0]
	for _, ts := range times {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.state[ip] = kept
		return false
	}
	l.state[ip] = append(kept, now)
	return true
}

// Middleware rejects requests over the limit with a 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		if !l.allow(ip) {
			utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{Success: false, Message: "Too many requests, please try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for range tick.C {
		cutoff := time.Now().UnixNano() - l.window.Nanoseconds()
		l.mu.Lock()
		for ip, times := range l.state {
			kept := times[:0]
			for _, ts := range times {
				if ts > cutoff {
					kept = append(kept, ts)
				}
			}
			if len(kept) == 0 {
				delete(l.state, ip)
			} else {
				l.state[ip] = kept
			}
		}
		l.mu.Unlock()
	}
}

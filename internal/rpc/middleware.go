package rpc

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the number of per-IP limiters kept in memory.
const maxTrackedClients = 4096

// RateLimiter hands out one token bucket per client IP
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
}

// NewRateLimiter creates a limiter allowing perSecond requests with burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return nil
	}
	cache, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	return &RateLimiter{limit: rate.Limit(perSecond), burst: burst, limiters: cache}
}

// Allow reports whether the client may make a request now
func (l *RateLimiter) Allow(ip string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	limiter, ok := l.limiters.Get(ip)
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(ip, limiter)
	}
	l.mu.Unlock()
	return limiter.Allow()
}

// AdminList matches client addresses against IPs and CIDR ranges
type AdminList struct {
	ips  []net.IP
	nets []*net.IPNet
}

// NewAdminList parses entries. Invalid entries are skipped; configuration
// validation rejects them earlier.
func NewAdminList(entries []string) *AdminList {
	a := &AdminList{}
	for _, e := range entries {
		if ip := net.ParseIP(e); ip != nil {
			a.ips = append(a.ips, ip)
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			a.nets = append(a.nets, n)
		}
	}
	return a
}

// Contains reports whether addr is an admin address
func (a *AdminList) Contains(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil || a == nil {
		return false
	}
	for _, candidate := range a.ips {
		if candidate.Equal(ip) {
			return true
		}
	}
	for _, n := range a.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// requestID returns the caller's X-Request-ID or a fresh one
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

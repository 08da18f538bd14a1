package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"dokan-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Checkout and stock mutations (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

// init starts the background cleanup routine.
func init() {
	go cleanupVisitors()
}

// getVisitor retrieves or creates a rate limiter for the given bucket key.
func getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes old entries from the visitors map to prevent memory leaks.
func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

// RateLimit checks whether the request is allowed by its tier's limiter.
// The internal secret, when set, lets trusted services onto the high tier.
func RateLimit(internalSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, burst, tier := resolveRateTier(r, internalSecret)

			// Prefer the authenticated user; fall back to device, then IP.
			var identity string
			if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
				identity = "user:" + userID
			} else if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
				identity = "device:" + deviceID
			} else {
				ip, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					ip = r.RemoteAddr
				}
				identity = "ip:" + ip
			}

			// Same user gets separate quotas for strict vs general actions.
			key := fmt.Sprintf("%s:%s", identity, tier)

			limiter := getVisitor(key, limit, burst)
			if !limiter.Allow() {
				utils.WriteJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveRateTier determines which rate limit policy applies to the request.
func resolveRateTier(r *http.Request, internalSecret string) (rate.Limit, int, string) {
	if internalSecret != "" && r.Header.Get("X-Service-Auth") == internalSecret {
		return limitInternal, burstInternal, "internal"
	}

	// Order placement and stock mutations burn inventory; keep them tight.
	if r.Method == http.MethodPost &&
		(r.URL.Path == "/api/orders" || strings.HasPrefix(r.URL.Path, "/api/stock")) {
		return limitStrict, burstStrict, "strict"
	}

	return limitGeneral, burstGeneral, "general"
}

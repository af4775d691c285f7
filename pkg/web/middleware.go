package web

import (
	"log/slog"
	"time"

	"github.com/dukex/flowgen/pkg/auth"
	"github.com/gofiber/fiber/v3"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const userIDKey = "user_id"

// UserID returns the authenticated user of the request, or "" for anonymous
// callers.
func UserID(c fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)

	return userID
}

// Authenticate resolves the bearer token into a user id. Requests without an
// Authorization header continue anonymously; an invalid token is rejected.
// A nil verifier treats every request as anonymous.
func Authenticate(logger *slog.Logger, verifier *auth.Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if verifier == nil || header == "" {
			return c.Next()
		}

		token, err := auth.ExtractToken(header)
		if err != nil {
			return unauthorized(c, err.Error())
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			logger.DebugContext(c.Context(), "Rejected bearer token", "error", err)

			return unauthorized(c, "invalid or expired token")
		}

		c.Locals(userIDKey, userID)

		return c.Next()
	}
}

// RateLimiter hands out one token bucket per caller.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

// NewRateLimiter allows perSecond requests per caller with the given burst.
// Idle buckets are dropped after idle.
func NewRateLimiter(perSecond float64, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    max(1, burst),
		limiters: cache.New(idle, 2*idle),
	}
}

func (r *RateLimiter) limiter(key string) *rate.Limiter {
	if l, ok := r.limiters.Get(key); ok {
		r.limiters.SetDefault(key, l)

		return l.(*rate.Limiter)
	}

	l := rate.NewLimiter(r.limit, r.burst)
	if err := r.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		if existing, ok := r.limiters.Get(key); ok {
			return existing.(*rate.Limiter)
		}
	}

	return l
}

// Handler rejects callers over their budget with 429. Callers are keyed by
// user id, falling back to the client IP.
func (r *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		key := UserID(c)
		if key == "" {
			key = "ip:" + c.IP()
		}

		reservation := r.limiter(key).Reserve()
		if !reservation.OK() {
			return tooManyRequests(c, time.Second)
		}

		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()

			return tooManyRequests(c, delay)
		}

		return c.Next()
	}
}

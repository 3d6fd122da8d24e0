package middleware

import (
	"sync"

	"hackathon-management-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit throttles requests per client IP. Used on the public registration
// and token-redemption endpoints to keep scripted abuse off the mail relay.
func RateLimit(perSecond float64, burst int) fiber.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(perSecond), burst)
			limiters[ip] = l
		}
		return l
	}

	return func(c *fiber.Ctx) error {
		if !limiterFor(c.IP()).Allow() {
			return utils.Error(c, "Too many requests", fiber.StatusTooManyRequests)
		}
		return c.Next()
	}
}

package notification

import "context"

// RecipientRateLimiter caps how many notifications one recipient may receive.
// It guards the HTTP surface only; the Dispatcher itself never rate limits.
// Implementations live in infra/ratelimit/.
type RecipientRateLimiter interface {
	// Allow reports whether another notification may go to recipient now.
	Allow(ctx context.Context, recipient string) (bool, error)
}

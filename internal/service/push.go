package service

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"bloodconnect/internal/model"
)

// PushTransport sends one notification to many device tokens.
// Per-token failures are reported inside the result; an error means the
// call itself failed and nothing can be assumed about delivery.
type PushTransport interface {
	SendMulticast(ctx context.Context, msg model.PushMessage) (*model.MulticastResult, error)
}

// RateLimitedTransport spaces multicast calls with a token bucket so a
// burst of dispatches does not trip the provider's quota.
type RateLimitedTransport struct {
	next    PushTransport
	limiter *rate.Limiter
}

// NewRateLimitedTransport wraps next. A non-positive rate returns next
// unchanged.
func NewRateLimitedTransport(next PushTransport, perSecond int) PushTransport {
	if perSecond <= 0 {
		return next
	}
	return &RateLimitedTransport{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
	}
}

func (t *RateLimitedTransport) SendMulticast(ctx context.Context, msg model.PushMessage) (*model.MulticastResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("push rate limit: %w", err)
	}
	return t.next.SendMulticast(ctx, msg)
}

// chunk splits tokens into slices of at most size elements.
func chunk(tokens []string, size int) [][]string {
	if len(tokens) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := min(start+size, len(tokens))
		batches = append(batches, tokens[start:end])
	}
	return batches
}

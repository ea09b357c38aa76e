// Package ratelimiter implements a token bucket limiter with in-memory and
// Redis stores.
//
// A Bucket is configured with a capacity and a refill rate. Callers either
// check a key directly:
//
//	limiter, _ := ratelimiter.NewBucket(store, ratelimiter.PerWindow(5, 10*time.Minute))
//	if err := limiter.Take(ctx, "otp:"+email); errors.Is(err, ratelimiter.ErrLimitExceeded) {
//	    // reject
//	}
//
// or wrap HTTP handlers with Middleware and a KeyFunc such as RemoteIP.
// Denied requests never consume tokens, so a client that keeps retrying is
// unblocked as soon as the next refill happens.
package ratelimiter

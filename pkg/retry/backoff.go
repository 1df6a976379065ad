package retry

import (
	"math/rand"
	"time"
)

func ConstantBackoff(delay time.Duration) Strategy {
	return func(int) time.Duration {
		return delay
	}
}

func ExponentialBackoff(base time.Duration) Strategy {
	return func(attempt int) time.Duration {
		return base * (1 << (attempt - 1)) // base * 2^(attempt-1)
	}
}

func ExponentialJitterBackoff(base, max time.Duration) Strategy {
	return func(attempt int) time.Duration {
		backoff := base * (1 << (attempt - 1))
		if backoff > max {
			backoff = max
		}
		half := int64(backoff / 2)
		if half <= 0 {
			return backoff
		}
		jitter := time.Duration(rand.Int63n(half))
		return backoff/2 + jitter
	}
}

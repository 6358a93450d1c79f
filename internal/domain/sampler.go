package domain

import "fmt"

// RandSource is the randomness a sampler draws from. *math/rand.Rand
// satisfies it; seed one for reproducible samples.
type RandSource interface {
	Intn(n int) int
}

// Sample picks k distinct elements of pool uniformly at random, without
// replacement. The pool is not modified and the order of the result carries
// no meaning.
func Sample[T any](pool []T, k int, rnd RandSource) ([]T, error) {
	if k < 0 || k > len(pool) {
		return nil, fmt.Errorf("%w: cannot pick %d from %d", ErrInvalidSampleSize, k, len(pool))
	}

	// partial Fisher-Yates over indexes
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}

	picked := make([]T, k)
	for i := 0; i < k; i++ {
		j := i + rnd.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		picked[i] = pool[idx[i]]
	}
	return picked, nil
}

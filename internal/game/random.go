package game

import (
	"math/rand"
	"time"
)

// Source supplies uniform random integers. *rand.Rand satisfies it.
type Source interface {
	// Intn returns a uniform value in [0, n). n is always > 0.
	Intn(n int) int
}

// NewSource returns a time-seeded source. It is not safe for concurrent use;
// a session only touches it while holding its lock.
func NewSource() Source {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// shuffle applies a Fisher-Yates permutation using rng.
func shuffle(rng Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		if i != j {
			swap(i, j)
		}
	}
}

// sample picks k distinct indexes in [0, n) uniformly without replacement.
func sample(rng Source, n, k int) []int {
	if k > n {
		k = n
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: the first k slots end up as the sample.
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

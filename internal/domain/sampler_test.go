package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func intPool(n int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i * 10
	}
	return pool
}

func TestSampleProperties(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for n := 1; n <= 12; n++ {
		for k := 0; k <= n; k++ {
			pool := intPool(n)
			picked, err := Sample(pool, k, r)
			if err != nil {
				t.Fatalf("Sample(n=%d, k=%d) error: %v", n, k, err)
			}
			if len(picked) != k {
				t.Fatalf("Sample(n=%d, k=%d) len = %d", n, k, len(picked))
			}

			seen := make(map[int]bool)
			for _, v := range picked {
				if v%10 != 0 || v < 0 || v >= n*10 {
					t.Errorf("Sample(n=%d, k=%d) picked %d, not in pool", n, k, v)
				}
				if seen[v] {
					t.Errorf("Sample(n=%d, k=%d) picked %d twice", n, k, v)
				}
				seen[v] = true
			}

			for i, v := range pool {
				if v != i*10 {
					t.Fatalf("pool modified at %d: %d", i, v)
				}
			}
		}
	}
}

func TestSampleInvalidSize(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	tests := []struct {
		name string
		n    int
		k    int
	}{
		{name: "k larger than pool", n: 3, k: 4},
		{name: "empty pool", n: 0, k: 1},
		{name: "negative k", n: 3, k: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			picked, err := Sample(intPool(tt.n), tt.k, r)
			if !errors.Is(err, ErrInvalidSampleSize) {
				t.Fatalf("Sample(n=%d, k=%d) err = %v, want ErrInvalidSampleSize", tt.n, tt.k, err)
			}
			if picked != nil {
				t.Fatalf("Sample returned %v on error", picked)
			}
		})
	}
}

func TestSampleWholePoolIsPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pool := intPool(50)

	picked, err := Sample(pool, len(pool), r)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[int]bool, len(picked))
	for _, v := range picked {
		seen[v] = true
	}
	if len(seen) != len(pool) {
		t.Fatalf("full sample covered %d of %d elements", len(seen), len(pool))
	}
}

func TestSampleDeterministicForSeed(t *testing.T) {
	pool := intPool(20)

	a, _ := Sample(pool, 5, rand.New(rand.NewSource(42)))
	b, _ := Sample(pool, 5, rand.New(rand.NewSource(42)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded samples differ at %d: %v vs %v", i, a, b)
		}
	}
}

func TestSampleRoughlyUniform(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	pool := intPool(5)
	counts := make(map[int]int)

	const trials = 20000
	for i := 0; i < trials; i++ {
		picked, _ := Sample(pool, 2, r)
		for _, v := range picked {
			counts[v]++
		}
	}

	// each element is expected in 2/5 of trials
	want := trials * 2 / 5
	for v, c := range counts {
		if c < want*9/10 || c > want*11/10 {
			t.Errorf("element %d picked %d times, want about %d", v, c, want)
		}
	}
}

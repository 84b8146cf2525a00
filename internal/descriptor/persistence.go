package descriptor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// sublevelPersistence computes the 0-dimensional persistence lifetimes of a
// scalar series under the sublevel-set filtration. Components are born at
// local minima and die when rising past a merge point; by the elder rule the
// younger component (the one born at the higher minimum) dies. The essential
// component of the global minimum is closed at the global maximum, the usual
// convention for finite series.
//
// Sorting by value makes the result independent of sample spacing and, with
// the index tiebreak, fully deterministic.
func sublevelPersistence(series []float64) []float64 {
	n := len(series)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []float64{0}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if series[order[a]] != series[order[b]] {
			return series[order[a]] < series[order[b]]
		}
		return order[a] < order[b]
	})

	// Union-find over activated positions. birth[root] is the value at the
	// component's oldest minimum.
	parent := make([]int, n)
	birth := make([]float64, n)
	active := make([]bool, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	var lifetimes []float64
	for _, i := range order {
		v := series[i]
		active[i] = true
		birth[i] = v
		for _, j := range []int{i - 1, i + 1} {
			if j < 0 || j >= n || !active[j] {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			// The component with the younger (higher) birth dies here.
			elder, younger := ri, rj
			if birth[elder] > birth[younger] {
				elder, younger = younger, elder
			}
			lifetimes = append(lifetimes, v-birth[younger])
			parent[younger] = elder
		}
	}

	// Essential bar: global minimum to global maximum.
	lifetimes = append(lifetimes, floats.Max(series)-floats.Min(series))
	sort.Float64s(lifetimes)
	return lifetimes
}

// superlevelPersistence pairs the local maxima of the series the same way
// sublevelPersistence pairs its minima. Realised as sublevel persistence of
// the negated series.
func superlevelPersistence(series []float64) []float64 {
	neg := make([]float64, len(series))
	for i, v := range series {
		neg[i] = -v
	}
	return sublevelPersistence(neg)
}

// totalPersistence is the sum of all bar lifetimes.
func totalPersistence(lifetimes []float64) float64 {
	if len(lifetimes) == 0 {
		return 0
	}
	return floats.Sum(lifetimes)
}

// persistenceEntropy is the Shannon entropy of the normalised lifetime
// distribution. A diagram whose bars all have zero lifetime has entropy 0.
func persistenceEntropy(lifetimes []float64) float64 {
	total := totalPersistence(lifetimes)
	if total <= 0 {
		return 0
	}
	entropy := 0.0
	for _, l := range lifetimes {
		if l <= 0 {
			continue
		}
		p := l / total
		entropy -= p * math.Log(p)
	}
	return entropy
}

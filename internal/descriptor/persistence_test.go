package descriptor

import (
	"math"
	"testing"
)

func TestSublevelPersistenceKnownSeries(t *testing.T) {
	// Series 0,2,1,3: one secondary minimum at value 1 merges at 2
	// (lifetime 1), plus the essential bar 3-0. The two saddle activations
	// contribute zero-length bars.
	lifetimes := sublevelPersistence([]float64{0, 2, 1, 3})

	want := []float64{0, 0, 1, 3}
	if len(lifetimes) != len(want) {
		t.Fatalf("got %d bars %v, want %d", len(lifetimes), lifetimes, len(want))
	}
	for i := range want {
		if math.Abs(lifetimes[i]-want[i]) > 1e-12 {
			t.Errorf("bar %d = %v, want %v (all: %v)", i, lifetimes[i], want[i], lifetimes)
		}
	}

	if got := totalPersistence(lifetimes); math.Abs(got-4) > 1e-12 {
		t.Errorf("total persistence = %v, want 4", got)
	}

	wantEntropy := -(0.25*math.Log(0.25) + 0.75*math.Log(0.75))
	if got := persistenceEntropy(lifetimes); math.Abs(got-wantEntropy) > 1e-12 {
		t.Errorf("persistence entropy = %v, want %v", got, wantEntropy)
	}
}

func TestSublevelPersistenceEdgeCases(t *testing.T) {
	if got := sublevelPersistence(nil); got != nil {
		t.Errorf("empty series = %v, want nil", got)
	}
	if got := sublevelPersistence([]float64{7}); len(got) != 1 || got[0] != 0 {
		t.Errorf("single sample = %v, want [0]", got)
	}
	// A constant series has only the essential zero-length bar plus
	// zero-length merges; entropy must be 0, not NaN.
	flat := sublevelPersistence([]float64{5, 5, 5, 5})
	if got := persistenceEntropy(flat); got != 0 {
		t.Errorf("flat series entropy = %v, want 0", got)
	}
}

func TestSuperlevelMirrorsSublevel(t *testing.T) {
	series := []float64{1.0, 0.97, 0.99, 0.95, 1.0, 1.02}
	neg := make([]float64, len(series))
	for i, v := range series {
		neg[i] = -v
	}

	up := superlevelPersistence(series)
	down := sublevelPersistence(neg)
	if len(up) != len(down) {
		t.Fatalf("bar counts differ: %d vs %d", len(up), len(down))
	}
	for i := range up {
		if math.Abs(up[i]-down[i]) > 1e-12 {
			t.Errorf("bar %d: %v vs %v", i, up[i], down[i])
		}
	}
}

func TestPersistenceInvariantToValueShift(t *testing.T) {
	// Lifetimes depend on value differences only.
	a := sublevelPersistence([]float64{0, 2, 1, 3})
	b := sublevelPersistence([]float64{10, 12, 11, 13})
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			t.Errorf("bar %d changed under shift: %v vs %v", i, a[i], b[i])
		}
	}
}

package manifest

import (
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

// build creates a manifest from "checksum:name" pairs; an empty name is
// the absent marker.
func build(pairs ...string) *Manifest {
	m := New()
	for _, p := range pairs {
		k, name, _ := strings.Cut(p, ":")
		m.Add(k, Name(name))
	}
	return m
}

func TestReconcile_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		a, b         *Manifest
		wantA, wantB *Manifest
		wantMatched  int
	}{
		{
			name:  "key only in a",
			a:     build("DEADBEEF:test.txt"),
			b:     build(),
			wantA: build("DEADBEEF:test.txt"),
			wantB: build(),
		},
		{
			name:  "directory references with different names",
			a:     build("K:photos/"),
			b:     build(`K:C:\docs\`),
			wantA: build("K:photos/"),
			wantB: build(`K:C:\docs\`),
		},
		{
			name:        "trailing separator still matches",
			a:           build("K:a/x/"),
			b:           build("K:b/X"),
			wantA:       build(),
			wantB:       build(),
			wantMatched: 1,
		},
		{
			name:  "same checksum different basenames",
			a:     build("DEADBEEF:test1.txt"),
			b:     build("DEADBEEF:test2.txt"),
			wantA: build("DEADBEEF:test1.txt"),
			wantB: build("DEADBEEF:test2.txt"),
		},
		{
			name:        "shared name cancels",
			a:           build("DEADBEEF:a.txt", "DEADBEEF:c.txt"),
			b:           build("DEADBEEF:b.txt", "DEADBEEF:c.txt"),
			wantA:       build("DEADBEEF:a.txt"),
			wantB:       build("DEADBEEF:b.txt"),
			wantMatched: 1,
		},
		{
			name:        "identical multi-key manifests",
			a:           build("K1:a.txt", "K1:b.txt", "K2:c.txt", "K3:", "K3:d.txt"),
			b:           build("K1:a.txt", "K1:b.txt", "K2:c.txt", "K3:", "K3:d.txt"),
			wantA:       build(),
			wantB:       build(),
			wantMatched: 5,
		},
		{
			name:  "disjoint checksums",
			a:     build("K1:a.txt", "K2:b.txt"),
			b:     build("K3:a.txt", "K4:b.txt"),
			wantA: build("K1:a.txt", "K2:b.txt"),
			wantB: build("K3:a.txt", "K4:b.txt"),
		},
		{
			name:        "absent names cancel one unit each",
			a:           build("K:", "K:", "K:"),
			b:           build("K:"),
			wantA:       build("K:", "K:"),
			wantB:       build(),
			wantMatched: 1,
		},
		{
			name:        "multiplicity three against two",
			a:           build("K:x.bin", "K:x.bin", "K:x.bin"),
			b:           build("K:X.BIN", "K:dir/x.bin"),
			wantA:       build("K:x.bin"),
			wantB:       build(),
			wantMatched: 2,
		},
		{
			name:        "basename match across platforms",
			a:           build(`K:C:\export\Report.PDF`),
			b:           build("K:/mnt/copy/report.pdf"),
			wantA:       build(),
			wantB:       build(),
			wantMatched: 1,
		},
		{
			name:        "earliest duplicate in b consumed first",
			a:           build("K:a.txt"),
			b:           build("K:/one/a.txt", "K:/two/a.txt"),
			wantA:       build(),
			wantB:       build("K:/two/a.txt"),
			wantMatched: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stats := Reconcile(tt.a, tt.b)

			if !tt.a.Equal(tt.wantA) {
				t.Errorf("a = %v, want %v", tt.a.Entries(), tt.wantA.Entries())
			}
			if !tt.b.Equal(tt.wantB) {
				t.Errorf("b = %v, want %v", tt.b.Entries(), tt.wantB.Entries())
			}
			if stats.Matched != tt.wantMatched {
				t.Errorf("Matched = %d, want %d", stats.Matched, tt.wantMatched)
			}
		})
	}
}

func TestReconcile_PreservesSurvivorOrder(t *testing.T) {
	t.Parallel()

	a := build("K1:a", "K2:x", "K2:y", "K2:z", "K3:c")
	b := build("K2:y", "K1:a")

	stats := Reconcile(a, b)

	if got := a.Keys(); !reflect.DeepEqual(got, []string{"K2", "K3"}) {
		t.Errorf("a.Keys() = %v", got)
	}
	if got := a.Get("K2"); !reflect.DeepEqual(got, []FileRef{Name("x"), Name("z")}) {
		t.Errorf("a[K2] = %v", got)
	}
	if b.Len() != 0 {
		t.Errorf("b should be empty, has %v", b.Entries())
	}

	want := Stats{KeysCompared: 2, Matched: 2, RemovedA: 1, RemovedB: 2}
	if stats != want {
		t.Errorf("Stats = %+v, want %+v", stats, want)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()

	a := build("K:a", "K:b", "K:", "L:q")
	b := build("K:b", "K:", "K:", "M:r")

	Reconcile(a, b)
	afterA, afterB := a.Clone(), b.Clone()

	stats := Reconcile(a, b)

	if !a.Equal(afterA) || !b.Equal(afterB) {
		t.Error("second Reconcile changed the manifests")
	}
	if stats.Matched != 0 {
		t.Errorf("second pass matched %d", stats.Matched)
	}
}

var (
	propertyKeys  = []string{"K1", "K2", "K3"}
	propertyNames = []string{"", "", "a.txt", "A.TXT", "dir/a.txt", `c:\b.txt`, "b.txt", "c.txt"}
)

func randomManifest(r *rand.Rand) *Manifest {
	m := New()
	n := r.Intn(12)
	for i := 0; i < n; i++ {
		m.Add(propertyKeys[r.Intn(len(propertyKeys))], Name(propertyNames[r.Intn(len(propertyNames))]))
	}
	return m
}

// classCounts tallies references per (checksum, identity) where identity is
// the lower-cased basename or "" for absent.
func classCounts(m *Manifest) map[string]int {
	counts := make(map[string]int)
	for _, e := range m.Entries() {
		for _, ref := range e.Refs {
			counts[e.Checksum+"\x00"+strings.ToLower(ref.Basename())]++
		}
	}
	return counts
}

func TestReconcile_Properties(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 500; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			r := rand.New(rand.NewSource(seed))
			a, b := randomManifest(r), randomManifest(r)

			countsA, countsB := classCounts(a), classCounts(b)
			sizeA, sizeB := a.Size(), b.Size()
			revA, revB := a.Clone(), b.Clone()

			stats := Reconcile(a, b)

			// Residual multiplicity per class is count minus the overlap.
			gotA, gotB := classCounts(a), classCounts(b)
			for class, n := range countsA {
				if want := n - min(n, countsB[class]); gotA[class] != want {
					t.Errorf("a class %q: got %d, want %d", class, gotA[class], want)
				}
			}
			for class, n := range countsB {
				if want := n - min(n, countsA[class]); gotB[class] != want {
					t.Errorf("b class %q: got %d, want %d", class, gotB[class], want)
				}
			}

			if sizeA-a.Size() != stats.Matched || sizeB-b.Size() != stats.Matched {
				t.Errorf("matched %d but sizes went %d->%d and %d->%d",
					stats.Matched, sizeA, a.Size(), sizeB, b.Size())
			}

			// No cross matches remain under any shared key.
			for _, k := range a.Keys() {
				for _, ra := range a.Get(k) {
					for _, rb := range b.Get(k) {
						if ra.Matches(rb) {
							t.Errorf("key %s: %v still matches %v", k, ra, rb)
						}
					}
				}
			}

			// Reconciling the other way round leaves the same residuals.
			Reconcile(revB, revA)
			if !a.Equal(revA) || !b.Equal(revB) {
				t.Errorf("order dependent: (a,b) gave %v / %v, (b,a) gave %v / %v",
					a.Entries(), b.Entries(), revA.Entries(), revB.Entries())
			}

			// A second pass is a no-op.
			snapA, snapB := a.Clone(), b.Clone()
			if again := Reconcile(a, b); again.Matched != 0 || !a.Equal(snapA) || !b.Equal(snapB) {
				t.Error("second Reconcile was not a no-op")
			}
		})
	}
}

func TestReconcile_IndependentPairsConcurrently(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			a := build("K:a", "K:b", "L:c")
			b := build("K:b", "L:c", "L:d")
			Reconcile(a, b)
			if a.Size() != 1 || b.Size() != 1 {
				t.Errorf("unexpected residual sizes %d, %d", a.Size(), b.Size())
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

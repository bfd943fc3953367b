// Package bond derives bonded particle pairs from adjacency relations and
// evaluates the unit distance constraints they impose.
package bond

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Adjacency is a symmetric boolean relation over N particles.  The zero
// value has no particles.
type Adjacency struct {
	n    int
	bits []bool
}

func NewAdjacency(n int) Adjacency {
	return Adjacency{n: n, bits: make([]bool, n*n)}
}

// AdjacencyFromMatrix builds an adjacency from a square 0/1 matrix.  It
// returns an error if the matrix is not square, not symmetric or has a
// nonzero diagonal.
func AdjacencyFromMatrix(m [][]int) (Adjacency, error) {
	n := len(m)
	adj := NewAdjacency(n)
	for i, row := range m {
		if len(row) != n {
			return Adjacency{}, fmt.Errorf("adjacency row %v has %v entries, want %v", i, len(row), n)
		}
		for j, v := range row {
			if v != m[j][i] {
				return Adjacency{}, fmt.Errorf("adjacency not symmetric at (%v,%v)", i, j)
			} else if i == j && v != 0 {
				return Adjacency{}, fmt.Errorf("particle %v bonded to itself", i)
			}
			adj.bits[i*n+j] = v != 0
		}
	}
	return adj, nil
}

// FromPositions returns the adjacency of configuration x in dimension dim:
// two particles are bonded when their distance is below cutoff.
func FromPositions(x []float64, dim int, cutoff float64) Adjacency {
	n := len(x) / dim
	adj := NewAdjacency(n)
	c2 := cutoff * cutoff
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if dist2(x, dim, i, j) < c2 {
				adj.Set(i, j, true)
			}
		}
	}
	return adj
}

func (a Adjacency) N() int { return a.n }

func (a Adjacency) At(i, j int) bool { return a.bits[i*a.n+j] }

// Set sets both (i,j) and (j,i).
func (a Adjacency) Set(i, j int, v bool) {
	if i == j {
		panic(fmt.Sprintf("particle %v bonded to itself", i))
	}
	a.bits[i*a.n+j] = v
	a.bits[j*a.n+i] = v
}

// NumBonds counts the true upper-triangular entries.
func (a Adjacency) NumBonds() int {
	b := 0
	for i := 0; i < a.n; i++ {
		for j := i + 1; j < a.n; j++ {
			if a.At(i, j) {
				b++
			}
		}
	}
	return b
}

func (a Adjacency) Equal(b Adjacency) bool {
	if a.n != b.n {
		return false
	}
	for i := range a.bits {
		if a.bits[i] != b.bits[i] {
			return false
		}
	}
	return true
}

// Connected reports whether every particle can be reached from particle 0
// through bonds.
func (a Adjacency) Connected() bool {
	if a.n == 0 {
		return true
	}
	seen := make([]bool, a.n)
	seen[0] = true
	queue := []int{0}
	count := 1
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for j := 0; j < a.n; j++ {
			if a.At(i, j) && !seen[j] {
				seen[j] = true
				count++
				queue = append(queue, j)
			}
		}
	}
	return count == a.n
}

// Bitmap returns the flat row-major indices i*N+j (i < j) of every bond.
// Two adjacencies over the same particle count are equal exactly when
// their bitmaps are.
func (a Adjacency) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	for i := 0; i < a.n; i++ {
		for j := i + 1; j < a.n; j++ {
			if a.At(i, j) {
				bm.Add(uint32(i*a.n + j))
			}
		}
	}
	return bm
}

func (a Adjacency) Clone() Adjacency {
	return Adjacency{n: a.n, bits: append([]bool(nil), a.bits...)}
}

// String lists bonds as "i-j" pairs.
func (a Adjacency) String() string {
	pairs := []string{}
	for i := 0; i < a.n; i++ {
		for j := i + 1; j < a.n; j++ {
			if a.At(i, j) {
				pairs = append(pairs, fmt.Sprintf("%v-%v", i, j))
			}
		}
	}
	return "[" + strings.Join(pairs, " ") + "]"
}

func dist2(x []float64, dim, i, j int) float64 {
	tot := 0.0
	for c := 0; c < dim; c++ {
		diff := x[dim*i+c] - x[dim*j+c]
		tot += diff * diff
	}
	return tot
}

package bond

import (
	"errors"
	"math"
	"testing"

	"github.com/onehalfatsquared/cpfold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chain3() Adjacency {
	adj := NewAdjacency(3)
	adj.Set(0, 1, true)
	adj.Set(1, 2, true)
	return adj
}

func TestAdjacencyFromMatrix(t *testing.T) {
	adj, err := AdjacencyFromMatrix([][]int{
		{0, 1, 0},
		{1, 0, 1},
		{0, 1, 0},
	})
	require.NoError(t, err)
	assert.True(t, adj.Equal(chain3()))
	assert.Equal(t, 2, adj.NumBonds())
	assert.Equal(t, "[0-1 1-2]", adj.String())

	_, err = AdjacencyFromMatrix([][]int{{0, 1}, {0, 0}})
	assert.Error(t, err, "asymmetric matrix")
	_, err = AdjacencyFromMatrix([][]int{{1, 0}, {0, 0}})
	assert.Error(t, err, "self bond")
	_, err = AdjacencyFromMatrix([][]int{{0, 1}, {1}})
	assert.Error(t, err, "ragged matrix")
}

func TestConnected(t *testing.T) {
	assert.True(t, chain3().Connected())

	adj := NewAdjacency(4)
	adj.Set(0, 1, true)
	adj.Set(2, 3, true)
	assert.False(t, adj.Connected())
}

func TestBitmap(t *testing.T) {
	bm := chain3().Bitmap()
	assert.Equal(t, []uint32{1, 5}, bm.ToArray())

	other := NewAdjacency(3)
	other.Set(0, 1, true)
	assert.False(t, bm.Equals(other.Bitmap()))
	other.Set(2, 1, true)
	assert.True(t, bm.Equals(other.Bitmap()))
}

func TestFromPositions(t *testing.T) {
	// unit triangle with one stretched side
	x := []float64{0, 0, 1, 0, 0.5, math.Sqrt(3) / 2}
	adj := FromPositions(x, 2, cpfold.BondCutoff2D)
	assert.Equal(t, 3, adj.NumBonds())

	x[4], x[5] = 2, 0
	adj = FromPositions(x, 2, cpfold.BondCutoff2D)
	assert.True(t, adj.Equal(chain3()))
}

func TestNewSet(t *testing.T) {
	set, err := NewSet(chain3(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 6, set.Dof())
	assert.Equal(t, 4, set.Free())
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, set.Pairs())

	_, err = NewSet(chain3(), 4)
	assert.True(t, errors.Is(err, cpfold.ErrMalformedBonds))

	// a complete graph on 6 particles has 15 bonds but only 12 coordinates
	full := NewAdjacency(6)
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			full.Set(i, j, true)
		}
	}
	_, err = NewSet(full, 2)
	assert.True(t, errors.Is(err, cpfold.ErrMalformedBonds))
	set, err = NewSet(full, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, set.Free())
}

func TestConstraints(t *testing.T) {
	set, err := NewSet(chain3(), 2)
	require.NoError(t, err)

	x := []float64{0, 0, 1, 0, 1, 2}
	g := set.Constraints(x, nil)
	want := []float64{0, 3}
	for i := range want {
		if g[i] != want[i] {
			t.Errorf("constraint %v: want %v, got %v", i, want[i], g[i])
		}
	}
	assert.InDelta(t, 3, set.Residual(x), 1e-15)
	assert.False(t, set.Satisfied(x, 1e-6))

	x[5] = 1
	assert.True(t, set.Satisfied(x, 1e-6))
	assert.True(t, set.Steric(x), "0 and 2 are sqrt(2) apart")

	x[4], x[5] = 0.3, 0.95
	assert.False(t, set.Steric(x))
}

func TestBondAngle(t *testing.T) {
	tests := []struct {
		x    []float64
		want float64
	}{
		{[]float64{0, 0, 1, 0, 2, 0}, 0},
		{[]float64{0, 0, 1, 0, 1, 1}, math.Pi / 2},
		{[]float64{0, 0, 1, 0, 0.5, math.Sqrt(3) / 2}, 2 * math.Pi / 3},
	}
	for i, test := range tests {
		if got := BondAngle(test.x, 2); math.Abs(got-test.want) > 1e-12 {
			t.Errorf("test %v: want %v, got %v", i, test.want, got)
		}
	}
}

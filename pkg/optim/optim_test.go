package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimise (w-3)^2 starting from 0.
func descend(o Optimizer, steps int) float64 {
	w := []float64{0}
	for i := 0; i < steps; i++ {
		o.Step(0, w, []float64{2 * (w[0] - 3)})
	}
	return w[0]
}

func TestSGD(t *testing.T) {
	assert.InDelta(t, 3, descend(NewSGD(0.1), 200), 1e-6)
}

func TestAdam(t *testing.T) {
	assert.InDelta(t, 3, descend(NewAdam(0.05), 2000), 5e-2)

	// First Adam step moves each parameter by about the learning rate.
	a := NewAdam(0.01)
	w := []float64{1, 1}
	a.Step(7, w, []float64{5, -0.5})
	assert.InDelta(t, 0.99, w[0], 1e-6)
	assert.InDelta(t, 1.01, w[1], 1e-6)
}

func TestNew(t *testing.T) {
	o, err := New("adam", 0.1)
	require.NoError(t, err)
	assert.IsType(t, &Adam{}, o)
	_, err = New("rmsprop", 0.1)
	assert.Error(t, err)
}

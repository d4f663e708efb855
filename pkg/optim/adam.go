package optim

import "math"

// Adam keeps bias-corrected first and second moment estimates per slot.
type Adam struct {
	LearningRate float64
	Beta1, Beta2 float64
	Epsilon      float64

	m, v map[int][]float64
	t    map[int]int
}

func NewAdam(lr float64) *Adam {
	return &Adam{
		LearningRate: lr,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
		m:            map[int][]float64{},
		v:            map[int][]float64{},
		t:            map[int]int{},
	}
}

func (o *Adam) Step(slot int, params, grads []float64) {
	m, ok := o.m[slot]
	if !ok || len(m) != len(params) {
		m = make([]float64, len(params))
		o.m[slot] = m
		o.v[slot] = make([]float64, len(params))
		o.t[slot] = 0
	}
	v := o.v[slot]
	o.t[slot]++
	t := float64(o.t[slot])
	c1 := 1 - math.Pow(o.Beta1, t)
	c2 := 1 - math.Pow(o.Beta2, t)

	for i, g := range grads {
		m[i] = o.Beta1*m[i] + (1-o.Beta1)*g
		v[i] = o.Beta2*v[i] + (1-o.Beta2)*g*g
		params[i] -= o.LearningRate * (m[i] / c1) / (math.Sqrt(v[i]/c2) + o.Epsilon)
	}
}

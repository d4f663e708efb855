package optim

import "github.com/pkg/errors"

// Optimizer updates a parameter slice in place from its gradient. slot
// identifies the slice so stateful optimizers can keep per-slice moments.
type Optimizer interface {
	Step(slot int, params, grads []float64)
}

// Stochastic Gradient Descent optimizer with learning rate
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

func (o *SGD) Step(_ int, weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}

// New builds an optimizer by name: "sgd" or "adam".
func New(name string, lr float64) (Optimizer, error) {
	switch name {
	case "sgd":
		return NewSGD(lr), nil
	case "adam":
		return NewAdam(lr), nil
	}
	return nil, errors.Errorf("unknown optimizer %q", name)
}

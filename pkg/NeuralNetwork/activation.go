package NeuralNetwork

import (
	"math"

	"github.com/pkg/errors"
)

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func SigmoidPrime(x float64) float64 { s := Sigmoid(x); return s * (1 - s) }

func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReLUPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

func TanhPrime(x float64) float64 { t := math.Tanh(x); return 1 - t*t }

func Identity(x float64) float64 { return x }

func IdentityPrime(float64) float64 { return 1 }

// Activation pairs a function with its derivative, both taken at the
// pre-activation value.
type Activation struct {
	Name  string
	F     func(float64) float64
	Prime func(float64) float64
}

var activations = map[string]Activation{
	"sigmoid":  {Name: "sigmoid", F: Sigmoid, Prime: SigmoidPrime},
	"relu":     {Name: "relu", F: ReLU, Prime: ReLUPrime},
	"tanh":     {Name: "tanh", F: math.Tanh, Prime: TanhPrime},
	"identity": {Name: "identity", F: Identity, Prime: IdentityPrime},
}

// ActivationByName looks up sigmoid, relu, tanh or identity.
func ActivationByName(name string) (Activation, error) {
	a, ok := activations[name]
	if !ok {
		return Activation{}, errors.Errorf("unknown activation %q", name)
	}
	return a, nil
}

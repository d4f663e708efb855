package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"mlworkshop/pkg/core"
)

// KernelRidge is ridge regression in kernel space: the dual
// coefficients solve (K + Alpha*I) c = y. There is no intercept, so the
// target is expected to be centred.
type KernelRidge struct {
	Kernel Kernel
	Alpha  float64

	train [][]float64
	dual  *mat.VecDense
}

func NewKernelRidge(k Kernel, alpha float64) *KernelRidge {
	return &KernelRidge{Kernel: k, Alpha: alpha}
}

func (m *KernelRidge) Fit(X [][]float64, y []float64) error {
	n, _, err := core.Validate(X)
	if err != nil {
		return err
	}
	if len(y) != n {
		return errors.Wrapf(core.ErrShapeMismatch, "%d rows but %d targets", n, len(y))
	}
	if m.Kernel == nil {
		return errors.New("kernel ridge needs a kernel")
	}
	if m.Alpha <= 0 {
		return errors.Errorf("alpha must be positive, got %g", m.Alpha)
	}

	K := symGram(m.Kernel, X)
	for i := 0; i < n; i++ {
		K.SetSym(i, i, K.At(i, i)+m.Alpha)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return errors.New("kernel matrix is not positive definite; increase alpha")
	}
	var c mat.VecDense
	if err := chol.SolveVecTo(&c, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return errors.Wrap(err, "solving for dual coefficients")
	}
	m.train = X
	m.dual = &c
	return nil
}

func (m *KernelRidge) Predict(X [][]float64) ([]float64, error) {
	if m.dual == nil {
		return nil, errors.New("kernel ridge is not fitted")
	}
	if _, _, err := core.Validate(X); err != nil {
		return nil, err
	}
	var pred mat.VecDense
	pred.MulVec(Gram(m.Kernel, X, m.train), m.dual)
	out := make([]float64, len(X))
	for i := range out {
		out[i] = pred.AtVec(i)
	}
	return out, nil
}

// DualCoef returns a copy of the fitted dual coefficients.
func (m *KernelRidge) DualCoef() []float64 {
	if m.dual == nil {
		return nil
	}
	out := make([]float64, m.dual.Len())
	for i := range out {
		out[i] = m.dual.AtVec(i)
	}
	return out
}

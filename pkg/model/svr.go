package model

import (
	"bufio"
	"math"
	"os"
	"strconv"

	libSvm "github.com/ewalker544/libsvm-go"
	"github.com/pkg/errors"

	"mlworkshop/pkg/core"
)

// SVR is epsilon-insensitive support vector regression backed by the
// libsvm solver (EPSILON_SVR).
type SVR struct {
	Kernel  Kernel
	C       float64 // box constraint on each dual coefficient
	Epsilon float64 // half-width of the insensitive tube
	Tol     float64 // solver stopping tolerance

	fitted  bool
	model   *libSvm.Model
	support [][]float64
}

// NewSVR returns an SVR with libsvm's default stopping tolerance.
func NewSVR(k Kernel, c, epsilon float64) *SVR {
	return &SVR{Kernel: k, C: c, Epsilon: epsilon, Tol: 1e-3}
}

func (m *SVR) param() (*libSvm.Parameter, error) {
	p := libSvm.NewParameter()
	p.SvmType = libSvm.EPSILON_SVR
	p.C = m.C
	p.P = m.Epsilon
	p.Eps = m.Tol
	p.QuietMode = true

	switch k := m.Kernel.(type) {
	case RBF:
		p.KernelType = libSvm.RBF
		p.Gamma = k.Gamma
	case Linear:
		p.KernelType = libSvm.LINEAR
	case Polynomial:
		p.KernelType = libSvm.POLY
		p.Degree = k.Degree
		p.Gamma = k.Gamma
		p.Coef0 = k.Coef0
	case nil:
		return nil, errors.New("svr needs a kernel")
	default:
		return nil, errors.Errorf("kernel %T has no libsvm counterpart", m.Kernel)
	}
	return p, nil
}

func (m *SVR) Fit(X [][]float64, y []float64) error {
	n, _, err := core.Validate(X)
	if err != nil {
		return err
	}
	if len(y) != n {
		return errors.Wrapf(core.ErrShapeMismatch, "%d rows but %d targets", n, len(y))
	}
	if m.C <= 0 || m.Epsilon < 0 {
		return errors.Errorf("invalid svr parameters C=%g epsilon=%g", m.C, m.Epsilon)
	}
	p, err := m.param()
	if err != nil {
		return err
	}

	// libsvm reads its training problem from a file in the sparse text format.
	path, err := writeProblem(X, y)
	if err != nil {
		return errors.Wrap(err, "writing svr problem")
	}
	defer os.Remove(path)

	prob, err := libSvm.NewProblem(path, p)
	if err != nil {
		return errors.Wrap(err, "loading svr problem")
	}
	sm := libSvm.NewModel(p)
	if err := sm.Train(prob); err != nil {
		return errors.Wrap(err, "training svr")
	}
	m.model, m.fitted = sm, true

	// Non-zero dual coefficients sit on or outside the tube.
	m.support = nil
	for i, row := range X {
		if math.Abs(y[i]-sm.Predict(features(row))) >= m.Epsilon-m.Tol {
			m.support = append(m.support, row)
		}
	}
	return nil
}

func (m *SVR) Predict(X [][]float64) ([]float64, error) {
	if !m.fitted {
		return nil, errors.New("svr is not fitted")
	}
	if _, _, err := core.Validate(X); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.model.Predict(features(row))
	}
	return out, nil
}

// SupportVectors returns the training rows on or outside the epsilon tube.
func (m *SVR) SupportVectors() [][]float64 { return m.support }

// features maps a dense row to libsvm's 1-based sparse vector.
func features(row []float64) map[int]float64 {
	x := make(map[int]float64, len(row))
	for j, v := range row {
		x[j+1] = v
	}
	return x
}

func writeProblem(X [][]float64, y []float64) (string, error) {
	f, err := os.CreateTemp("", "svr-*.txt")
	if err != nil {
		return "", err
	}
	w := bufio.NewWriter(f)
	for i, row := range X {
		w.WriteString(strconv.FormatFloat(y[i], 'g', -1, 64))
		for j, v := range row {
			w.WriteByte(' ')
			w.WriteString(strconv.Itoa(j + 1))
			w.WriteByte(':')
			w.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

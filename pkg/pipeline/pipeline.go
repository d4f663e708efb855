package pipeline

import (
	"github.com/pkg/errors"

	"mlworkshop/pkg/model"
)

// Pipeline chains transformers: each one is fitted on the output of the
// previous one.
type Pipeline struct {
	steps []model.Transformer
}

func NewPipeline(steps ...model.Transformer) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Fit(X [][]float64) error {
	_, err := p.FitTransform(X)
	return err
}

func (p *Pipeline) FitTransform(X [][]float64) ([][]float64, error) {
	for i, step := range p.steps {
		if err := step.Fit(X); err != nil {
			return nil, errors.Wrapf(err, "fitting step %d", i)
		}
		var err error
		if X, err = step.Transform(X); err != nil {
			return nil, errors.Wrapf(err, "transforming step %d", i)
		}
	}
	return X, nil
}

func (p *Pipeline) Transform(X [][]float64) ([][]float64, error) {
	for i, step := range p.steps {
		var err error
		if X, err = step.Transform(X); err != nil {
			return nil, errors.Wrapf(err, "transforming step %d", i)
		}
	}
	return X, nil
}

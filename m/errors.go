package m

import (
	"fmt"

	"github.com/pkg/errors"
)

// These are the error classes returned at the engine boundary. Failures wrap
// one of them with the offending values; match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrShapeMismatch = errors.New("shape mismatch")
)

func configErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfiguration, format, args...)
}

func shapeErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrShapeMismatch, format, args...)
}

// NumericWarning reports that predictions had to be clamped away from 0 or 1
// before taking a logarithm. It never aborts training.
type NumericWarning struct {
	Op      string
	Clipped int
}

func (w NumericWarning) String() string {
	return fmt.Sprintf("%s: clamped %d predictions to [%g, %g]", w.Op, w.Clipped, clipEpsilon, 1-clipEpsilon)
}

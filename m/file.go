package m

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Split is one dataset split in the column-per-example layout: Features is
// inputs x examples and Labels is classes x examples.
type Split struct {
	Features *mat.Dense
	Labels   *mat.Dense
}

// Len returns the number of examples.
func (s Split) Len() int {
	_, c := s.Features.Dims()
	return c
}

// columns returns a view of examples [from, to).
func (s Split) columns(from, to int) Split {
	return Split{
		Features: sliceColumns(s.Features, from, to),
		Labels:   sliceColumns(s.Labels, from, to),
	}
}

func sliceColumns(d *mat.Dense, from, to int) *mat.Dense {
	r, _ := d.Dims()
	return d.Slice(0, r, from, to).(*mat.Dense)
}

// OneHot encodes class indices as a classes x len(labels) matrix.
func OneHot(labels []int, classes int) (*mat.Dense, error) {
	if len(labels) == 0 {
		return nil, shapeErrorf("no labels to encode")
	}
	if classes <= 0 {
		return nil, configErrorf("class count must be > 0 (got %d)", classes)
	}
	o := mat.NewDense(classes, len(labels), nil)
	for j, label := range labels {
		if label < 0 || label >= classes {
			return nil, shapeErrorf("label %d at example %d outside [0, %d)", label, j, classes)
		}
		o.Set(label, j, 1)
	}
	return o, nil
}

// SplitValidation moves the first fraction of the examples of s into a
// validation split. Both results own their storage.
func SplitValidation(s Split, fraction float64) (train, val Split, err error) {
	if !(fraction > 0 && fraction < 1) {
		return Split{}, Split{}, configErrorf("validation fraction must be in (0, 1), got %g", fraction)
	}
	n := s.Len()
	size := int(float64(n) * fraction)
	if size == 0 || size == n {
		return Split{}, Split{}, shapeErrorf("validation fraction %g of %d examples leaves an empty split", fraction, n)
	}
	val = Split{
		Features: mat.DenseCopyOf(sliceColumns(s.Features, 0, size)),
		Labels:   mat.DenseCopyOf(sliceColumns(s.Labels, 0, size)),
	}
	train = Split{
		Features: mat.DenseCopyOf(sliceColumns(s.Features, size, n)),
		Labels:   mat.DenseCopyOf(sliceColumns(s.Labels, size, n)),
	}
	return train, val, nil
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string, inputNum, classes int, maxValue float64) (Split, error) {
	f, err := os.Open(path)
	if err != nil {
		return Split{}, errors.Wrap(err, "opening dataset")
	}
	defer f.Close()

	s, err := LoadCSV(bufio.NewReader(f), inputNum, classes, maxValue)
	if err != nil {
		return Split{}, errors.Wrapf(err, "reading %s", path)
	}
	return s, nil
}

// LoadCSV reads records of the form label,x1,...,xn. Every x is divided by
// maxValue (255 for 8-bit pixels) and the labels are one-hot encoded.
func LoadCSV(r io.Reader, inputNum, classes int, maxValue float64) (Split, error) {
	if inputNum <= 0 {
		return Split{}, configErrorf("input count must be > 0 (got %d)", inputNum)
	}
	if !(maxValue > 0) {
		return Split{}, configErrorf("max value must be > 0 (got %g)", maxValue)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var inputs []float64
	var labels []int
	lineNum := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Split{}, errors.Wrap(err, "reading csv")
		}
		lineNum++
		if len(record) != inputNum+1 {
			return Split{}, errInvalidLine{
				lineNum:  lineNum,
				splits:   len(record),
				expected: inputNum + 1,
			}
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return Split{}, errors.Wrapf(err, "line %d: parsing label", lineNum)
		}
		labels = append(labels, label)
		for _, field := range record[1:] {
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return Split{}, errors.Wrapf(err, "line %d: parsing input", lineNum)
			}
			inputs = append(inputs, x/maxValue)
		}
	}
	if len(labels) == 0 {
		return Split{}, shapeErrorf("dataset has no examples")
	}

	oneHot, err := OneHot(labels, classes)
	if err != nil {
		return Split{}, err
	}
	rows := mat.NewDense(len(labels), inputNum, inputs)
	return Split{
		Features: mat.DenseCopyOf(rows.T()),
		Labels:   oneHot,
	}, nil
}

type errInvalidLine struct {
	lineNum  int
	splits   int
	expected int
}

func (e errInvalidLine) Error() string {
	return fmt.Sprintf("at line %d, expected %d values, got %d",
		e.lineNum, e.expected, e.splits)
}

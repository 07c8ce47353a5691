package m

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

var metricsHeader = []string{"epoch", "train_loss", "val_loss", "val_accuracy", "learning_rate", "clipped"}

// WriteMetricsCSV writes one row per epoch, preceded by a header.
func WriteMetricsCSV(w io.Writer, history []EpochMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metricsHeader); err != nil {
		return errors.Wrap(err, "writing csv headers")
	}
	record := make([]string, len(metricsHeader))
	for _, e := range history {
		record[0] = strconv.Itoa(e.Epoch)
		record[1] = strconv.FormatFloat(e.TrainLoss, 'f', 6, 64)
		record[2] = strconv.FormatFloat(e.ValLoss, 'f', 6, 64)
		record[3] = strconv.FormatFloat(e.ValAccuracy, 'f', 5, 64)
		record[4] = strconv.FormatFloat(e.LearningRate, 'g', -1, 64)
		record[5] = strconv.Itoa(e.Clipped)
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "writing epoch %d", e.Epoch)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

// SaveMetrics writes history to path, creating parent directories.
func SaveMetrics(path string, history []EpochMetrics) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrap(err, "creating metrics directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating metrics file")
	}
	if err := WriteMetricsCSV(f, history); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

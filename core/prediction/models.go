package prediction

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

var (
	ErrMissingStudentID   = errors.New("prediction table must have a student_id column")
	ErrMissingProbability = errors.New("prediction table must have a probability or prob column")
)

// Prediction is one row of an externally computed attendance-probability
// table.
type Prediction struct {
	StudentID   string  `json:"student_id"`
	Probability float64 `json:"probability"`
}

// ParseTable reads an uploaded prediction table. The header must contain a
// student_id column and one of probability or prob (probability wins when
// both are present); any other columns are ignored. A probability cell that
// fails to parse as a number counts as 0.0 rather than rejecting the row.
func ParseTable(r io.Reader) ([]Prediction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, core.NewValidationError(ErrMissingStudentID, core.FieldError{Field: "file", Error: ErrMissingStudentID.Error()})
	} else if err != nil {
		return nil, errors.Wrap(err, "reading prediction table header")
	}

	idIdx, probIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "student_id":
			if idIdx < 0 {
				idIdx = i
			}
		case "probability":
			probIdx = i
		case "prob":
			if probIdx < 0 {
				probIdx = i
			}
		}
	}
	if idIdx < 0 {
		return nil, core.NewValidationError(ErrMissingStudentID, core.FieldError{Field: "file", Error: ErrMissingStudentID.Error()})
	}
	if probIdx < 0 {
		return nil, core.NewValidationError(ErrMissingProbability, core.FieldError{Field: "file", Error: ErrMissingProbability.Error()})
	}

	preds := make([]Prediction, 0)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "reading prediction table")
		}

		pred := Prediction{StudentID: strings.TrimSpace(cell(row, idIdx))}
		if p, err := strconv.ParseFloat(strings.TrimSpace(cell(row, probIdx)), 64); err == nil {
			pred.Probability = p
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

package csvstore

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

var columns = []string{"student_id", "card_id", "name", "date", "attended", "phone"}

// store is a CSV-file attendance.Store with the fixed column schema
// student_id,card_id,name,date,attended,phone. Saves go through a temp file
// in the same directory followed by a rename, so a failed write never
// corrupts the previous table.
type store struct {
	path string
}

var _ attendance.Store = (*store)(nil)

func NewStore(path string) *store {
	return &store{path: path}
}

// LoadRecords returns every row of the table, or an empty table when the file
// does not exist yet. Tables written before the phone column existed load
// with empty phones, and legacy numeric attended flags map onto statuses.
func (s *store) LoadRecords() ([]attendance.Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []attendance.Record{}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.path)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []attendance.Record{}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s header", s.path)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}

	records := make([]attendance.Record, 0)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading %s", s.path)
		}

		rec := attendance.Record{
			StudentID: cell(row, idx, "student_id"),
			CardID:    cell(row, idx, "card_id"),
			Name:      cell(row, idx, "name"),
			Date:      cell(row, idx, "date"),
			Phone:     cell(row, idx, "phone"),
		}
		if attended := cell(row, idx, "attended"); attended != "" {
			status, err := attendance.ParseStatus(attended)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %s", s.path)
			}
			rec.Status = status
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveRecords atomically replaces the whole table.
func (s *store) SaveRecords(records []attendance.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".attendance-*.csv")
	if err != nil {
		return errors.Wrap(err, "creating temp table")
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op once renamed

	// temp files come out 0600; the table must stay operator-readable
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "preparing temp table")
	}
	if err = s.write(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing temp table")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "replacing %s", s.path)
	}
	return nil
}

func (s *store) write(w io.Writer, records []attendance.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, rec := range records {
		row := []string{rec.StudentID, rec.CardID, rec.Name, rec.Date, string(rec.Status), rec.Phone}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing table")
}

func cell(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

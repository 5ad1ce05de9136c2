package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type recordRow struct {
	StudentID string `db:"student_id"`
	CardID    string `db:"card_id"`
	Name      string `db:"name"`
	Date      string `db:"date"`
	Attended  string `db:"attended"`
	Phone     string `db:"phone"`
}

type attendanceStore struct {
	db *sqlx.DB
}

var _ attendance.Store = (*attendanceStore)(nil)

func NewAttendanceStore(db *sqlx.DB) *attendanceStore {
	return &attendanceStore{db: db}
}

// LoadRecords returns the whole table in insertion order.
func (s *attendanceStore) LoadRecords() ([]attendance.Record, error) {
	var rows []recordRow
	q := "SELECT student_id, card_id, name, date, attended, phone FROM attendance_records ORDER BY id"
	if err := s.db.Select(&rows, q); err != nil {
		return nil, errors.Wrap(err, "querying attendance_records")
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		rec := attendance.Record{
			StudentID: row.StudentID,
			CardID:    row.CardID,
			Name:      row.Name,
			Date:      row.Date,
			Phone:     row.Phone,
		}
		if row.Attended != "" {
			status, err := attendance.ParseStatus(row.Attended)
			if err != nil {
				return nil, errors.Wrap(err, "reading attendance_records")
			}
			rec.Status = status
		}
		records = append(records, rec)
	}
	return records, nil
}

// SaveRecords replaces the whole table in one transaction; a failure leaves
// the previous table untouched.
func (s *attendanceStore) SaveRecords(records []attendance.Record) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	if _, err = tx.Exec("DELETE FROM attendance_records"); err != nil {
		return errors.Wrap(err, "clearing attendance_records")
	}
	q := `INSERT INTO attendance_records (student_id, card_id, name, date, attended, phone)
	      VALUES (:student_id, :card_id, :name, :date, :attended, :phone)`
	for _, rec := range records {
		row := recordRow{
			StudentID: rec.StudentID,
			CardID:    rec.CardID,
			Name:      rec.Name,
			Date:      rec.Date,
			Attended:  string(rec.Status),
			Phone:     rec.Phone,
		}
		if _, err = tx.NamedExec(q, row); err != nil {
			return errors.Wrap(err, "inserting into attendance_records")
		}
	}
	return errors.Wrap(tx.Commit(), "committing attendance_records")
}

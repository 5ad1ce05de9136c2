package attendance

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// CardIDWidth is the fixed width of a normalized card identifier.
	CardIDWidth = 10

	// DateFormat is the ISO calendar date layout of the date column.
	DateFormat = "2006-01-02"
)

// Status is a day's attendance outcome for one student.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// ParseStatus maps a stored status cell to a Status. Legacy tables carried a
// numeric attended flag: 1 meant present and 0 absent; a late scan is not
// recoverable from a bare 0.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPresent, "1":
		return StatusPresent, nil
	case StatusLate:
		return StatusLate, nil
	case StatusAbsent, "0":
		return StatusAbsent, nil
	}
	return "", errors.Errorf("unknown attendance status %q", s)
}

// Attended reports whether the student was on premises that day.
// A late student still attended.
func (s Status) Attended() bool {
	return s == StatusPresent || s == StatusLate
}

// Record is one physical row of the attendance table. A row with an empty
// Date is a master row representing roster membership; a dated row is an
// event row representing one day's outcome for one student.
type Record struct {
	StudentID string `json:"student_id"`
	CardID    string `json:"card_id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Status    Status `json:"attended"`
	Phone     string `json:"phone"`
}

func (r Record) IsMaster() bool { return r.Date == "" }

// Student is a roster projection entry.
type Student struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	CardID    string `json:"card_id"`
}

// NormalizeCardID canonicalizes raw scanned input: surrounding whitespace and
// any non-digit characters are dropped and the rest is left zero-padded to
// CardIDWidth. An empty result is valid; the roster lookup simply misses.
func NormalizeCardID(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if '0' <= r && r <= '9' {
			b.WriteRune(r)
		}
	}
	return padCardID(b.String())
}

func padCardID(digits string) string {
	if len(digits) >= CardIDWidth {
		return digits
	}
	return strings.Repeat("0", CardIDWidth-len(digits)) + digits
}

// Roster is the deduplicated, card-indexed projection of master rows.
type Roster struct {
	byCard    map[string]Student
	byStudent map[string]Student
	students  []Student // first-occurrence order
}

// BuildRoster filters records down to master rows, normalizes their card IDs
// and deduplicates by student ID keeping the first occurrence.
func BuildRoster(records []Record) Roster {
	r := Roster{
		byCard:    make(map[string]Student),
		byStudent: make(map[string]Student),
	}
	for _, rec := range records {
		if !rec.IsMaster() {
			continue
		}
		if _, ok := r.byStudent[rec.StudentID]; ok {
			continue
		}
		stu := Student{
			StudentID: rec.StudentID,
			Name:      rec.Name,
			Phone:     rec.Phone,
			CardID:    NormalizeCardID(rec.CardID),
		}
		r.byStudent[stu.StudentID] = stu
		if _, ok := r.byCard[stu.CardID]; !ok {
			r.byCard[stu.CardID] = stu
		}
		r.students = append(r.students, stu)
	}
	return r
}

func (r Roster) ByCard(cardID string) (Student, bool) {
	stu, ok := r.byCard[cardID]
	return stu, ok
}

func (r Roster) ByStudentID(id string) (Student, bool) {
	stu, ok := r.byStudent[id]
	return stu, ok
}

// Students returns the roster entries in first-occurrence order.
func (r Roster) Students() []Student {
	students := make([]Student, len(r.students))
	copy(students, r.students)
	return students
}

func (r Roster) Len() int { return len(r.students) }

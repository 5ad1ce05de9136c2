package attendance

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// ErrCardNotFound means the scanned identifier matches no roster entry.
	ErrCardNotFound = errors.New("card ID not found in the roster")
)

// AlreadyMarkedError means the student already has an event row for today.
type AlreadyMarkedError struct {
	Name string
}

func (e *AlreadyMarkedError) Error() string {
	return e.Name + " already checked in today"
}

type (
	// Store is a durable attendance table. SaveRecords replaces the whole
	// table; implementations must make the replace atomic so that a failed
	// save never corrupts the previous state.
	Store interface {
		LoadRecords() ([]Record, error)
		SaveRecords(records []Record) error
	}

	// Service maintains the attendance ledger. Mark and Sweep are
	// load-mutate-save cycles over a full-table-replace Store, so all
	// mutations are serialized behind one mutex; running two Services
	// against the same table is a lost-update race.
	Service struct {
		mu     sync.Mutex
		store  Store
		sms    core.SMSService
		logger core.Logger
		cutoff time.Duration // time of day separating present from late
	}
)

func NewService(store Store, sms core.SMSService, logger core.Logger, conf *core.Config) (*Service, error) {
	cutoff, err := parseCutoff(conf.Attendance.Cutoff)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:  store,
		sms:    sms,
		logger: logger,
		cutoff: cutoff,
	}, nil
}

func parseCutoff(s string) (time.Duration, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing attendance cutoff %q", s)
	}
	return timeOfDay(t), nil
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

type (
	// MarkResult is the outcome of a successful scan: the appended event row
	// and the guardian notification outcome, along with the updated table.
	MarkResult struct {
		Student  Student             `json:"student"`
		Record   Record              `json:"record"`
		Delivery core.DeliveryResult `json:"delivery"`
		Records  []Record            `json:"-"`
	}

	// SweepResult reports the absence rows appended by one sweep pass.
	SweepResult struct {
		Marked   []Record            `json:"marked"`
		Delivery core.DeliveryReport `json:"delivery"`
		Records  []Record            `json:"-"`
	}
)

// Mark derives today's attendance event from a card scan. The raw input is
// normalized, looked up in the roster and, when no event row exists yet for
// (student, today), an event row is appended and persisted: present at or
// before the cutoff, late after. The guardian is notified only once the row
// is durably saved; a delivery failure does not roll the mark back.
func (svc *Service) Mark(rawCard string, now time.Time) (MarkResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	records, err := svc.store.LoadRecords()
	if err != nil {
		return MarkResult{}, errors.Wrap(err, "loading attendance table")
	}

	cid := NormalizeCardID(rawCard)
	stu, ok := BuildRoster(records).ByCard(cid)
	if !ok {
		return MarkResult{}, ErrCardNotFound
	}

	today := now.Format(DateFormat)
	if hasEvent(records, stu.StudentID, today) {
		return MarkResult{}, &AlreadyMarkedError{Name: stu.Name}
	}

	status := StatusPresent
	if timeOfDay(now) > svc.cutoff {
		status = StatusLate
	}

	rec := Record{
		StudentID: stu.StudentID,
		CardID:    cid,
		Name:      stu.Name,
		Date:      today,
		Status:    status,
		Phone:     stu.Phone,
	}
	records = append(records, rec)
	if err := svc.store.SaveRecords(records); err != nil {
		// never notify on a state change that did not persist
		return MarkResult{}, errors.Wrap(err, "saving attendance table")
	}

	res := svc.notify(stu.Phone, fmt.Sprintf("✅ %s has been marked %s on %s.", stu.Name, status, today))
	return MarkResult{Student: stu, Record: rec, Delivery: res, Records: records}, nil
}

// Sweep appends an absent event row for every roster student lacking one for
// today. It is a no-op before the cutoff and idempotent after it: a second
// pass observes the first pass's rows as already present today. The table is
// persisted once for the whole pass; guardians of newly-absent students are
// notified afterwards and a delivery failure never aborts the batch.
func (svc *Service) Sweep(now time.Time) (SweepResult, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if timeOfDay(now) < svc.cutoff {
		return SweepResult{}, nil
	}

	records, err := svc.store.LoadRecords()
	if err != nil {
		return SweepResult{}, errors.Wrap(err, "loading attendance table")
	}

	today := now.Format(DateFormat)
	scanned := make(map[string]bool)
	for _, rec := range records {
		if rec.Date == today {
			scanned[rec.StudentID] = true
		}
	}

	var marked []Record
	for _, stu := range BuildRoster(records).Students() {
		if scanned[stu.StudentID] {
			continue
		}
		rec := Record{
			StudentID: stu.StudentID,
			CardID:    stu.CardID,
			Name:      stu.Name,
			Date:      today,
			Status:    StatusAbsent,
			Phone:     stu.Phone,
		}
		records = append(records, rec)
		marked = append(marked, rec)
	}
	if len(marked) == 0 {
		return SweepResult{Records: records}, nil
	}

	if err := svc.store.SaveRecords(records); err != nil {
		return SweepResult{}, errors.Wrap(err, "saving attendance table")
	}

	result := SweepResult{Marked: marked, Records: records}
	for _, rec := range marked {
		res := svc.notify(rec.Phone, fmt.Sprintf("⚠️ %s has NOT attended school today (%s).", rec.Name, today))
		result.Delivery.Add(res)
	}
	return result, nil
}

// Roster returns the current roster projection.
func (svc *Service) Roster() (Roster, error) {
	records, err := svc.loadLocked()
	if err != nil {
		return Roster{}, err
	}
	return BuildRoster(records), nil
}

// Today returns today's event rows in insertion order.
func (svc *Service) Today(now time.Time) ([]Record, error) {
	records, err := svc.loadLocked()
	if err != nil {
		return nil, err
	}
	today := now.Format(DateFormat)
	events := make([]Record, 0)
	for _, rec := range records {
		if rec.Date == today {
			events = append(events, rec)
		}
	}
	return events, nil
}

// Records returns the whole table.
func (svc *Service) Records() ([]Record, error) {
	return svc.loadLocked()
}

func (svc *Service) loadLocked() ([]Record, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	records, err := svc.store.LoadRecords()
	if err != nil {
		return nil, errors.Wrap(err, "loading attendance table")
	}
	return records, nil
}

func (svc *Service) notify(phone, body string) core.DeliveryResult {
	res := svc.sms.Send(core.SMSMessage{To: phone, Body: body})
	if res.Status == core.DeliveryFailed {
		svc.logger.Error(fmt.Sprintf("sending SMS to %s: %v", phone, res.Err), res.Err)
	}
	return res
}

func hasEvent(records []Record, studentID, date string) bool {
	for _, rec := range records {
		if rec.StudentID == studentID && rec.Date == date {
			return true
		}
	}
	return false
}

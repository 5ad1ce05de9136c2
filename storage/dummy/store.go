package dummydb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
)

// Store is an in-memory attendance.Store for tests. LoadErr and SaveErr, when
// set, are returned by the corresponding operation to simulate an unavailable
// backing table; SaveCount tracks how many times the table was persisted.
type Store struct {
	mutex     sync.RWMutex
	records   []attendance.Record
	LoadErr   error
	SaveErr   error
	SaveCount int
}

var _ attendance.Store = (*Store)(nil)

func NewStore(records ...attendance.Record) *Store {
	s := &Store{records: make([]attendance.Record, 0, len(records))}
	s.records = append(s.records, records...)
	return s
}

func (s *Store) LoadRecords() ([]attendance.Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	records := make([]attendance.Record, len(s.records))
	copy(records, s.records)
	return records, nil
}

func (s *Store) SaveRecords(records []attendance.Record) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.records = make([]attendance.Record, len(records))
	copy(s.records, records)
	s.SaveCount++
	return nil
}

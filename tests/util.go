package testutil

import (
	"testing"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

// NewConfig returns a config suitable for tests, without touching the
// environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		AppName:  "Mahudhurio",
		Env:      "TEST",
		Debug:    true,
		TestMode: true,
	}
	conf.Attendance.Backend = "csv"
	conf.Attendance.Cutoff = "08:30:00"
	return conf
}

func MasterRecord(id, card, name, phone string) attendance.Record {
	return attendance.Record{StudentID: id, CardID: card, Name: name, Phone: phone}
}

func EventRecord(id, card, name, date string, status attendance.Status, phone string) attendance.Record {
	return attendance.Record{StudentID: id, CardID: card, Name: name, Date: date, Status: status, Phone: phone}
}

// Logger routes service logs to the test output.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger { return &Logger{t: t} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

// FailingSMS fails every delivery with Err.
type FailingSMS struct {
	Err      error
	Attempts int
}

var _ core.SMSService = (*FailingSMS)(nil)

func (s *FailingSMS) Send(msg core.SMSMessage) core.DeliveryResult {
	if !msg.HasDestination() {
		return core.DeliveryResult{Status: core.DeliverySkipped}
	}
	s.Attempts++
	return core.DeliveryResult{Status: core.DeliveryFailed, Err: s.Err}
}

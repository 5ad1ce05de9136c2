package csvstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trezcool/mahudhurio/core/attendance"
)

func tempStore(t *testing.T) *store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "controlled_attendance.csv"))
}

func TestStore_LoadRecords(t *testing.T) {
	t.Run("missing file yields an empty table", func(t *testing.T) {
		s := tempStore(t)

		records, err := s.LoadRecords()
		if err != nil {
			t.Fatalf("LoadRecords() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("LoadRecords() = %d rows, want 0", len(records))
		}
	})

	t.Run("missing phone column backfilled empty", func(t *testing.T) {
		s := tempStore(t)
		write(t, s.path, "student_id,card_id,name,date,attended\n1,0000744920,sasith,,\n")

		records, err := s.LoadRecords()
		if err != nil {
			t.Fatalf("LoadRecords() error = %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("LoadRecords() = %d rows, want 1", len(records))
		}
		if records[0].Phone != "" {
			t.Errorf("Phone = %q, want empty backfill", records[0].Phone)
		}
	})

	t.Run("legacy numeric statuses map on load", func(t *testing.T) {
		s := tempStore(t)
		write(t, s.path, strings.Join([]string{
			"student_id,card_id,name,date,attended,phone",
			"1,0000744920,sasith,,,+15550001",
			"1,0000744920,sasith,2026-08-29,1,+15550001",
			"1,0000744920,sasith,2026-08-28,0,+15550001",
			"",
		}, "\n"))

		records, err := s.LoadRecords()
		if err != nil {
			t.Fatalf("LoadRecords() error = %v", err)
		}
		if records[0].Status != "" || !records[0].IsMaster() {
			t.Errorf("master row loaded as %+v", records[0])
		}
		if records[1].Status != attendance.StatusPresent {
			t.Errorf("legacy 1 loaded as %q, want present", records[1].Status)
		}
		if records[2].Status != attendance.StatusAbsent {
			t.Errorf("legacy 0 loaded as %q, want absent", records[2].Status)
		}
	})

	t.Run("unknown status cell fails the load", func(t *testing.T) {
		s := tempStore(t)
		write(t, s.path, "student_id,card_id,name,date,attended,phone\n1,x,y,2026-08-30,maybe,\n")

		if _, err := s.LoadRecords(); err == nil {
			t.Fatal("LoadRecords() should fail on an unknown status")
		}
	})
}

func TestStore_SaveRecords(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		s := tempStore(t)
		records := []attendance.Record{
			{StudentID: "1", CardID: "0000744920", Name: "sasith", Phone: "+15550001"},
			{StudentID: "1", CardID: "0000744920", Name: "sasith", Date: "2026-08-30", Status: attendance.StatusLate, Phone: "+15550001"},
		}

		if err := s.SaveRecords(records); err != nil {
			t.Fatalf("SaveRecords() error = %v", err)
		}
		got, err := s.LoadRecords()
		if err != nil {
			t.Fatalf("LoadRecords() error = %v", err)
		}
		if len(got) != len(records) {
			t.Fatalf("round trip = %d rows, want %d", len(got), len(records))
		}
		for i := range records {
			if got[i] != records[i] {
				t.Errorf("row %d = %+v, want %+v", i, got[i], records[i])
			}
		}
	})

	t.Run("save replaces the whole table", func(t *testing.T) {
		s := tempStore(t)
		if err := s.SaveRecords([]attendance.Record{
			{StudentID: "1", CardID: "a", Name: "x"},
			{StudentID: "2", CardID: "b", Name: "y"},
		}); err != nil {
			t.Fatalf("SaveRecords() error = %v", err)
		}
		if err := s.SaveRecords([]attendance.Record{{StudentID: "3", CardID: "c", Name: "z"}}); err != nil {
			t.Fatalf("SaveRecords() error = %v", err)
		}

		got, err := s.LoadRecords()
		if err != nil {
			t.Fatalf("LoadRecords() error = %v", err)
		}
		if len(got) != 1 || got[0].StudentID != "3" {
			t.Errorf("table = %+v, want the replacement row only", got)
		}
	})

	t.Run("failed save leaves the previous table intact", func(t *testing.T) {
		dir := t.TempDir()
		s := NewStore(filepath.Join(dir, "missing", "controlled_attendance.csv"))

		if err := s.SaveRecords([]attendance.Record{{StudentID: "1"}}); err == nil {
			t.Fatal("SaveRecords() should fail when the directory does not exist")
		}
		leftovers, err := filepath.Glob(filepath.Join(dir, ".attendance-*"))
		if err != nil {
			t.Fatalf("globbing temp files: %v", err)
		}
		if len(leftovers) != 0 {
			t.Errorf("temp files left behind: %v", leftovers)
		}
	})

	t.Run("saved table stays operator-readable", func(t *testing.T) {
		s := tempStore(t)

		if err := s.SaveRecords([]attendance.Record{{StudentID: "1", CardID: "a", Name: "x"}}); err != nil {
			t.Fatalf("SaveRecords() error = %v", err)
		}
		info, err := os.Stat(s.path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if got := info.Mode().Perm(); got != 0o644 {
			t.Errorf("table mode = %v, want 0644", got)
		}
	})

	t.Run("unicode survives the round trip", func(t *testing.T) {
		s := tempStore(t)
		rec := attendance.Record{StudentID: "1", CardID: "0000744920", Name: "amari 🎓", Phone: "+15550001"}

		if err := s.SaveRecords([]attendance.Record{rec}); err != nil {
			t.Fatalf("SaveRecords() error = %v", err)
		}
		got, err := s.LoadRecords()
		if err != nil {
			t.Fatalf("LoadRecords() error = %v", err)
		}
		if got[0].Name != rec.Name {
			t.Errorf("Name = %q, want %q", got[0].Name, rec.Name)
		}
	})
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

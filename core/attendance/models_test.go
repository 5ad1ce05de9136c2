package attendance

import (
	"testing"
)

func TestNormalizeCardID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: "0000000000"},
		{name: "short id is padded", raw: "123", want: "0000000123"},
		{name: "surrounding whitespace", raw: " 123 ", want: "0000000123"},
		{name: "non-digits dropped", raw: "A123-45b", want: "0000012345"},
		{name: "full width unchanged", raw: "0000744920", want: "0000744920"},
		{name: "wider than fixed width kept", raw: "123456789012", want: "123456789012"},
		{name: "only non-digits", raw: "abc", want: "0000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCardID(tt.raw); got != tt.want {
				t.Errorf("NormalizeCardID(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "present", want: StatusPresent},
		{in: "late", want: StatusLate},
		{in: "absent", want: StatusAbsent},
		{in: "Present", want: StatusPresent},
		{in: " late ", want: StatusLate},
		{in: "1", want: StatusPresent}, // legacy numeric flag
		{in: "0", want: StatusAbsent},
		{in: "2", wantErr: true},
		{in: "lol", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatus_Attended(t *testing.T) {
	if !StatusPresent.Attended() {
		t.Error("present should count as attended")
	}
	if !StatusLate.Attended() {
		t.Error("late should count as attended: the student is on premises")
	}
	if StatusAbsent.Attended() {
		t.Error("absent should not count as attended")
	}
}

func TestBuildRoster(t *testing.T) {
	records := []Record{
		{StudentID: "1", CardID: "744920", Name: "sasith", Phone: "+15550001"},
		{StudentID: "2", CardID: " 2026244 ", Name: "suhada"},
		{StudentID: "1", CardID: "9999999999", Name: "dupe", Phone: "+15559999"}, // duplicate student: first wins
		{StudentID: "3", CardID: "0001922654", Name: "prabath", Date: "2026-08-30", Status: StatusPresent},
	}
	roster := BuildRoster(records)

	if roster.Len() != 2 {
		t.Fatalf("roster.Len() = %d, want 2", roster.Len())
	}

	stu, ok := roster.ByCard("0000744920")
	if !ok {
		t.Fatal("normalized card 0000744920 not found")
	}
	if stu.Name != "sasith" || stu.Phone != "+15550001" {
		t.Errorf("unexpected roster entry: %+v", stu)
	}

	if _, ok = roster.ByCard("0002026244"); !ok {
		t.Error("card of varying source width should be normalized and found")
	}
	if _, ok = roster.ByCard("0009999999"); ok {
		t.Error("duplicate student's card should not be indexed")
	}
	if _, ok = roster.ByCard("0001922654"); ok {
		t.Error("event rows must not contribute roster entries")
	}

	stu, ok = roster.ByStudentID("1")
	if !ok {
		t.Fatal("student 1 not found")
	}
	if stu.Name != "dupe" {
		// first occurrence wins
		if stu.Name != "sasith" {
			t.Errorf("ByStudentID(1).Name = %q, want sasith", stu.Name)
		}
	} else {
		t.Error("dedup must keep the first occurrence")
	}

	students := roster.Students()
	if students[0].StudentID != "1" || students[1].StudentID != "2" {
		t.Errorf("Students() not in first-occurrence order: %+v", students)
	}
}

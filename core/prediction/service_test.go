package prediction_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/prediction"
	smssvc "github.com/trezcool/mahudhurio/services/sms"
	testutil "github.com/trezcool/mahudhurio/tests"
)

func setup(t *testing.T) (*prediction.Service, attendance.Roster) {
	smssvc.ClearSentMessages()
	roster := attendance.BuildRoster([]attendance.Record{
		testutil.MasterRecord("1", "0000744920", "sasith", "+15550001"),
		testutil.MasterRecord("2", "0002026244", "suhada", "+15550002"),
		testutil.MasterRecord("3", "0001922654", "prabath", ""),
	})
	return prediction.NewService(smssvc.NewConsoleServiceMock(), testutil.NewLogger(t)), roster
}

func TestService_NotifyTop(t *testing.T) {
	t.Run("ranks by probability and truncates", func(t *testing.T) {
		svc, roster := setup(t)
		preds := []prediction.Prediction{
			{StudentID: "1", Probability: 0.9},
			{StudentID: "2", Probability: 0.95},
			{StudentID: "3", Probability: 0}, // unparsable in the upload, treated as 0.0
		}

		report, err := svc.NotifyTop(preds, roster, 2)
		if err != nil {
			t.Fatalf("NotifyTop() error = %v", err)
		}
		if len(report.Selected) != 2 {
			t.Fatalf("selected %d, want 2", len(report.Selected))
		}
		if report.Selected[0].Student.StudentID != "2" || report.Selected[1].Student.StudentID != "1" {
			t.Errorf("ranking = [%s %s], want [2 1]",
				report.Selected[0].Student.StudentID, report.Selected[1].Student.StudentID)
		}
		if report.Delivery.Sent != 2 {
			t.Errorf("sent = %d, want 2", report.Delivery.Sent)
		}
		if len(smssvc.SentMessages) != 2 {
			t.Fatalf("sent messages = %d, want 2", len(smssvc.SentMessages))
		}
		if want := "Prediction: suhada - Probability: 0.95"; smssvc.SentMessages[0].Body != want {
			t.Errorf("SMS body = %q, want %q", smssvc.SentMessages[0].Body, want)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		svc, roster := setup(t)
		preds := []prediction.Prediction{
			{StudentID: "2", Probability: 0.5},
			{StudentID: "1", Probability: 0.5},
		}

		report, err := svc.NotifyTop(preds, roster, 2)
		if err != nil {
			t.Fatalf("NotifyTop() error = %v", err)
		}
		if report.Selected[0].Student.StudentID != "2" || report.Selected[1].Student.StudentID != "1" {
			t.Error("stable sort must preserve input order on ties")
		}
	})

	t.Run("unknown students keep their rank but are skipped", func(t *testing.T) {
		svc, roster := setup(t)
		preds := []prediction.Prediction{
			{StudentID: "99", Probability: 0.99},
			{StudentID: "1", Probability: 0.9},
		}

		report, err := svc.NotifyTop(preds, roster, 2)
		if err != nil {
			t.Fatalf("NotifyTop() error = %v", err)
		}
		if report.Selected[0].Student.StudentID != "99" || report.Selected[0].Enrolled {
			t.Errorf("top entry = %+v, want un-enrolled student 99", report.Selected[0])
		}
		if report.Delivery.Sent != 1 || report.Delivery.Skipped != 1 {
			t.Errorf("delivery report = %+v, want 1 sent / 1 skipped", report.Delivery)
		}
	})

	t.Run("missing phone counted as unnotified", func(t *testing.T) {
		svc, roster := setup(t)
		preds := []prediction.Prediction{{StudentID: "3", Probability: 0.8}}

		report, err := svc.NotifyTop(preds, roster, 1)
		if err != nil {
			t.Fatalf("NotifyTop() error = %v", err)
		}
		if report.Delivery.Skipped != 1 || report.Delivery.Sent != 0 {
			t.Errorf("delivery report = %+v, want 1 skipped", report.Delivery)
		}
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		roster := attendance.BuildRoster([]attendance.Record{
			testutil.MasterRecord("1", "0000744920", "sasith", "+15550001"),
			testutil.MasterRecord("2", "0002026244", "suhada", "+15550002"),
		})
		sms := &testutil.FailingSMS{Err: errors.New("gateway down")}
		svc := prediction.NewService(sms, testutil.NewLogger(t))

		report, err := svc.NotifyTop([]prediction.Prediction{
			{StudentID: "1", Probability: 0.9},
			{StudentID: "2", Probability: 0.8},
		}, roster, 2)
		if err != nil {
			t.Fatalf("NotifyTop() error = %v", err)
		}
		if sms.Attempts != 2 {
			t.Errorf("delivery attempts = %d, want 2", sms.Attempts)
		}
		if report.Delivery.Failed != 2 {
			t.Errorf("failed = %d, want 2", report.Delivery.Failed)
		}
	})

	t.Run("top_n out of range rejected", func(t *testing.T) {
		svc, roster := setup(t)
		for _, n := range []int{0, -1, prediction.MaxTopN + 1} {
			if _, err := svc.NotifyTop(nil, roster, n); err == nil {
				t.Errorf("NotifyTop(n=%d) should be rejected", n)
			} else if _, ok := errors.Cause(err).(*core.ValidationError); !ok {
				t.Errorf("NotifyTop(n=%d) error = %v, want a ValidationError", n, err)
			}
		}
	})
}

package prediction

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
)

// MaxTopN bounds the number of students a single notify run may target.
const MaxTopN = 100

var errTopNOutOfRange = errors.Errorf("top_n must be between 1 and %d", MaxTopN)

type (
	// Ranked is one prediction joined to its roster entry. Enrolled is false
	// when the prediction's student is absent from the roster; such entries
	// keep their rank but are skipped at notify time.
	Ranked struct {
		Student     attendance.Student `json:"student"`
		Probability float64            `json:"probability"`
		Enrolled    bool               `json:"enrolled"`
	}

	// Report is the outcome of one top-N notify run.
	Report struct {
		Selected []Ranked            `json:"selected"`
		Delivery core.DeliveryReport `json:"delivery"`
	}

	Service struct {
		sms    core.SMSService
		logger core.Logger
	}
)

func NewService(sms core.SMSService, logger core.Logger) *Service {
	return &Service{sms: sms, logger: logger}
}

// NotifyTop joins predictions to the roster on student ID, ranks them by
// probability descending (ties keep input order) and notifies the guardians
// of the top n. The roster is read once, at rank time; a delivery failure
// never aborts the rest of the batch.
func (svc *Service) NotifyTop(preds []Prediction, roster attendance.Roster, n int) (Report, error) {
	if n < 1 || n > MaxTopN {
		return Report{}, core.NewValidationError(errTopNOutOfRange, core.FieldError{Field: "top_n", Error: errTopNOutOfRange.Error()})
	}

	ranked := make([]Ranked, 0, len(preds))
	for _, pred := range preds {
		stu, ok := roster.ByStudentID(pred.StudentID)
		if !ok {
			stu = attendance.Student{StudentID: pred.StudentID}
		}
		ranked = append(ranked, Ranked{Student: stu, Probability: pred.Probability, Enrolled: ok})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Probability > ranked[j].Probability })
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	report := Report{Selected: ranked}
	for _, r := range ranked {
		name := r.Student.Name
		if name == "" {
			name = r.Student.StudentID
		}
		res := svc.sms.Send(core.SMSMessage{
			To:   r.Student.Phone,
			Body: fmt.Sprintf("Prediction: %s - Probability: %.2f", name, r.Probability),
		})
		if res.Status == core.DeliveryFailed {
			svc.logger.Error(fmt.Sprintf("sending SMS to %s: %v", r.Student.Phone, res.Err), res.Err)
		}
		report.Delivery.Add(res)
	}
	return report, nil
}

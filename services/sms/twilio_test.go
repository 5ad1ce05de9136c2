package smssvc

import (
	"testing"

	"github.com/trezcool/mahudhurio/core"
	testutil "github.com/trezcool/mahudhurio/tests"
)

func TestTwilioService_Send(t *testing.T) {
	svc := NewTwilioService(testutil.NewConfig(), testutil.NewLogger(t))

	t.Run("missing destination is skipped without a provider call", func(t *testing.T) {
		res := svc.Send(core.SMSMessage{To: "  ", Body: "hello"})
		if res.Status != core.DeliverySkipped {
			t.Errorf("Send() status = %q, want skipped", res.Status)
		}
		if res.Err != nil {
			t.Errorf("Send() err = %v, want nil", res.Err)
		}
	})
}

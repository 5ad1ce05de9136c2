package smssvc

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/trezcool/mahudhurio/core"
)

type twilioService struct {
	from   string
	client *twilio.RestClient
	logger core.Logger
}

var _ core.SMSService = (*twilioService)(nil)

func NewTwilioService(conf *core.Config, logger core.Logger) *twilioService {
	return &twilioService{
		from: conf.Twilio.From,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: conf.Twilio.AccountSID,
			Password: conf.Twilio.AuthToken,
		}),
		logger: logger,
	}
}

func (svc *twilioService) Send(msg core.SMSMessage) core.DeliveryResult {
	if !msg.HasDestination() {
		return core.DeliveryResult{Status: core.DeliverySkipped}
	}

	params := new(twilioapi.CreateMessageParams)
	params.SetFrom(svc.from)
	params.SetTo(msg.To)
	params.SetBody(msg.Body)

	res, err := svc.client.Api.CreateMessage(params)
	if err != nil {
		return svc.fail(msg, errors.Wrap(err, "sending SMS"))
	}

	var sid string
	if res.Sid != nil {
		sid = *res.Sid
	}
	return core.DeliveryResult{Status: core.DeliverySent, SID: sid}
}

func (svc *twilioService) fail(msg core.SMSMessage, err error) core.DeliveryResult {
	svc.logger.Error(fmt.Sprintf("SMS to %s: %v", msg.To, err), err)
	return core.DeliveryResult{Status: core.DeliveryFailed, Err: err}
}

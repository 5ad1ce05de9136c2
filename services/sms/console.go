package smssvc

import (
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

var (
	SentMessages = make([]core.SMSMessage, 0)
	mu           sync.Mutex
)

// ClearSentMessages resets the sent-message record between tests.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}

type consoleService struct {
	from          string
	disableOutput bool
}

var _ core.SMSService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.SMSService {
	return &consoleService{from: conf.Twilio.From}
}

func (svc *consoleService) Send(msg core.SMSMessage) core.DeliveryResult {
	if !msg.HasDestination() {
		if !svc.disableOutput {
			log.Printf("no phone number provided, skipping SMS")
		}
		return core.DeliveryResult{Status: core.DeliverySkipped}
	}

	mu.Lock()
	SentMessages = append(SentMessages, msg)
	mu.Unlock()

	sid := "SM" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if !svc.disableOutput {
		log.Printf("SMS %s\nFrom: %s\nTo: %s\n%s", sid, svc.from, msg.To, msg.Body)
	}
	return core.DeliveryResult{Status: core.DeliverySent, SID: sid}
}

type consoleServiceMock struct {
	consoleService
}

// NewConsoleServiceMock records messages without logging them.
func NewConsoleServiceMock() core.SMSService {
	return &consoleServiceMock{
		consoleService: consoleService{disableOutput: true},
	}
}

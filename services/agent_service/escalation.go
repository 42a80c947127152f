package agent_service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier sends escalation alerts to the support team via Twilio.
type SMSNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
	logger *slog.Logger
}

func NewSMSNotifier(accountSID, authToken, from, to string, logger *slog.Logger) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSNotifier{
		client: client,
		from:   from,
		to:     to,
		logger: logger,
	}
}

func (n *SMSNotifier) NotifySupport(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("SMS content is empty")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(message)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("error sending SMS: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	n.logger.Info("Escalation SMS sent",
		slog.String("sid", sid),
		slog.String("to", n.to))
	return nil
}

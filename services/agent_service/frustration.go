package agent_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AndriiEagle/eaa-chatbot-sub002/chat_type"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
)

const frustrationSystemPrompt = `You analyze a customer-support conversation about the European Accessibility Act.
Rate how frustrated the user currently is on a scale from 0.0 (calm) to 1.0 (about to give up).
Respond with JSON only: {"frustration_level": <number>, "reasons": [<short strings>]}`

const escalationSystemPrompt = `Draft a short internal escalation email for a human support agent.
Include: a one-line summary of the user's problem, why the conversation needs a human, and the key quotes from the user.
Write the email body only, no subject line, in English.`

// FrustrationReport is the verdict for one analyzed session.
type FrustrationReport struct {
	FrustrationLevel float64  `json:"frustration_level"`
	Reasons          []string `json:"reasons"`
	ShouldEscalate   bool     `json:"should_escalate"`
	EscalationEmail  string   `json:"escalation_email,omitempty"`
}

// Notifier delivers an out-of-band escalation alert to the support team.
type Notifier interface {
	NotifySupport(ctx context.Context, message string) error
}

type FrustrationDetector struct {
	llm      llm_service.LLMService
	notifier Notifier // may be nil
	cutoff   float64
	logger   *slog.Logger
}

func NewFrustrationDetector(llm llm_service.LLMService, notifier Notifier, cutoff float64, logger *slog.Logger) *FrustrationDetector {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = 0.7
	}
	return &FrustrationDetector{
		llm:      llm,
		notifier: notifier,
		cutoff:   cutoff,
		logger:   logger,
	}
}

// Analyze scores the given messages; above the cutoff it drafts an
// escalation email and, when a notifier is configured, alerts support.
// Notification failures are logged and do not fail the analysis.
func (d *FrustrationDetector) Analyze(ctx context.Context, messages []chat_type.ChatMessage) (*FrustrationReport, error) {
	if len(messages) == 0 {
		return &FrustrationReport{}, nil
	}

	transcript := buildTranscript(messages)

	response, err := d.llm.Complete(ctx, frustrationSystemPrompt,
		[]llm_service.Message{{Role: "user", Content: transcript}}, 0, 300)
	if err != nil {
		return nil, fmt.Errorf("frustration analysis failed: %w", err)
	}

	var report FrustrationReport
	if err := json.Unmarshal([]byte(cleanJSONContent(response)), &report); err != nil {
		return nil, fmt.Errorf("failed to parse frustration verdict: %w", err)
	}
	if report.FrustrationLevel < 0 {
		report.FrustrationLevel = 0
	}
	if report.FrustrationLevel > 1 {
		report.FrustrationLevel = 1
	}

	if report.FrustrationLevel < d.cutoff {
		return &report, nil
	}
	report.ShouldEscalate = true

	email, err := d.llm.Complete(ctx, escalationSystemPrompt,
		[]llm_service.Message{{Role: "user", Content: transcript}}, 0.3, 500)
	if err != nil {
		d.logger.Error("Failed to draft escalation email",
			slog.String("error", err.Error()))
	} else {
		report.EscalationEmail = email
	}

	if d.notifier != nil {
		alert := fmt.Sprintf("EAA chatbot escalation: user frustration %.2f. Please review the session.", report.FrustrationLevel)
		if err := d.notifier.NotifySupport(ctx, alert); err != nil {
			d.logger.Error("Failed to notify support about escalation",
				slog.String("error", err.Error()))
		}
	}

	return &report, nil
}

func buildTranscript(messages []chat_type.ChatMessage) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
	}
	return sb.String()
}

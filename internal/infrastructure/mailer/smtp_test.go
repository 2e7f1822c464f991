package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"skillxintell/internal/config"
	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

func TestMailer_DisabledWithoutHost(t *testing.T) {
	m := New(config.SMTPConfig{}, logger.Nop())
	if m.Enabled() {
		t.Fatalf("mailer without host must be disabled")
	}
	if err := m.Notify(context.Background(), verification.Event{Type: verification.EventRequestCreated, ReviewerEmail: "x@y.z"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestMailer_CreatedGoesToReviewer(t *testing.T) {
	var sent []*gomail.Message
	m := &Mailer{from: "no-reply@skillx.test", send: func(msgs ...*gomail.Message) error {
		sent = append(sent, msgs...)
		return nil
	}}

	err := m.Notify(context.Background(), verification.Event{
		Type:           verification.EventRequestCreated,
		SkillName:      "HL7 Basics",
		RequesterName:  "Sam",
		RequesterEmail: "sam@example.com",
		ReviewerName:   "Rina",
		ReviewerEmail:  "rina@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	if got := sent[0].GetHeader("To"); len(got) != 1 || got[0] != "rina@example.com" {
		t.Fatalf("unexpected recipient: %v", got)
	}

	var buf bytes.Buffer
	if _, err := sent[0].WriteTo(&buf); err != nil {
		t.Fatalf("write message: %v", err)
	}
	if !strings.Contains(buf.String(), "HL7 Basics") {
		t.Fatalf("message body missing skill name")
	}
}

func TestMailer_DecisionGoesToRequester(t *testing.T) {
	note := "<script>"
	to, subject, body := compose(verification.Event{
		Type:           verification.EventRequestRejected,
		Status:         verification.StatusRejected,
		SkillName:      "Drip Irrigation",
		RequesterEmail: "sam@example.com",
		Note:           &note,
	})
	if to != "sam@example.com" {
		t.Fatalf("unexpected recipient %q", to)
	}
	if !strings.Contains(subject, "rejected") {
		t.Fatalf("unexpected subject %q", subject)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("note must be escaped: %s", body)
	}
}

func TestMailer_SendError(t *testing.T) {
	m := &Mailer{send: func(...*gomail.Message) error { return errors.New("dial failed") }}
	err := m.Notify(context.Background(), verification.Event{Type: verification.EventRequestCreated, ReviewerEmail: "r@x.y"})
	if err == nil || !strings.Contains(err.Error(), "dial failed") {
		t.Fatalf("expected send error, got %v", err)
	}
}

package broker

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"skillxintell/internal/config"
	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewPublisher_DisabledWithoutURL(t *testing.T) {
	p, err := NewPublisher(context.Background(), config.RabbitMQConfig{Exchange: "skillx.verification"}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Enabled() {
		t.Fatalf("publisher without url must be disabled")
	}
	if err := p.Notify(context.Background(), verification.Event{Type: verification.EventRequestCreated}); err != nil {
		t.Fatalf("disabled publisher should drop events, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("unexpected close err: %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	ev := verification.Event{
		Type:           verification.EventRequestApproved,
		RequestID:      uuid.New(),
		SkillID:        uuid.New(),
		SkillName:      "HL7 Basics",
		RequesterID:    uuid.New(),
		ReviewerID:     uuid.New(),
		Status:         verification.StatusApproved,
		OccurredAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RequesterEmail: "sam@example.com",
	}

	msg, err := buildMessage(ev)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected publishing: %+v", msg)
	}
	if msg.Headers["event_type"] != "verification.request.approved" {
		t.Fatalf("unexpected headers: %v", msg.Headers)
	}
	if strings.Contains(string(msg.Body), "sam@example.com") {
		t.Fatalf("body must not carry email addresses: %s", msg.Body)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Body, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["status"] != "APPROVED" || decoded["skill_name"] != "HL7 Basics" {
		t.Fatalf("unexpected body: %v", decoded)
	}
}

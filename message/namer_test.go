package message

import (
	"testing"

	wmmessage "github.com/ThreeDotsLabs/watermill/message"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type createInvoiceCommand struct{ BaseCommand }
type invoiceByIDQuery struct{ BaseQuery }
type invoiceCreatedEvent struct{ DomainEvent }

func TestShortlinkNamerName(t *testing.T) {
	namer := NewShortlinkNamer("Billing")

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "command", value: &createInvoiceCommand{}, expected: "billing.command.create_invoice_command.v1"},
		{name: "query", value: invoiceByIDQuery{}, expected: "billing.query.invoice_by_i_d_query.v1"},
		{name: "event", value: &invoiceCreatedEvent{}, expected: "billing.event.invoice_created_event.v1"},
		{name: "protobuf", value: wrapperspb.String("x"), expected: "billing.command.string_value.v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := namer.Name(tt.value); got != tt.expected {
				t.Fatalf("unexpected name: %s", got)
			}
		})
	}

	if topic := namer.Topic("billing.command.create_invoice_command.v1"); topic != "billing.command.create_invoice_command.v1" {
		t.Fatalf("unexpected topic: %s", topic)
	}
}

func TestNameOfUsesMetadata(t *testing.T) {
	msg := wmmessage.NewMessage("1", []byte("payload"))
	msg.Metadata.Set(MetadataTypeName, "billing.event.invoice_generated")
	msg.Metadata.Set(MetadataTypeVersion, "v2")

	if got := NameOf(msg); got != "billing.event.invoice_generated.v2" {
		t.Fatalf("expected metadata-derived name, got %s", got)
	}
}

func TestTopicForSanitizes(t *testing.T) {
	if topic := TopicFor("Billing.Command.Create Invoice.v1"); topic != "billing.command.create_invoice.v1" {
		t.Fatalf("unexpected sanitized topic: %s", topic)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(&createInvoiceCommand{}); got != KindCommand {
		t.Fatalf("expected KindCommand, got %s", got)
	}
	if got := KindOf(invoiceByIDQuery{}); got != KindQuery {
		t.Fatalf("expected KindQuery, got %s", got)
	}
	if got := KindOf(map[string]string{MetadataMessageKind: "EVENT"}); got != KindEvent {
		t.Fatalf("expected KindEvent, got %s", got)
	}
	if got := KindOf(struct{}{}); got != KindCommand {
		t.Fatalf("expected KindCommand default, got %s", got)
	}
}

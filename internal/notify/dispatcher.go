// Package notify constructs and sends the two alert messages that follow a
// persisted emergency: one to the responding authority, one acknowledging the
// reporter.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akagup/go-emergency-response/internal/models"
)

// Gateway is the external messaging collaborator. It returns a delivery
// reference on success.
type Gateway interface {
	Send(ctx context.Context, recipient, message string) (string, error)
}

// Status is the per-recipient delivery outcome.
type Status struct {
	Recipient string `json:"recipient"`
	Delivered bool   `json:"delivered"`
	Reference string `json:"reference,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Receipt pairs the two independent send outcomes.
type Receipt struct {
	Authority Status `json:"authority"`
	Reporter  Status `json:"reporter"`
}

type Dispatcher struct {
	gateway Gateway
}

func NewDispatcher(gateway Gateway) *Dispatcher {
	return &Dispatcher{gateway: gateway}
}

// Dispatch sends the authority alert and the reporter acknowledgment. The two
// sends are independent: one failing never blocks or rolls back the other,
// and no retries happen here. The record is already committed by the time
// this runs.
func (d *Dispatcher) Dispatch(ctx context.Context, record *models.Emergency, authorityContact, reporterContact string) Receipt {
	return Receipt{
		Authority: d.send(ctx, authorityContact, authorityMessage(record)),
		Reporter:  d.send(ctx, reporterContact, reporterMessage(record)),
	}
}

func (d *Dispatcher) send(ctx context.Context, recipient, message string) Status {
	if recipient == "" {
		return Status{Recipient: recipient, Delivered: false, Reason: "no contact provided"}
	}

	ref, err := d.gateway.Send(ctx, recipient, message)
	if err != nil {
		slog.Warn("notification send failed", "recipient", recipient, "error", err)
		return Status{Recipient: recipient, Delivered: false, Reason: err.Error()}
	}
	return Status{Recipient: recipient, Delivered: true, Reference: ref}
}

func authorityMessage(record *models.Emergency) string {
	return fmt.Sprintf("URGENT! Emergency at %s. Type: %s. Severity: %s. Immediate response required.",
		record.LocationLabel, record.Type, severityOf(record))
}

func reporterMessage(record *models.Emergency) string {
	return fmt.Sprintf("Help is on the way! Authorities have been alerted to your emergency at %s (Type: %s). Stay safe!",
		record.LocationLabel, record.Type)
}

func severityOf(record *models.Emergency) string {
	if s := record.Entities[models.CategorySeverity]; len(s) > 0 {
		return s[0]
	}
	return "unspecified"
}

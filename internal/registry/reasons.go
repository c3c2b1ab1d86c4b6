package registry

import (
	"fmt"
	"strings"
)

// TransferReason is a code from the transfer reason menu.
type TransferReason string

const (
	ReasonVehicleChange TransferReason = "vehicle_change"
	ReasonOwnerDecision TransferReason = "owner_decision"
	ReasonDriverRequest TransferReason = "driver_request"
	ReasonOther         TransferReason = "other"
)

var reasonLabels = map[TransferReason]string{
	ReasonVehicleChange: "Changement de véhicule",
	ReasonOwnerDecision: "Décision du propriétaire",
	ReasonDriverRequest: "Souhait du chauffeur",
	ReasonOther:         "Autre",
}

// TransferReasons lists the menu in display order.
func TransferReasons() []TransferReason {
	return []TransferReason{ReasonVehicleChange, ReasonOwnerDecision, ReasonDriverRequest, ReasonOther}
}

// Label returns the text stored in the event log for r.
func (r TransferReason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return string(r)
}

// FormatReason turns a menu code plus optional free text into the reason
// recorded on a transfer event.
func FormatReason(code, detail string) (string, error) {
	reason := TransferReason(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := reasonLabels[reason]; !ok {
		return "", fmt.Errorf("%w: unknown transfer reason %q", ErrInvalidRequest, code)
	}
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return reason.Label(), nil
	}
	return reason.Label() + ": " + detail, nil
}

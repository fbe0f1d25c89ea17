package lifecycle

import (
	"fmt"
	"strings"

	"github.com/charlesng35/classifieds/internal/models"
	"github.com/charlesng35/classifieds/internal/permissions"
	apperrors "github.com/charlesng35/classifieds/pkg/errors"
)

// Action names a moderation trigger.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionSuspend   Action = "suspend"
	ActionUnsuspend Action = "unsuspend"
	// ActionExpire is only performed by the maintenance scheduler.
	ActionExpire Action = "expire"

	// Content actions that never change status but are recorded alongside
	// transitions.
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Transition is one row of the legality table.
type Transition struct {
	Action Action          `json:"action"`
	From   models.AdStatus `json:"from"`
	To     models.AdStatus `json:"to"`
	// Permission gating the transition; empty for system-only transitions.
	Permission           string `json:"permission,omitempty"`
	RequiresReason       bool   `json:"requiresReason,omitempty"`
	RequiresConfirmation bool   `json:"requiresConfirmation,omitempty"`
	NotifyOwner          bool   `json:"notifyOwner,omitempty"`
}

// System reports whether no principal may trigger the transition directly.
func (t Transition) System() bool {
	return t.Permission == ""
}

// suspend and unsuspend reuse ads.edit; there is no dedicated permission.
var table = []Transition{
	{Action: ActionApprove, From: models.AdStatusPendingApproval, To: models.AdStatusApproved, Permission: permissions.AdsApprove},
	{Action: ActionReject, From: models.AdStatusPendingApproval, To: models.AdStatusRejected, Permission: permissions.AdsReject, RequiresReason: true, NotifyOwner: true},
	{Action: ActionSuspend, From: models.AdStatusApproved, To: models.AdStatusSuspended, Permission: permissions.AdsEdit, RequiresConfirmation: true},
	{Action: ActionUnsuspend, From: models.AdStatusSuspended, To: models.AdStatusApproved, Permission: permissions.AdsEdit},
	{Action: ActionExpire, From: models.AdStatusApproved, To: models.AdStatusExpired},
}

// Transitions returns a copy of the legality table.
func Transitions() []Transition {
	return append([]Transition(nil), table...)
}

// ParseAction normalises a user supplied action name.
func ParseAction(raw string) (Action, bool) {
	action := Action(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range table {
		if t.Action == action {
			return action, true
		}
	}
	return "", false
}

// PermissionFor returns the permission gating an action, known before the ad
// is loaded. System actions report false.
func PermissionFor(action Action) (string, bool) {
	for _, t := range table {
		if t.Action == action {
			return t.Permission, t.Permission != ""
		}
	}
	return "", false
}

// Plan returns the transition for the action from the current status. Any
// pair not in the table, including a repeat of an already applied action,
// yields ErrInvalidTransition.
func Plan(current models.AdStatus, action Action) (Transition, error) {
	for _, t := range table {
		if t.Action == action && t.From == current {
			return t, nil
		}
	}
	return Transition{}, apperrors.ErrInvalidTransition.WithMessage(
		fmt.Sprintf("Cannot %s an ad with status %s", action, current),
	)
}

// Available lists the actions legal from the status.
func Available(current models.AdStatus) []Action {
	var actions []Action
	for _, t := range table {
		if t.From == current {
			actions = append(actions, t.Action)
		}
	}
	return actions
}

// Request carries the caller supplied inputs a transition may require.
type Request struct {
	Reason    string
	Confirmed bool
}

// Check validates the request inputs for the action without touching the ad.
func Check(action Action, req Request) error {
	var fields []apperrors.FieldError
	for _, t := range table {
		if t.Action != action {
			continue
		}
		if t.RequiresReason && strings.TrimSpace(req.Reason) == "" {
			fields = append(fields, apperrors.FieldError{Field: "reason", Message: "is required"})
		}
		if t.RequiresConfirmation && !req.Confirmed {
			fields = append(fields, apperrors.FieldError{Field: "confirmed", Message: "must be true to " + string(action) + " an ad"})
		}
		break
	}
	if len(fields) > 0 {
		return apperrors.NewValidationFailed(fields)
	}
	return nil
}

package rules

import (
	"errors"
	"sync"

	"github.com/anggasct/fluo"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionEvent names an operation against the workflow state
// machine. Every event maps to exactly one audit action.
type TransitionEvent string

const (
	EventSubmit     TransitionEvent = "submit"
	EventClaim      TransitionEvent = "claim"
	EventApprove    TransitionEvent = "approve"
	EventReject     TransitionEvent = "reject"
	EventEscalate   TransitionEvent = "escalate"
	EventReassign   TransitionEvent = "reassign"
	EventRelease    TransitionEvent = "release"
	EventReactivate TransitionEvent = "reactivate"
)

var (
	buildOnce   sync.Once
	definitions map[enums.ItemType]fluo.MachineDefinition
)

// NextStatus validates event against the item type's transition table
// and returns the resulting status. The machines are compiled once; a
// throwaway instance is seeded with the observed status per call, so
// concurrent validations never share state.
func NextStatus(itemType enums.ItemType, from enums.ReviewStatus, event TransitionEvent) (enums.ReviewStatus, error) {
	buildOnce.Do(buildDefinitions)

	def, ok := definitions[itemType]
	if !ok {
		return "", ErrInvalidTransition
	}

	m := def.CreateInstance()
	if err := m.Start(); err != nil {
		return "", ErrInvalidTransition
	}
	if err := m.SetState(string(from)); err != nil {
		return "", ErrInvalidTransition
	}

	res := m.HandleEvent(string(event), nil)
	if res == nil || !res.Success() || !res.StateChanged {
		return "", ErrInvalidTransition
	}

	return enums.ReviewStatus(res.CurrentState), nil
}

func buildDefinitions() {
	definitions = make(map[enums.ItemType]fluo.MachineDefinition, len(enums.AllItemTypes()))
	for _, itemType := range enums.AllItemTypes() {
		switch itemType {
		case enums.ItemTypeIdentitySubmission:
			definitions[itemType] = buildReviewMachine(true)
		case enums.ItemTypeSuspendedAccount:
			definitions[itemType] = buildSuspensionMachine()
		default:
			definitions[itemType] = buildReviewMachine(false)
		}
	}
}

// buildReviewMachine is the shared table for everything except
// suspended-account cases. Identity submissions get the extra basic
// pre-state before pending.
func buildReviewMachine(withBasic bool) fluo.MachineDefinition {
	b := fluo.NewMachine()

	if withBasic {
		b.State(string(enums.StatusBasic)).Initial().
			To(string(enums.StatusPending)).On(string(EventSubmit))
		b.State(string(enums.StatusPending)).
			To(string(enums.StatusInProgress)).On(string(EventClaim))
	} else {
		b.State(string(enums.StatusPending)).Initial().
			To(string(enums.StatusInProgress)).On(string(EventClaim))
	}

	b.State(string(enums.StatusInProgress)).
		To(string(enums.StatusApproved)).On(string(EventApprove)).
		To(string(enums.StatusRejected)).On(string(EventReject)).
		To(string(enums.StatusEscalated)).On(string(EventEscalate)).
		To(string(enums.StatusPending)).On(string(EventReassign)).
		To(string(enums.StatusPending)).On(string(EventRelease))

	b.State(string(enums.StatusEscalated)).
		To(string(enums.StatusApproved)).On(string(EventApprove)).
		To(string(enums.StatusRejected)).On(string(EventReject)).
		To(string(enums.StatusPending)).On(string(EventReassign))

	b.State(string(enums.StatusApproved)).Final()
	b.State(string(enums.StatusRejected)).Final()

	return b.Build()
}

func buildSuspensionMachine() fluo.MachineDefinition {
	b := fluo.NewMachine()

	b.State(string(enums.StatusPending)).Initial().
		To(string(enums.StatusInProgress)).On(string(EventClaim))

	b.State(string(enums.StatusInProgress)).
		To(string(enums.StatusReactivated)).On(string(EventReactivate)).
		To(string(enums.StatusPending)).On(string(EventReassign)).
		To(string(enums.StatusPending)).On(string(EventRelease))

	b.State(string(enums.StatusReactivated)).Final()

	return b.Build()
}

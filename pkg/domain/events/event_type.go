package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	EventTypeTransferCreated  EventType = "Transfer.Created"
	EventTypeTransferApproved EventType = "Transfer.Approved"
	EventTypeTransferRejected EventType = "Transfer.Rejected"
	EventTypeBalanceMutated   EventType = "Balance.Mutated"
)

func (t EventType) String() string { return string(t) }

// All lists every event type the service emits.
func All() []EventType {
	return []EventType{
		EventTypeTransferCreated,
		EventTypeTransferApproved,
		EventTypeTransferRejected,
		EventTypeBalanceMutated,
	}
}

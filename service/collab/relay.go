package collab

// EventRelay forwards domain events (scene updates, cursor moves, comments)
// to a room's occupants, sender excluded. It does not interpret payloads;
// its only guarantees are sender exclusion and a delivery attempt to every
// occupant tracked at the moment of the call.
type EventRelay struct {
	registry  *ConnRegistry
	directory *RoomDirectory
	fanout    *Fanout
}

func NewEventRelay(registry *ConnRegistry, directory *RoomDirectory, fanout *Fanout) *EventRelay {
	return &EventRelay{registry: registry, directory: directory, fanout: fanout}
}

// Relay fans the event out to everyone in the room except the sender.
// Returns the number of delivery targets; 0 when the sender is alone or the
// room is unknown (both are fine, not errors).
func (r *EventRelay) Relay(room RoomID, senderConnID string, event string, data any) int {
	targets := r.registry.Resolve(r.directory.Occupants(room), senderConnID)
	if len(targets) == 0 {
		return 0
	}
	r.fanout.Broadcast(string(room), targets, MarshalEvent(event, data))
	return len(targets)
}

// RelayAll is Relay without sender exclusion, used for notices that do not
// originate from a live connection (typing expiry).
func (r *EventRelay) RelayAll(room RoomID, event string, data any) int {
	return r.Relay(room, "", event, data)
}

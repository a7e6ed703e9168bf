package collab

// PresenceBroadcaster turns membership changes into user_joined / user_left
// / room_users events. It never caches occupant lists: every emit re-derives
// targets from the directory and registry at call time, so a connection that
// has been purged can no longer receive anything.
type PresenceBroadcaster struct {
	registry  *ConnRegistry
	directory *RoomDirectory
	fanout    *Fanout
}

func NewPresenceBroadcaster(registry *ConnRegistry, directory *RoomDirectory, fanout *Fanout) *PresenceBroadcaster {
	return &PresenceBroadcaster{registry: registry, directory: directory, fanout: fanout}
}

// AnnounceJoin tells the room about the new occupant, then sends the joiner
// the full occupant snapshot. occupantIDs is the post-join snapshot returned
// by RoomDirectory.Join, so the joiner always sees itself in the list.
func (p *PresenceBroadcaster) AnnounceJoin(room RoomID, joiner *Client, occupantIDs []string) {
	others := p.registry.Resolve(occupantIDs, joiner.ConnID)
	if len(others) > 0 {
		p.fanout.Broadcast(string(room), others, MarshalEvent(EventUserJoined, UserJoined{
			UserID:    joiner.UserID,
			Username:  joiner.Username,
			AvatarURL: joiner.AvatarURL,
			Timestamp: nowStamp(),
		}))
	}

	all := p.registry.Resolve(occupantIDs, "")
	users := make([]PresenceUser, 0, len(all))
	for _, c := range all {
		users = append(users, c.presenceUser())
	}
	joiner.Enqueue(MarshalEvent(EventRoomUsers, RoomUsers{Room: string(room), Users: users}))
}

// AnnounceLeave emits user_left to the room's remaining occupants. Callers
// run it after the departure has been committed (leave or purge), so the
// departed connection is never among the targets.
func (p *PresenceBroadcaster) AnnounceLeave(room RoomID, userID, username string) {
	remaining := p.registry.Resolve(p.directory.Occupants(room), "")
	if len(remaining) == 0 {
		return
	}
	p.fanout.Broadcast(string(room), remaining, MarshalEvent(EventUserLeft, UserLeft{
		UserID:    userID,
		Username:  username,
		Timestamp: nowStamp(),
	}))
}

// RoomUsers builds the presence snapshot for a room.
func (p *PresenceBroadcaster) RoomUsers(room RoomID) []PresenceUser {
	all := p.registry.Resolve(p.directory.Occupants(room), "")
	users := make([]PresenceUser, 0, len(all))
	for _, c := range all {
		users = append(users, c.presenceUser())
	}
	return users
}

package collab

import "maps"

// Roster tracks who is watching and who is driving the rig. It belongs to
// the hub goroutine.
type Roster struct {
	entries map[string]PresencePayload // clientID -> presence
}

func NewRoster() *Roster {
	return &Roster{entries: make(map[string]PresencePayload)}
}

// Join records a client with no pointer yet.
func (r *Roster) Join(c *Client) {
	r.entries[c.ClientID] = PresencePayload{DisplayName: c.DisplayName, Role: c.Role}
}

// Move stores the pointer of a joined client and returns its presence.
func (r *Roster) Move(clientID string, p *PointerPos) (PresencePayload, bool) {
	entry, ok := r.entries[clientID]
	if !ok {
		return PresencePayload{}, false
	}
	entry.Pointer = p
	r.entries[clientID] = entry
	return entry, true
}

func (r *Roster) Leave(clientID string) {
	delete(r.entries, clientID)
}

func (r *Roster) Len() int {
	return len(r.entries)
}

// Controllers counts clients allowed to send intents.
func (r *Roster) Controllers() int {
	n := 0
	for _, e := range r.entries {
		if e.Role == RoleController {
			n++
		}
	}
	return n
}

func (r *Roster) StateMessage() (*Message, error) {
	return newMessage(TypePresenceState, PresenceStatePayload{
		Presences:   maps.Clone(r.entries),
		Controllers: r.Controllers(),
	})
}

package chat

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var (
	// ErrInvalidIdentity is returned when the local identity is not a known id.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrUnknownContact is returned for actions addressed to an id outside the roster.
	ErrUnknownContact = errors.New("unknown contact")
)

// DefaultCandidates returns the identities known to the course broker:
// team1a..team12a, team1b..team12b and x1..x6.
func DefaultCandidates() []string {
	ids := make([]string, 0, 30)
	for _, suffix := range []string{"a", "b"} {
		for i := 1; i <= 12; i++ {
			ids = append(ids, fmt.Sprintf("team%d%s", i, suffix))
		}
	}
	for i := 1; i <= 6; i++ {
		ids = append(ids, fmt.Sprintf("x%d", i))
	}
	return ids
}

// Roster is the fixed set of contacts of the local identity.
type Roster struct {
	self      string
	contacts  []string
	histories map[string]*History
}

// NewRoster builds a roster from the candidate ids, excluding self.
// Fails with ErrInvalidIdentity when self is not a candidate.
func NewRoster(candidates []string, self string) (*Roster, error) {
	if !lo.Contains(candidates, self) {
		return nil, fmt.Errorf("%w: %q is not one of the registered names %v", ErrInvalidIdentity, self, candidates)
	}
	contacts := lo.Uniq(lo.Without(candidates, self))
	r := &Roster{
		self:      self,
		contacts:  contacts,
		histories: make(map[string]*History, len(contacts)),
	}
	for _, c := range contacts {
		r.histories[c] = NewHistory(c)
	}
	return r, nil
}

// Self returns the local identity.
func (r *Roster) Self() string {
	return r.self
}

// Contacts returns the contact ids in candidate order.
func (r *Roster) Contacts() []string {
	return append([]string(nil), r.contacts...)
}

// Histories returns the histories in contact order.
func (r *Roster) Histories() []*History {
	return lo.Map(r.contacts, func(c string, _ int) *History { return r.histories[c] })
}

// HistoryFor returns the history of contact, or false if it is not in the roster.
func (r *Roster) HistoryFor(contact string) (*History, bool) {
	h, ok := r.histories[contact]
	return h, ok
}

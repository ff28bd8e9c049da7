package user

import (
	"encoding/json"
)

const DateLayout = "2006-01-02"

// StreakState is persisted as the ordered pair [last_update_date|null, length].
// LastUpdate is empty exactly when Length is 0.
type StreakState struct {
	LastUpdate string
	Length     int

	unreadable bool
}

// Unreadable reports that the stored value did not have the pair shape and
// was loaded as an absent streak.
func (s StreakState) Unreadable() bool { return s.unreadable }

func (s StreakState) MarshalJSON() ([]byte, error) {
	var date any
	if s.LastUpdate != "" {
		date = s.LastUpdate
	}
	return json.Marshal([2]any{date, s.Length})
}

// UnmarshalJSON never fails on a badly shaped value: one bad row must not
// break every query that scans users, so it decodes to the zero state.
func (s *StreakState) UnmarshalJSON(b []byte) error {
	*s = StreakState{}
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil || len(pair) != 2 {
		s.unreadable = true
		return nil
	}
	var date *string
	var length int
	if json.Unmarshal(pair[0], &date) != nil || json.Unmarshal(pair[1], &length) != nil {
		s.unreadable = true
		return nil
	}
	if date != nil {
		s.LastUpdate = *date
	}
	s.Length = length
	return nil
}

// Package entity contains the core business objects of the project.
package entity

// ApplicationStatus is the closed set of states a local application record
// can be in. Statuses carry an information rank: a sync pass may only move a
// record to a higher rank, so a status advanced by a specific local event
// (e.g. a recorded rejection) is never regressed by a vaguer external value.
type ApplicationStatus string

const (
	// StatusSent means the application was submitted and nothing more is known.
	StatusSent ApplicationStatus = "SENT"
	// StatusViewed means the board reports the employer opened the application.
	StatusViewed ApplicationStatus = "VIEWED"
	// StatusResponded means the employer replied in some form.
	StatusResponded ApplicationStatus = "RESPONDED"
	// StatusRejected is terminal: the employer declined.
	StatusRejected ApplicationStatus = "REJECTED"
	// StatusInvited is terminal: the employer extended an interview invitation.
	StatusInvited ApplicationStatus = "INVITED"
)

// String returns the string representation of the status.
func (s ApplicationStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a member of the closed enum.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusSent, StatusViewed, StatusResponded, StatusRejected, StatusInvited:
		return true
	default:
		return false
	}
}

// statusRank orders statuses by information gained. REJECTED and INVITED are
// both terminal outcomes; they share a rank so neither overwrites the other.
var statusRank = map[ApplicationStatus]int{
	StatusSent:      0,
	StatusViewed:    1,
	StatusResponded: 2,
	StatusRejected:  3,
	StatusInvited:   3,
}

// Rank returns the information rank of the status.
func (s ApplicationStatus) Rank() int {
	return statusRank[s]
}

// CanAdvanceTo reports whether a sync pass is allowed to move a record from
// the current status to next. Only strictly higher ranks qualify; equal-rank
// values (a terminal status replacing another terminal status) and regressions
// are conflicts resolved by keeping the local value.
func (s ApplicationStatus) CanAdvanceTo(next ApplicationStatus) bool {
	return next.Rank() > s.Rank()
}

// boardStateMap is the explicit table from board-reported states to local
// statuses. Anything outside this table means "no change": an unmapped board
// value must never corrupt a well-defined local status.
var boardStateMap = map[string]ApplicationStatus{
	"sent":       StatusSent,
	"viewed":     StatusViewed,
	"response":   StatusResponded,
	"rejected":   StatusRejected,
	"invitation": StatusInvited,
}

// MapBoardState translates a board-reported state into a local status.
// The second return value is false when the state is unknown, which callers
// must treat as an explicit no-change outcome rather than a default.
func MapBoardState(state string) (ApplicationStatus, bool) {
	status, ok := boardStateMap[state]

	return status, ok
}

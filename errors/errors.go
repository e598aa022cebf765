package errors

import "fmt"

var (
	ErrEmptyDisplayName = fmt.Errorf("display name is empty")
	ErrEmptyGroupName   = fmt.Errorf("group name is empty")
	ErrNotAMember       = fmt.Errorf("not a member of group")
	ErrUnknownTarget    = fmt.Errorf("unknown call target")
	ErrSinkFull         = fmt.Errorf("event sink is full")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// NotAMember builds the caller-facing variant carrying the group name.
// The sentinel stays matchable via errors.Is.
func NotAMember(group string) error {
	return fmt.Errorf("%w %s", ErrNotAMember, group)
}

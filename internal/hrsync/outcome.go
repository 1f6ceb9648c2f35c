package hrsync

// Outcome is the business result of applying one event. Mutators report
// non-applied conditions (missing rows, policy rejections, bad payloads)
// through the outcome instead of an error, so only infrastructure failures
// reach the retry loop.
type Outcome int

const (
	// OutcomeApplied means the mutation was persisted.
	OutcomeApplied Outcome = iota
	// OutcomeNotFound means the target entity does not exist; the event is a no-op.
	OutcomeNotFound
	// OutcomeRejected means a domain policy refused the mutation
	// (e.g. a user outside the All/Sells scopes, or a constraint violation).
	OutcomeRejected
	// OutcomeSkipped means the event lacked the preconditions to act and was ignored.
	OutcomeSkipped
	// OutcomeInvalid means the payload could not be interpreted for this kind.
	OutcomeInvalid
)

// String returns a log-friendly name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeInvalid:
		return "invalid"
	}
	return "unknown"
}

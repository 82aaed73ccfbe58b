package oauth

type Decision int

const (
	DecisionCreate Decision = iota
	DecisionUpdate
)

func (d Decision) String() string {
	if d == DecisionUpdate {
		return "update"
	}
	return "create"
}

// DecisionFunc decides how a Provider reacts to a Requirer partition, given the client id
// it previously wrote for the same relation (empty if none).
type DecisionFunc func(priorClientID string) Decision

// DecideByClientID updates when a client id was issued before and creates otherwise. It
// does not look at individual fields.
func DecideByClientID(priorClientID string) Decision {
	if priorClientID != "" {
		return DecisionUpdate
	}
	return DecisionCreate
}

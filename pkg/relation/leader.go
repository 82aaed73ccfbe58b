package relation

// LeadershipOracle reports whether the local replica is the elected leader of its
// application. Negotiators ask it before every state-mutating action.
type LeadershipOracle interface {
	IsLeader() bool
}

type LeaderFunc func() bool

func (f LeaderFunc) IsLeader() bool { return f() }

var (
	AlwaysLeader LeadershipOracle = LeaderFunc(func() bool { return true })
	NeverLeader  LeadershipOracle = LeaderFunc(func() bool { return false })
)

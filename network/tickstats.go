package network

// TickStats counts the structural events of one resolution round. Values
// combine with Add, which is associative and commutative, so the totals of
// a tick do not depend on the order rounds are folded in.
type TickStats struct {
	Merges      uint64
	Splits      uint64
	Relocations uint64
	Rejections  uint64
}

// Add combines two counters.
func (s TickStats) Add(other TickStats) TickStats {
	return TickStats{
		Merges:      s.Merges + other.Merges,
		Splits:      s.Splits + other.Splits,
		Relocations: s.Relocations + other.Relocations,
		Rejections:  s.Rejections + other.Rejections,
	}
}

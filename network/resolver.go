package network

import (
	"github.com/shardlab/prefixnet/message"
	"github.com/shardlab/prefixnet/prefix"
)

// collectActions evaluates every section once and concatenates the actions
// they emit. One call corresponds to one round of the tick's fixpoint loop.
func (n *Network) collectActions() []message.Action {
	var actions []message.Action
	for _, section := range n.sections {
		actions = append(actions, section.Evaluate(n.params)...)
	}

	return actions
}

// handleActions resolves one round's actions against the partition map and
// returns the round's counters. Duplicate merges and stale splits are the
// two tolerated races; everything else that does not line up with the map
// is corruption and comes back as a *FatalError.
func (n *Network) handleActions(
	actions []message.Action,
) (TickStats, error) {
	stats := TickStats{}

	for _, action := range actions {
		switch a := action.(type) {
		case message.Reject:
			stats.Rejections++

		case message.Merge:
			if n.resolveMerge(a.Target) {
				stats.Merges++
			}

		case message.Split:
			// The counter moves even when the source is already gone; the
			// split was decided and this keeps the totals independent of
			// the order actions happen to resolve in.
			stats.Splits++

			if err := n.resolveSplit(a.Source); err != nil {
				return stats, err
			}

		case message.Send:
			relocated, err := n.resolveSend(a.Msg)
			if err != nil {
				return stats, err
			}

			if relocated {
				stats.Relocations++
			}

		default:
			panic("unknown action type")
		}
	}

	return stats, nil
}

// resolveMerge folds every section strictly below target into one section
// at target. It reports whether anything was folded. A target with no
// remaining descendants is the documented duplicate-merge race: both
// pre-merge siblings can decide to merge in the same round, and the second
// resolution must be a no-op.
func (n *Network) resolveMerge(target prefix.Prefix) bool {
	var sources []Section
	for pfx, section := range n.sections {
		if pfx.IsDescendantOf(target) {
			sources = append(sources, section)
		}
	}

	if len(sources) == 0 {
		debugf("pre-merge sections not found (to be merged to [%s])", target)
		return false
	}

	for _, source := range sources {
		delete(n.sections, source.Prefix())
	}

	merged, ok := n.sections[target]
	if !ok {
		merged = n.factory(target)
		n.sections[target] = merged
	}

	for _, source := range sources {
		merged.Merge(n.params, source)
	}

	return true
}

// resolveSplit replaces the section at source with its two children. A
// missing source is the stale-split race: the source can have been absorbed
// by a merge resolved earlier in the same round. A child prefix that is
// already mapped cannot come from any race and is fatal.
func (n *Network) resolveSplit(source prefix.Prefix) error {
	section, ok := n.sections[source]
	if !ok {
		debugf("pre-split section [%s] not found", source)
		return nil
	}

	delete(n.sections, source)

	child0, child1 := section.Split(n.params)

	for _, child := range []Section{child0, child1} {
		if _, exists := n.sections[child.Prefix()]; exists {
			return fatalf("section with prefix [%s] already exists",
				child.Prefix())
		}

		n.sections[child.Prefix()] = child
	}

	return nil
}

// resolveSend delivers msg to the single section whose prefix matches the
// target address. It reports whether the message was a relocation commit.
// The partition invariant guarantees exactly one match; none is fatal.
func (n *Network) resolveSend(msg message.Message) (bool, error) {
	target := msg.Target()

	for _, section := range n.sections {
		if section.Prefix().Matches(target) {
			_, isCommit := msg.(message.RelocateCommit)
			section.Receive(msg)

			return isCommit, nil
		}
	}

	return false, fatalf("no section matching address %016x", uint64(target))
}

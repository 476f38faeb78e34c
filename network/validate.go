package network

import (
	"log"

	"github.com/shardlab/prefixnet/node"
)

// validate runs the post-tick invariant checks. An oversized section is an
// early warning only: its split has not propagated yet, and the log line
// projects how many adults each eventual child would receive. A non-empty
// relocation cache is a broken contract: every relocation accepted during a
// tick must commit or cancel before the tick converges.
func (n *Network) validate() error {
	for _, section := range n.sections {
		if len(section.Nodes()) > n.params.MaxSectionSize {
			children := section.Prefix().Split()
			count0 := node.CountMatchingAdults(
				n.params, children[0], section.Nodes())
			count1 := node.CountMatchingAdults(
				n.params, children[1], section.Nodes())

			log.Printf(
				"[%s]: too many nodes: %d "+
					"(adults per subsection: [%s]: %d, [%s]: %d)",
				section.Prefix(), len(section.Nodes()),
				children[0], count0, children[1], count1)
		}

		if incoming := section.IncomingRelocations(); len(incoming) > 0 {
			return fatalf(
				"[%s]: incoming relocation cache not cleared: %v",
				section.Prefix(), incoming)
		}

		if outgoing := section.OutgoingRelocations(); len(outgoing) > 0 {
			return fatalf(
				"[%s]: outgoing relocation cache not cleared: %v",
				section.Prefix(), outgoing)
		}
	}

	return nil
}

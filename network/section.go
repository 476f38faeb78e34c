package network

import (
	"github.com/shardlab/prefixnet/message"
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
)

// A Section is the per-prefix state machine the network orchestrates. The
// network owns each section exclusively through its partition map; merge
// and split consume their inputs, so no section is ever aliased.
type Section interface {
	// Prefix returns the prefix the section is responsible for. It must
	// equal the section's key in the partition map.
	Prefix() prefix.Prefix

	// Nodes returns the section's members. The network only reads it.
	Nodes() map[prefix.Address]*node.Node

	// Prepare resets per-tick transient state. It is called once per tick,
	// in no particular order across sections.
	Prepare()

	// Evaluate runs one evaluation round and returns the actions to
	// resolve. A section with nothing to do returns an empty slice.
	Evaluate(p *params.Params) []message.Action

	// Merge absorbs other into the receiver. other is consumed.
	Merge(p *params.Params, other Section)

	// Split divides the receiver into its two children. The receiver is
	// consumed.
	Split(p *params.Params) (Section, Section)

	// Receive delivers a message routed to this section.
	Receive(msg message.Message)

	// IsComplete reports whether the section can stand on its own.
	IsComplete(p *params.Params) bool

	// EnqueueJoin and EnqueueLeave inject churn, to be admitted or applied
	// by the next evaluation.
	EnqueueJoin(n *node.Node)
	EnqueueLeave(name prefix.Address)

	// IncomingRelocations and OutgoingRelocations expose the relocation
	// caches the validator requires to be empty at tick end.
	IncomingRelocations() []prefix.Address
	OutgoingRelocations() []prefix.Address
}

// A SectionFactory creates an empty section for a prefix. The resolver uses
// it when a merge target is not yet present in the partition map.
type SectionFactory func(pfx prefix.Prefix) Section

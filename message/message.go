package message

import (
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/prefix"
)

// A Message travels between sections inside Send actions. Every message has
// one resolvable target address; the partition invariant guarantees exactly
// one section is responsible for it.
type Message interface {
	// Target returns the address the message is routed by.
	Target() prefix.Address

	isMessage()
}

// RelocateRequest asks the section responsible for To to admit the node
// currently named Name.
type RelocateRequest struct {
	To   prefix.Address
	Name prefix.Address
	Age  uint
}

// RelocateAccept tells the relocating node's current section that the
// target section has reserved a slot. It is routed to the node's current
// address.
type RelocateAccept struct {
	Name prefix.Address
	To   prefix.Address
}

// RelocateCancel tells the relocating node's current section that the
// target section refused, so the node stays where it is.
type RelocateCancel struct {
	Name prefix.Address
}

// RelocateAbort tells the target section to release the reservation at To
// because the relocating node left before the hand-over could complete.
type RelocateAbort struct {
	To prefix.Address
}

// RelocateCommit hands the relocated node, already renamed to its new
// address, over to the target section. Its delivery is what the statistics
// count as one relocation.
type RelocateCommit struct {
	Node *node.Node
}

func (m RelocateRequest) Target() prefix.Address { return m.To }
func (m RelocateAccept) Target() prefix.Address  { return m.Name }
func (m RelocateCancel) Target() prefix.Address  { return m.Name }
func (m RelocateAbort) Target() prefix.Address   { return m.To }
func (m RelocateCommit) Target() prefix.Address  { return m.Node.Name() }

func (RelocateRequest) isMessage() {}
func (RelocateAccept) isMessage()  {}
func (RelocateCancel) isMessage()  {}
func (RelocateAbort) isMessage()   {}
func (RelocateCommit) isMessage()  {}

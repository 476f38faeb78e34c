// Package section implements the per-prefix state machine of the simulated
// network. A section owns the nodes whose addresses fall under its prefix,
// admits joins, applies drops, relocates aging nodes to other sections, and
// decides when its segment of the address space must split or merge.
package section

import (
	"hash/fnv"
	"sort"

	"github.com/shardlab/prefixnet/message"
	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
)

// A Section holds the state owned by one prefix of the partition. Sections
// are moved, never shared: merge and split consume their inputs.
type Section struct {
	pfx   prefix.Prefix
	nodes map[prefix.Address]*node.Node

	// Relocation caches. Both must be empty when a tick converges.
	incoming map[prefix.Address]uint
	outgoing map[prefix.Address]prefix.Address

	inbox  []message.Message
	joins  []*node.Node
	leaves []prefix.Address

	// Per-tick state, reset by Prepare.
	relocationTried  map[prefix.Address]struct{}
	structureEmitted bool
}

var _ network.Section = (*Section)(nil)

// Factory creates a section for a prefix. It is the SectionFactory a real
// simulation hands to network.MakeBuilder.
func Factory(pfx prefix.Prefix) network.Section {
	return New(pfx)
}

// New creates an empty section owning pfx.
func New(pfx prefix.Prefix) *Section {
	return &Section{
		pfx:             pfx,
		nodes:           make(map[prefix.Address]*node.Node),
		incoming:        make(map[prefix.Address]uint),
		outgoing:        make(map[prefix.Address]prefix.Address),
		relocationTried: make(map[prefix.Address]struct{}),
	}
}

// Prefix returns the prefix the section is responsible for.
func (s *Section) Prefix() prefix.Prefix {
	return s.pfx
}

// Nodes returns the section's members, keyed by address. Callers must treat
// the returned map as read-only.
func (s *Section) Nodes() map[prefix.Address]*node.Node {
	return s.nodes
}

// InsertNode adds a node directly, bypassing admission. Used to seed the
// initial population and to move nodes during merge and split.
func (s *Section) InsertNode(n *node.Node) {
	s.nodes[n.Name()] = n
}

// EnqueueJoin queues a join attempt to be admitted or rejected by the next
// evaluation.
func (s *Section) EnqueueJoin(n *node.Node) {
	s.joins = append(s.joins, n)
}

// EnqueueLeave queues the departure of the node at name.
func (s *Section) EnqueueLeave(name prefix.Address) {
	s.leaves = append(s.leaves, name)
}

// Receive appends a delivered message to the inbox. Responses are emitted
// by the next evaluation round, never from inside the delivery.
func (s *Section) Receive(msg message.Message) {
	s.inbox = append(s.inbox, msg)
}

// Prepare resets the section's per-tick transient state and ages every node
// by one. It runs once per tick before the first evaluation round.
func (s *Section) Prepare() {
	s.structureEmitted = false
	s.relocationTried = make(map[prefix.Address]struct{})

	for _, n := range s.nodes {
		n.IncrementAge()
	}
}

// Evaluate runs one evaluation round and returns the actions the section
// wants resolved. A quiescent section returns nil, which is what lets the
// tick's fixpoint loop terminate.
func (s *Section) Evaluate(p *params.Params) []message.Action {
	var actions []message.Action

	inbox := s.inbox
	s.inbox = nil
	for _, msg := range inbox {
		actions = append(actions, s.handleMessage(p, msg)...)
	}

	joins := s.joins
	s.joins = nil
	for _, n := range joins {
		actions = append(actions, s.admit(p, n)...)
	}

	leaves := s.leaves
	s.leaves = nil
	for _, name := range leaves {
		s.applyLeave(name)
	}

	actions = append(actions, s.startRelocations(p)...)

	if a := s.decideStructure(p); a != nil {
		actions = append(actions, a)
	}

	return actions
}

func (s *Section) handleMessage(
	p *params.Params,
	msg message.Message,
) []message.Action {
	switch m := msg.(type) {
	case message.RelocateRequest:
		return s.handleRelocateRequest(p, m)
	case message.RelocateAccept:
		return s.handleRelocateAccept(m)
	case message.RelocateCancel:
		delete(s.outgoing, m.Name)
		return nil
	case message.RelocateAbort:
		delete(s.incoming, m.To)
		return nil
	case message.RelocateCommit:
		delete(s.incoming, m.Node.Name())
		s.nodes[m.Node.Name()] = m.Node
		return nil
	default:
		panic("unknown message type")
	}
}

func (s *Section) handleRelocateRequest(
	p *params.Params,
	m message.RelocateRequest,
) []message.Action {
	_, taken := s.nodes[m.To]
	_, reserved := s.incoming[m.To]
	if taken || reserved || len(s.nodes) > p.MaxSectionSize {
		return []message.Action{
			message.Reject{Name: m.Name},
			message.Send{Msg: message.RelocateCancel{Name: m.Name}},
		}
	}

	s.incoming[m.To] = m.Age
	return []message.Action{
		message.Send{Msg: message.RelocateAccept{Name: m.Name, To: m.To}},
	}
}

func (s *Section) handleRelocateAccept(
	m message.RelocateAccept,
) []message.Action {
	to, pending := s.outgoing[m.Name]
	if !pending || to != m.To {
		return nil
	}

	delete(s.outgoing, m.Name)

	n, ok := s.nodes[m.Name]
	if !ok {
		// The node left after the request went out. The target still holds
		// a reservation that would never commit, so release it.
		return []message.Action{
			message.Send{Msg: message.RelocateAbort{To: m.To}},
		}
	}

	delete(s.nodes, m.Name)
	relocated := node.New(m.To, n.Age()+1)

	return []message.Action{
		message.Send{Msg: message.RelocateCommit{Node: relocated}},
	}
}

func (s *Section) admit(p *params.Params, n *node.Node) []message.Action {
	_, taken := s.nodes[n.Name()]
	if taken || len(s.nodes) > p.MaxSectionSize {
		return []message.Action{message.Reject{Name: n.Name()}}
	}

	s.nodes[n.Name()] = n
	return nil
}

func (s *Section) applyLeave(name prefix.Address) {
	delete(s.nodes, name)
	delete(s.outgoing, name)
}

// startRelocations begins, at most once per tick per node, the relocation
// of every node whose age reached the adult threshold during this tick's
// Prepare.
func (s *Section) startRelocations(p *params.Params) []message.Action {
	var actions []message.Action

	for name, n := range s.nodes {
		if n.Age() != p.AdultAge {
			continue
		}

		if _, tried := s.relocationTried[name]; tried {
			continue
		}

		if _, pending := s.outgoing[name]; pending {
			continue
		}

		s.relocationTried[name] = struct{}{}

		to := relocationTarget(name, n.Age())
		s.outgoing[name] = to
		actions = append(actions, message.Send{
			Msg: message.RelocateRequest{To: to, Name: name, Age: n.Age()},
		})
	}

	return actions
}

// relocationTarget derives the destination address of a relocation from the
// node's current name and age. The derivation is a pure function, so the
// outcome does not depend on evaluation order.
func relocationTarget(name prefix.Address, age uint) prefix.Address {
	h := fnv.New64a()

	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(name >> (8 * i))
		buf[i+8] = byte(uint64(age) >> (8 * i))
	}
	_, _ = h.Write(buf[:])

	return prefix.Address(h.Sum64())
}

func (s *Section) decideStructure(p *params.Params) message.Action {
	if s.structureEmitted {
		return nil
	}

	if len(s.nodes) > p.MaxSectionSize && s.canSplit(p) {
		s.structureEmitted = true
		return message.Split{Source: s.pfx}
	}

	if len(s.nodes) < p.MinSectionSize && s.pfx != prefix.Root {
		s.structureEmitted = true
		return message.Merge{Target: s.pfx.Parent()}
	}

	return nil
}

// canSplit reports whether both halves of the section would be viable on
// their own. Requiring min+buffer nodes per child is what keeps a fresh
// child from immediately asking to merge back, so a tick cannot oscillate.
func (s *Section) canSplit(p *params.Params) bool {
	if s.pfx.Len() >= prefix.AddressBits {
		return false
	}

	children := s.pfx.Split()
	counts := [2]int{}
	for name := range s.nodes {
		if children[0].Matches(name) {
			counts[0]++
		} else {
			counts[1]++
		}
	}

	viable := p.MinSectionSize + p.SplitBuffer
	return counts[0] >= viable && counts[1] >= viable
}

// Merge folds other into s. The caller must not use other afterwards.
// other must be a *Section; the network only merges sections produced by
// the same factory.
func (s *Section) Merge(p *params.Params, o network.Section) {
	other := o.(*Section)

	for name, n := range other.nodes {
		s.nodes[name] = n
	}

	for to, age := range other.incoming {
		s.incoming[to] = age
	}

	for name, to := range other.outgoing {
		s.outgoing[name] = to
	}

	for name := range other.relocationTried {
		s.relocationTried[name] = struct{}{}
	}

	s.inbox = append(s.inbox, other.inbox...)
	s.joins = append(s.joins, other.joins...)
	s.leaves = append(s.leaves, other.leaves...)
}

// Split divides s into its two children, partitioning every piece of state
// by address. The caller must not use s afterwards.
func (s *Section) Split(p *params.Params) (network.Section, network.Section) {
	children := s.pfx.Split()
	s0 := New(children[0])
	s1 := New(children[1])

	pick := func(addr prefix.Address) *Section {
		if children[0].Matches(addr) {
			return s0
		}
		return s1
	}

	for name, n := range s.nodes {
		pick(name).nodes[name] = n
	}

	for to, age := range s.incoming {
		pick(to).incoming[to] = age
	}

	for name, to := range s.outgoing {
		pick(name).outgoing[name] = to
	}

	for name := range s.relocationTried {
		pick(name).relocationTried[name] = struct{}{}
	}

	for _, msg := range s.inbox {
		child := pick(msg.Target())
		child.inbox = append(child.inbox, msg)
	}

	for _, n := range s.joins {
		child := pick(n.Name())
		child.joins = append(child.joins, n)
	}

	for _, name := range s.leaves {
		child := pick(name)
		child.leaves = append(child.leaves, name)
	}

	return s0, s1
}

// IsComplete reports whether the section holds enough adult nodes to stand
// on its own.
func (s *Section) IsComplete(p *params.Params) bool {
	adults := 0
	for _, n := range s.nodes {
		if n.IsAdult(p) {
			adults++
		}
	}

	return adults >= p.MinSectionSize
}

// IncomingRelocations returns the reserved addresses of relocations that
// have been accepted but not yet committed, sorted for stable diagnostics.
func (s *Section) IncomingRelocations() []prefix.Address {
	return sortedKeys(s.incoming)
}

// OutgoingRelocations returns the addresses of nodes currently being
// relocated away, sorted for stable diagnostics.
func (s *Section) OutgoingRelocations() []prefix.Address {
	out := make([]prefix.Address, 0, len(s.outgoing))
	for name := range s.outgoing {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func sortedKeys(m map[prefix.Address]uint) []prefix.Address {
	out := make([]prefix.Address, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

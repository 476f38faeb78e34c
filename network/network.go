// Package network implements the structural core of the simulation: the
// partition map from prefixes to sections, the per-tick fixpoint loop that
// resolves the sections' structural actions, and the invariant validator
// that runs after every converged tick.
package network

import (
	"log"

	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
	"github.com/shardlab/prefixnet/stats"
)

// Verbose enables debug logging of benignly ignored actions.
var Verbose = false

func debugf(format string, args ...any) {
	if Verbose {
		log.Printf(format, args...)
	}
}

// A Network simulates the structural evolution of a sharded,
// prefix-addressed network. It owns the partition map exclusively; all
// mutation happens inside Tick.
type Network struct {
	params   *params.Params
	stats    *stats.Stats
	sections map[prefix.Prefix]Section
	factory  SectionFactory
}

// A Builder configures and creates a Network.
type Builder struct {
	params  *params.Params
	stats   *stats.Stats
	factory SectionFactory
}

// MakeBuilder creates a Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithParams sets the simulation parameters.
func (b Builder) WithParams(p *params.Params) Builder {
	b.params = p
	return b
}

// WithStats sets the statistics sink.
func (b Builder) WithStats(s *stats.Stats) Builder {
	b.stats = s
	return b
}

// WithSectionFactory sets the factory used for the initial root section and
// for freshly created merge targets.
func (b Builder) WithSectionFactory(f SectionFactory) Builder {
	b.factory = f
	return b
}

// Build creates a network with a single section at the root prefix.
func (b Builder) Build() *Network {
	if b.params == nil {
		panic("params must be set")
	}

	if b.factory == nil {
		panic("section factory must be set")
	}

	if b.stats == nil {
		b.stats = stats.NewStats()
	}

	n := &Network{
		params:   b.params,
		stats:    b.stats,
		sections: make(map[prefix.Prefix]Section),
		factory:  b.factory,
	}
	n.sections[prefix.Root] = b.factory(prefix.Root)

	return n
}

// Tick executes a single iteration of the simulation: prepare every
// section, resolve evaluation rounds until no section has anything left to
// do, record the tick's totals, and validate the invariants. The returned
// error, if any, is a *FatalError and the network must not be ticked again.
func (n *Network) Tick(iteration uint64) error {
	total := TickStats{}

	for _, section := range n.sections {
		section.Prepare()
	}

	maxRounds := n.roundCap()
	for round := 0; ; round++ {
		if round >= maxRounds {
			return fatalf(
				"tick %d did not converge within %d rounds",
				iteration, maxRounds)
		}

		collected := n.collectActions()
		if len(collected) == 0 {
			break
		}

		roundStats, err := n.handleActions(collected)
		if err != nil {
			return err
		}

		total = total.Add(roundStats)
	}

	n.stats.Record(
		iteration,
		n.TotalNodes(),
		uint64(len(n.sections)),
		total.Merges,
		total.Splits,
		total.Relocations,
		total.Rejections,
	)

	return n.validate()
}

// roundCap bounds the fixpoint loop. Exceeding it means the sections are
// oscillating, which is corruption, not slow convergence.
func (n *Network) roundCap() int {
	if n.params.MaxRoundsPerTick > 0 {
		return n.params.MaxRoundsPerTick
	}

	return int(n.TotalNodes()) + len(n.sections) + 16
}

// Stats returns the statistics sink.
func (n *Network) Stats() *stats.Stats {
	return n.stats
}

// Params returns the simulation parameters.
func (n *Network) Params() *params.Params {
	return n.params
}

// Sections exposes the partition map for reporting. Callers must treat it
// as read-only.
func (n *Network) Sections() map[prefix.Prefix]Section {
	return n.sections
}

// AddNode routes a join attempt to the section responsible for the node's
// address. Admission happens during the next tick.
func (n *Network) AddNode(nd *node.Node) error {
	section, err := n.findSection(nd.Name())
	if err != nil {
		return err
	}

	section.EnqueueJoin(nd)
	return nil
}

// DropNode routes the departure of the node at addr. Dropping an address
// with no node is a no-op.
func (n *Network) DropNode(addr prefix.Address) error {
	section, err := n.findSection(addr)
	if err != nil {
		return err
	}

	section.EnqueueLeave(addr)
	return nil
}

func (n *Network) findSection(addr prefix.Address) (Section, error) {
	for _, section := range n.sections {
		if section.Prefix().Matches(addr) {
			return section, nil
		}
	}

	return nil, fatalf("no section matching address %016x", uint64(addr))
}

// TotalNodes returns the population across all sections.
func (n *Network) TotalNodes() uint64 {
	total := uint64(0)
	for _, section := range n.sections {
		total += uint64(len(section.Nodes()))
	}

	return total
}

// NumSections returns the number of entries in the partition map.
func (n *Network) NumSections() int {
	return len(n.sections)
}

// NumCompleteSections counts the sections that can stand on their own.
func (n *Network) NumCompleteSections() uint64 {
	count := uint64(0)
	for _, section := range n.sections {
		if section.IsComplete(n.params) {
			count++
		}
	}

	return count
}

// AgeDistribution returns a histogram of node ages across the network.
func (n *Network) AgeDistribution() stats.Distribution {
	return stats.NewDistribution(n.nodeAges())
}

// AgeAggregator summarizes node ages across the network.
func (n *Network) AgeAggregator() stats.Aggregator {
	return stats.NewAggregator(n.nodeAges())
}

func (n *Network) nodeAges() []uint64 {
	ages := make([]uint64, 0, n.TotalNodes())
	for _, section := range n.sections {
		for _, nd := range section.Nodes() {
			ages = append(ages, uint64(nd.Age()))
		}
	}

	return ages
}

// SectionSizeAggregator summarizes section sizes.
func (n *Network) SectionSizeAggregator() stats.Aggregator {
	sizes := make([]uint64, 0, len(n.sections))
	for _, section := range n.sections {
		sizes = append(sizes, uint64(len(section.Nodes())))
	}

	return stats.NewAggregator(sizes)
}

// PrefixLenAggregator summarizes the depths of the current partition.
func (n *Network) PrefixLenAggregator() stats.Aggregator {
	lengths := make([]uint64, 0, len(n.sections))
	for pfx := range n.sections {
		lengths = append(lengths, uint64(pfx.Len()))
	}

	return stats.NewAggregator(lengths)
}

// Package churn injects node joins and departures into the network between
// ticks. The generator is fully determined by the seed in the parameters,
// so a run can be replayed exactly.
package churn

import (
	"math/rand"
	"sort"

	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
)

// A Generator produces the churn of one run.
type Generator struct {
	params *params.Params
	rng    *rand.Rand
}

// NewGenerator creates a generator seeded from the parameters.
func NewGenerator(p *params.Params) *Generator {
	return &Generator{
		params: p,
		rng:    rand.New(rand.NewSource(p.Seed)),
	}
}

// Step queues this tick's joins and drops on the network. It must be
// called between ticks, never while a tick is resolving.
func (g *Generator) Step(net *network.Network) error {
	for i := 0; i < g.params.JoinsPerTick; i++ {
		n := node.New(prefix.Address(g.rng.Uint64()), g.params.InitialAge)
		if err := net.AddNode(n); err != nil {
			return err
		}
	}

	for _, addr := range g.pickVictims(net) {
		if err := net.DropNode(addr); err != nil {
			return err
		}
	}

	return nil
}

// pickVictims selects the addresses to drop this tick. Iteration over the
// partition map is randomized by Go, so the candidates are sorted first to
// keep the selection reproducible across runs with the same seed.
func (g *Generator) pickVictims(net *network.Network) []prefix.Address {
	if g.params.DropsPerTick == 0 {
		return nil
	}

	var all []prefix.Address
	for _, s := range net.Sections() {
		for name := range s.Nodes() {
			all = append(all, name)
		}
	}

	if len(all) == 0 {
		return nil
	}

	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })

	victims := make([]prefix.Address, 0, g.params.DropsPerTick)
	for i := 0; i < g.params.DropsPerTick; i++ {
		victims = append(victims, all[g.rng.Intn(len(all))])
	}

	return victims
}

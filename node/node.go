// Package node models a single network member.
package node

import (
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
)

// A Node is one member of the network. Its name doubles as its position in
// the address space.
type Node struct {
	name prefix.Address
	age  uint
}

// New creates a node at the given address.
func New(name prefix.Address, age uint) *Node {
	return &Node{name: name, age: age}
}

// Name returns the node's address.
func (n *Node) Name() prefix.Address {
	return n.name
}

// Age returns the node's age.
func (n *Node) Age() uint {
	return n.age
}

// IncrementAge ages the node by one.
func (n *Node) IncrementAge() {
	n.age++
}

// IsAdult reports whether the node's age has reached the adult threshold.
func (n *Node) IsAdult(p *params.Params) bool {
	return n.age >= p.AdultAge
}

// CountMatchingAdults counts the adults among nodes whose address falls
// under pfx. The validator uses it to project the membership of a pending
// split.
func CountMatchingAdults(
	p *params.Params,
	pfx prefix.Prefix,
	nodes map[prefix.Address]*Node,
) int {
	count := 0
	for name, n := range nodes {
		if pfx.Matches(name) && n.IsAdult(p) {
			count++
		}
	}

	return count
}

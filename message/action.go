// Package message defines the actions a section emits during evaluation and
// the messages exchanged between sections while relocating nodes.
package message

import (
	"github.com/shardlab/prefixnet/prefix"
)

// An Action is a structural instruction produced by one evaluation round of
// a section. The set of actions is closed; the resolver matches on it
// exhaustively.
type Action interface {
	isAction()
}

// Reject records a discarded join or relocation attempt. It carries the
// address of the refused node and causes no topology change.
type Reject struct {
	Name prefix.Address
}

// Merge asks the resolver to fold every section below Target back into one
// section at Target.
type Merge struct {
	Target prefix.Prefix
}

// Split asks the resolver to divide the section at Source into its two
// child prefixes.
type Split struct {
	Source prefix.Prefix
}

// Send asks the resolver to deliver Msg to the section responsible for the
// message's target address.
type Send struct {
	Msg Message
}

func (Reject) isAction() {}
func (Merge) isAction()  {}
func (Split) isAction()  {}
func (Send) isAction()   {}

// Package prefix defines the address space of the simulated network and the
// bit-string prefixes that partition it.
package prefix

import (
	"errors"
	"fmt"
	"strings"
)

// An Address is a point in the network's address space.
type Address uint64

// AddressBits is the width of an Address in bits.
const AddressBits = 64

// A Prefix identifies one contiguous segment of the address space. It is an
// immutable value type and can be used as a map key. The zero value is the
// root prefix, which covers the whole space.
type Prefix struct {
	bits Address
	len  uint8
}

// Root is the prefix that covers the whole address space.
var Root = Prefix{}

// New creates a prefix from the top length bits of bits. The remaining bits
// are cleared so that equal prefixes compare equal.
func New(bits Address, length uint8) Prefix {
	if length > AddressBits {
		panic(fmt.Sprintf("prefix length %d out of range", length))
	}

	return Prefix{bits: bits & mask(length), len: length}
}

func mask(length uint8) Address {
	if length == 0 {
		return 0
	}

	return ^Address(0) << (AddressBits - length)
}

// Len returns the number of significant bits, which is also the depth of the
// prefix in the partition tree.
func (p Prefix) Len() uint8 {
	return p.len
}

// Matches reports whether addr falls inside the segment covered by p.
func (p Prefix) Matches(addr Address) bool {
	return addr&mask(p.len) == p.bits
}

// IsDescendantOf reports whether p covers a strict sub-segment of q.
func (p Prefix) IsDescendantOf(q Prefix) bool {
	return p.len > q.len && q.Matches(p.bits)
}

// IsAncestorOf reports whether q covers a strict sub-segment of p.
func (p Prefix) IsAncestorOf(q Prefix) bool {
	return q.IsDescendantOf(p)
}

// Extend appends one bit to the prefix. The bit must be 0 or 1.
func (p Prefix) Extend(bit uint8) Prefix {
	if bit > 1 {
		panic(fmt.Sprintf("bit must be 0 or 1, got %d", bit))
	}

	if p.len >= AddressBits {
		panic("cannot extend a full-length prefix")
	}

	bits := p.bits
	if bit == 1 {
		bits |= Address(1) << (AddressBits - 1 - p.len)
	}

	return Prefix{bits: bits, len: p.len + 1}
}

// Split returns the two child prefixes that exactly partition p.
func (p Prefix) Split() [2]Prefix {
	return [2]Prefix{p.Extend(0), p.Extend(1)}
}

// Parent returns the prefix one bit shorter than p. Calling Parent on the
// root prefix panics.
func (p Prefix) Parent() Prefix {
	if p.len == 0 {
		panic("root prefix has no parent")
	}

	return New(p.bits, p.len-1)
}

// Sibling returns the prefix that shares p's parent. Calling Sibling on the
// root prefix panics.
func (p Prefix) Sibling() Prefix {
	if p.len == 0 {
		panic("root prefix has no sibling")
	}

	flip := Address(1) << (AddressBits - p.len)

	return Prefix{bits: p.bits ^ flip, len: p.len}
}

// Substitute returns addr with its top Len bits replaced by p, keeping the
// rest. It maps an arbitrary address into p's segment.
func (p Prefix) Substitute(addr Address) Address {
	return p.bits | addr&^mask(p.len)
}

// String renders the significant bits as a binary string. The root prefix
// renders as an empty string.
func (p Prefix) String() string {
	var b strings.Builder
	for i := uint8(0); i < p.len; i++ {
		if p.bits&(Address(1)<<(AddressBits-1-i)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}

	return b.String()
}

// Parse converts a binary string, as produced by String, back to a Prefix.
func Parse(s string) (Prefix, error) {
	if len(s) > AddressBits {
		return Prefix{}, errors.New("prefix string too long")
	}

	p := Prefix{}
	for _, c := range s {
		switch c {
		case '0':
			p = p.Extend(0)
		case '1':
			p = p.Extend(1)
		default:
			return Prefix{}, fmt.Errorf("invalid character %q in prefix", c)
		}
	}

	return p, nil
}

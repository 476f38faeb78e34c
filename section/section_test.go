package section_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shardlab/prefixnet/message"
	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
	"github.com/shardlab/prefixnet/section"
)

var _ = Describe("Section", func() {
	var (
		p    params.Params
		root *section.Section
	)

	BeforeEach(func() {
		p = params.Default()
		p.MaxSectionSize = 4
		p.MinSectionSize = 2
		p.SplitBuffer = 0
		p.AdultAge = 100

		root = section.New(prefix.Root)
	})

	seed := func(age uint, addrs ...prefix.Address) {
		for _, a := range addrs {
			root.InsertNode(node.New(a, age))
		}
	}

	// deliver routes every Send in actions back into s and returns the
	// non-Send actions. With a single section the section is its own peer.
	deliver := func(s *section.Section,
		actions []message.Action,
	) []message.Action {
		var rest []message.Action
		for _, a := range actions {
			if send, ok := a.(message.Send); ok {
				s.Receive(send.Msg)
			} else {
				rest = append(rest, a)
			}
		}
		return rest
	}

	It("should age every node during prepare", func() {
		seed(3, 0x1000000000000000, 0x9000000000000000)

		root.Prepare()

		for _, n := range root.Nodes() {
			Expect(n.Age()).To(Equal(uint(4)))
		}
	})

	It("should admit queued joins", func() {
		root.Prepare()
		root.EnqueueJoin(node.New(0x1000000000000000, 1))

		actions := root.Evaluate(&p)

		Expect(actions).To(BeEmpty())
		Expect(root.Nodes()).To(HaveLen(1))
	})

	It("should reject joins beyond capacity", func() {
		seed(1,
			0x0100000000000000, 0x0200000000000000, 0x0300000000000000,
			0x0400000000000000, 0x0500000000000000)
		root.Prepare()
		root.EnqueueJoin(node.New(0x0600000000000000, 1))

		actions := root.Evaluate(&p)

		Expect(actions).To(ConsistOf(
			message.Reject{Name: 0x0600000000000000}))
		Expect(root.Nodes()).To(HaveLen(5))
	})

	It("should reject a join for an occupied address", func() {
		seed(1, 0x1000000000000000)
		root.Prepare()
		root.EnqueueJoin(node.New(0x1000000000000000, 1))

		actions := root.Evaluate(&p)

		Expect(actions).To(ConsistOf(
			message.Reject{Name: 0x1000000000000000}))
	})

	It("should apply queued leaves", func() {
		seed(1, 0x1000000000000000, 0x2000000000000000, 0x9000000000000000)
		root.Prepare()
		root.EnqueueLeave(0x1000000000000000)

		root.Evaluate(&p)

		Expect(root.Nodes()).To(HaveLen(2))
		Expect(root.Nodes()).NotTo(HaveKey(
			prefix.Address(0x1000000000000000)))
	})

	It("should split when oversized and both halves are viable", func() {
		seed(1,
			0x1000000000000000, 0x2000000000000000, 0x3000000000000000,
			0x9000000000000000, 0xA000000000000000, 0xB000000000000000)
		root.Prepare()

		actions := root.Evaluate(&p)

		Expect(actions).To(ConsistOf(
			message.Split{Source: prefix.Root}))

		// At most one structural action per tick.
		Expect(root.Evaluate(&p)).To(BeEmpty())
	})

	It("should not split while one half is unviable", func() {
		seed(1,
			0x0100000000000000, 0x0200000000000000, 0x0300000000000000,
			0x0400000000000000, 0x0500000000000000, 0x0600000000000000)
		root.Prepare()

		Expect(root.Evaluate(&p)).To(BeEmpty())
	})

	It("should ask to merge into the parent when undersized", func() {
		zero, _ := prefix.Parse("0")
		small := section.New(zero)
		small.InsertNode(node.New(0x1000000000000000, 1))
		small.Prepare()

		actions := small.Evaluate(&p)

		Expect(actions).To(ConsistOf(
			message.Merge{Target: prefix.Root}))
	})

	It("should never ask the root to merge", func() {
		seed(1, 0x1000000000000000)
		root.Prepare()

		Expect(root.Evaluate(&p)).To(BeEmpty())
	})

	Context("relocation", func() {
		It("should complete the handshake and clear both caches", func() {
			p.AdultAge = 2
			seed(1, 0x1000000000000000)
			root.Prepare()

			// Request, accept, commit, then quiescence. The single section
			// acts as both source and target.
			for i := 0; i < 4; i++ {
				rest := deliver(root, root.Evaluate(&p))
				Expect(rest).To(BeEmpty())
			}

			Expect(root.Evaluate(&p)).To(BeEmpty())
			Expect(root.IncomingRelocations()).To(BeEmpty())
			Expect(root.OutgoingRelocations()).To(BeEmpty())

			Expect(root.Nodes()).To(HaveLen(1))
			for name, n := range root.Nodes() {
				Expect(name).NotTo(Equal(
					prefix.Address(0x1000000000000000)))
				Expect(n.Age()).To(Equal(uint(3)))
			}
		})

		It("should refuse relocations into an overloaded section and keep "+
			"the node", func() {
			p.AdultAge = 2
			seed(1,
				0x0100000000000000, 0x0200000000000000, 0x0300000000000000,
				0x0400000000000000, 0x0500000000000000, 0x0600000000000000)
			root.Prepare()

			rejected := 0
			for i := 0; i < 5; i++ {
				for _, a := range deliver(root, root.Evaluate(&p)) {
					_, ok := a.(message.Reject)
					Expect(ok).To(BeTrue())
					rejected++
				}
			}

			Expect(rejected).To(Equal(6))
			Expect(root.Nodes()).To(HaveLen(6))
			Expect(root.IncomingRelocations()).To(BeEmpty())
			Expect(root.OutgoingRelocations()).To(BeEmpty())
		})
	})

	Context("merge and split", func() {
		It("should fold the other section's state on merge", func() {
			children := prefix.Root.Split()
			s0 := section.New(children[0])
			s1 := section.New(children[1])
			s0.InsertNode(node.New(0x1000000000000000, 1))
			s1.InsertNode(node.New(0x9000000000000000, 2))
			s1.EnqueueJoin(node.New(0xA000000000000000, 1))

			merged := section.New(prefix.Root)
			merged.Merge(&p, s0)
			merged.Merge(&p, s1)

			Expect(merged.Nodes()).To(HaveLen(2))

			merged.Prepare()
			merged.Evaluate(&p)
			Expect(merged.Nodes()).To(HaveLen(3))
		})

		It("should partition nodes and pending state on split", func() {
			seed(1,
				0x1000000000000000, 0x2000000000000000,
				0x9000000000000000, 0xA000000000000000)
			root.EnqueueJoin(node.New(0x3000000000000000, 1))
			root.EnqueueJoin(node.New(0xB000000000000000, 1))

			left, right := root.Split(&p)

			Expect(left.Nodes()).To(HaveLen(2))
			Expect(right.Nodes()).To(HaveLen(2))

			left.Prepare()
			right.Prepare()
			left.Evaluate(&p)
			right.Evaluate(&p)

			Expect(left.Nodes()).To(HaveKey(
				prefix.Address(0x3000000000000000)))
			Expect(right.Nodes()).To(HaveKey(
				prefix.Address(0xB000000000000000)))
		})
	})

	It("should report completeness from its adult population", func() {
		Expect(root.IsComplete(&p)).To(BeFalse())

		seed(p.AdultAge, 0x1000000000000000, 0x9000000000000000)
		Expect(root.IsComplete(&p)).To(BeTrue())
	})
})

var _ network.Section = (*section.Section)(nil)

package network_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/shardlab/prefixnet/message"
	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
)

var _ = Describe("Network", func() {
	var (
		mockCtrl *gomock.Controller
		p        params.Params
		root     *MockSection
		net      *network.Network
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		p = params.Default()

		root = NewMockSection(mockCtrl)
		root.EXPECT().Prefix().Return(prefix.Root).AnyTimes()

		net = network.MakeBuilder().
			WithParams(&p).
			WithSectionFactory(func(_ prefix.Prefix) network.Section {
				return root
			}).
			Build()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	nodes := func(addrs ...prefix.Address) map[prefix.Address]*node.Node {
		m := make(map[prefix.Address]*node.Node)
		for _, a := range addrs {
			m[a] = node.New(a, 1)
		}
		return m
	}

	It("should start with a single root section", func() {
		Expect(net.NumSections()).To(Equal(1))
		Expect(net.Sections()).To(HaveKey(prefix.Root))
	})

	It("should prepare, evaluate to quiescence, record, and validate", func() {
		root.EXPECT().Prepare()
		gomock.InOrder(
			root.EXPECT().Evaluate(&p).
				Return([]message.Action{message.Reject{Name: 1}}),
			root.EXPECT().Evaluate(&p).Return(nil),
		)
		root.EXPECT().Nodes().Return(nodes(1, 2)).AnyTimes()
		root.EXPECT().IncomingRelocations().Return(nil)
		root.EXPECT().OutgoingRelocations().Return(nil)

		Expect(net.Tick(3)).To(Succeed())

		rec, ok := net.Stats().Last()
		Expect(ok).To(BeTrue())
		Expect(rec.Iteration).To(Equal(uint64(3)))
		Expect(rec.Nodes).To(Equal(uint64(2)))
		Expect(rec.Sections).To(Equal(uint64(1)))
		Expect(rec.Rejections).To(Equal(uint64(1)))
	})

	It("should abort when a relocation cache survives convergence", func() {
		root.EXPECT().Prepare()
		root.EXPECT().Evaluate(&p).Return(nil)
		root.EXPECT().Nodes().Return(nodes(1)).AnyTimes()
		root.EXPECT().IncomingRelocations().
			Return([]prefix.Address{42})

		err := net.Tick(1)

		var fatal *network.FatalError
		Expect(err).To(HaveOccurred())
		Expect(errors.As(err, &fatal)).To(BeTrue())
	})

	It("should route joins and drops to the responsible section", func() {
		joined := node.New(0x4000000000000000, 1)
		root.EXPECT().EnqueueJoin(joined)
		root.EXPECT().EnqueueLeave(prefix.Address(0x4000000000000000))

		Expect(net.AddNode(joined)).To(Succeed())
		Expect(net.DropNode(0x4000000000000000)).To(Succeed())
	})

	It("should summarize ages and sizes across sections", func() {
		m := nodes(1, 2, 3)
		root.EXPECT().Nodes().Return(m).AnyTimes()

		Expect(net.TotalNodes()).To(Equal(uint64(3)))
		Expect(net.AgeAggregator().Count).To(Equal(uint64(3)))
		Expect(net.SectionSizeAggregator().Max).To(Equal(uint64(3)))
		Expect(net.PrefixLenAggregator().Max).To(Equal(uint64(0)))
	})
})

package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/node"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/prefix"
	"github.com/shardlab/prefixnet/section"
)

type fakeController struct {
	net       *network.Network
	iteration uint64
	paused    bool
}

func (c *fakeController) Pause()                    { c.paused = true }
func (c *fakeController) Continue()                 { c.paused = false }
func (c *fakeController) CurrentIteration() uint64  { return c.iteration }
func (c *fakeController) Network() *network.Network { return c.net }

var _ = Describe("Monitor", func() {
	var (
		p          params.Params
		controller *fakeController
		m          *Monitor
	)

	BeforeEach(func() {
		p = params.Default()

		net := network.MakeBuilder().
			WithParams(&p).
			WithSectionFactory(section.Factory).
			Build()

		root := net.Sections()[prefix.Root].(*section.Section)
		root.InsertNode(node.New(0x1000000000000000, 3))
		root.InsertNode(node.New(0x9000000000000000, 7))

		controller = &fakeController{net: net, iteration: 5}

		m = NewMonitor()
		m.RegisterController(controller)
	})

	It("should pause and continue the simulation", func() {
		m.pause(httptest.NewRecorder(), nil)
		Expect(controller.paused).To(BeTrue())

		m.resume(httptest.NewRecorder(), nil)
		Expect(controller.paused).To(BeFalse())
	})

	It("should report the current iteration", func() {
		w := httptest.NewRecorder()
		m.now(w, nil)

		Expect(w.Body.String()).To(MatchJSON(`{"iteration":5}`))
	})

	It("should list sections", func() {
		w := httptest.NewRecorder()
		m.listSections(w, nil)

		var rsp []sectionRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Prefix).To(Equal(""))
		Expect(rsp[0].Size).To(Equal(2))
	})

	It("should report recorded statistics", func() {
		controller.net.Stats().Record(1, 2, 1, 0, 0, 0, 0)

		w := httptest.NewRecorder()
		m.listStats(w, nil)

		var rsp []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
	})

	It("should summarize distributions", func() {
		w := httptest.NewRecorder()
		m.listDistributions(w, nil)

		var rsp distributionsRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Age).To(ContainSubstring("n=2"))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("ticks", 100)
		bar.IncrementFinished(10)

		w := httptest.NewRecorder()
		m.listProgressBars(w, nil)

		var rsp []map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0]["finished"]).To(BeEquivalentTo(10))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})

// Package monitoring turns a running simulation into a small web server so
// its progress and partition state can be watched and controlled from
// outside the process.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	// Enable profiling endpoints.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/shardlab/prefixnet/network"
)

// A Controller is the surface of the simulation the monitor drives.
type Controller interface {
	// Pause blocks the tick loop before the next tick.
	Pause()

	// Continue resumes a paused tick loop.
	Continue()

	// CurrentIteration returns the id of the last completed tick.
	CurrentIteration() uint64

	// Network returns the simulated network for read-only inspection.
	Network() *network.Network
}

// Monitor exposes a simulation over HTTP.
type Monitor struct {
	controller  Controller
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port the monitor listens on.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in the default browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterController registers the simulation to be monitored.
func (m *Monitor) RegisterController(c Controller) {
	m.controller = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a finished bar.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts serving the monitoring API.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pause)
	r.HandleFunc("/api/continue", m.resume)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/stats", m.listStats)
	r.HandleFunc("/api/sections", m.listSections)
	r.HandleFunc("/api/section/{prefix}", m.sectionDetails)
	r.HandleFunc("/api/distributions", m.listDistributions)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	if m.openBrowser {
		_ = browser.OpenURL(url)
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.controller.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) resume(w http.ResponseWriter, _ *http.Request) {
	m.controller.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"iteration\":%d}", m.controller.CurrentIteration())
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	records := m.controller.Network().Stats().Records()

	bytes, err := json.Marshal(records)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type sectionRsp struct {
	Prefix   string `json:"prefix"`
	Size     int    `json:"size"`
	Complete bool   `json:"complete"`
}

func (m *Monitor) listSections(w http.ResponseWriter, _ *http.Request) {
	net := m.controller.Network()

	rsp := make([]sectionRsp, 0, net.NumSections())
	for pfx, section := range net.Sections() {
		rsp = append(rsp, sectionRsp{
			Prefix:   pfx.String(),
			Size:     len(section.Nodes()),
			Complete: section.IsComplete(net.Params()),
		})
	}
	sort.Slice(rsp, func(i, j int) bool {
		return rsp[i].Prefix < rsp[j].Prefix
	})

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) sectionDetails(w http.ResponseWriter, r *http.Request) {
	pfxString := mux.Vars(r)["prefix"]
	if pfxString == "root" {
		pfxString = ""
	}

	section := m.findSectionOr404(w, pfxString)
	if section == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(section)
	serializer.SetMaxDepth(2)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findSectionOr404(
	w http.ResponseWriter,
	pfxString string,
) network.Section {
	for pfx, section := range m.controller.Network().Sections() {
		if pfx.String() == pfxString {
			return section
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Section not found"))
	dieOnErr(err)

	return nil
}

type distributionsRsp struct {
	Age         string `json:"age"`
	SectionSize string `json:"section_size"`
	PrefixLen   string `json:"prefix_len"`
}

func (m *Monitor) listDistributions(w http.ResponseWriter, _ *http.Request) {
	net := m.controller.Network()

	rsp := distributionsRsp{
		Age:         net.AgeAggregator().String(),
		SectionSize: net.SectionSizeAggregator().String(),
		PrefixLen:   net.PrefixLenAggregator().String(),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	marshaled, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(marshaled)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}

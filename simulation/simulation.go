// Package simulation wires the network, churn, statistics, recording, and
// monitoring together into a runnable simulation.
package simulation

import (
	"sync"

	"github.com/rs/xid"

	"github.com/shardlab/prefixnet/churn"
	"github.com/shardlab/prefixnet/datarecording"
	"github.com/shardlab/prefixnet/monitoring"
	"github.com/shardlab/prefixnet/network"
	"github.com/shardlab/prefixnet/params"
	"github.com/shardlab/prefixnet/section"
	"github.com/shardlab/prefixnet/stats"
)

var _ monitoring.Controller = (*Simulation)(nil)

// A Simulation owns everything one run needs.
type Simulation struct {
	params   params.Params
	net      *network.Network
	churn    *churn.Generator
	stats    *stats.Stats
	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor

	pauseLock sync.Mutex
	pauseCond *sync.Cond
	paused    bool
	iteration uint64
}

// A Builder configures and creates a Simulation.
type Builder struct {
	params   params.Params
	recorder datarecording.DataRecorder
	record   bool
	monitor  *monitoring.Monitor
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{params: params.Default()}
}

// WithParams sets the simulation parameters.
func (b Builder) WithParams(p params.Params) Builder {
	b.params = p
	return b
}

// WithRecording streams tick statistics into a fresh SQLite database.
func (b Builder) WithRecording() Builder {
	b.record = true
	return b
}

// WithRecorder streams tick statistics into the given backend.
func (b Builder) WithRecorder(rec datarecording.DataRecorder) Builder {
	b.recorder = rec
	return b
}

// WithMonitor attaches a monitoring server.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// Build creates the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.params.Validate(); err != nil {
		return nil, err
	}

	s := &Simulation{
		params:   b.params,
		stats:    stats.NewStats(),
		recorder: b.recorder,
		monitor:  b.monitor,
	}
	s.pauseCond = sync.NewCond(&s.pauseLock)

	if b.record && s.recorder == nil {
		s.recorder = datarecording.NewSQLiteRecorder(
			"prefixnet_run_" + xid.New().String())
	}

	if s.recorder != nil {
		s.stats.StreamTo(s.recorder)
	}

	s.net = network.MakeBuilder().
		WithParams(&s.params).
		WithStats(s.stats).
		WithSectionFactory(section.Factory).
		Build()

	s.churn = churn.NewGenerator(&s.params)

	if s.monitor != nil {
		s.monitor.RegisterController(s)
		s.monitor.StartServer()
	}

	return s, nil
}

// Run executes the configured number of ticks. It stops at the first fatal
// error and returns it.
func (s *Simulation) Run() error {
	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("ticks", s.params.Iterations)
	}

	for i := uint64(1); i <= s.params.Iterations; i++ {
		s.waitIfPaused()

		if err := s.churn.Step(s.net); err != nil {
			return err
		}

		if err := s.net.Tick(i); err != nil {
			return err
		}

		s.setIteration(i)
		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	if s.monitor != nil && bar != nil {
		s.monitor.CompleteProgressBar(bar)
	}

	return nil
}

// Network returns the simulated network.
func (s *Simulation) Network() *network.Network {
	return s.net
}

// Stats returns the statistics sink.
func (s *Simulation) Stats() *stats.Stats {
	return s.stats
}

// Pause blocks the tick loop before the next tick.
func (s *Simulation) Pause() {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	s.paused = true
}

// Continue resumes a paused tick loop.
func (s *Simulation) Continue() {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	s.paused = false
	s.pauseCond.Broadcast()
}

// CurrentIteration returns the id of the last completed tick.
func (s *Simulation) CurrentIteration() uint64 {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	return s.iteration
}

func (s *Simulation) setIteration(i uint64) {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	s.iteration = i
}

func (s *Simulation) waitIfPaused() {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	for s.paused {
		s.pauseCond.Wait()
	}
}

// Terminate flushes and closes the recording backend.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		s.recorder.Close()
	}
}

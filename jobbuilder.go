package sandflow

import (
	"context"
	"sync"

	"github.com/bmmcq/sandflow/internal/workerlocal"
	"golang.org/x/sync/errgroup"
)

func installWorkerLocal(idx int) { workerlocal.Set(idx) }
func clearWorkerLocal()          { workerlocal.Clear() }

// exchangeChannelSet is what one Allocate[T] call at a given port produces:
// N channelStates (one inbox per lane) shared by every one of the job's N
// JobBuilders. Grounded on channels/local.rs::alloc.
type exchangeChannelSet struct {
	sinksPerLane [][]any // sinksPerLane[lane] is that lane's []*LaneSink[T], stored as any
	sources      []any   // sources[lane] is that lane's *LaneSource[T], stored as any
}

// exchangeTable is shared across every JobBuilder of one job, keyed by port
// number, so that every lane's call to Allocate[T] at the same port
// observes the same N-wide channel set — only the first lane to reach a
// port actually materializes it.
type exchangeTable struct {
	mu         sync.Mutex
	byPort     map[uint64]*exchangeChannelSet
	capacity   int
	parallelism int
}

func newExchangeTable(parallelism, capacity int) *exchangeTable {
	return &exchangeTable{
		byPort:      make(map[uint64]*exchangeChannelSet),
		capacity:    capacity,
		parallelism: parallelism,
	}
}

// JobBuilder accumulates one lane's stage list and allocates exchange
// channels from the job-wide exchangeTable. Grounded on flow.rs::SandFlowBuilder.
type JobBuilder struct {
	jobID       uint64
	parallelism int
	laneIndex   int
	hook        *ErrorHook
	table       *exchangeTable
	nextPort    uint64
	stages      []*Stage
	opts        jobBuilderOptions
}

// NewJobBuilder constructs the JobBuilder for one lane of a job. table must
// be shared by every lane's JobBuilder within the same job (see Spawn/
// SpawnJob).
func NewJobBuilder(jobID uint64, parallelism, laneIndex int, hook *ErrorHook, table *exchangeTable, opts ...JobBuilderOption) *JobBuilder {
	return &JobBuilder{
		jobID:       jobID,
		parallelism: parallelism,
		laneIndex:   laneIndex,
		hook:        hook,
		table:       table,
		opts:        resolveJobBuilderOptions(opts),
	}
}

// AddStage appends a new Stage wrapping run to this lane's stage list, in
// append order, matching flow.rs::SandFlowBuilder.add_stage.
func (b *JobBuilder) AddStage(run func(context.Context) error) {
	b.stages = append(b.stages, &Stage{
		jobID:    b.jobID,
		workerID: b.laneIndex,
		stageID:  len(b.stages),
		run:      run,
		hook:     b.hook,
	})
}

// Allocate materializes (or reuses, if another lane got there first) the
// exchange-channel set at this builder's next port, and returns this lane's
// own N-wide sink slice (one LaneSink[T] per destination lane, including
// itself) and its own LaneSource[T] (the inbox only this lane receives
// from). Grounded on channels/local.rs::alloc, realized across N
// independent per-lane JobBuilders via the shared exchangeTable.
func Allocate[T any](b *JobBuilder) ([]*LaneSink[T], *LaneSource[T]) {
	port := b.nextPort
	b.nextPort++

	capacity := b.table.capacity
	if b.opts.channelCap > 0 {
		capacity = b.opts.channelCap
	}

	b.table.mu.Lock()
	set, ok := b.table.byPort[port]
	if !ok {
		set = &exchangeChannelSet{
			sinksPerLane: make([][]any, b.table.parallelism),
			sources:      make([]any, b.table.parallelism),
		}
		// one channelState (inbox) per destination lane, each shared by N sinks
		for dest := 0; dest < b.table.parallelism; dest++ {
			sinks, source := newLaneChannelSet[T](b.table.parallelism, capacity)
			for src := 0; src < b.table.parallelism; src++ {
				set.sinksPerLane[src] = append(set.sinksPerLane[src], sinks[src])
			}
			set.sources[dest] = source
		}
		b.table.byPort[port] = set
	}
	b.table.mu.Unlock()

	laneSinksAny := set.sinksPerLane[b.laneIndex]
	laneSinks := make([]*LaneSink[T], len(laneSinksAny))
	for i, s := range laneSinksAny {
		laneSinks[i] = s.(*LaneSink[T])
	}
	laneSource := set.sources[b.laneIndex].(*LaneSource[T])
	return laneSinks, laneSource
}

// JobRun is the drained, buildable form of a JobBuilder's stage list.
// Grounded on flow.rs::SandFlowBuilder.build, which joins every stage
// future via futures::future::join_all; this translation joins every
// Stage's goroutine via an errgroup, run on the job's Executor.
type JobRun struct {
	laneIndex int
	stages    []*Stage
}

// Build drains b's accumulated stages into a JobRun, leaving b empty.
func (b *JobBuilder) Build() *JobRun {
	run := &JobRun{laneIndex: b.laneIndex, stages: b.stages}
	b.stages = nil
	return run
}

// Run executes every stage of this lane on exec, installing the lane's
// workerlocal index for their duration (flow.rs's WorkerIndexGuard), and
// blocks until every stage goroutine returns.
func (r *JobRun) Run(ctx context.Context, exec Executor) {
	var g errgroup.Group
	for _, stage := range r.stages {
		stage := stage
		g.Go(func() error {
			done := make(chan struct{})
			exec.Submit(func() {
				defer close(done)
				installWorkerLocal(r.laneIndex)
				defer clearWorkerLocal()
				stage.Run(ctx)
			})
			<-done
			return nil
		})
	}
	_ = g.Wait()
}

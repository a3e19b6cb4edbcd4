package sandflow

import (
	"context"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

const defaultParallelismEnvVar = "SANDFLOW_DEFAULT_PARALLEL"

var jobIDCounter atomic.Uint64

func nextJobID() uint64 { return jobIDCounter.Add(1) }

func defaultParallelism() int {
	if v, ok := os.LookupEnv(defaultParallelismEnvVar); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			return int(n)
		}
	}
	return 2
}

// Spawn builds and runs a job with an internally generated job id and a
// parallelism resolved from (in priority order) WithParallelism,
// SANDFLOW_DEFAULT_PARALLEL, or the default of 2. Matches spec.md §4.K.
func Spawn[DI, DO any](ctx context.Context, source Source[DI], build func() func(*Pipeline[DI]) *Pipeline[DO], opts ...SpawnOption) (*ResultStream[DO], error) {
	resolved := resolveSpawnOptions(opts)
	parallelism := resolved.parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism()
	}
	return SpawnJob[DI, DO](ctx, nextJobID(), parallelism, source, build, opts...)
}

// SpawnJob builds and runs a job with an explicit job id and parallelism.
// It creates parallelism bounded input channels, fans source into them via
// a round-robin SourceStage, builds one Pipeline per lane from the
// caller-supplied build factory (invoked once per lane, so per-lane
// closures may carry independent state), forwards every lane's output into
// one shared output channel, and returns a ResultStream reading that
// channel. Grounded on sandflow/src/lib.rs::spawn.
func SpawnJob[DI, DO any](ctx context.Context, jobID uint64, parallelism int, source Source[DI], build func() func(*Pipeline[DI]) *Pipeline[DO], opts ...SpawnOption) (*ResultStream[DO], error) {
	if parallelism <= 0 {
		return nil, NewMessageError("sandflow: parallelism must be positive")
	}
	if source == nil {
		return nil, NewMessageError("sandflow: nil source")
	}
	if build == nil {
		return nil, NewMessageError("sandflow: nil build func")
	}

	resolved := resolveSpawnOptions(opts)
	exec := resolved.executor
	if exec == nil {
		exec = DefaultExecutor()
	}
	channelCap := resolved.channelCap
	if channelCap <= 0 {
		channelCap = DefaultChannelCapacity
	}

	jobCtx, cancel := context.WithCancelCause(ctx)
	hook := NewErrorHook(cancel)
	table := newExchangeTable(parallelism, channelCap)

	// one inbox channel per lane, fed exclusively by the source fan-in stage
	inboxSinks := make([]*LaneSink[DI], parallelism)
	inboxSources := make([]*LaneSource[DI], parallelism)
	for i := 0; i < parallelism; i++ {
		sinks, src := newLaneChannelSet[DI](1, channelCap)
		inboxSinks[i] = sinks[0]
		inboxSources[i] = src
	}
	roundRobinSink := NewRoundRobinSelectSink[DI](inboxSinks)

	// one shared output channel, fed by every lane's final forward
	outputSinks, outputSource := newLaneChannelSet[DO](parallelism, channelCap)

	currentLogger().jobSpawned(jobID, parallelism)

	var wg sync.WaitGroup

	sourceStage := &SourceStage{
		jobID: jobID,
		hook:  hook,
		run: func(ctx context.Context) error {
			return runMultiForward[DI](ctx, source, roundRobinSink)
		},
	}
	wg.Add(1)
	exec.Submit(func() {
		defer wg.Done()
		sourceStage.Run(jobCtx)
	})

	for i := 0; i < parallelism; i++ {
		laneIndex := i
		builder := NewJobBuilder(jobID, parallelism, laneIndex, hook, table)
		lanePipeline := newPipeline[DI](builder, &laneSourceAdapter[DI]{recv: inboxSources[laneIndex]})
		outPipeline := build()(lanePipeline)
		outSink := outputSinks[laneIndex]
		builder.AddStage(func(ctx context.Context) error {
			return outPipeline.Forward(ctx, SinkFunc[DO](func(ctx context.Context, item DO) error {
				return outSink.Send(ctx, item)
			}))
		})

		run := builder.Build()
		// run.Run blocks (joining this lane's stage goroutines), so it is
		// launched on a plain goroutine rather than submitted to exec: the
		// bounded Executor is reserved for leaf stage work, never for
		// orchestration goroutines that themselves wait on further
		// Executor.Submit calls, which would risk exhausting the pool.
		wg.Add(1)
		go func() {
			defer wg.Done()
			run.Run(jobCtx, exec)
		}()
	}

	go func() {
		wg.Wait()
		// the output channel closes only once every stage has returned, so a
		// stage's error is in the hook before ResultStream sees end-of-stream
		for _, s := range outputSinks {
			s.Close()
		}
		cancel(nil)
	}()

	return NewResultStream[DO](outputSource, hook), nil
}

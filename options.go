package sandflow

// Functional options following eventloop/options.go's loopOptionImpl
// pattern: an unexported options struct, a public interface per
// configurable entity, and constructors returning an impl that mutates the
// struct through a closure.

type spawnOptions struct {
	parallelism int
	jobID       *uint64
	executor    Executor
	channelCap  int
}

// SpawnOption configures a Spawn/SpawnJob call.
type SpawnOption interface {
	applySpawn(*spawnOptions)
}

type spawnOptionImpl struct {
	applySpawnFunc func(*spawnOptions)
}

func (o spawnOptionImpl) applySpawn(opts *spawnOptions) { o.applySpawnFunc(opts) }

// WithParallelism overrides the number of lanes a job runs with, taking
// precedence over SANDFLOW_DEFAULT_PARALLEL.
func WithParallelism(n int) SpawnOption {
	return spawnOptionImpl{func(o *spawnOptions) { o.parallelism = n }}
}

// WithExecutor supplies the Executor a job's stages run on, overriding the
// process-wide default Executor.
func WithExecutor(e Executor) SpawnOption {
	return spawnOptionImpl{func(o *spawnOptions) { o.executor = e }}
}

// WithChannelCapacity overrides DefaultChannelCapacity for every exchange
// channel allocated by the job.
func WithChannelCapacity(capacity int) SpawnOption {
	return spawnOptionImpl{func(o *spawnOptions) { o.channelCap = capacity }}
}

func resolveSpawnOptions(opts []SpawnOption) spawnOptions {
	resolved := spawnOptions{channelCap: DefaultChannelCapacity}
	for _, o := range opts {
		if o != nil {
			o.applySpawn(&resolved)
		}
	}
	return resolved
}

type jobBuilderOptions struct {
	channelCap int
}

// JobBuilderOption configures a single JobBuilder.
type JobBuilderOption interface {
	applyJobBuilder(*jobBuilderOptions)
}

type jobBuilderOptionImpl struct {
	applyJobBuilderFunc func(*jobBuilderOptions)
}

func (o jobBuilderOptionImpl) applyJobBuilder(opts *jobBuilderOptions) { o.applyJobBuilderFunc(opts) }

// WithBuilderChannelCapacity overrides the capacity used by this builder's
// own Allocate calls, independent of the job-level WithChannelCapacity.
func WithBuilderChannelCapacity(capacity int) JobBuilderOption {
	return jobBuilderOptionImpl{func(o *jobBuilderOptions) { o.channelCap = capacity }}
}

func resolveJobBuilderOptions(opts []JobBuilderOption) jobBuilderOptions {
	// channelCap left at zero value (unset) so Allocate falls back to the
	// job-wide exchangeTable capacity unless WithBuilderChannelCapacity
	// explicitly overrides it for this one builder.
	var resolved jobBuilderOptions
	for _, o := range opts {
		if o != nil {
			o.applyJobBuilder(&resolved)
		}
	}
	return resolved
}

type executorOptions struct {
	workers int
}

// ExecutorOption configures NewFixedExecutor.
type ExecutorOption interface {
	applyExecutor(*executorOptions)
}

type executorOptionImpl struct {
	applyExecutorFunc func(*executorOptions)
}

func (o executorOptionImpl) applyExecutor(opts *executorOptions) { o.applyExecutorFunc(opts) }

// WithWorkerCount overrides the fixed pool size of an Executor (default 16).
func WithWorkerCount(n int) ExecutorOption {
	return executorOptionImpl{func(o *executorOptions) { o.workers = n }}
}

func resolveExecutorOptions(opts []ExecutorOption) executorOptions {
	resolved := executorOptions{workers: 16}
	for _, o := range opts {
		if o != nil {
			o.applyExecutor(&resolved)
		}
	}
	return resolved
}

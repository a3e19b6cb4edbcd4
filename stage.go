package sandflow

import "context"

// Stage wraps one lane future (a blocking run function), short-circuiting
// on the job's ErrorHook before ever starting. Grounded on
// stages/mod.rs::AsyncStage.
type Stage struct {
	jobID    uint64
	workerID int
	stageID  int
	run      func(context.Context) error
	hook     *ErrorHook
}

// Run executes the stage: if the job already has a fatal error recorded, it
// short-circuits without running; otherwise it runs, and on error, submits
// that error to the shared ErrorHook (recording it if it is the first, or
// logging it as rejected otherwise).
func (s *Stage) Run(ctx context.Context) {
	logger := currentLogger()
	if s.hook.HasError() {
		logger.stageShortCircuited(s.jobID, s.workerID, s.stageID)
		return
	}
	logger.stageStarted(s.jobID, s.workerID, s.stageID)
	err := s.run(ctx)
	if err != nil {
		if rejected := s.hook.Set(err); rejected != nil {
			logger.stageErrorRejected(s.jobID, s.workerID, s.stageID, rejected)
		} else {
			logger.stageFailed(s.jobID, s.workerID, s.stageID, err)
		}
		return
	}
	logger.stageCompleted(s.jobID, s.workerID, s.stageID)
}

// SourceStage is the job-wide source fan-in stage, keyed only by jobID (no
// per-lane workerID/stageID), matching stages/source.rs::SourceStage.
type SourceStage struct {
	jobID uint64
	run   func(context.Context) error
	hook  *ErrorHook
}

// Run executes the source stage with the same short-circuit/error-hook
// semantics as Stage.Run.
func (s *SourceStage) Run(ctx context.Context) {
	logger := currentLogger()
	if s.hook.HasError() {
		logger.sourceShortCircuited(s.jobID)
		return
	}
	logger.sourceStarted(s.jobID)
	err := s.run(ctx)
	if err != nil {
		if rejected := s.hook.Set(err); rejected != nil {
			logger.sourceErrorRejected(s.jobID, rejected)
		} else {
			logger.sourceFailed(s.jobID, err)
		}
		return
	}
	logger.sourceCompleted(s.jobID)
}

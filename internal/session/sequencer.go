// Package session drives the ordered stages of one training session:
// environment checks, optional restore, checkpoint resolution, tokenizer
// bootstrap, concurrent dataset continuation, training, and the optional
// evaluation and fine-tuning stages.
//
// Every stage is an external collaborator with an exit-code contract. A
// non-zero stage aborts the session and its code becomes the session's exit
// code; the supervisor's cleanup still runs on every path because main
// routes the returned code through it.
package session

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/modelsmith/speedrun/internal/banner"
	"github.com/modelsmith/speedrun/internal/checkpoint"
	"github.com/modelsmith/speedrun/internal/collab"
	"github.com/modelsmith/speedrun/internal/config"
	"github.com/modelsmith/speedrun/internal/exitcode"
	"github.com/modelsmith/speedrun/internal/logging"
	"github.com/modelsmith/speedrun/internal/notification"
	"github.com/modelsmith/speedrun/internal/state"
)

// Restorer is the slice of the backup agent the sequencer needs at startup.
type Restorer interface {
	RestoreIfNeeded(ctx context.Context) (restored bool, err error)
}

// SyncStarter launches the background sync loop; the supervisor implements
// it and remains the sole owner of the loop's lifetime.
type SyncStarter interface {
	StartBackgroundSync(ctx context.Context)
}

// requiredTools are the interpreters every collaborator runs under.
var requiredTools = []string{"python", "torchrun"}

// Sequencer runs the session's stage state machine.
type Sequencer struct {
	Config *config.Config

	Trainer   collab.Trainer
	Tokenizer collab.TokenizerTrainer
	Dataset   collab.DatasetDownloader
	BaseEval  collab.Evaluator
	FineTuner collab.FineTuner
	ChatEval  collab.Evaluator
	Reporter  collab.Reporter

	Restorer Restorer
	Sync     SyncStarter

	CommandChecker collab.CommandChecker

	session   *state.SessionState
	stateDir  string
	startTime time.Time

	// Resume marker, resolved once after restore and never recomputed.
	resumeStep  int
	resumeFound bool
}

// NewSequencer creates a sequencer with the given config. Collaborators are
// wired by the caller.
func NewSequencer(cfg *config.Config) *Sequencer {
	return &Sequencer{
		Config:   cfg,
		stateDir: filepath.Join(cfg.LocalRoot, state.DirName),
	}
}

// ResumeStep reports the resolved resume marker (-1 when fresh). Valid after
// Run has passed checkpoint resolution.
func (s *Sequencer) ResumeStep() int {
	if !s.resumeFound {
		return -1
	}
	return s.resumeStep
}

// Run executes the stage state machine and returns the session exit code.
func (s *Sequencer) Run(ctx context.Context) int {
	s.startTime = time.Now()
	s.resumeStep = -1

	if code := s.phaseInit(); code >= 0 {
		return code
	}
	defer s.setLifecycle(state.LifecycleCleaningUp)

	if code := s.phaseCommandChecks(); code >= 0 {
		return code
	}
	if code := s.phaseRestore(ctx); code >= 0 {
		return code
	}
	s.phaseResolve()
	s.phaseBanner()
	s.setLifecycle(state.LifecycleRunning)

	s.Sync.StartBackgroundSync(ctx)

	if code := s.runStage(ctx, "dataset_bootstrap", func(ctx context.Context) error {
		logging.Stagef("Downloading bootstrap dataset (%d shards)", s.Config.DatasetBootstrapShards)
		return s.Dataset.Download(ctx, s.Config.DatasetBootstrapShards)
	}); code >= 0 {
		return code
	}

	if code := s.phaseTokenizer(ctx); code >= 0 {
		return code
	}

	// Remaining shards download concurrently with the stages below; the
	// barrier before training joins it.
	datasetDone, stopDataset := s.startDatasetContinuation(ctx)
	defer stopDataset()

	if code := s.phaseReportReset(ctx); code >= 0 {
		// The continuation task must not outlive the session.
		stopDataset()
		<-datasetDone
		return code
	}
	if code := s.phaseDatasetBarrier(ctx, datasetDone); code >= 0 {
		return code
	}

	if code := s.runStage(ctx, "base_train", func(ctx context.Context) error {
		if s.resumeFound {
			logging.Stagef("Training (resuming from step %d)", s.resumeStep)
			return s.Trainer.Train(ctx, s.resumeStep)
		}
		logging.Stage("Training (fresh run)")
		return s.Trainer.Train(ctx, -1)
	}); code >= 0 {
		return code
	}

	if s.Config.EvalEnabled {
		if code := s.runStage(ctx, "base_eval", func(ctx context.Context) error {
			logging.Stage("Evaluating base model")
			return s.BaseEval.Evaluate(ctx)
		}); code >= 0 {
			return code
		}
	} else {
		logging.Info("Evaluation disabled, skipping")
	}

	if s.Config.SFTEnabled {
		if code := s.runStage(ctx, "chat_sft", func(ctx context.Context) error {
			logging.Stage("Supervised fine-tuning")
			return s.FineTuner.FineTune(ctx)
		}); code >= 0 {
			return code
		}
	} else {
		logging.Info("Fine-tuning disabled, skipping")
	}

	if s.Config.SFTEnabled && s.Config.ChatEvalEnabled {
		if code := s.runStage(ctx, "chat_eval", func(ctx context.Context) error {
			logging.Stage("Evaluating fine-tuned model")
			return s.ChatEval.Evaluate(ctx)
		}); code >= 0 {
			return code
		}
	} else if s.Config.ChatEvalEnabled {
		logging.Info("Chat evaluation skipped (fine-tuning disabled)")
	} else {
		logging.Info("Chat evaluation disabled, skipping")
	}

	if code := s.runStage(ctx, "report_generate", func(ctx context.Context) error {
		logging.Stage("Generating report")
		return s.Reporter.Generate(ctx)
	}); code >= 0 {
		return code
	}

	return s.finish()
}

// MarkTerminated records the final lifecycle state and exit code after the
// supervisor's cleanup has run.
func (s *Sequencer) MarkTerminated(code int) {
	if s.session == nil {
		return
	}
	s.session.Lifecycle = state.LifecycleTerminated
	s.session.ExitCode = code
	if err := state.SaveState(s.session, s.stateDir); err != nil {
		logging.Warnf("Failed to save terminated state: %v", err)
	}
}

func (s *Sequencer) phaseInit() int {
	if s.Config.Status {
		existing, err := state.LoadState(s.stateDir)
		if err != nil {
			logging.Info("No session record found.")
			return exitcode.Success
		}
		banner.PrintStatusBanner(existing.SessionID, existing.RunTag, existing.Lifecycle,
			existing.StartedAt, existing.LastUpdated, existing.ResumeStep)
		return exitcode.Success
	}

	if s.Config.Clean {
		logging.Info("Cleaning state directory...")
		if err := os.RemoveAll(s.stateDir); err != nil {
			logging.Warnf("Failed to remove state directory: %v", err)
		}
	}

	if err := os.MkdirAll(s.Config.LocalRoot, 0755); err != nil {
		logging.Errorf("Failed to create local state root: %v", err)
		return exitcode.Error
	}
	if err := state.InitStateDir(s.stateDir); err != nil {
		logging.Errorf("Failed to init state dir: %v", err)
		return exitcode.Error
	}

	s.session = state.NewSession(s.Config.EffectiveRunTag(), s.Config.RepoID)
	if err := state.SaveState(s.session, s.stateDir); err != nil {
		logging.Warnf("Failed to save session state: %v", err)
	}
	return -1
}

func (s *Sequencer) phaseCommandChecks() int {
	checker := s.CommandChecker
	if checker == nil {
		checker = collab.CheckAvailability
	}
	avail := checker(requiredTools...)
	for _, tool := range requiredTools {
		if !avail[tool] {
			logging.Errorf("Required tool not found: %s", tool)
			return exitcode.Error
		}
	}
	return -1
}

// phaseRestore pulls the remote snapshot before anything writes under the
// local root, so restore can never race dataset or training writes. A
// restore that was explicitly enabled and fails is a misconfiguration,
// fatal to session start.
func (s *Sequencer) phaseRestore(ctx context.Context) int {
	if ctx.Err() != nil {
		return s.interrupted("restore")
	}
	s.setLifecycle(state.LifecycleRestoring)

	restored, err := s.Restorer.RestoreIfNeeded(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return s.interrupted("restore")
		}
		logging.Errorf("Restore failed: %v", err)
		return exitcode.Error
	}
	if restored {
		logging.Success("Remote snapshot restored")
	}
	return -1
}

// phaseResolve computes the resume marker exactly once per session.
func (s *Sequencer) phaseResolve() {
	dir := checkpoint.Dir(s.Config.LocalRoot, checkpoint.DefaultCategory, s.Config.EffectiveRunTag())
	s.resumeStep, s.resumeFound = checkpoint.LatestStep(dir)

	logging.ResumeDecision(s.resumeStep, s.resumeFound)
	if s.resumeFound {
		s.session.ResumeStep = s.resumeStep
	} else {
		s.session.ResumeStep = -1
	}
	if err := state.SaveState(s.session, s.stateDir); err != nil {
		logging.Warnf("Failed to save resume state: %v", err)
	}
}

func (s *Sequencer) phaseBanner() {
	step := -1
	if s.resumeFound {
		step = s.resumeStep
	}
	banner.PrintStartupBanner(s.session.SessionID, s.session.RunTag, s.Config.RepoID,
		s.Config.NumGPUs, step)
}

func (s *Sequencer) phaseTokenizer(ctx context.Context) int {
	tokPath := filepath.Join(s.Config.LocalRoot, "tokenizer", "tokenizer.pkl")
	if _, err := os.Stat(tokPath); err == nil {
		logging.Info("Tokenizer artifact already present, skipping tokenizer bootstrap")
		return -1
	}

	if code := s.runStage(ctx, "tok_train", func(ctx context.Context) error {
		logging.Stage("Training tokenizer")
		return s.Tokenizer.TrainTokenizer(ctx)
	}); code >= 0 {
		return code
	}
	return s.runStage(ctx, "tok_eval", func(ctx context.Context) error {
		logging.Stage("Evaluating tokenizer")
		return s.Tokenizer.EvalTokenizer(ctx)
	})
}

// startDatasetContinuation launches the remaining-shards download as the
// session's second auxiliary task. Its result is consumed by the barrier
// before training; the returned cancel lets early-exit paths stop and drain
// the task instead of orphaning the subprocess.
func (s *Sequencer) startDatasetContinuation(ctx context.Context) (<-chan error, context.CancelFunc) {
	taskCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	logging.Infof("Continuing dataset download in background (%d shards total)", s.Config.DatasetTotalShards)
	go func() {
		done <- s.Dataset.Download(taskCtx, s.Config.DatasetTotalShards)
	}()
	return done, cancel
}

// phaseReportReset clears accumulated metrics, but only for a fresh run; a
// resumed session keeps its report history.
func (s *Sequencer) phaseReportReset(ctx context.Context) int {
	if s.resumeFound {
		return -1
	}
	return s.runStage(ctx, "report_reset", func(ctx context.Context) error {
		logging.Info("Fresh run: resetting report state")
		return s.Reporter.Reset(ctx)
	})
}

// phaseDatasetBarrier joins the continuation task. Training must never start
// before the full dataset target is present locally.
func (s *Sequencer) phaseDatasetBarrier(ctx context.Context, done <-chan error) int {
	logging.Info("Waiting for dataset download to complete")

	select {
	case err := <-done:
		if err != nil {
			if ctx.Err() != nil {
				return s.interrupted("dataset")
			}
			return s.fail("dataset", err)
		}
		logging.Success("Dataset download complete")
		return -1
	case <-ctx.Done():
		return s.interrupted("dataset")
	}
}

// runStage executes one stage, mapping cancellation to the interrupted exit
// path and any stage error to its collaborator's exit code.
func (s *Sequencer) runStage(ctx context.Context, name string, fn func(context.Context) error) int {
	if ctx.Err() != nil {
		return s.interrupted(name)
	}

	if err := fn(ctx); err != nil {
		if ctx.Err() != nil {
			return s.interrupted(name)
		}
		return s.fail(name, err)
	}
	return -1
}

func (s *Sequencer) fail(stage string, err error) int {
	code := collab.ExitCode(err)
	logging.Errorf("Stage %s failed: %v", stage, err)
	banner.PrintFailureBanner(stage, code)
	s.notify(notification.EventFailed, code)
	return code
}

func (s *Sequencer) interrupted(stage string) int {
	banner.PrintInterruptedBanner(stage)
	s.notify(notification.EventInterrupted, exitcode.Interrupted)
	return exitcode.Interrupted
}

func (s *Sequencer) finish() int {
	duration := int(time.Since(s.startTime).Seconds())
	banner.PrintCompletionBanner(s.session.RunTag, duration)
	s.notify(notification.EventCompleted, exitcode.Success)
	return exitcode.Success
}

func (s *Sequencer) setLifecycle(lifecycle string) {
	if s.session == nil {
		return
	}
	s.session.Lifecycle = lifecycle
	if err := state.SaveState(s.session, s.stateDir); err != nil {
		logging.Warnf("Failed to save lifecycle state: %v", err)
	}
}

func (s *Sequencer) notify(event string, code int) {
	if s.Config.NotifyWebhook == "" || s.session == nil {
		return
	}
	msg := notification.FormatEvent(event, s.session.RunTag, s.session.SessionID, code)
	notification.Send(s.Config.NotifyWebhook, msg)
}

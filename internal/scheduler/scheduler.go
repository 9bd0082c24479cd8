// Package scheduler runs scoring cycles and playbook reports on cron
// schedules. A job may declare a condition that gates it on the latest
// snapshot, e.g. only email a report while "regime > 70".
package scheduler

import (
	"context"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/macrointel/macrointel/internal/playbook"
	"github.com/macrointel/macrointel/internal/regime"
)

// Job types.
const (
	JobScore  = "score"  // run a scoring cycle
	JobReport = "report" // run a cycle and log the playbook report
)

// Job is one scheduled task.
type Job struct {
	Name        string `yaml:"name"`
	Schedule    string `yaml:"schedule"` // cron format: "*/15 * * * *"
	Type        string `yaml:"type"`
	Condition   string `yaml:"condition"` // optional gate, empty means always run
	Description string `yaml:"description"`
	Enabled     bool   `yaml:"enabled"`
}

// Config is the schedule file layout.
type Config struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadConfig reads a schedule file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}
	return &config, nil
}

// Pipeline is the slice of the run loop the scheduler drives.
type Pipeline interface {
	RunCycle(ctx context.Context) (*regime.Snapshot, *playbook.Report, error)
	CheckCondition(ctx context.Context, condition string) bool
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	cron     *cron.Cron
	pipeline Pipeline
	logger   zerolog.Logger
}

// New creates an empty scheduler.
func New(pipeline Pipeline, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		pipeline: pipeline,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds every enabled job. An unknown job type or a bad cron
// expression is a registration error; nothing runs until Start.
func (s *Scheduler) Register(jobs []Job) error {
	for _, job := range jobs {
		if !job.Enabled {
			s.logger.Info().Str("job", job.Name).Msg("job disabled, skipping")
			continue
		}
		if job.Type != JobScore && job.Type != JobReport {
			return fmt.Errorf("job %s has unknown type %q", job.Name, job.Type)
		}

		job := job
		if _, err := s.cron.AddFunc(job.Schedule, func() { s.runJob(job) }); err != nil {
			return fmt.Errorf("register job %s: %w", job.Name, err)
		}
		s.logger.Info().
			Str("job", job.Name).
			Str("schedule", job.Schedule).
			Str("condition", job.Condition).
			Msg("job registered")
	}
	return nil
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) {
	s.runJob(job)
}

func (s *Scheduler) runJob(job Job) {
	ctx := context.Background()

	if job.Condition != "" && !s.pipeline.CheckCondition(ctx, job.Condition) {
		s.logger.Info().
			Str("job", job.Name).
			Str("condition", job.Condition).
			Msg("condition not met, job skipped")
		return
	}

	snapshot, report, err := s.pipeline.RunCycle(ctx)
	if err != nil {
		s.logger.Error().Str("job", job.Name).Err(err).Msg("job run failed")
		return
	}

	event := s.logger.Info().
		Str("job", job.Name).
		Float64("total_score", snapshot.TotalScore).
		Str("classification", string(snapshot.Classification))

	if job.Type == JobReport {
		event = event.
			Str("market_regime", report.MarketRegime).
			Int("viable_strategies", len(report.Selected)).
			Strs("macro_notes", report.MacroNotes)
	}
	event.Msg("job completed")
}

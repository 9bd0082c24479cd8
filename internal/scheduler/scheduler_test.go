package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrointel/macrointel/internal/playbook"
	"github.com/macrointel/macrointel/internal/regime"
)

type fakePipeline struct {
	cycles     int
	conditions []string
	gateOpen   bool
}

func (f *fakePipeline) RunCycle(_ context.Context) (*regime.Snapshot, *playbook.Report, error) {
	f.cycles++
	return &regime.Snapshot{TotalScore: 50, Classification: regime.Neutral}, &playbook.Report{}, nil
}

func (f *fakePipeline) CheckCondition(_ context.Context, condition string) bool {
	f.conditions = append(f.conditions, condition)
	return f.gateOpen
}

func TestLoadConfig(t *testing.T) {
	content := `jobs:
  - name: morning-score
    schedule: "0 9 * * 1-5"
    type: score
    enabled: true
  - name: greed-report
    schedule: "0 17 * * 1-5"
    type: report
    condition: "regime > 70"
    enabled: true
`
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, config.Jobs, 2)
	assert.Equal(t, "morning-score", config.Jobs[0].Name)
	assert.Equal(t, "regime > 70", config.Jobs[1].Condition)
}

func TestRegisterValidation(t *testing.T) {
	s := New(&fakePipeline{}, zerolog.Nop())

	err := s.Register([]Job{{Name: "bad", Schedule: "* * * * *", Type: "launch", Enabled: true}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")

	err = s.Register([]Job{{Name: "bad-cron", Schedule: "not a schedule", Type: JobScore, Enabled: true}})
	assert.Error(t, err)

	// Disabled jobs are skipped, not rejected.
	err = s.Register([]Job{{Name: "off", Schedule: "whatever", Type: "whatever", Enabled: false}})
	assert.NoError(t, err)
}

func TestRunNowUnconditional(t *testing.T) {
	p := &fakePipeline{}
	s := New(p, zerolog.Nop())

	s.RunNow(Job{Name: "score-now", Type: JobScore})
	assert.Equal(t, 1, p.cycles)
	assert.Empty(t, p.conditions)
}

func TestRunNowGated(t *testing.T) {
	p := &fakePipeline{gateOpen: false}
	s := New(p, zerolog.Nop())

	s.RunNow(Job{Name: "gated", Type: JobReport, Condition: "regime > 70"})
	assert.Equal(t, 0, p.cycles, "closed gate must skip the run")
	assert.Equal(t, []string{"regime > 70"}, p.conditions)

	p.gateOpen = true
	s.RunNow(Job{Name: "gated", Type: JobReport, Condition: "regime > 70"})
	assert.Equal(t, 1, p.cycles)
}

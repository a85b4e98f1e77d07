package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracetour/internal/config"
	"tracetour/internal/player"
	"tracetour/internal/timing"
	"tracetour/internal/tour"
	"tracetour/internal/watcher"
)

const customScenario = `id: custom-tour
title: Custom Tour
role: Auditor
duration_seconds: 30
presenter:
  name: Dana Reyes
  avatar_initials: DR
steps:
  - id: 1
    title: Open audit
    narration: Open the audit log.
    navigate_to: audit
    target: "#audit-log"
  - id: 2
    title: Done
    narration: That is all.
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Narration.Engine = config.EngineSilent
	cfg.Logging.File = false
	cfg.Scenarios.Watch = false
	return cfg
}

func newDryRunApp(t *testing.T, cfg *config.Config, clock timing.Clock) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, Options{DryRun: true, Clock: clock})
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a
}

func TestTimingsFromConfig(t *testing.T) {
	p := config.DefaultConfig().Playback
	p.NaturalPause = 2 * time.Second

	got := Timings(p)
	assert.Equal(t, 500*time.Millisecond, got.SettleDelay)
	assert.Equal(t, 2*time.Second, got.NaturalPause)
	assert.Equal(t, 3.0, got.WordsPerSecond)
}

func TestBuildLoadsBuiltinsAndDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(customScenario), 0o644))

	cfg := testConfig(t)
	cfg.Scenarios.Dirs = []string{dir}
	a := newDryRunApp(t, cfg, timing.NewFake())

	assert.Equal(t, 4, a.Catalog().Len())
	_, err := a.Catalog().Get("custom-tour")
	assert.NoError(t, err)
	assert.Empty(t, a.LogPath())
}

func TestBuildFailsWithoutScenarios(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scenarios.IncludeBuiltin = false
	cfg.Scenarios.Dirs = []string{t.TempDir()}

	_, err := New(context.Background(), cfg, Options{DryRun: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenarios found")
}

func TestBuildRejectsInvalidScenarioFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: broken\ntitle: Broken\nsteps: []\n"), 0o644))

	cfg := testConfig(t)
	cfg.Scenarios.Dirs = []string{dir}

	_, err := New(context.Background(), cfg, Options{DryRun: true})
	require.ErrorIs(t, err, tour.ErrInvalidScenario)
}

func TestLaunchPlaysAgainstRehearsal(t *testing.T) {
	clock := timing.NewFake()
	cfg := testConfig(t)
	cfg.Narration.Muted = true
	a := newDryRunApp(t, cfg, clock)

	sc, err := a.Catalog().Get("receiving-manager")
	require.NoError(t, err)

	controls, err := a.Launch(sc)
	require.NoError(t, err)

	st := controls.State()
	assert.True(t, st.Playing)
	assert.True(t, st.Muted)
	assert.NotEmpty(t, st.Session)

	// Muted narration completes on the clock and the natural pause advances.
	clock.Advance(time.Minute)
	assert.Greater(t, controls.State().Index, 0)
}

func TestLaunchReplacesPreviousSession(t *testing.T) {
	a := newDryRunApp(t, testConfig(t), timing.NewFake())
	scenarios := a.Catalog().List()

	first, err := a.Launch(scenarios[0])
	require.NoError(t, err)
	second, err := a.Launch(scenarios[1])
	require.NoError(t, err)

	assert.True(t, first.State().Closed)
	assert.False(t, second.State().Closed)
	assert.Equal(t, player.PhasePlaying, second.State().Phase)
}

func TestShutdownClosesSessionAndRejectsLaunch(t *testing.T) {
	a := newDryRunApp(t, testConfig(t), timing.NewFake())
	controls, err := a.Launch(a.Catalog().List()[0])
	require.NoError(t, err)

	a.Shutdown()
	a.Shutdown()

	assert.True(t, controls.State().Closed)
	_, err = a.Launch(a.Catalog().List()[0])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReloadCatalogPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.Scenarios.Dirs = []string{dir}
	a := newDryRunApp(t, cfg, timing.NewFake())
	require.Equal(t, 3, a.Catalog().Len())

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customScenario), 0o644))
	a.reloadCatalog([]watcher.Event{{Path: path, Operation: watcher.OpCreate}})

	assert.Equal(t, 4, a.Catalog().Len())
}

package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"cellar/internal/logging"
	"cellar/internal/ui"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive cellar browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, ctx)
		},
	}
}

func runTUI(cmd *cobra.Command, ctx *commandContext) (err error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	settings, err := loadOnboardingSettings(cfg.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load onboarding settings: %w", err)
	}
	if shouldRunOnboarding(settings) && !cfg.hasEnvKey() {
		if err := runOnboarding(cfg); err != nil {
			return err
		}
	}

	// The screen belongs to the TUI; logs go to a file as JSON lines.
	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return err
	}
	tuiCfg := *cfg
	tuiCfg.LogFormat = logging.FormatJSON

	a, err := openApp(cmd.Context(), &tuiCfg, logFile)
	if err != nil {
		return multierr.Append(err, logFile.Close())
	}
	a.logFile = logFile
	defer func() {
		// save failures were shown inline; try once more before exiting
		a.unsaved = true
		err = multierr.Append(err, a.Close())
	}()

	a.log.Info().Str("db", a.store.Path()).Bool("scan", a.pipeline.Enabled()).Msg("tui started")

	model := ui.New(ui.Options{
		Context:   cmd.Context(),
		Engine:    a.engine,
		Pipeline:  a.pipeline,
		Logger:    a.log.With().Str("component", "ui").Logger(),
		ConfigDir: cfg.ConfigDir,
		TermCaps:  ui.DetectTerminalCapabilities(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"cellar/internal/cellar"
	"cellar/internal/db"
	"cellar/internal/enrich"
	"cellar/internal/logging"
)

type commandContext struct {
	dbFlag       *string
	logLevelFlag *string

	configOnce sync.Once
	config     *Config
	configErr  error
}

func newCommandContext(dbFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		dbFlag:       dbFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*Config, error) {
	c.configOnce.Do(func() {
		var dbPath, level string
		if c.dbFlag != nil {
			dbPath = *c.dbFlag
		}
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		c.config, c.configErr = LoadConfig(dbPath, level)
	})
	return c.config, c.configErr
}

// app is everything a command needs to work on the cellar.
type app struct {
	cfg      *Config
	log      zerolog.Logger
	store    *db.Store
	engine   *cellar.Engine
	pipeline *enrich.Pipeline
	logFile  io.Closer

	// unsaved is set when a write failed to persist; Close retries it.
	unsaved bool
}

// openApp opens the database and builds the engine. Logs go to logOut.
func openApp(ctx context.Context, cfg *Config, logOut io.Writer) (*app, error) {
	log := logging.New(logging.Options{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: logOut,
	})

	store, err := db.Open(cfg.DBPath, db.WithLogger(log.With().Str("component", "db").Logger()))
	if err != nil {
		if errors.Is(err, db.ErrLocked) {
			return nil, fmt.Errorf("%w (%s)", err, cfg.DBPath)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to load cellar: %w", err), store.Close())
	}

	engine := cellar.NewEngine(snap, store, cellar.WithLogger(log.With().Str("component", "engine").Logger()))

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		engine:   engine,
		pipeline: newPipeline(cfg, log),
	}, nil
}

func newPipeline(cfg *Config, log zerolog.Logger) *enrich.Pipeline {
	pipelineLog := log.With().Str("component", "enrich").Logger()
	if !cfg.ScanEnabled {
		pipelineLog.Debug().Msg("label scanning disabled in onboarding settings")
		return enrich.NewProviderPipeline(nil)
	}
	provider, err := enrich.NewProvider(cfg.ProviderConfig())
	if err != nil {
		if errors.Is(err, enrich.ErrNoProvider) {
			pipelineLog.Debug().Err(err).Msg("label scanning disabled")
		} else {
			pipelineLog.Warn().Err(err).Msg("label scanning disabled")
		}
		return enrich.NewProviderPipeline(nil)
	}
	pipelineLog.Debug().Str("provider", provider.Name()).Msg("label scanning enabled")
	return enrich.NewProviderPipeline(provider,
		enrich.WithLogger(pipelineLog),
		enrich.WithStageTimeout(cfg.AITimeout),
	)
}

// Close saves any unsaved changes and releases the database.
func (a *app) Close() error {
	var err error
	if a.unsaved {
		err = a.engine.Flush(context.Background())
	}
	err = multierr.Append(err, a.store.Close())
	if a.logFile != nil {
		err = multierr.Append(err, a.logFile.Close())
	}
	return err
}

// withApp runs fn against a freshly opened cellar and closes it afterwards.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Close())
	}()
	return fn(a)
}

// resolveCellarID accepts a full id or a unique prefix of one.
func resolveCellarID(e *cellar.Engine, ref string) (string, error) {
	entries := e.Inventory()
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return resolveID("wine", ids, ref)
}

// resolveHistoryID accepts a full id or a unique prefix of one.
func resolveHistoryID(e *cellar.Engine, ref string) (string, error) {
	entries := e.History()
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}
	return resolveID("tasting", ids, ref)
}

func resolveID(kind string, ids []string, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no %s with id %q", kind, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, ref, len(matches))
	}
}

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// persisted reports a failed save as a warning. The change is already
// applied in memory and saved again on Close.
func (a *app) persisted(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cellar.ErrPersist) {
		a.unsaved = true
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		return nil
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

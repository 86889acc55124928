package cli

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/lookahead/internal/logging"
	"github.com/aretw0/lookahead/internal/presentation/tui"
	"github.com/aretw0/lookahead/internal/runtime"
	"github.com/aretw0/lookahead/pkg/adapters/file"
	"github.com/aretw0/lookahead/pkg/adapters/loam"
	"github.com/aretw0/lookahead/pkg/adapters/memory"
	"github.com/aretw0/lookahead/pkg/adapters/redis"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/observability"
	"github.com/aretw0/lookahead/pkg/persistence/middleware"
	"github.com/aretw0/lookahead/pkg/ports"
	"github.com/aretw0/lookahead/pkg/runner"
	"github.com/aretw0/lookahead/pkg/session"
	"github.com/aretw0/lookahead/pkg/trade"
)

// PlanKeyEnv names the environment variable holding the plan encryption key
// (32 bytes, hex or base64).
const PlanKeyEnv = "LOOKAHEAD_PLAN_KEY"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options collects the command-line configuration shared by the commands.
// Zero values defer to the scenario file, then to the engine defaults.
type Options struct {
	ScenarioPath string
	Agent        string
	Policy       string
	Goal         string
	Depth        int
	Guard        string
	Workers      int
	Format       string
	Store        string

	Out    io.Writer
	Logger *slog.Logger
}

// Setup is everything a command needs to plan against a scenario.
type Setup struct {
	Scenario *trade.Scenario
	World    *trade.World
	Engine   *runtime.Engine
	Selector runtime.Selector
	Logger   *slog.Logger
	Hooks    domain.LifecycleHooks
}

// Prepare loads the scenario and builds the world, engine and selector.
// Extra hooks are merged with the debug logging hooks.
func Prepare(opts Options, extra ...domain.LifecycleHooks) (*Setup, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if opts.ScenarioPath == "" {
		return nil, errors.New("a scenario file is required (--scenario)")
	}
	sc, err := trade.LoadScenario(opts.ScenarioPath)
	if err != nil {
		return nil, err
	}

	world, err := sc.World(trade.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", opts.ScenarioPath, err)
	}

	guardName := sc.Guard
	if opts.Guard != "" {
		guardName = opts.Guard
	}
	guard, err := runtime.ParseGuard(guardName)
	if err != nil {
		return nil, err
	}

	depth := sc.Depth(runtime.DefaultMaxDepth)
	if opts.Depth > 0 {
		depth = opts.Depth
	}

	hooks := observability.Merge(append([]domain.LifecycleHooks{observability.LogHooks(logger)}, extra...)...)
	engine := runtime.NewEngine(
		runtime.WithMaxDepth(depth),
		runtime.WithGuard(guard),
		runtime.WithWorkers(opts.Workers),
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(hooks),
	)

	sel, err := resolveSelector(sc, opts)
	if err != nil {
		return nil, err
	}

	return &Setup{
		Scenario: sc,
		World:    world,
		Engine:   engine,
		Selector: sel,
		Logger:   logger,
		Hooks:    hooks,
	}, nil
}

func resolveSelector(sc *trade.Scenario, opts Options) (runtime.Selector, error) {
	policy, source := sc.Policy, sc.Goal
	if opts.Goal != "" {
		source = opts.Goal
		policy = domain.PolicyGoal
	}
	if opts.Policy != "" {
		policy = opts.Policy
	}

	var goal domain.Goal
	if source != "" {
		g, err := trade.CompileGoal(source)
		if err != nil {
			return nil, err
		}
		goal = g
		if policy == "" {
			policy = domain.PolicyGoal
		}
	}
	return runtime.SelectorFor(policy, goal)
}

// Agents returns the merchants a command operates on: the one named by
// opts.Agent, or every merchant of the world.
func (s *Setup) Agents(opts Options) ([]string, error) {
	if opts.Agent == "" {
		return s.World.Merchants(), nil
	}
	if _, err := s.World.Merchant(opts.Agent); err != nil {
		return nil, err
	}
	return []string{opts.Agent}, nil
}

// NewRunner creates a runner for one merchant of the setup's world.
func (s *Setup) NewRunner(agentID string, opts ...runner.Option) *runner.Runner {
	base := []runner.Option{
		runner.WithEngine(s.Engine),
		runner.WithSelector(s.Selector),
		runner.WithResolver(trade.Resolver{}),
		runner.WithLogger(s.Logger),
		runner.WithLifecycleHooks(s.Hooks),
	}
	return runner.NewRunner(agentID, s.World, trade.Generator{}, append(base, opts...)...)
}

// OpenSessions opens the plan store named by spec and wraps it in a session
// manager:
//   - "" or "memory": in-process store
//   - "file" or "file:<dir>": one JSON file per agent
//   - "loam" or "loam:<dir>": one document per agent in a Loam vault
//   - "redis://<addr>": redis store with a distributed lock
//
// When PlanKeyEnv is set, records are encrypted at rest.
func OpenSessions(spec string, logger *slog.Logger) (*session.Manager, io.Closer, error) {
	var (
		store  ports.PlanStore
		closer io.Closer = nopCloser{}
		opts   = []session.Option{session.WithLogger(logger)}
	)

	switch {
	case spec == "" || spec == "memory":
		store = memory.NewStore()
	case spec == "file":
		store = file.New("")
	case strings.HasPrefix(spec, "file:"):
		store = file.New(strings.TrimPrefix(spec, "file:"))
	case spec == "loam" || strings.HasPrefix(spec, "loam:"):
		ls, err := loam.New(strings.TrimPrefix(strings.TrimPrefix(spec, "loam"), ":"))
		if err != nil {
			return nil, nil, err
		}
		store = ls
	case strings.HasPrefix(spec, "redis://"):
		rs := redis.New(strings.TrimPrefix(spec, "redis://"), os.Getenv("REDIS_PASSWORD"), 0)
		store = rs
		closer = rs
		opts = append(opts, session.WithLocker(redis.NewLocker(rs.Client(), redis.DefaultPrefix)))
	default:
		return nil, nil, fmt.Errorf("unknown plan store %q (want memory, file[:dir], loam[:dir] or redis://addr)", spec)
	}

	if raw := os.Getenv(PlanKeyEnv); raw != "" {
		key, err := decodeKey(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", PlanKeyEnv, err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", PlanKeyEnv, err)
		}
		store = mw(store)
		logger.Debug("plan encryption enabled")
	}

	return session.NewManager(store, opts...), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func decodeKey(raw string) ([]byte, error) {
	if key, err := hex.DecodeString(raw); err == nil {
		return key, nil
	}
	return base64.StdEncoding.DecodeString(raw)
}

// NewReporter returns the reporter for a format. Text output to a terminal
// is rendered as markdown.
func NewReporter(w io.Writer, format string) (runner.Reporter, error) {
	switch format {
	case "", FormatText:
		var opts []runner.TextReporterOption
		if IsTerminal(w) {
			opts = append(opts, runner.WithTextRenderer(tui.NewRenderer()))
		}
		return runner.NewTextReporter(w, opts...), nil
	case FormatJSON:
		return runner.NewJSONReporter(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want %s or %s)", format, FormatText, FormatJSON)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// CreateLogger configures the application logger. Logs go to stderr so they
// never mix with reports on stdout.
func CreateLogger(level string) (*slog.Logger, error) {
	if level == "" {
		return logging.NewNop(), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

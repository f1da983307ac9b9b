package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/oakwood-commons/formulabar/internal/config"
	"github.com/oakwood-commons/formulabar/internal/evaluator"
	"github.com/oakwood-commons/formulabar/internal/formula"
	"github.com/oakwood-commons/formulabar/internal/ui"
	"github.com/oakwood-commons/formulabar/pkg/logger"
	"github.com/oakwood-commons/formulabar/pkg/settings"
)

// errNoTerminal is returned when the interactive bar is started without a TTY.
var errNoTerminal = errors.New("formulabar needs an interactive terminal; use --snapshot or the eval command")

var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// rootOptions holds flag values shared by every command. cfg is the merged
// configuration once PersistentPreRunE has run.
type rootOptions struct {
	configFile string
	endpoint   string
	engine     string
	scopeFile  string
	watchScope bool
	vars       map[string]string
	timeout    time.Duration
	debounce   time.Duration
	logFile    string
	debug      bool
	noColor    bool

	snapshot  bool
	startKeys []string
	width     int
	height    int

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [token...]",
		Short: "Interactive formula bar with remote autocomplete",
		Long: "formulabar builds arithmetic formulas token by token. Operands come from a\n" +
			"remote autocomplete endpoint or free text, operators are typed directly, and\n" +
			"the result is evaluated live against a set of variable bindings.",
		Example: "\n  formulabar --endpoint https://example.test/autocomplete\n" +
			"  formulabar 3 + x\n" +
			"  formulabar eval '2 ^ 3 * y'\n" +
			"  formulabar suggest rev --endpoint https://example.test/autocomplete -o json\n",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.prepare(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runInteractive(cmd, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config-file", "", "path to a YAML config file (default: $XDG_CONFIG_HOME/formulabar/config.yaml)")
	pf.StringVar(&o.endpoint, "endpoint", "", "autocomplete endpoint, queried as GET <endpoint>?search=<query>")
	pf.DurationVar(&o.timeout, "timeout", 0, "autocomplete request timeout (default from config)")
	pf.StringVar(&o.engine, "engine", "", "evaluation engine: "+strings.Join(evaluator.EngineNames(), "|"))
	pf.StringVar(&o.scopeFile, "scope-file", "", "YAML file of variable bindings layered over the configured scope")
	pf.StringToStringVar(&o.vars, "var", nil, "variable binding name=number, repeatable; wins over config and scope file")
	pf.StringVar(&o.logFile, "log-file", "", "write JSON logs to this file")
	pf.BoolVar(&o.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&o.noColor, "no-color", false, "disable color output")

	f := rootCmd.Flags()
	f.BoolVar(&o.watchScope, "watch-scope", false, "reload --scope-file when it changes")
	f.DurationVar(&o.debounce, "debounce", 0, "quiet period before a suggestion request (default from config)")
	f.BoolVar(&o.snapshot, "snapshot", false, "render a single frame to stdout and exit; honors --press/--width/--height")
	f.StringArrayVar(&o.startKeys, "press", nil, "simulate keys on startup, e.g. --press 're<Down><CR>'; <A-Left>, <A-i>, <A-e>, <A-d> drive the token menu")
	f.IntVar(&o.width, "width", 0, "render width in columns")
	f.IntVar(&o.height, "height", 0, "render height in rows")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(
		newEvalCmd(o),
		newSuggestCmd(o),
		newConfigCmd(o),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// prepare loads configuration, applies flag overrides and installs the
// logger and run settings on the command context.
func (o *rootOptions) prepare(cmd *cobra.Command) error {
	path := config.ResolvePath(o.configFile)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd.Flags(), o, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg

	var level int8
	if cfg.App.Debug {
		level = -1
	}
	interactive := cmd.Name() == settings.CliBinaryName && !o.snapshot
	lgr, err := logger.Init(logger.Options{
		Level:   level,
		Path:    cfg.App.LogFile,
		Discard: interactive,
	})
	if err != nil {
		return err
	}
	lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.LogFile = cfg.App.LogFile
	run.ConfigPath = path
	run.NoColor = cfg.UI.NoColor

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, lgr)
	ctx = settings.IntoContext(ctx, run)
	cmd.SetContext(ctx)
	lgr.V(1).Info("configuration loaded", "path", path, logger.EngineKey, cfg.Evaluator.Engine)
	return nil
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(fs *pflag.FlagSet, o *rootOptions, cfg *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "endpoint":
			cfg.Autocomplete.Endpoint = o.endpoint
		case "timeout":
			cfg.Autocomplete.Timeout = config.Duration(o.timeout)
		case "debounce":
			cfg.Autocomplete.Debounce = config.Duration(o.debounce)
		case "engine":
			cfg.Evaluator.Engine = o.engine
		case "scope-file":
			cfg.Evaluator.ScopeFile = o.scopeFile
		case "watch-scope":
			cfg.Evaluator.WatchScope = o.watchScope
		case "log-file":
			cfg.App.LogFile = o.logFile
		case "debug":
			cfg.App.Debug = o.debug
		case "no-color":
			cfg.UI.NoColor = o.noColor
		}
	})
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.UI.NoColor = true
	}
}

func (o *rootOptions) runInteractive(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	lgr := *logger.FromContext(ctx)

	ev, fileScope, err := buildEvaluator(o.cfg, o.vars, lgr)
	if err != nil {
		return err
	}
	provider, err := buildProvider(o.cfg, lgr)
	if err != nil {
		return err
	}
	opts := uiOptions(ctx, o.cfg, provider, ev, parseFormula(args), lgr)

	if o.snapshot {
		out := ui.RenderSnapshot(opts, ui.SnapshotConfig{
			Width:     o.width,
			Height:    o.height,
			StartKeys: o.startKeys,
		})
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	if !stdinIsTerminal() {
		return errNoTerminal
	}

	var attach func(*tea.Program)
	if fileScope != nil && o.cfg.Evaluator.WatchScope {
		attach = func(p *tea.Program) {
			go watchScope(ctx, fileScope, p, lgr)
		}
	}
	final, err := ui.RunModel(opts, o.startKeys, o.width, o.height, attach)
	if err != nil {
		return fmt.Errorf("run formula bar: %w", err)
	}
	printFinal(cmd.OutOrStdout(), cmd.ErrOrStderr(), final.Editor().Sequence(), ev)
	return nil
}

func watchScope(ctx context.Context, fs *evaluator.FileScope, p *tea.Program, lgr logr.Logger) {
	err := fs.Watch(ctx, func(err error) {
		p.Send(ui.ScopeChangedMsg{Err: err})
	})
	if err != nil {
		lgr.Error(err, "scope watcher stopped", "path", fs.Path())
	}
}

// printFinal echoes the formula left in the bar on exit.
func printFinal(out, errOut io.Writer, seq formula.Sequence, ev *evaluator.Evaluator) {
	if seq.Len() == 0 {
		return
	}
	result, err := ev.Result(seq)
	if err != nil {
		fmt.Fprintln(out, evaluator.Render(seq))
		fmt.Fprintln(errOut, evaluator.ErrorPrefix+err.Error())
		return
	}
	fmt.Fprintf(out, "%s = %s\n", evaluator.Render(seq), result)
}

// parseFormula accepts tokens as separate arguments or one quoted string.
func parseFormula(args []string) formula.Sequence {
	return formula.ParseSequence(strings.Fields(strings.Join(args, " "))...)
}

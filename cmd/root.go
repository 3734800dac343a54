// Package cmd implements vicut's command-line surface (SPEC_FULL.md §6.1):
// flag/argument parsing, input acquisition (stdin/file/literal), dispatch
// into internal/fanout, and output formatting. It owns every external
// collaborator spec.md §1 scopes out of the core engine.
//
// Grounded on the teacher's cmd/root.go cobra+viper shape: a package-level
// rootCmd, an init() that registers flags, a cobra.OnInitialize config
// loader, and Execute()/SetVersion() entry points.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vicut/vicut/internal/config"
	"github.com/vicut/vicut/internal/executor"
	"github.com/vicut/vicut/internal/fanout"
	"github.com/vicut/vicut/internal/output"
	"github.com/vicut/vicut/internal/script"
	"github.com/vicut/vicut/internal/vlog"
	"github.com/vicut/vicut/internal/vtrace"
	"github.com/vicut/vicut/internal/watch"
)

var (
	version string
	cfgFile string
	cfg     config.Config

	flagExpr      string
	flagKeys      string
	flagFields    []string
	flagScripts   []string
	flagOutput    string
	flagDelimiter string
	flagTemplate  string
	flagJobs      int
	flagPerLine   bool
	flagWatch     bool
	flagTrace     bool
	flagDebug     bool
)

var rootCmd = &cobra.Command{
	Use:     "vicut [flags] [file...]",
	Short:   "A non-interactive Vim command engine",
	Long:    `vicut applies Vim-style editing commands to text read from standard input, files, or a literal string, and emits either the transformed buffer or captured slices of it.`,
	Version: version,
	RunE:    runVicut,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/vicut/config.yaml)")
	rootCmd.Flags().StringVarP(&flagExpr, "expr", "e", "",
		"literal input text (mutually exclusive with files/stdin)")
	rootCmd.Flags().StringVarP(&flagKeys, "keys", "k", "",
		"keys to execute once against the whole input, emitting the transformed buffer")
	rootCmd.Flags().StringArrayVarP(&flagFields, "field", "f", nil,
		"keys to execute and capture the resulting field (repeatable)")
	rootCmd.Flags().StringArrayVarP(&flagScripts, "script", "s", nil,
		"a .vicut script file (repeatable)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "",
		"output mode: raw|delimited|json|yaml|template (default raw)")
	rootCmd.Flags().StringVarP(&flagDelimiter, "delimiter", "d", "",
		"field delimiter for --output=delimited")
	rootCmd.Flags().StringVarP(&flagTemplate, "template", "t", "",
		"Go text/template string for --output=template")
	rootCmd.Flags().IntVarP(&flagJobs, "jobs", "j", 0,
		"worker pool size for multi-file / --per-line runs (default: NumCPU)")
	rootCmd.Flags().BoolVar(&flagPerLine, "per-line", false,
		"fan out one Executor per input line instead of per file")
	rootCmd.Flags().BoolVar(&flagWatch, "watch", false,
		"re-run on input file change (fsnotify; single-file mode only)")
	rootCmd.Flags().BoolVar(&flagTrace, "trace", false,
		"emit OpenTelemetry spans for each Executor call")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false,
		"enable debug logging (also: VICUT_DEBUG=1)")
}

func initConfig() {
	loaded, _, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vicut: loading config: %v\n", err)
		return
	}
	cfg = loaded
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func runVicut(cmd *cobra.Command, args []string) error {
	debug := os.Getenv("VICUT_DEBUG") != "" || flagDebug
	logPath := cfg.Log.Path
	if logPath == "" && debug {
		logPath = "vicut-debug.log"
	}
	minLevel := vlog.ParseLevel(cfg.Log.Level)
	if debug {
		minLevel = vlog.LevelDebug
	}
	cleanup, err := vlog.Init(logPath, minLevel)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer cleanup()

	traceCfg := vtrace.DefaultConfig()
	traceCfg.Enabled = flagTrace || cfg.Tracing.Enabled
	if cfg.Tracing.Exporter != "" {
		traceCfg.Exporter = cfg.Tracing.Exporter
	}
	traceCfg.FilePath = cfg.Tracing.Path
	if cfg.Tracing.Endpoint != "" {
		traceCfg.OTLPEndpoint = cfg.Tracing.Endpoint
	}
	provider, err := vtrace.NewProvider(traceCfg)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	runID := uuid.NewString()
	vlog.Info(vlog.CatExec, "vicut run starting", "run_id", runID, "args", strings.Join(args, " "))

	outputMode := flagOutput
	if outputMode == "" {
		outputMode = cfg.OutputMode
	}
	if outputMode == "" {
		outputMode = string(output.ModeRaw)
	}
	mode, err := output.ParseMode(outputMode)
	if err != nil {
		return err
	}
	delimiter := flagDelimiter
	if delimiter == "" {
		delimiter = cfg.Delimiter
	}
	formatter := output.New(mode, delimiter, flagTemplate)

	op, err := newOperation(flagKeys, flagFields, flagScripts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagWatch {
		if flagExpr != "" || len(args) != 1 {
			return fmt.Errorf("--watch requires exactly one file argument")
		}
		return runWatch(ctx, args[0], op, formatter)
	}

	units, err := runOnce(ctx, args, op)
	if err != nil {
		return err
	}

	rendered, err := formatter.Format(units)
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	if rendered != "" {
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
	}

	for _, u := range units {
		if u.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "vicut: %s: %v\n", sourceLabel(u.Source), u.Err)
		}
	}
	if anyFailed(units) {
		return fmt.Errorf("one or more inputs failed")
	}
	return nil
}

// operation is the keys/script configuration shared by every input unit,
// built once per invocation and replayed against a fresh Executor per unit
// by internal/fanout.
type operation struct {
	keys       string
	fields     []string
	scriptDirs [][]script.Directive
}

func newOperation(keys string, fields, scriptPaths []string) (operation, error) {
	op := operation{keys: keys, fields: fields}
	for _, path := range scriptPaths {
		text, err := os.ReadFile(path) // #nosec G304 -- operator-supplied script path
		if err != nil {
			return operation{}, fmt.Errorf("reading script %s: %w", path, err)
		}
		dirs, err := script.Parse(string(text))
		if err != nil {
			return operation{}, fmt.Errorf("parsing script %s: %w", path, err)
		}
		op.scriptDirs = append(op.scriptDirs, dirs)
	}
	if op.keys == "" && len(op.fields) == 0 && len(op.scriptDirs) == 0 {
		return operation{}, fmt.Errorf("no operation specified (use -k, -f, or -s)")
	}
	return op, nil
}

// run executes op against ex, in the order keys (-k) -> scripts (-s) ->
// fields (-f), producing the transformed buffer plus every captured field
// in order. This ordering is a design choice (see DESIGN.md): -k acts as a
// setup transform that scripts and field captures then read from.
func (op operation) run(ctx context.Context, ex *executor.Executor) (buffer string, fields []string, err error) {
	if op.keys != "" {
		if err := ex.MoveCursor(ctx, op.keys); err != nil {
			return "", nil, err
		}
	}
	for _, dirs := range op.scriptDirs {
		scriptFields, err := script.Run(ctx, ex, dirs)
		fields = append(fields, scriptFields...)
		if err != nil {
			return ex.Buffer(), fields, err
		}
	}
	for _, keys := range op.fields {
		v, err := ex.ReadField(ctx, keys)
		if err != nil {
			return ex.Buffer(), fields, err
		}
		fields = append(fields, v)
	}
	return ex.Buffer(), fields, nil
}

// runOnce resolves input sources (literal expr, files, or stdin), builds
// one fanout.WorkItem per unit (one per file, or one per line under
// --per-line), and runs them over the worker pool.
func runOnce(ctx context.Context, args []string, op operation) ([]output.Unit, error) {
	sources, err := resolveInputs(args)
	if err != nil {
		return nil, err
	}

	var items []fanout.WorkItem
	for _, src := range sources {
		if flagPerLine {
			for i, line := range strings.Split(src.text, "\n") {
				items = append(items, fanout.WorkItem{
					Source: lineSource(src.name, i),
					Input:  line,
					Run:    op.run,
				})
			}
			continue
		}
		items = append(items, fanout.WorkItem{
			Source: src.name,
			Input:  src.text,
			Run:    op.run,
		})
	}

	jobs := flagJobs
	if jobs == 0 {
		jobs = cfg.Workers
	}
	return fanout.Run(ctx, items, jobs), nil
}

func lineSource(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("line %d", i+1)
	}
	return fmt.Sprintf("%s:%d", name, i+1)
}

type inputSource struct {
	name string // file path, or "" for stdin/-e
	text string
}

// resolveInputs implements SPEC_FULL.md §6.1's input precedence: -e is
// mutually exclusive with file arguments and stdin; with neither -e nor
// file arguments, stdin is read (refusing to block on an interactive
// terminal with nothing piped in, per go-isatty's TTY check).
func resolveInputs(args []string) ([]inputSource, error) {
	if flagExpr != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("-e/--expr is mutually exclusive with file arguments")
		}
		return []inputSource{{name: "", text: flagExpr}}, nil
	}
	if len(args) > 0 {
		srcs := make([]inputSource, 0, len(args))
		for _, path := range args {
			b, err := os.ReadFile(path) // #nosec G304 -- operator-supplied input path
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			srcs = append(srcs, inputSource{name: path, text: string(b)})
		}
		return srcs, nil
	}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil, fmt.Errorf("no input: pass -e, a file argument, or pipe data on stdin")
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return []inputSource{{name: "", text: string(b)}}, nil
}

// runWatch implements --watch: re-run op against path's contents on every
// debounced filesystem change, printing each run's formatted output to
// stdout until ctx is cancelled (Ctrl-C / SIGTERM).
func runWatch(ctx context.Context, path string, op operation, formatter output.Formatter) error {
	runAndPrint := func() error {
		b, err := os.ReadFile(path) // #nosec G304 -- operator-supplied input path
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		ex := executor.New(string(b))
		buffer, fields, runErr := op.run(ctx, ex)
		unit := output.Unit{Source: path, Buffer: buffer, Fields: fields, Err: runErr}
		rendered, ferr := formatter.Format([]output.Unit{unit})
		if ferr != nil {
			return ferr
		}
		fmt.Println(rendered)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "vicut: %s: %v\n", path, runErr)
		}
		return nil
	}

	if err := runAndPrint(); err != nil {
		return err
	}

	w, err := watch.New(watch.DefaultConfig(path))
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			if err := runAndPrint(); err != nil {
				fmt.Fprintf(os.Stderr, "vicut: %v\n", err)
			}
		}
	}
}

func sourceLabel(source string) string {
	if source == "" {
		return "<stdin>"
	}
	return source
}

func anyFailed(units []output.Unit) bool {
	for _, u := range units {
		if u.Err != nil {
			return true
		}
	}
	return false
}

// Command dedup finds duplicate files beneath one or more paths and
// replaces them with filesystem clones (or hardlinks, or symlinks),
// keeping exactly one copy of each distinct content.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ttkb-oss/dedup/internal/engine"
	"github.com/ttkb-oss/dedup/internal/logging"
	"github.com/ttkb-oss/dedup/internal/progress"
	"github.com/ttkb-oss/dedup/internal/replace"
	"github.com/ttkb-oss/dedup/internal/report"
	"github.com/ttkb-oss/dedup/internal/version"
)

type config struct {
	dryRun        bool
	link          bool
	symlink       bool
	force         bool
	threads       int
	oneFileSystem bool
	depth         int
	noProgress    bool
	verbosity     int
	showVersion   bool
	human         bool
	help          bool
	exclude       []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := &config{}
	exitCode := 0

	root := newRootCommand(cfg, stdout, stderr, &exitCode)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return exitCode
}

func newRootCommand(cfg *config, stdout, stderr io.Writer, exitCode *int) *cobra.Command {
	root := &cobra.Command{
		Use:           "dedup [paths...]",
		Short:         "Find duplicate files and replace them with filesystem clones",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// dedup takes bare paths as positional arguments rather than
	// subcommands, so cobra's default "help"/"completion" subcommands
	// would otherwise shadow a real path named "help" or "completion".
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := root.Flags()
	flags.BoolVarP(&cfg.dryRun, "dry-run", "n", false, "do not mutate; print intended actions")
	flags.BoolVarP(&cfg.link, "link", "l", false, "replace via hardlink instead of cloning")
	flags.BoolVarP(&cfg.symlink, "symlink", "s", false, "replace via symlink instead of cloning")
	flags.BoolVar(&cfg.force, "force", false, "replace files even if they have other hard links")
	flags.IntVarP(&cfg.threads, "threads", "t", runtime.NumCPU(), "worker count; 0 runs synchronously")
	flags.BoolVarP(&cfg.oneFileSystem, "one-file-system", "x", false, "do not cross device boundaries")
	flags.IntVarP(&cfg.depth, "depth", "d", -1, "max recursion depth; negative means unlimited")
	flags.BoolVarP(&cfg.noProgress, "no-progress", "P", false, "suppress progress output")
	flags.CountVarP(&cfg.verbosity, "verbose", "v", "increase verbosity; repeatable")
	flags.BoolVarP(&cfg.showVersion, "version", "V", false, "print version and exit")
	flags.BoolVarP(&cfg.human, "human-readable", "h", false, "render byte counts with SI-like unit suffixes")
	flags.BoolVarP(&cfg.help, "help", "?", false, "print usage and exit")
	flags.StringArrayVar(&cfg.exclude, "exclude", nil, "glob pattern to exclude from the walk; repeatable")

	cobra.EnableCommandSorting = false

	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runDedup(cmd, args, cfg, stdout, stderr, exitCode)
	}

	return root
}

func runDedup(cmd *cobra.Command, args []string, cfg *config, stdout, stderr io.Writer, exitCode *int) error {
	if cfg.help {
		*exitCode = 1
		return cmd.Usage()
	}

	if cfg.showVersion {
		*exitCode = 1
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	if cfg.threads < 0 {
		return &usageError{errors.Errorf("thread count must be >= 0, got %d", cfg.threads)}
	}
	if cfg.link && cfg.symlink {
		return &usageError{errors.New("--link and --symlink are mutually exclusive")}
	}

	if cfg.depth == 0 {
		warning(stderr, "--depth 0 will not recurse into subdirectories")
	}

	mode := replace.ModeClone
	switch {
	case cfg.link:
		mode = replace.ModeHardlink
	case cfg.symlink:
		mode = replace.ModeSymlink
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	logging.RootLogger.SetLevel(logging.LevelForVerbosity(cfg.verbosity))

	var out *os.File
	if f, ok := stderr.(*os.File); ok {
		out = f
	} else {
		out = os.Stderr
	}
	tracker := progress.New(out, cfg.noProgress)

	result, err := engine.Run(engine.Config{
		Roots:         paths,
		Threads:       cfg.threads,
		Mode:          mode,
		DryRun:        cfg.dryRun,
		Force:         cfg.force,
		OneFileSystem: cfg.oneFileSystem,
		MaxDepth:      cfg.depth,
		Exclude:       cfg.exclude,
		Logger:        logging.RootLogger,
		Progress:      tracker,
	})
	if err != nil {
		return err
	}

	fmt.Fprint(stdout, report.Summary(report.Counters{
		Found:        result.Found,
		Saved:        result.Saved,
		AlreadySaved: result.AlreadySaved,
	}, cfg.human))

	return nil
}

package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotcommander/versioneer/internal/actions"
	"github.com/dotcommander/versioneer/internal/app"
	"github.com/dotcommander/versioneer/internal/output"
)

//nolint:gochecknoglobals // process-wide log level toggled by --quiet
var logLevel = new(slog.LevelVar)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	root := NewRootCmd(version)
	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			// Usage errors from cobra never reach cmdErr.
			slog.Error("command failed", "error", err.Error())
			printFailure(root.OutOrStdout(), err)
		}
	}
	return err
}

// runOptions holds the flags of the root (backup) command.
type runOptions struct {
	update        int
	reset         bool
	archiveSource string
	exclude       []string
	lockTimeout   time.Duration
}

// globalOptions holds persistent flags shared by every command.
type globalOptions struct {
	dbPath    string
	noHistory bool
	quiet     bool
}

// NewRootCmd builds the versioneer command tree.
func NewRootCmd(version string) *cobra.Command {
	var (
		opts   runOptions
		global globalOptions
	)

	root := &cobra.Command{
		Use:   "versioneer [project]",
		Short: "Zip a project directory and bump its version number",
		Long: `versioneer archives a project directory to <parent>/<name>_<version>.zip
and then increments the version stored in <project>/versioneer.txt.

--update N adds 10^-N (1 when N is 0) and truncates the result to N decimals.
--reset sets the version back to 0.0 without archiving.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if global.quiet {
				logLevel.Set(slog.LevelWarn)
			} else {
				logLevel.Set(slog.LevelInfo)
			}
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}
			// Always set so an empty flag clears an earlier override.
			app.SetDBPathOverride(global.dbPath)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return printSuccess(cmd, resp{Version: version})
			}
			return runRoot(cmd, args, opts, global)
		},
	}

	addGlobalFlags(root.PersistentFlags(), &global)
	addRunFlags(root.Flags(), &opts)
	root.Flags().BoolP("version", "v", false, "version for versioneer")

	root.AddCommand(NewCurrentCmd())
	root.AddCommand(NewHistoryCmd())
	root.AddCommand(NewDoctorCmd())
	return root
}

func addGlobalFlags(fs *pflag.FlagSet, g *globalOptions) {
	fs.StringVar(&g.dbPath, "db-path", "", "Override history database path (default: $VERSIONEER_DB_PATH or ~/.config/versioneer/history.db)")
	fs.BoolVar(&g.noHistory, "no-history", false, "Do not record this run in the history database")
	fs.BoolVarP(&g.quiet, "quiet", "q", false, "Only log warnings and errors")
}

func addRunFlags(fs *pflag.FlagSet, o *runOptions) {
	fs.IntVarP(&o.update, "update", "u", 0, "Number of decimals to increment the next version")
	fs.BoolVarP(&o.reset, "reset", "r", false, "Reset version to 0.0")
	fs.StringVar(&o.archiveSource, "archive-source", "", "Directory to archive: project or cwd (default from config, else project)")
	fs.StringSliceVar(&o.exclude, "exclude", nil, "Glob pattern to leave out of the archive (repeatable)")
	fs.DurationVar(&o.lockTimeout, "lock-timeout", 0, "How long to wait for another run on the same project (default from config, else 10s)")
}

func runRoot(cmd *cobra.Command, args []string, opts runOptions, global globalOptions) error {
	workDir, project, err := resolveArgs(args)
	if err != nil {
		return cmdErr(cmd, err)
	}
	cfg := app.EffectiveRunSettings()
	history := cfg.History && !global.noHistory
	lockTimeout := effectiveLockTimeout(opts.lockTimeout, cfg)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.reset {
		res, err := actions.Reset(ctx, project, lockTimeout)
		if err != nil {
			return cmdErr(cmd, err)
		}
		withHistory(history, func(db *DB) error {
			_, err := actions.RecordReset(db, res)
			return err
		})
		return printSuccess(cmd, res)
	}

	params := actions.RunParams{
		ProjectDir:    project,
		Update:        effectiveUpdate(cmd.Flags(), opts.update, cfg),
		ArchiveSource: effectiveArchiveSource(opts.archiveSource, cfg),
		WorkDir:       workDir,
		Exclude:       append(append([]string{}, cfg.Exclude...), opts.exclude...),
		LockTimeout:   lockTimeout,
	}

	var sp *output.Spinner
	if !global.quiet {
		sp = output.StartSpinner(os.Stderr, "Backing up "+project)
		params.Progress = func(name string) { sp.Update("Archiving " + name) }
	}
	res, err := actions.Run(ctx, params)
	sp.Stop()
	if err != nil {
		return cmdErr(cmd, err)
	}

	withHistory(history, func(db *DB) error {
		_, err := actions.RecordRun(db, res)
		return err
	})
	return printSuccess(cmd, res)
}

// effectiveUpdate prefers an explicit --update over default_update from config.
func effectiveUpdate(fs *pflag.FlagSet, flagValue int, cfg app.RunSettings) int {
	if fs.Changed("update") {
		return flagValue
	}
	return cfg.DefaultUpdate
}

// effectiveLockTimeout prefers a positive --lock-timeout over lock_timeout_ms from config.
func effectiveLockTimeout(flagValue time.Duration, cfg app.RunSettings) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return cfg.LockTimeout
}

// effectiveArchiveSource prefers --archive-source over archive_source from config.
func effectiveArchiveSource(flagValue string, cfg app.RunSettings) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.ArchiveSource
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "modsweep [root]",
		Short:        "Find and delete heavy dependency and build directories",
		Long:         "modsweep walks root (default: the current directory) for package caches such as node_modules, lists them as they are found and deletes the ones you select.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runRoot,
	}

	flags := cmd.Flags()
	flags.StringSlice("include", nil, "Comma-separated additional target directory names to scan")
	flags.StringSlice("exclude", nil, "Comma-separated target directory names to skip")
	flags.Int("depth", 0, "Maximum directory depth to scan (0 = unlimited)")
	flags.String("config", "", "Path to a JSON config file")
	flags.Bool("no-confirm", false, "Delete without confirmation prompts")
	flags.Bool("list-targets", false, "Print target directories and exit")
	flags.Int("workers", 0, "Concurrent deletions (0 = one per directory)")
	flags.String("size-method", sizeMethodWalk, "How to measure directories: walk or du")
	flags.String("log-file", "", "Append JSON logs to this file")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	return cmd
}

var flagKeys = map[string]string{
	"include":     "include",
	"exclude":     "exclude",
	"depth":       "depth",
	"workers":     "workers",
	"size-method": "size_method",
	"log-file":    "log_file",
	"log-level":   "log_level",
}

// resolveRoot makes root absolute and follows symlinks, since the scanner
// never descends through a symlink and would see an empty tree.
func resolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("resolve root %s: %w", absRoot, err)
	}
	return resolved, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := resolveRoot(root)
	if err != nil {
		return err
	}

	v := newViper()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	explicit, _ := cmd.Flags().GetString("config")
	path, _, err := resolveConfigPath(absRoot, explicit)
	if err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}
	cfg, err := loadConfig(v, path)
	if err != nil {
		return err
	}
	if noConfirm, _ := cmd.Flags().GetBool("no-confirm"); noConfirm {
		cfg.Confirm = false
	}

	targets := buildTargets(cfg.Include, cfg.Exclude)
	if listTargets, _ := cmd.Flags().GetBool("list-targets"); listTargets {
		out := cmd.OutOrStdout()
		for _, name := range sortedTargetNames(targets) {
			fmt.Fprintf(out, "%-18s %s\n", name, targets[name].Category)
		}
		return nil
	}

	logger, logCloser, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	fs := afero.NewOsFs()
	sizer, err := newSizeFunc(cfg.SizeMethod, fs)
	if err != nil {
		return err
	}

	bus := newEventBus()
	defer bus.Close()

	scanner := NewScanner(fs, ScanOptions{
		Root:          absRoot,
		Targets:       targets,
		MaxDepth:      cfg.Depth,
		SkipDirs:      mergeSkipDirs(defaultSkipDirs(), cfg.Skip),
		ProgressEvery: uint64(cfg.ProgressEvery),
	}, sizer, logger)

	deleter, err := NewDeleter(fs, absRoot, cfg.Workers, bus.Send, logger)
	if err != nil {
		return err
	}
	defer deleter.Release()

	m := NewModel(cmd.Context(), modelDeps{
		root:    absRoot,
		targets: len(targets),
		scanner: scanner,
		deleter: deleter,
		bus:     bus,
		tick:    cfg.TickInterval(),
		confirm: cfg.Confirm,
		log:     logger,
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	if fm, ok := final.(model); ok && fm.fatal != nil {
		return fm.fatal
	}
	return nil
}

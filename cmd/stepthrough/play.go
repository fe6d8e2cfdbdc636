package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/stepthrough/internal/bindings"
	"github.com/jask/stepthrough/internal/config"
	"github.com/jask/stepthrough/internal/highlight"
	"github.com/jask/stepthrough/internal/player"
	"github.com/jask/stepthrough/internal/source"
	"github.com/jask/stepthrough/internal/tui"
)

func playCmd(flags *globalFlags) *cobra.Command {
	var watch, noPredict bool
	cmd := &cobra.Command{
		Use:   "play [ref]",
		Short: "Open the interactive player",
		Long: `Open the interactive player. ref is an algorithm name sent to the trace
service, a trace URL, a local .json/.yaml file, or catalog:<name>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := ""
			if len(args) == 1 {
				ref = args[0]
			}
			return runPlay(cmd.Context(), flags, ref, watch, noPredict)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the trace file changes")
	cmd.Flags().BoolVar(&noPredict, "no-predict", false, "start with prediction mode off")
	return cmd
}

func runPlay(ctx context.Context, flags *globalFlags, ref string, watch, noPredict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, log, err := loadEnv(flags)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	keys, err := loadKeys(cfg)
	if err != nil {
		return err
	}

	mux := &source.Mux{HTTP: source.NewHTTP(cfg.Server.BaseURL, cfg.Server.Timeout), Files: source.Files{}}
	if cat, err := source.OpenCatalog(ctx, cfg.Catalog.Path); err != nil {
		log.Warn("catalog unavailable", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	} else {
		defer cat.Close()
		mux.Catalog = cat
	}

	p := player.New(player.Options{
		DisablePrediction: noPredict || !cfg.Player.PredictionMode,
		Highlight:         highlight.Options{FramePath: cfg.Player.FramePath, Sticky: cfg.Player.StickyHover},
		Logger:            log.Named("player"),
	})
	defer p.Dispose()

	opts := tui.Options{
		Player:       p,
		Keys:         keys,
		Loader:       source.NewLoader(mux, log.Named("loader")),
		Logger:       log,
		InitialRef:   ref,
		FetchTimeout: cfg.Server.Timeout,
	}
	if watch {
		if _, err := os.Stat(ref); err != nil {
			return fmt.Errorf("--watch needs a local trace file: %w", err)
		}
		w, err := source.NewWatcher(ref, source.DefaultDebounce, log.Named("watcher"))
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Close()
		opts.Changes = w.Changes()
	}

	log.Info("player starting", zap.String("ref", ref), zap.Bool("watch", watch))
	prog := tea.NewProgram(tui.New(opts), tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run player: %w", err)
	}
	return nil
}

func loadKeys(cfg config.Config) (*bindings.Keymap, error) {
	keys := bindings.Default()
	overrides, err := bindings.LoadOverrides(cfg.Keys.File)
	if err != nil {
		return nil, err
	}
	if len(overrides) == 0 {
		return keys, nil
	}
	if err := keys.Apply(overrides); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Keys.File, err)
	}
	return keys, nil
}

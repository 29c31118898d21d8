package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"hearing-test/dsp"
	"hearing-test/triallog"
)

const usage = `Hearing threshold test

Usage: hearing-test [output-file]

Plays a pure tone at a random pitch and loudness. Adjust it until it is just
audible and press Space to log the response; a new random tone follows.
Responses are appended to output-file, or written to standard output.

Set HEARING_TEST_CONFIG to a YAML file to change audio or logging settings.`

func main() {
	outPath, err := parseArgs(os.Args[1:])
	if errors.Is(err, errHelp) {
		fmt.Println(usage)
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := LoadConfig(os.Getenv(configEnv))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}

	logger, err := setupLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, outPath, logger); err != nil {
		logger.Fatal("hearing test failed", zap.Error(err))
	}
}

var errHelp = errors.New("help requested")

// parseArgs accepts at most one positional argument, the output path.
func parseArgs(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		if args[0] == "-h" || args[0] == "--help" {
			return "", errHelp
		}
		return args[0], nil
	default:
		return "", fmt.Errorf("expected at most one argument, got %d", len(args))
	}
}

func run(cfg Config, outPath string, logger *zap.Logger) error {
	sampleRate := float64(cfg.Audio.SampleRate)

	var rng *rand.Rand
	if cfg.Random.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Random.Seed, cfg.Random.Seed))
	}

	levels, err := dsp.NewLevelController(sampleRate, rng)
	if err != nil {
		return fmt.Errorf("configure levels: %w", err)
	}

	trials, err := triallog.Open(outPath, os.Stdout)
	if err != nil {
		return err
	}

	session := NewSession(levels, trials, logger)
	defer session.Close()

	if outPath == "" && term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Warn("trial records go to the terminal and will be hidden by the test screen; pass an output file or redirect stdout")
	}

	synth := dsp.NewToneSynthesizer(levels, sampleRate, cfg.Audio.Channels)

	device, err := NewOtoDevice(synth, cfg.Audio.BufferMS)
	if err != nil {
		return err
	}
	defer device.Close()

	logger.Info("hearing test starting",
		zap.String("output", outputName(outPath)),
		zap.Int("sample_rate", cfg.Audio.SampleRate),
		zap.Int("channels", cfg.Audio.Channels),
		zap.Int("max_frequency_level", levels.MaxFrequencyLevel()),
	)

	device.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()

		return runTUI(gctx, &TUIState{
			session:    session,
			levels:     levels,
			synth:      synth,
			streamErr:  device.Err,
			showLevels: cfg.Display.ShowLevels,
		})
	})

	g.Go(func() error {
		select {
		case sig := <-sigs:
			logger.Info("signal received, shutting down", zap.Stringer("signal", sig))
			cancel()
		case <-gctx.Done():
		}

		return nil
	})

	err = g.Wait()

	logger.Info("hearing test finished", zap.Int("responses", session.Trials()))

	return err
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}

	return path
}

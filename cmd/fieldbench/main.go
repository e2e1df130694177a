// fieldbench drives a synthetic workload against the fields engine:
// one privileged writer mutating shared owners while a pool of readers
// races it, reporting throughput for both sides.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/byroot/fieldstore/pkg/fields"
	"github.com/byroot/fieldstore/pkg/isolation"
	"github.com/byroot/fieldstore/pkg/value"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "fieldbench: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	readers := flag.Int("readers", 8, "Number of concurrent reader contexts")
	owners := flag.Int("owners", 4, "Number of owner objects")
	attrs := flag.Int("attrs", 12, "Number of attribute names per owner")
	duration := flag.Duration("duration", 3*time.Second, "How long to run the workload")
	tuningPath := flag.String("tuning", "", "Optional YAML tuning file (max_variations, capacity_step)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	churn := flag.Bool("churn", false, "Remove attributes periodically to exercise compaction and demotion")
	flag.Parse()

	ll := &slog.LevelVar{}
	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("invalid log level %q", *logLevel)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))

	tuning := fields.DefaultTuning()
	if *tuningPath != "" {
		var err error
		if tuning, err = fields.LoadTuning(*tuningPath); err != nil {
			return err
		}
	}
	logger.Info("starting workload",
		"readers", *readers, "owners", *owners, "attrs", *attrs,
		"duration", *duration, "churn", *churn,
		"max_variations", tuning.MaxVariations, "capacity_step", tuning.CapacityStep)

	space := fields.NewSpace(fields.WithTuning(tuning), fields.WithLogger(logger))
	world := isolation.NewWorld()
	priv := world.Main()

	targets := make([]*fields.Owner, *owners)
	names := make([]string, *attrs)
	for i := range names {
		names[i] = fmt.Sprintf("attr_%d", i)
	}
	for i := range targets {
		targets[i] = space.NewOwner(fmt.Sprintf("Owner%d", i))
		for j, name := range names {
			if err := targets[i].Set(priv, name, value.Integer(int64(j))); err != nil {
				return err
			}
		}
	}

	var reads, writes atomic.Int64
	var done atomic.Bool
	var g errgroup.Group

	for r := 0; r < *readers; r++ {
		g.Go(func() error {
			ctx := world.Spawn()
			for i := 0; !done.Load(); i++ {
				owner := targets[i%len(targets)]
				if _, _, err := owner.Get(ctx, names[i%len(names)]); err != nil {
					return fmt.Errorf("reader: %w", err)
				}
				reads.Add(1)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer done.Store(true)
		deadline := time.Now().Add(*duration)
		for i := 0; time.Now().Before(deadline); i++ {
			owner := targets[i%len(targets)]
			name := names[i%len(names)]
			if err := owner.Set(priv, name, value.Integer(int64(i))); err != nil {
				return fmt.Errorf("writer: %w", err)
			}
			if *churn && i%64 == 63 {
				if _, _, err := owner.Remove(priv, name); err != nil {
					return fmt.Errorf("writer remove: %w", err)
				}
			}
			writes.Add(1)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	secs := duration.Seconds()
	if secs <= 0 {
		secs = 1
	}
	logger.Info("workload finished",
		"reads", reads.Load(), "writes", writes.Load(),
		"reads_per_sec", int64(float64(reads.Load())/secs),
		"writes_per_sec", int64(float64(writes.Load())/secs))
	for _, owner := range targets {
		info := owner.ShapeInfo()
		logger.Info("owner layout", "owner", owner.Name(),
			"fields", info.FieldsCount, "capacity", info.Capacity, "mode", info.Mode.String())
	}
	return nil
}

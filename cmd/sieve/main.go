package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
	"github.com/tarungka/sieve/internal/catalog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/metrics"
	"github.com/tarungka/sieve/pipeline"
)

var buildString = "unknown"

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Err(err).Msg("sieve failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	ko := koanf.New(".")
	f := newFlagSet()
	if err := initFlags(f, args); err != nil {
		return err
	}

	if v, _ := f.GetBool("version"); v {
		fmt.Println(buildString)
		return nil
	}

	if err := setupLogging(f); err != nil {
		return err
	}
	log.Info().Str("build", buildString).Msg("Starting sieve")

	if err := initConfig(ko, f); err != nil {
		return err
	}
	wf, err := pipeline.Load(ko)
	if err != nil {
		return err
	}

	cat, err := catalog.Open(wf.Catalog)
	if err != nil {
		return err
	}
	defer closeCatalog(cat)

	jobs := make([]*pipeline.Job, 0, len(wf.Pipelines))
	for _, c := range wf.Pipelines {
		job, err := pipeline.Build(c, cat)
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := metrics.NewRegistry()
	runner := pipeline.NewRunner(registry)
	results := runner.Run(ctx, jobs)

	if ko.Bool("metrics") {
		logMetrics(registry)
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		log.Info().Str("pipeline", r.Job).Int("tuples", len(r.Tuples)).Dur("duration", r.Duration).Msg("Pipeline done")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pipelines failed", failed, len(results))
	}
	return nil
}

func closeCatalog(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Err(err).Msg("Error when closing the catalog")
	}
}

func setupLogging(f *flag.FlagSet) error {
	dev, _ := f.GetBool("dev")
	logger.SetDevelopment(dev)

	if path, _ := f.GetString("log-file"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetLogFile(file)
	}

	levelName, _ := f.GetString("log-level")
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger.Setup(level)
	return nil
}

func logMetrics(registry *metrics.Registry) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(registry); err != nil {
		log.Err(err).Msg("Error when registering operator metrics")
		return
	}
	flat, err := metrics.Flatten(reg)
	if err != nil {
		log.Err(err).Msg("Error when gathering operator metrics")
		return
	}
	event := log.Info()
	for k, v := range flat {
		event = event.Float64(k, v)
	}
	event.Msg("Operator metrics")
}

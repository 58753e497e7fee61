package main

import (
	"context"
	"io"
	"os"
	"time"

	"stratumprobe/config"
	"stratumprobe/output"
	"stratumprobe/probe"
)

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		config.Usage(os.Stdout)
		return
	}
	// Monitoring agents treat a non-zero exit as an unsupported item, so
	// every failure is reported as the value 0 with a clean exit.
	run(os.Args[1:], os.Stdout)
}

func run(args []string, stdout io.Writer) {
	opts, err := config.Load(args)
	if err != nil {
		_ = output.WriteMetric(stdout, probe.Failure)
		return
	}

	logger, closeLog, err := opts.NewLogger()
	defer closeLog()
	if err != nil {
		logger.WithField("error", err).Warn("log file unavailable")
	}

	facts, err := probe.Run(context.Background(), opts.ProbeConfig(logger))
	value := probe.Failure
	if err == nil {
		value = opts.Metric.Project(facts)
	} else {
		logger.WithField("error", err).Warn("probe failed")
	}

	if opts.Report != "" {
		r := output.Report{
			Host:      opts.Host,
			Port:      opts.Port,
			TLS:       opts.TLS,
			Metric:    string(opts.Metric),
			Value:     value,
			LatencyMs: probe.LatencyMillis(facts.Elapsed),
			Facts:     facts,
			CheckedAt: time.Now().UTC(),
		}
		if err != nil {
			r.Error = err.Error()
		}
		if werr := output.WriteReport(opts.Report, r); werr != nil {
			logger.WithField("error", werr).Warn("report not written")
		}
	}

	if err := output.WriteMetric(stdout, value); err != nil {
		logger.WithField("error", err).Error("write value")
	}
}

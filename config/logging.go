package config

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// NewLogger builds the probe logger. Without --verbose or --log-file logs
// are discarded: monitoring agents may capture stderr together with stdout
// and the value line must stay alone.
//
// The returned func closes the log file, if any.
func (o *Options) NewLogger() (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.WarnLevel)
	closer := func() {}

	var writers []io.Writer
	if o.Verbose {
		logger.SetLevel(logrus.DebugLevel)
		writers = append(writers, os.Stderr)
		if term.IsTerminal(int(os.Stderr.Fd())) {
			logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			logger.SetFormatter(&logrus.JSONFormatter{})
		}
	}
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return logger, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = func() { _ = f.Close() }
		writers = append(writers, f)
		logger.SetFormatter(&logrus.JSONFormatter{})
		if !o.Verbose {
			logger.SetLevel(logrus.InfoLevel)
		}
	}

	switch len(writers) {
	case 0:
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
	return logger, closer, nil
}

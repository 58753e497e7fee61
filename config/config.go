// Package config turns the probe's command line, environment and optional
// TOML profile into validated probe parameters.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"stratumprobe/port"
	"stratumprobe/probe"
)

// EnvPrefix prefixes every environment override, e.g. STRATUM_PROBE_TIMEOUT.
const EnvPrefix = "STRATUM_PROBE"

// Flag names. They double as viper keys, profile keys and env suffixes.
const (
	keyTimeout       = "timeout"
	keyTLS           = "tls"
	keySNI           = "sni"
	keyInsecure      = "insecure"
	keyUser          = "user"
	keyPassword      = "passw"
	keyUserAgent     = "useragent"
	keyExtra         = "extra"
	keyProxyProtocol = "proxy-protocol"
	keyConfig        = "config"
	keyVerbose       = "verbose"
	keyLogFile       = "log-file"
	keyReport        = "report"
)

// Options is the fully resolved invocation. It is immutable once returned.
type Options struct {
	Host   string
	Port   uint16
	Metric probe.Metric

	Timeout  time.Duration
	TLS      bool
	SNI      string
	Insecure bool

	User      string
	Password  string
	UserAgent string

	ProxyProtocol int

	Verbose bool
	LogFile string
	Report  string
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("stratumprobe", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.Float64(keyTimeout, probe.DefaultTimeout.Seconds(), "overall probe timeout in seconds")
	fs.Bool(keyTLS, false, "use TLS (stratum+ssl)")
	fs.String(keySNI, "", "override the TLS server name")
	fs.Bool(keyInsecure, false, "disable TLS certificate and hostname verification")
	fs.String(keyUser, "", "worker username; enables mining.authorize")
	fs.String(keyPassword, probe.DefaultPassword, "worker password for mining.authorize")
	fs.String(keyUserAgent, probe.DefaultUserAgent, "user agent sent in mining.subscribe")
	fs.String(keyExtra, "", "further flags as one shell-quoted string (macro friendly)")
	fs.Int(keyProxyProtocol, 0, "send a PROXY protocol header of this version (1 or 2)")
	fs.String(keyConfig, "", "TOML profile with default flag values")
	fs.Bool(keyVerbose, false, "debug logging to stderr")
	fs.String(keyLogFile, "", "append JSON logs to this file")
	fs.String(keyReport, "", "write every fact of the probe as JSON to this file")
	return fs
}

// Usage describes the command line.
func Usage(w io.Writer) {
	fs := newFlagSet()
	metrics := make([]string, 0, len(probe.Metrics))
	for _, m := range probe.Metrics {
		metrics = append(metrics, string(m))
	}
	fmt.Fprintf(w, "usage: stratumprobe HOST PORT METRIC [flags]\n\nmetrics: %s\n\nflags:\n", strings.Join(metrics, ", "))
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// Load resolves args (without the program name). Precedence per key is
// flag, then STRATUM_PROBE_* environment, then profile, then default.
func Load(args []string) (*Options, error) {
	merged, err := expandExtra(args)
	if err != nil {
		return nil, err
	}

	fs := newFlagSet()
	if err := fs.Parse(merged); err != nil {
		return nil, err
	}
	if fs.NArg() != 3 {
		return nil, fmt.Errorf("expected HOST PORT METRIC, got %d positional arguments", fs.NArg())
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if path := v.GetString(keyConfig); path != "" {
		profile, err := loadProfile(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(profile); err != nil {
			return nil, fmt.Errorf("merge profile %s: %w", path, err)
		}
	}

	host := strings.TrimSpace(fs.Arg(0))
	if host == "" {
		return nil, errors.New("empty host")
	}
	portNum, err := port.ParsePort(fs.Arg(1))
	if err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}
	metric, err := probe.ParseMetric(fs.Arg(2))
	if err != nil {
		return nil, err
	}

	secs := v.GetFloat64(keyTimeout)
	if secs <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", secs)
	}
	pp := v.GetInt(keyProxyProtocol)
	if pp < 0 || pp > 2 {
		return nil, fmt.Errorf("proxy-protocol must be 0, 1 or 2, got %d", pp)
	}

	return &Options{
		Host:          host,
		Port:          portNum,
		Metric:        metric,
		Timeout:       time.Duration(secs * float64(time.Second)),
		TLS:           v.GetBool(keyTLS),
		SNI:           v.GetString(keySNI),
		Insecure:      v.GetBool(keyInsecure),
		User:          v.GetString(keyUser),
		Password:      v.GetString(keyPassword),
		UserAgent:     v.GetString(keyUserAgent),
		ProxyProtocol: pp,
		Verbose:       v.GetBool(keyVerbose),
		LogFile:       v.GetString(keyLogFile),
		Report:        v.GetString(keyReport),
	}, nil
}

// expandExtra splices the shell-split contents of --extra onto the argument
// list. Monitoring templates can only pass one macro per parameter, so the
// optional flags travel as a single string.
func expandExtra(args []string) ([]string, error) {
	cleaned := make([]string, 0, len(args))
	var extra []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--"+keyExtra:
			if i+1 < len(args) {
				i++
				toks, err := shlex.Split(args[i])
				if err != nil {
					return nil, fmt.Errorf("split --extra: %w", err)
				}
				extra = append(extra, toks...)
			}
		case strings.HasPrefix(a, "--"+keyExtra+"="):
			toks, err := shlex.Split(strings.TrimPrefix(a, "--"+keyExtra+"="))
			if err != nil {
				return nil, fmt.Errorf("split --extra: %w", err)
			}
			extra = append(extra, toks...)
		default:
			cleaned = append(cleaned, a)
		}
	}
	return append(cleaned, extra...), nil
}

// loadProfile decodes a TOML profile whose keys mirror the flag names.
func loadProfile(path string) (map[string]interface{}, error) {
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		if err == nil {
			return nil, errors.New("config path is a directory")
		}
		return nil, err
	}
	profile := make(map[string]interface{})
	if _, err := toml.DecodeFile(path, &profile); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", path, err)
	}
	for k := range profile {
		if !profileKey(k) {
			return nil, fmt.Errorf("profile %s: unknown key %q", path, k)
		}
	}
	return profile, nil
}

func profileKey(k string) bool {
	switch k {
	case keyTimeout, keyTLS, keySNI, keyInsecure, keyUser, keyPassword, keyUserAgent,
		keyProxyProtocol, keyVerbose, keyLogFile, keyReport:
		return true
	}
	return false
}

// ProbeConfig converts the options into the probe's parameters.
func (o *Options) ProbeConfig(log logrus.FieldLogger) probe.Config {
	return probe.Config{
		Host:          o.Host,
		Port:          o.Port,
		Metric:        o.Metric,
		Timeout:       o.Timeout,
		TLS:           o.TLS,
		SNI:           o.SNI,
		Insecure:      o.Insecure,
		ProxyProtocol: o.ProxyProtocol,
		User:          o.User,
		Password:      o.Password,
		UserAgent:     o.UserAgent,
		Logger:        log,
	}
}

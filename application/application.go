package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/jsonutil"
	zlog "github.com/lk2023060901/danmu-garden-jsonkit/pkg/log"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
	zviper "github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/viper"
)

const (
	defaultConfigPath = "./config.yaml"

	envConfigFilePath = "GARDEN_CONFIG_FILE_PATH"
)

// Application is the main runtime container for a garden process.
// It owns configuration and manages common dependencies.
type Application struct {
	cfg     *zviper.Config
	loggers map[string]*zlog.MLogger
	args    []string
}

// New creates a new Application instance reading flags from os.Args.
func New() *Application {
	return &Application{args: os.Args[1:]}
}

// NewWithArgs creates an Application that parses args instead of os.Args.
func NewWithArgs(args []string) *Application {
	return &Application{args: args}
}

// Run is the entry of a garden application.
// It loads the configuration file using the following priority:
//  1. Default: ./config.yaml
//  2. Env: GARDEN_CONFIG_FILE_PATH
//  3. CLI: --config <path> or --config=<path>
//
// then initializes logging, metrics and the process-wide JSON engine.
func (a *Application) Run() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}

	if _, err := maxprocs.Set(maxprocs.Logger(zlog.S().Infof)); err != nil {
		zlog.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	metrics.Register(metrics.GetRegisterer())

	return a.initJSON()
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if a.loggers == nil {
		return &zlog.MLogger{Logger: zlog.L()}
	}
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// loadConfig resolves config file path and loads it via viper wrapper.
func (a *Application) loadConfig() (*zviper.Config, error) {
	configPath := defaultConfigPath

	if envPath := os.Getenv(envConfigFilePath); envPath != "" {
		configPath = envPath
	}

	args := a.args
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return nil, merr.WrapErrParameterMissing("--config", "missing value after --config")
			}
			configPath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--config=") {
			if val := strings.TrimPrefix(arg, "--config="); val != "" {
				configPath = val
			}
			continue
		}
	}

	cfg := zviper.New()
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, merr.WrapErrConfigLoadFailed(configPath, err)
	}

	return cfg, nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	return a.initModuleLoggersFromConfig()
}

// initGlobalLoggerFromEnv configures the process-wide logger based on GARDEN_LOG_* env vars.
//
//   - GARDEN_LOG_ENABLE: "1"/"true" to enable outputs; others treated as disabled.
//   - GARDEN_LOG_LEVEL: log level (default "info").
//   - GARDEN_LOG_STDOUT: whether to log to stdout (default false).
//   - GARDEN_LOG_FILE_DIR: log directory.
//   - GARDEN_LOG_FILE: log file name (empty means no file).
//   - GARDEN_LOG_FORMAT: log format ("text" or "json", default "text").
func (a *Application) initGlobalLoggerFromEnv() error {
	enabled := zlog.GetenvBool("GARDEN_LOG_ENABLE", false)

	cfg := &zlog.Config{
		Level:  zlog.GetenvDefault("GARDEN_LOG_LEVEL", "info"),
		Format: zlog.GetenvDefault("GARDEN_LOG_FORMAT", zlog.FormatText),
		Stdout: zlog.GetenvBool("GARDEN_LOG_STDOUT", false),
		File: zlog.FileLogConfig{
			RootPath: zlog.GetenvDefault("GARDEN_LOG_FILE_DIR", ""),
			Filename: zlog.GetenvDefault("GARDEN_LOG_FILE", ""),
		},
	}

	// When not enabled, direct all outputs to a discarded sink.
	if !enabled {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger from env")
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from YAML config under "logging" key.
//
// Example:
//
//	logging:
//	  jsonutil:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: jsonutil.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return merr.WrapErrConfigInvalid("logging", err.Error())
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}

	return nil
}

// initJSON sets up the process-wide JSON engine from the "json" key.
// Without that key the engine keeps its defaults and is built lazily.
func (a *Application) initJSON() error {
	if a.cfg == nil || !a.cfg.IsSet(jsonutil.ConfigKey) {
		return nil
	}
	if err := jsonutil.SetupFromViper(a.cfg); err != nil {
		return err
	}
	cur := jsonutil.CurrentConfig()
	zlog.Info("json engine configured",
		zlog.FieldEngine(cur.Engine),
		zap.Bool("failOnUnknownFields", cur.FailOnUnknownFields),
		zap.Bool("writeDatesAsTimestamps", cur.WriteDatesAsTimestamps))
	return nil
}

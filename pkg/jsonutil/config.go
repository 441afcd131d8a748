package jsonutil

import (
	"github.com/lk2023060901/danmu-garden-jsonkit/internal/json"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/viper"
)

// ConfigKey 为配置文件中 JSON 引擎配置所在的 key。
const ConfigKey = "json"

// Config 为进程级 JSON 引擎的配置。
type Config = json.Config

const (
	EngineSonic    = json.EngineSonic
	EngineJSONIter = json.EngineJSONIter
	EngineGoccy    = json.EngineGoccy
)

// DefaultConfig 返回默认配置：sonic 引擎，忽略未知字段，时间输出为 RFC3339Nano 字符串。
func DefaultConfig() *Config {
	return json.DefaultConfig()
}

// CurrentConfig 返回当前生效的配置副本。
func CurrentConfig() Config {
	return json.CurrentConfig()
}

// Setup 在第一次编解码之前设置进程级引擎，只能成功调用一次。
func Setup(cfg *Config) error {
	return json.Setup(cfg)
}

// LoadConfig 从 YAML/JSON 文件的 "json" 段读取配置，未出现的字段保持默认值。
//
//	json:
//	  engine: jsoniter
//	  write-dates-as-timestamps: true
func LoadConfig(path string) (*Config, error) {
	c := viper.New()
	if err := c.LoadFile(path); err != nil {
		return nil, merr.WrapErrConfigLoadFailed(path, err)
	}
	return configFrom(c)
}

func configFrom(c *viper.Config) (*Config, error) {
	cfg := DefaultConfig()
	if err := c.UnmarshalKey(ConfigKey, cfg); err != nil {
		return nil, merr.WrapErrConfigInvalid(ConfigKey, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupFromViper 读取已加载配置中的 "json" 段并设置进程级引擎。
func SetupFromViper(c *viper.Config) error {
	cfg, err := configFrom(c)
	if err != nil {
		return err
	}
	return Setup(cfg)
}

// SetupFromFile 等价于 LoadConfig 之后调用 Setup。
func SetupFromFile(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	return Setup(cfg)
}

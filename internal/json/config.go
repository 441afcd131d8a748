package json

import (
	"time"

	"github.com/samber/lo"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

const (
	EngineSonic    = "sonic"
	EngineJSONIter = "jsoniter"
	EngineGoccy    = "goccy"
)

// Engines 列出所有可选的 JSON 引擎。
var Engines = []string{EngineSonic, EngineJSONIter, EngineGoccy}

// DefaultDateLayout 与 time.Time.MarshalJSON 的输出格式一致。
const DefaultDateLayout = time.RFC3339Nano

// Config 为进程级 JSON 引擎的配置，在引擎初始化后不可再修改。
type Config struct {
	// Engine 为底层 JSON 库，可选 sonic、jsoniter、goccy，默认 sonic。
	Engine string `toml:"engine" json:"engine" mapstructure:"engine"`
	// FailOnUnknownFields 为 true 时，输入中出现目标类型未声明的字段会导致反序列化失败。
	FailOnUnknownFields bool `toml:"fail-on-unknown-fields" json:"fail-on-unknown-fields" mapstructure:"fail-on-unknown-fields"`
	// WriteDatesAsTimestamps 为 true 时，time.Time 输出为毫秒时间戳，否则输出为格式化字符串。
	WriteDatesAsTimestamps bool `toml:"write-dates-as-timestamps" json:"write-dates-as-timestamps" mapstructure:"write-dates-as-timestamps"`
	// DateLayout 为 time.Time 的字符串格式，默认 RFC3339Nano。
	DateLayout string `toml:"date-layout" json:"date-layout" mapstructure:"date-layout"`
	// WriteDurationsAsText 为 true 时，time.Duration 输出为 "1h30m0s" 形式的字符串。
	WriteDurationsAsText bool `toml:"write-durations-as-text" json:"write-durations-as-text" mapstructure:"write-durations-as-text"`
	// EscapeHTML 表示是否转义 <、>、&。
	EscapeHTML bool `toml:"escape-html" json:"escape-html" mapstructure:"escape-html"`
	// SortMapKeys 表示是否按 key 排序输出 map。
	SortMapKeys bool `toml:"sort-map-keys" json:"sort-map-keys" mapstructure:"sort-map-keys"`
	// UseNumber 为 true 时，解码到 any 的数字保留为 json.Number 而非 float64。
	UseNumber bool `toml:"use-number" json:"use-number" mapstructure:"use-number"`
	// ProtoEmitUnpopulated 表示 proto.Message 是否输出零值字段。
	ProtoEmitUnpopulated bool `toml:"proto-emit-unpopulated" json:"proto-emit-unpopulated" mapstructure:"proto-emit-unpopulated"`
	// ProtoUseEnumNumbers 表示 proto.Message 的枚举是否输出为数字。
	ProtoUseEnumNumbers bool `toml:"proto-use-enum-numbers" json:"proto-use-enum-numbers" mapstructure:"proto-use-enum-numbers"`
}

// DefaultConfig 返回默认配置：忽略未知字段，时间输出为 RFC3339Nano 字符串。
func DefaultConfig() *Config {
	return &Config{
		Engine:     EngineSonic,
		DateLayout: DefaultDateLayout,
	}
}

// initialize 为 Config 填充缺省值。
func (cfg *Config) initialize() {
	if cfg.Engine == "" {
		cfg.Engine = EngineSonic
	}
	if cfg.DateLayout == "" {
		cfg.DateLayout = DefaultDateLayout
	}
}

// customTemporal 返回只有 jsoniter 扩展才能表达的、已开启的时间选项名。
func (cfg *Config) customTemporal() []string {
	var opts []string
	if cfg.WriteDatesAsTimestamps {
		opts = append(opts, "write-dates-as-timestamps")
	}
	if cfg.DateLayout != DefaultDateLayout {
		opts = append(opts, "date-layout")
	}
	if cfg.WriteDurationsAsText {
		opts = append(opts, "write-durations-as-text")
	}
	return opts
}

// Validate 填充缺省值并检查配置是否可以被所选引擎支持。
func (cfg *Config) Validate() error {
	cfg.initialize()
	if !lo.Contains(Engines, cfg.Engine) {
		return merr.WrapErrJSONEngineUnknown(cfg.Engine)
	}
	if cfg.Engine != EngineJSONIter {
		if opts := cfg.customTemporal(); len(opts) > 0 {
			return merr.WrapErrJSONEngineNotSupported(cfg.Engine, opts[0])
		}
	}
	return nil
}

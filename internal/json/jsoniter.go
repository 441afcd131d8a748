package json

import (
	jsoniter "github.com/json-iterator/go"
)

// jsoniterAPI 基于 json-iterator。
// 只有这个引擎支持自定义时间格式，见 temporalExtension。
// json-iterator 不检测引用环，编码前先经过 checkEncodable。
type jsoniterAPI struct {
	api jsoniter.API
}

var _ API = (*jsoniterAPI)(nil)

func newJSONIterAPI(cfg *Config) *jsoniterAPI {
	api := jsoniter.Config{
		EscapeHTML:             cfg.EscapeHTML,
		SortMapKeys:            cfg.SortMapKeys,
		UseNumber:              cfg.UseNumber,
		DisallowUnknownFields:  cfg.FailOnUnknownFields,
		ValidateJsonRawMessage: true,
	}.Froze()
	// 扩展必须在第一次编解码之前注册，否则已缓存的编解码器不会生效
	api.RegisterExtension(newTemporalExtension(cfg))
	return &jsoniterAPI{api: api}
}

func (a *jsoniterAPI) Name() string {
	return EngineJSONIter
}

func (a *jsoniterAPI) Marshal(v any) ([]byte, error) {
	if err := checkEncodable(v); err != nil {
		return nil, err
	}
	return a.api.Marshal(v)
}

func (a *jsoniterAPI) MarshalToString(v any) (string, error) {
	if err := checkEncodable(v); err != nil {
		return "", err
	}
	return a.api.MarshalToString(v)
}

func (a *jsoniterAPI) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	if err := checkEncodable(v); err != nil {
		return nil, err
	}
	return a.api.MarshalIndent(v, prefix, indent)
}

func (a *jsoniterAPI) Unmarshal(data []byte, v any) error {
	return a.api.Unmarshal(data, v)
}

func (a *jsoniterAPI) UnmarshalFromString(data string, v any) error {
	return a.api.UnmarshalFromString(data, v)
}

func (a *jsoniterAPI) Valid(data []byte) bool {
	return a.api.Valid(data)
}

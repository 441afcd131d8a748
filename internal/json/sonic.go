package json

import (
	"github.com/bytedance/sonic"
)

// sonicAPI 基于 bytedance/sonic 的冻结配置。
type sonicAPI struct {
	api sonic.API
}

var _ API = (*sonicAPI)(nil)

func newSonicAPI(cfg *Config) *sonicAPI {
	return &sonicAPI{
		api: sonic.Config{
			EscapeHTML:            cfg.EscapeHTML,
			SortMapKeys:           cfg.SortMapKeys,
			CompactMarshaler:      true,
			CopyString:            true,
			ValidateString:        true,
			UseNumber:             cfg.UseNumber,
			DisallowUnknownFields: cfg.FailOnUnknownFields,
		}.Froze(),
	}
}

func (a *sonicAPI) Name() string {
	return EngineSonic
}

func (a *sonicAPI) Marshal(v any) ([]byte, error) {
	return a.api.Marshal(v)
}

func (a *sonicAPI) MarshalToString(v any) (string, error) {
	return a.api.MarshalToString(v)
}

func (a *sonicAPI) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return a.api.MarshalIndent(v, prefix, indent)
}

func (a *sonicAPI) Unmarshal(data []byte, v any) error {
	return a.api.Unmarshal(data, v)
}

func (a *sonicAPI) UnmarshalFromString(data string, v any) error {
	return a.api.UnmarshalFromString(data, v)
}

func (a *sonicAPI) Valid(data []byte) bool {
	return a.api.Valid(data)
}

package json

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	gojson "github.com/goccy/go-json"
)

// goccyAPI 基于 goccy/go-json。
//
// goccy 没有冻结配置的概念，编码选项在每次调用时传入；
// 需要 DisallowUnknownFields/UseNumber 时走 Decoder。
type goccyAPI struct {
	encOpts         []gojson.EncodeOptionFunc
	disallowUnknown bool
	useNumber       bool
}

var _ API = (*goccyAPI)(nil)

func newGoccyAPI(cfg *Config) *goccyAPI {
	var opts []gojson.EncodeOptionFunc
	if !cfg.EscapeHTML {
		opts = append(opts, gojson.DisableHTMLEscape())
	}
	if !cfg.SortMapKeys {
		opts = append(opts, gojson.UnorderedMap())
	}
	return &goccyAPI{
		encOpts:         opts,
		disallowUnknown: cfg.FailOnUnknownFields,
		useNumber:       cfg.UseNumber,
	}
}

func (a *goccyAPI) Name() string {
	return EngineGoccy
}

func (a *goccyAPI) Marshal(v any) ([]byte, error) {
	return gojson.MarshalWithOption(v, a.encOpts...)
}

func (a *goccyAPI) MarshalToString(v any) (string, error) {
	data, err := a.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (a *goccyAPI) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndentWithOption(v, prefix, indent, a.encOpts...)
}

func (a *goccyAPI) Unmarshal(data []byte, v any) error {
	if !a.disallowUnknown && !a.useNumber {
		return gojson.Unmarshal(data, v)
	}

	dec := gojson.NewDecoder(bytes.NewReader(data))
	if a.disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if a.useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Decoder 只读取第一个值，剩余内容需要单独校验
	var rest gojson.RawMessage
	if err := dec.Decode(&rest); !errors.Is(err, io.EOF) {
		return errors.New("json: invalid character after top-level value")
	}
	return nil
}

func (a *goccyAPI) UnmarshalFromString(data string, v any) error {
	return a.Unmarshal([]byte(data), v)
}

func (a *goccyAPI) Valid(data []byte) bool {
	return gojson.Valid(data)
}

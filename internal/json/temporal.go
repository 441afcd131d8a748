package json

import (
	"reflect"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
	"github.com/modern-go/reflect2"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// temporalExtension 为单个 jsoniter.API 接管 time.Time 与 time.Duration 的编解码。
//
// time.Time：默认按 layout 输出字符串，WriteDatesAsTimestamps 时输出毫秒时间戳；
// 解码时两种形式都接受。
// time.Duration：仅在 WriteDurationsAsText 时接管，输出 time.Duration.String() 的格式；
// 解码时同时接受字符串与纳秒整数。
type temporalExtension struct {
	jsoniter.DummyExtension
	time     *timeCodec
	duration *durationCodec
}

func newTemporalExtension(cfg *Config) *temporalExtension {
	ext := &temporalExtension{
		time: &timeCodec{
			layout:      cfg.DateLayout,
			asTimestamp: cfg.WriteDatesAsTimestamps,
		},
	}
	if cfg.WriteDurationsAsText {
		ext.duration = &durationCodec{}
	}
	return ext
}

func (e *temporalExtension) CreateEncoder(typ reflect2.Type) jsoniter.ValEncoder {
	switch t := typ.Type1(); {
	case t == timeType:
		return e.time
	case t == durationType && e.duration != nil:
		return e.duration
	}
	return nil
}

func (e *temporalExtension) CreateDecoder(typ reflect2.Type) jsoniter.ValDecoder {
	switch t := typ.Type1(); {
	case t == timeType:
		return e.time
	case t == durationType && e.duration != nil:
		return e.duration
	}
	return nil
}

type timeCodec struct {
	layout      string
	asTimestamp bool
}

// IsEmpty 与 encoding/json 一致，omitempty 不会省略结构体类型的 time.Time。
func (c *timeCodec) IsEmpty(ptr unsafe.Pointer) bool {
	return false
}

func (c *timeCodec) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	t := *(*time.Time)(ptr)
	if c.asTimestamp {
		stream.WriteInt64(t.UnixMilli())
		return
	}
	stream.WriteString(t.Format(c.layout))
}

func (c *timeCodec) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
	case jsoniter.NumberValue:
		*(*time.Time)(ptr) = time.UnixMilli(iter.ReadInt64()).UTC()
	case jsoniter.StringValue:
		s := iter.ReadString()
		t, err := time.Parse(c.layout, s)
		if err != nil {
			iter.ReportError("decode time.Time", err.Error())
			return
		}
		*(*time.Time)(ptr) = t
	default:
		iter.ReportError("decode time.Time", "expect string or number")
	}
}

type durationCodec struct{}

func (c *durationCodec) IsEmpty(ptr unsafe.Pointer) bool {
	return *(*time.Duration)(ptr) == 0
}

func (c *durationCodec) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	stream.WriteString((*(*time.Duration)(ptr)).String())
}

func (c *durationCodec) Decode(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
	case jsoniter.NumberValue:
		*(*time.Duration)(ptr) = time.Duration(iter.ReadInt64())
	case jsoniter.StringValue:
		d, err := time.ParseDuration(iter.ReadString())
		if err != nil {
			iter.ReportError("decode time.Duration", err.Error())
			return
		}
		*(*time.Duration)(ptr) = d
	default:
		iter.ReportError("decode time.Duration", "expect string or number")
	}
}

// Package jsonutil 提供基于进程级 JSON 引擎的便捷编解码函数。
//
// ToJSON、FromJSON 与 FromJSONGeneric 从不返回错误，也不会 panic：
// nil 输入或空白文本记录一条 Warn 日志，编解码失败记录一条带原因的 Error 日志，
// 然后返回空字符串或“不存在”。返回值本身无法区分“失败”和“本来就是空”，
// 需要区分的调用方请使用 Marshal、Unmarshal 与 UnmarshalGeneric。
//
// 引擎默认忽略未知字段，time.Time 输出为 RFC3339Nano 字符串，
// 可以在第一次使用之前通过 Setup 或 SetupFromFile 调整。
//
// 包内只有函数，没有需要实例化的类型。
package jsonutil

import (
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-jsonkit/internal/json"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/log"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

const (
	moduleName = "jsonutil"

	prettyIndent = "  "
	nullLiteral  = "null"
)

func logger() *log.MLogger {
	return log.With(log.FieldModule(moduleName))
}

// ToJSON 将 v 编码为 JSON 文本。
// v 为 nil（包括 nil 指针、map、slice）或编码失败时返回空字符串。
func ToJSON(v any) string {
	text, err := Marshal(v)
	if err != nil {
		reportMarshal(v, err)
		return ""
	}
	return text
}

// ToPrettyJSON 与 ToJSON 相同，但输出带两个空格缩进的多行文本。
func ToPrettyJSON(v any) string {
	text, err := marshal(v, true)
	if err != nil {
		reportMarshal(v, err)
		return ""
	}
	return text
}

// FromJSON 将 text 解码为 typ 类型的值（不是指向它的指针）。
// text 为空白、字面量 null、typ 为 nil 或解码失败时返回 nil。
func FromJSON(text string, typ reflect.Type) any {
	v, err := Unmarshal(text, typ)
	if err != nil {
		reportUnmarshal(text, targetName(typ), err)
		return nil
	}
	return v
}

// FromJSONGeneric 将 text 解码为 T，T 可以是 []User、map[string]User 这类泛型形状。
// 第二个返回值为 false 表示结果不存在，原因与 FromJSON 相同。
func FromJSONGeneric[T any](text string, ref TypeReference[T]) (T, bool) {
	var out T
	present, err := decode(text, &out, ref.String())
	if err != nil {
		reportUnmarshal(text, ref.String(), err)
		var zero T
		return zero, false
	}
	return out, present
}

// Marshal 与 ToJSON 相同，但通过 error 返回失败原因。
// nil 输入返回 merr.ErrJSONNilValue，编码失败返回 merr.ErrJSONMarshal。
func Marshal(v any) (string, error) {
	return marshal(v, false)
}

// Unmarshal 与 FromJSON 相同，但通过 error 返回失败原因。
// 字面量 null 返回 (nil, nil)。
func Unmarshal(text string, typ reflect.Type) (any, error) {
	if typ == nil {
		return nil, merr.WrapErrParameterMissing("type", "target type is nil")
	}
	ptr := reflect.New(typ)
	present, err := decode(text, ptr.Interface(), typ.String())
	if err != nil || !present {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// UnmarshalGeneric 与 FromJSONGeneric 相同，但通过 error 返回失败原因。
// 字面量 null 返回 T 的零值与 nil。
func UnmarshalGeneric[T any](text string, ref TypeReference[T]) (T, error) {
	var out T
	if _, err := decode(text, &out, ref.String()); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Valid 判断 text 是否为合法的 JSON，空白文本不合法。
func Valid(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return json.Valid([]byte(text))
}

func marshal(v any, pretty bool) (string, error) {
	api := json.Default()
	if isNil(v) {
		metrics.ObserveJSON(metrics.JSONOpMarshal, metrics.JSONResultAbsent, api.Name(), 0)
		return "", merr.WrapErrJSONNilValue()
	}

	var (
		text string
		err  error
	)
	if pretty {
		var data []byte
		data, err = api.MarshalIndent(v, "", prettyIndent)
		text = string(data)
	} else {
		text, err = api.MarshalToString(v)
	}
	if err != nil {
		metrics.ObserveJSON(metrics.JSONOpMarshal, metrics.JSONResultFailure, api.Name(), 0)
		return "", merr.WrapErrJSONMarshal(typeName(v), err)
	}
	metrics.ObserveJSON(metrics.JSONOpMarshal, metrics.JSONResultSuccess, api.Name(), len(text))
	return text, nil
}

// decode 把 text 解码到 ptr，返回 false 表示 text 是字面量 null。
func decode(text string, ptr any, target string) (bool, error) {
	api := json.Default()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		metrics.ObserveJSON(metrics.JSONOpUnmarshal, metrics.JSONResultAbsent, api.Name(), 0)
		return false, merr.WrapErrJSONBlankText(target)
	}
	if trimmed == nullLiteral {
		metrics.ObserveJSON(metrics.JSONOpUnmarshal, metrics.JSONResultAbsent, api.Name(), 0)
		logger().Debug("json is null literal", zap.String("target", target))
		return false, nil
	}

	if err := api.UnmarshalFromString(text, ptr); err != nil {
		metrics.ObserveJSON(metrics.JSONOpUnmarshal, metrics.JSONResultFailure, api.Name(), 0)
		return false, merr.WrapErrJSONUnmarshal(target, err)
	}
	metrics.ObserveJSON(metrics.JSONOpUnmarshal, metrics.JSONResultSuccess, api.Name(), len(text))
	return true, nil
}

func reportMarshal(v any, err error) {
	if merr.Code(err) == merr.Code(merr.ErrJSONNilValue) {
		logger().Warn("provided object is nil", log.FieldType(v))
		return
	}
	logger().Error("failed to serialize object", log.FieldType(v), zap.Error(err))
}

func reportUnmarshal(text string, target string, err error) {
	if merr.Code(err) == merr.Code(merr.ErrJSONBlankText) {
		logger().Warn("provided json is blank", zap.String("target", target))
		return
	}
	logger().Error("failed to deserialize json",
		zap.String("target", target),
		zap.Int("length", len(text)),
		zap.Error(err))
}

// isNil 把 nil 接口以及 nil 指针、map、slice、chan、func 都视为不存在。
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func typeName(v any) string {
	return reflect.TypeOf(v).String()
}

func targetName(typ reflect.Type) string {
	if typ == nil {
		return "<nil>"
	}
	return typ.String()
}

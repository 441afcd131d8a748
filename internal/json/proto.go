package json

import (
	"reflect"

	"google.golang.org/protobuf/proto"
)

var protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()

func asProtoMessage(v any) (proto.Message, bool) {
	m, ok := v.(proto.Message)
	return m, ok
}

// protoTarget 识别解码目标中的 proto.Message：既支持 *Msg，也支持 **Msg
// （按 reflect.New(reflect.TypeOf(&Msg{})) 构造出来的目标）。
// **Msg 指向 nil 时会先分配一个新的消息。
func protoTarget(v any) (proto.Message, bool) {
	if m, ok := v.(proto.Message); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Pointer || !elem.Type().Implements(protoMessageType) {
		return nil, false
	}
	if elem.IsNil() {
		elem.Set(reflect.New(elem.Type().Elem()))
	}
	return elem.Interface().(proto.Message), true
}

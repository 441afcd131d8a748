package log

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameType      = "type"
	FieldNameEngine    = "engine"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldType 返回一个包含 Go 类型名的 zap 字段，v 为 nil 时记为 "<nil>"。
func FieldType(v any) zap.Field {
	return zap.String(FieldNameType, fmt.Sprintf("%T", v))
}

// FieldEngine 返回一个包含 JSON 引擎名的 zap 字段。
func FieldEngine(engine string) zap.Field {
	return zap.String(FieldNameEngine, engine)
}

package serializer

import (
	"github.com/lk2023060901/danmu-garden-jsonkit/internal/json"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

// JSONSerializer 使用进程级 JSON 引擎实现编解码，与 jsonutil 共享同一份配置。
type JSONSerializer struct{}

// 编译期断言：确保 JSONSerializer 实现了 Serializer 接口。
var _ Serializer = (*JSONSerializer)(nil)

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return merr.WrapErrJSONBlankText(typeName(v))
	}
	return json.Unmarshal(data, v)
}

package json

import (
	"encoding"
	stdjson "encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
)

// maxEncodeDepth 为编码前遍历允许的最大嵌套层数。
const maxEncodeDepth = 1000

var (
	jsonMarshalerType = reflect.TypeOf((*stdjson.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// visit 标识当前路径上的一个引用；slice 需要额外区分长度。
type visit struct {
	ptr uintptr
	typ reflect.Type
	n   int
}

// cycleWalker 只沿会被编码的路径遍历：导出字段、非 "-" 字段，遇到自定义 Marshaler 即停止。
type cycleWalker struct {
	onPath map[visit]struct{}
}

// checkEncodable 在编码前遍历 v，存在引用环或嵌套超过 maxEncodeDepth 时返回错误。
// json-iterator 不检测引用环，环会一直递归到栈溢出，而栈溢出无法 recover。
func checkEncodable(v any) error {
	w := cycleWalker{onPath: make(map[visit]struct{})}
	return w.walk(reflect.ValueOf(v), 0)
}

func (w *cycleWalker) walk(rv reflect.Value, depth int) error {
	if !rv.IsValid() {
		return nil
	}
	if depth > maxEncodeDepth {
		return errors.Newf("json: value nesting exceeds %d levels", maxEncodeDepth)
	}
	t := rv.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return w.enter(visit{ptr: rv.Pointer(), typ: t}, func() error {
			return w.walk(rv.Elem(), depth+1)
		})
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return w.walk(rv.Elem(), depth+1)
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		return w.enter(visit{ptr: rv.Pointer(), typ: t}, func() error {
			iter := rv.MapRange()
			for iter.Next() {
				if err := w.walk(iter.Value(), depth+1); err != nil {
					return err
				}
			}
			return nil
		})
	case reflect.Slice:
		// []byte 编码为 base64
		if rv.IsNil() || t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		return w.enter(visit{ptr: rv.Pointer(), typ: t, n: rv.Len()}, func() error {
			return w.walkElems(rv, depth)
		})
	case reflect.Array:
		return w.walkElems(rv, depth)
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() && !f.Anonymous {
				continue
			}
			if f.Tag.Get("json") == "-" {
				continue
			}
			if err := w.walk(rv.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *cycleWalker) walkElems(rv reflect.Value, depth int) error {
	for i := 0; i < rv.Len(); i++ {
		if err := w.walk(rv.Index(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *cycleWalker) enter(key visit, fn func() error) error {
	if _, ok := w.onPath[key]; ok {
		return errors.Newf("json: encountered a cycle via %s", key.typ)
	}
	w.onPath[key] = struct{}{}
	defer delete(w.onPath, key)
	return fn()
}

package jsonutil

import (
	"reflect"
)

// TypeReference 描述一个泛型目标类型，例如 []User 或 map[string]User。
//
// reflect.Type 需要在运行时拼出元素类型，TypeReference 则在编译期就携带了完整的类型信息：
//
//	users, ok := jsonutil.FromJSONGeneric(text, jsonutil.TypeOf[[]User]())
type TypeReference[T any] struct{}

// TypeOf 返回 T 对应的 TypeReference。
func TypeOf[T any]() TypeReference[T] {
	return TypeReference[T]{}
}

// Type 返回 T 的 reflect.Type，T 为接口类型时同样可用。
func (TypeReference[T]) Type() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (r TypeReference[T]) String() string {
	return r.Type().String()
}

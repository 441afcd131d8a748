// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// 叶子错误统一在这里定义。
// 新增之前先确认下面已有的错误是否可以复用。
// 命名规则：Err + 所属模块前缀 + 错误名
var (
	// Service related
	ErrServiceInternal      = newGardenError("service internal error", 5, false)
	ErrServiceUnimplemented = newGardenError("service unimplemented", 10, false)

	// Parameter related
	ErrParameterInvalid  = newGardenError("invalid parameter", 1100, false)
	ErrParameterMissing  = newGardenError("missing parameter", 1101, false)
	ErrParameterTooLarge = newGardenError("parameter too large", 1102, false)

	// Config related
	ErrConfigLoadFailed = newGardenError("config load failed", 1500, false)
	ErrConfigInvalid    = newGardenError("invalid config", 1501, false)

	// JSON related
	ErrJSONNilValue           = newGardenError("provided object is nil", 3100, false, WithErrorType(InputError))
	ErrJSONBlankText          = newGardenError("provided json is blank", 3101, false, WithErrorType(InputError))
	ErrJSONMarshal            = newGardenError("failed to serialize object", 3102, false)
	ErrJSONUnmarshal          = newGardenError("failed to deserialize json", 3103, false, WithErrorType(InputError))
	ErrJSONEngineUnknown      = newGardenError("unknown json engine", 3104, false)
	ErrJSONEngineInitialized  = newGardenError("json engine already initialized", 3105, false)
	ErrJSONEngineNotSupported = newGardenError("option not supported by json engine", 3106, false)

	// General
	ErrOperationNotSupported = newGardenError("unsupported operation", 3000, false)

	// 不要导出，仅用于把未知错误转换成 gardenError
	errUnexpected = newGardenError("unexpected error", (1<<16)-1, false)
)

type errorOption func(*gardenError)

func WithDetail(detail string) errorOption {
	return func(err *gardenError) {
		err.detail = detail
	}
}

func WithErrorType(etype ErrorType) errorOption {
	return func(err *gardenError) {
		err.errType = etype
	}
}

type gardenError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newGardenError(msg string, code int32, retriable bool, options ...errorOption) gardenError {
	err := gardenError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e gardenError) code() int32 {
	return e.errCode
}

func (e gardenError) Error() string {
	return e.msg
}

func (e gardenError) Detail() string {
	return e.detail
}

// Is 只比较错误码，附加字段不影响匹配。
func (e gardenError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(gardenError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// 多个错误的 cause 定义为最后一个错误
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// Combine 合并多个错误，nil 会被忽略；全部为 nil 时返回 nil。
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}

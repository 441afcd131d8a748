// Package json 提供进程级、只读配置的 JSON 引擎。
//
// 引擎默认基于 bytedance/sonic，也可以通过 Config.Engine 切换为 json-iterator 或
// goccy/go-json。引擎在第一次使用（或显式调用 Setup）时构建一次，之后所有调用方共享、
// 无需加锁。proto.Message 会自动走 protojson。
package json

import (
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/log"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

// API 抽象了“对象 <-> JSON 文本”的编解码能力，实现必须可以被并发调用。
type API interface {
	// Name 返回底层引擎名。
	Name() string

	Marshal(v any) ([]byte, error)
	MarshalToString(v any) (string, error)
	MarshalIndent(v any, prefix, indent string) ([]byte, error)

	// Unmarshal 将 JSON 解码到 v，v 必须为非 nil 指针。
	Unmarshal(data []byte, v any) error
	UnmarshalFromString(data string, v any) error

	Valid(data []byte) bool
}

// frozen 为构建完成、不可再修改的引擎及其配置快照。
type frozen struct {
	api API
	cfg Config
}

var (
	globalMu sync.Mutex
	global   atomic.Pointer[frozen]
)

// New 按 cfg 构建一个独立的引擎。cfg 为 nil 时使用 DefaultConfig。
func New(cfg *Config) (API, error) {
	f, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return f.api, nil
}

func build(cfg *Config) (*frozen, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var base API
	switch c.Engine {
	case EngineSonic:
		base = newSonicAPI(&c)
	case EngineJSONIter:
		base = newJSONIterAPI(&c)
	case EngineGoccy:
		base = newGoccyAPI(&c)
	default:
		return nil, merr.WrapErrJSONEngineUnknown(c.Engine)
	}

	return &frozen{
		api: &guardedAPI{
			base: base,
			protoMarshal: protojson.MarshalOptions{
				EmitUnpopulated: c.ProtoEmitUnpopulated,
				UseEnumNumbers:  c.ProtoUseEnumNumbers,
			},
			protoUnmarshal: protojson.UnmarshalOptions{
				DiscardUnknown: !c.FailOnUnknownFields,
			},
		},
		cfg: c,
	}, nil
}

// Setup 用 cfg 初始化进程级引擎。
//
// 只能在第一次使用引擎之前调用一次；之后再调用会返回 merr.ErrJSONEngineInitialized，
// 已发布的引擎保持不变。
func Setup(cfg *Config) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if cur := global.Load(); cur != nil {
		return merr.WrapErrJSONEngineInitialized(cur.cfg.Engine)
	}
	f, err := build(cfg)
	if err != nil {
		return err
	}
	global.Store(f)
	log.Info("json engine initialized",
		log.FieldEngine(f.cfg.Engine),
		log.FieldModule("json"))
	return nil
}

func current() *frozen {
	if f := global.Load(); f != nil {
		return f
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if f := global.Load(); f != nil {
		return f
	}
	f, err := build(DefaultConfig())
	if err != nil {
		// DefaultConfig 总是合法的
		panic(err)
	}
	global.Store(f)
	return f
}

// Default 返回进程级引擎，第一次调用时按 DefaultConfig 构建。
func Default() API {
	return current().api
}

// CurrentConfig 返回进程级引擎所用配置的副本。
func CurrentConfig() Config {
	return current().cfg
}

func Marshal(v any) ([]byte, error) {
	return Default().Marshal(v)
}

func MarshalToString(v any) (string, error) {
	return Default().MarshalToString(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return Default().MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return Default().Unmarshal(data, v)
}

func UnmarshalFromString(data string, v any) error {
	return Default().UnmarshalFromString(data, v)
}

func Valid(data []byte) bool {
	return Default().Valid(data)
}

// guardedAPI 把底层库的 panic 转成 error，并把 proto.Message 交给 protojson。
type guardedAPI struct {
	base           API
	protoMarshal   protojson.MarshalOptions
	protoUnmarshal protojson.UnmarshalOptions
}

func recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		*err = errors.Newf("json: %s panicked: %v", op, r)
	}
}

func (g *guardedAPI) Name() string {
	return g.base.Name()
}

func (g *guardedAPI) Marshal(v any) (data []byte, err error) {
	defer recoverInto("marshal", &err)
	if m, ok := asProtoMessage(v); ok {
		return g.protoMarshal.Marshal(m)
	}
	return g.base.Marshal(v)
}

func (g *guardedAPI) MarshalToString(v any) (s string, err error) {
	defer recoverInto("marshal", &err)
	if m, ok := asProtoMessage(v); ok {
		data, err := g.protoMarshal.Marshal(m)
		return string(data), err
	}
	return g.base.MarshalToString(v)
}

// MarshalIndent 对 proto.Message 只使用 indent，protojson 不支持 prefix。
func (g *guardedAPI) MarshalIndent(v any, prefix, indent string) (data []byte, err error) {
	defer recoverInto("marshal", &err)
	if m, ok := asProtoMessage(v); ok {
		opts := g.protoMarshal
		opts.Multiline = true
		opts.Indent = indent
		return opts.Marshal(m)
	}
	return g.base.MarshalIndent(v, prefix, indent)
}

func (g *guardedAPI) Unmarshal(data []byte, v any) (err error) {
	defer recoverInto("unmarshal", &err)
	if m, ok := protoTarget(v); ok {
		return g.protoUnmarshal.Unmarshal(data, m)
	}
	return g.base.Unmarshal(data, v)
}

func (g *guardedAPI) UnmarshalFromString(data string, v any) (err error) {
	defer recoverInto("unmarshal", &err)
	if m, ok := protoTarget(v); ok {
		return g.protoUnmarshal.Unmarshal([]byte(data), m)
	}
	return g.base.UnmarshalFromString(data, v)
}

func (g *guardedAPI) Valid(data []byte) bool {
	return g.base.Valid(data)
}

package serializer

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/hardware"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

// ZstdSerializer 在内层 Serializer 的输出之上做 zstd 压缩，适合体积较大的 JSON 消息。
//
// 它持有独立的 encoder/decoder 实例，不使用全局单例，生命周期由调用方决定。
// Marshal/Unmarshal/Close 可以并发调用：Close 会等待进行中的调用结束，
// 之后的调用返回 ErrEncoderClosed/ErrDecoderClosed。
type ZstdSerializer struct {
	inner Serializer

	mu  sync.RWMutex
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// 编译期断言：确保 ZstdSerializer 实现了 Serializer 接口。
var _ Serializer = (*ZstdSerializer)(nil)

// NewZstdSerializer 创建一个 ZstdSerializer，concurrency <= 0 时使用可用 CPU 数。
func NewZstdSerializer(inner Serializer, concurrency int) (*ZstdSerializer, error) {
	if inner == nil {
		return nil, merr.WrapErrParameterMissing("inner", "inner serializer is nil")
	}
	if concurrency <= 0 {
		concurrency = hardware.GetCPUNum()
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithZeroFrames(true),
		zstd.WithEncoderConcurrency(concurrency))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(concurrency))
	if err != nil {
		_ = enc.Close()
		return nil, err
	}
	return &ZstdSerializer{inner: inner, enc: enc, dec: dec}, nil
}

func (s *ZstdSerializer) Marshal(v any) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.enc == nil {
		return nil, zstd.ErrEncoderClosed
	}
	plain, err := s.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return s.enc.EncodeAll(plain, nil), nil
}

func (s *ZstdSerializer) Unmarshal(data []byte, v any) error {
	s.mu.RLock()
	if s.dec == nil {
		s.mu.RUnlock()
		return zstd.ErrDecoderClosed
	}
	plain, err := s.dec.DecodeAll(data, nil)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	return s.inner.Unmarshal(plain, v)
}

// Close 释放 encoder/decoder 持有的资源，可重复调用。
func (s *ZstdSerializer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enc != nil {
		_ = s.enc.Close()
		s.enc = nil
	}
	if s.dec != nil {
		s.dec.Close()
		s.dec = nil
	}
}

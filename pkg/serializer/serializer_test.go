package serializer

import (
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

type danmu struct {
	Room    string   `json:"room"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func TestJSONSerializer(t *testing.T) {
	var s Serializer = JSONSerializer{}

	data, err := s.Marshal(danmu{Room: "lobby", Content: "hi", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"room":"lobby","content":"hi","tags":["a"]}`, string(data))

	var out danmu
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, "lobby", out.Room)
	assert.Equal(t, []string{"a"}, out.Tags)

	assert.ErrorIs(t, s.Unmarshal(nil, &out), merr.ErrJSONBlankText)
	assert.Error(t, s.Unmarshal([]byte("{"), &out))

	_, err = s.Marshal(make(chan int))
	assert.Error(t, err)
}

func TestProtoSerializer(t *testing.T) {
	var s Serializer = ProtoSerializer{}

	in := wrapperspb.String("garden")
	data, err := s.Marshal(in)
	require.NoError(t, err)

	out := &wrapperspb.StringValue{}
	require.NoError(t, s.Unmarshal(data, out))
	assert.True(t, proto.Equal(in, out))

	_, err = s.Marshal(danmu{})
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
	assert.Contains(t, err.Error(), "serializer.danmu")
	assert.ErrorIs(t, s.Unmarshal(data, &danmu{}), merr.ErrParameterInvalid)
}

func TestZstdSerializer(t *testing.T) {
	_, err := NewZstdSerializer(nil, 1)
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	s, err := NewZstdSerializer(JSONSerializer{}, 0)
	require.NoError(t, err)

	in := danmu{Room: "lobby", Content: strings.Repeat("666", 512)}
	data, err := s.Marshal(in)
	require.NoError(t, err)
	assert.Less(t, len(data), len(in.Content))

	var out danmu
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, s.Unmarshal([]byte("not zstd"), &out))

	st, err := structpb.NewStruct(map[string]any{"online": 3.0})
	require.NoError(t, err)
	ps, err := NewZstdSerializer(ProtoSerializer{}, 1)
	require.NoError(t, err)
	defer ps.Close()
	data, err = ps.Marshal(st)
	require.NoError(t, err)
	var got structpb.Struct
	require.NoError(t, ps.Unmarshal(data, &got))
	assert.True(t, proto.Equal(st, &got))

	s.Close()
	_, err = s.Marshal(in)
	assert.ErrorIs(t, err, zstd.ErrEncoderClosed)
	assert.ErrorIs(t, s.Unmarshal(data, &out), zstd.ErrDecoderClosed)
	s.Close()
}

func TestZstdSerializerConcurrentClose(t *testing.T) {
	s, err := NewZstdSerializer(JSONSerializer{}, 2)
	require.NoError(t, err)
	data, err := s.Marshal(danmu{Room: "lobby"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Marshal(danmu{Room: "lobby"})
		}()
		go func() {
			defer wg.Done()
			var out danmu
			_ = s.Unmarshal(data, &out)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Close()
	}()
	wg.Wait()

	_, err = s.Marshal(danmu{})
	assert.ErrorIs(t, err, zstd.ErrEncoderClosed)
}

package json

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	global.Store(nil)
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		global.Store(nil)
		globalMu.Unlock()
	})
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, EngineSonic, cfg.Engine)
	assert.Equal(t, DefaultDateLayout, cfg.DateLayout)

	cfg = &Config{Engine: "gson"}
	assert.ErrorIs(t, cfg.Validate(), merr.ErrJSONEngineUnknown)

	for _, engine := range []string{EngineSonic, EngineGoccy} {
		cfg = &Config{Engine: engine, WriteDatesAsTimestamps: true}
		assert.ErrorIs(t, cfg.Validate(), merr.ErrJSONEngineNotSupported)

		cfg = &Config{Engine: engine, DateLayout: "2006-01-02"}
		assert.ErrorIs(t, cfg.Validate(), merr.ErrJSONEngineNotSupported)

		cfg = &Config{Engine: engine, WriteDurationsAsText: true}
		assert.ErrorIs(t, cfg.Validate(), merr.ErrJSONEngineNotSupported)
	}

	cfg = &Config{Engine: EngineJSONIter, WriteDatesAsTimestamps: true, DateLayout: "2006-01-02", WriteDurationsAsText: true}
	assert.NoError(t, cfg.Validate())
}

func TestNewDoesNotMutateConfig(t *testing.T) {
	cfg := &Config{}
	api, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, EngineSonic, api.Name())
	assert.Empty(t, cfg.Engine)

	_, err = New(&Config{Engine: "gson"})
	assert.Error(t, err)

	api, err = New(nil)
	require.NoError(t, err)
	assert.Equal(t, EngineSonic, api.Name())
}

func TestSetupOnce(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Setup(&Config{Engine: EngineJSONIter, WriteDatesAsTimestamps: true}))
	assert.Equal(t, EngineJSONIter, Default().Name())
	assert.Equal(t, EngineJSONIter, CurrentConfig().Engine)
	assert.True(t, CurrentConfig().WriteDatesAsTimestamps)

	err := Setup(&Config{Engine: EngineGoccy})
	assert.ErrorIs(t, err, merr.ErrJSONEngineInitialized)
	assert.Equal(t, EngineJSONIter, Default().Name())
}

func TestSetupAfterFirstUse(t *testing.T) {
	resetGlobal(t)

	_, err := MarshalToString(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.ErrorIs(t, Setup(DefaultConfig()), merr.ErrJSONEngineInitialized)
}

func TestSetupInvalidKeepsDefault(t *testing.T) {
	resetGlobal(t)

	assert.Error(t, Setup(&Config{Engine: "gson"}))
	assert.Nil(t, global.Load())
	assert.Equal(t, EngineSonic, Default().Name())
}

func TestDefaultConcurrentInit(t *testing.T) {
	resetGlobal(t)

	const n = 32
	apis := make([]API, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			apis[i] = Default()
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		assert.Same(t, apis[0], apis[i])
	}
}

func TestPackageFunctions(t *testing.T) {
	resetGlobal(t)

	data, err := Marshal(event{ID: 1, CreatedAt: testTime})
	require.NoError(t, err)
	assert.True(t, Valid(data))

	var out event
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, int64(1), out.ID)

	text, err := MarshalToString(out)
	require.NoError(t, err)
	require.NoError(t, UnmarshalFromString(text, &out))
	assert.True(t, testTime.Equal(out.CreatedAt))

	pretty, err := MarshalIndent(out, "", "\t")
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\t\"id\": 1")
}

package application

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/jsonutil"
	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/util/merr"
)

type chain struct {
	Name string `json:"name"`
	Next *chain `json:"next,omitempty"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigPriority(t *testing.T) {
	envPath := writeConfig(t, "name: env\n")
	cliPath := writeConfig(t, "name: cli\n")
	t.Setenv(envConfigFilePath, envPath)

	app := NewWithArgs(nil)
	cfg, err := app.loadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsSet("name"))

	var out struct{ Name string }
	app = NewWithArgs([]string{"--config", cliPath})
	cfg, err = app.loadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, "cli", out.Name)

	app = NewWithArgs([]string{"--config=" + cliPath})
	cfg, err = app.loadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, "cli", out.Name)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := NewWithArgs([]string{"--config"}).loadConfig()
	assert.ErrorIs(t, err, merr.ErrParameterMissing)

	_, err = NewWithArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}).loadConfig()
	assert.ErrorIs(t, err, merr.ErrConfigLoadFailed)
}

func TestRunWithoutJSONSection(t *testing.T) {
	path := writeConfig(t, `
logging:
  jsonutil:
    level: debug
`)
	app := NewWithArgs([]string{"--config", path})
	require.NoError(t, app.Run())
	assert.NotNil(t, app.Config())
	assert.NotNil(t, app.Logger("jsonutil"))
	assert.NotNil(t, app.Logger("unknown"))
}

func TestRunRejectsInvalidJSONSection(t *testing.T) {
	path := writeConfig(t, "json:\n  engine: gson\n")
	err := NewWithArgs([]string{"--config", path}).Run()
	assert.ErrorIs(t, err, merr.ErrJSONEngineUnknown)
}

func TestRunInvalidModuleLogger(t *testing.T) {
	path := writeConfig(t, "logging:\n  jsonutil:\n    level: loud\n")
	assert.Error(t, NewWithArgs([]string{"--config", path}).Run())
}

func TestRunSetsUpJSONEngine(t *testing.T) {
	path := writeConfig(t, `
json:
  engine: jsoniter
  write-dates-as-timestamps: true
`)
	app := NewWithArgs([]string{"--config", path})
	require.NoError(t, app.Run())

	cur := jsonutil.CurrentConfig()
	assert.Equal(t, jsonutil.EngineJSONIter, cur.Engine)
	assert.True(t, cur.WriteDatesAsTimestamps)

	// jsoniter 引擎下的引用环同样只返回空字符串
	loop := &chain{Name: "loop"}
	loop.Next = loop
	assert.Equal(t, "", jsonutil.ToJSON(loop))
	_, err := jsonutil.Marshal(loop)
	assert.ErrorIs(t, err, merr.ErrJSONMarshal)
	assert.Equal(t, `{"name":"a","next":{"name":"b"}}`, jsonutil.ToJSON(&chain{Name: "a", Next: &chain{Name: "b"}}))

	// 引擎只能初始化一次
	err = NewWithArgs([]string{"--config", path}).Run()
	assert.ErrorIs(t, err, merr.ErrJSONEngineInitialized)
}

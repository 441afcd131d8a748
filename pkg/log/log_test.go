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

package log

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type denyAll struct{}

func (denyAll) CheckCredit(float64) bool { return false }

func replaceWithObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	oldL, oldP := L(), P()
	core, logs := observer.New(zapcore.DebugLevel)
	ReplaceGlobals(zap.New(core), &ZapProperties{Core: core, Level: zap.NewAtomicLevelAt(zapcore.DebugLevel)})
	t.Cleanup(func() { ReplaceGlobals(oldL, oldP) })
	return logs
}

func TestInitLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Level:  "info",
		Format: FormatJSON,
		File: FileLogConfig{
			RootPath: dir,
			Filename: "garden.log",
		},
	}
	lg, props, err := InitLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, props.Level.Level())

	lg.Debug("hidden")
	lg.Info("visible", FieldModule("jsonutil"))
	require.NoError(t, lg.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "garden.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"visible"`)
	assert.Contains(t, string(data), `"module":"jsonutil"`)
	assert.NotContains(t, string(data), "hidden")
	assert.Equal(t, defaultLogMaxSize, cfg.File.MaxSize)
}

func TestInitLoggerRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "logs"), 0o755))
	_, _, err := InitLogger(&Config{File: FileLogConfig{RootPath: dir, Filename: "logs"}})
	assert.Error(t, err)
}

func TestInitLoggerBadLevel(t *testing.T) {
	_, _, err := InitLogger(&Config{Level: "loud"})
	assert.Error(t, err)

	_, _, err = InitLoggerWithWriteSyncer(&Config{Level: "loud"}, zapcore.AddSync(os.Stderr))
	assert.Error(t, err)
}

func TestInitTestLogger(t *testing.T) {
	lg, _, err := InitTestLogger(t, &Config{Level: "debug", DisableTimestamp: true})
	require.NoError(t, err)
	lg.Debug("through testing writer", zap.Int("n", 1))
}

func TestWithAndCtx(t *testing.T) {
	logs := replaceWithObserver(t)

	With(FieldModule("jsonutil")).Warn("nil value", FieldType(nil))
	entries := logs.FilterMessage("nil value").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "jsonutil", entries[0].ContextMap()[FieldNameModule])
	assert.Equal(t, "<nil>", entries[0].ContextMap()[FieldNameType])

	ctx := WithModule(context.Background(), "codec")
	assert.NotNil(t, Ctx(ctx))
	assert.Same(t, Ctx(ctx), Ctx(ctx))
	assert.NotNil(t, Ctx(nil)) //nolint:staticcheck
}

func TestRatedWarn(t *testing.T) {
	logs := replaceWithObserver(t)

	assert.True(t, RatedWarn(1, "allowed"))
	assert.True(t, With().RatedWarn(1, "allowed again"))

	ReplaceRateLimiter(denyAll{})
	t.Cleanup(func() { ReplaceRateLimiter(nil) })
	assert.False(t, RatedWarn(1, "dropped"))
	assert.False(t, With().RatedWarn(1, "dropped"))
	assert.Equal(t, 0, logs.FilterMessage("dropped").Len())
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestRateGroup(t *testing.T) {
	replaceWithObserver(t)

	l := With().WithRateGroup("test-group", 0.0001, 1)
	assert.True(t, l.RatedInfo(1, "first"))
	assert.False(t, l.RatedInfo(1, "second"))

	child := l.With(FieldComponent("child"))
	assert.False(t, child.RatedDebug(1, "inherits group"))
}

func TestGetenv(t *testing.T) {
	t.Setenv("GARDEN_TEST_BOOL", "yes")
	t.Setenv("GARDEN_TEST_STR", "  value ")
	assert.True(t, GetenvBool("GARDEN_TEST_BOOL", false))
	assert.False(t, GetenvBool("GARDEN_TEST_MISSING", false))
	assert.Equal(t, "value", GetenvDefault("GARDEN_TEST_STR", "def"))
	assert.Equal(t, "def", GetenvDefault("GARDEN_TEST_MISSING", "def"))
	assert.Equal(t, 2.5, getenvFloat("GARDEN_TEST_MISSING", 2.5))
}

func TestSetLevel(t *testing.T) {
	replaceWithObserver(t)
	SetLevel(zapcore.ErrorLevel)
	assert.Equal(t, zapcore.ErrorLevel, GetLevel())
}

package hardware

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-jsonkit/pkg/log"
)

// GetCPUNum 返回可用的逻辑 CPU 数，不超过 GOMAXPROCS。
func GetCPUNum() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		log.Warn("failed to get cpu counts, fallback to runtime", zap.Error(err))
		n = runtime.NumCPU()
	}
	if procs := runtime.GOMAXPROCS(0); procs > 0 && procs < n {
		n = procs
	}
	return n
}

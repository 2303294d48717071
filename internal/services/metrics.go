package services

import (
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// MetricSample is a point-in-time view of the host and the connection pool.
type MetricSample struct {
	CapturedAt        time.Time `json:"captured_at"`
	ProcessRSSBytes   int64     `json:"process_rss_bytes"`
	SystemMemoryTotal int64     `json:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `json:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `json:"disk_total_bytes"`
	DiskUsedBytes     int64     `json:"disk_used_bytes"`
	ProcessCPULoad    float64   `json:"process_cpu_load"`
	SystemCPULoad     float64   `json:"system_cpu_load"`
	PoolOpen          int       `json:"pool_open_connections"`
	PoolInUse         int       `json:"pool_in_use"`
	PoolIdle          int       `json:"pool_idle"`
	PoolWaitCount     int64     `json:"pool_wait_count"`
	PoolMaxOpen       int       `json:"pool_max_open"`
}

// CaptureMetrics samples the host. Probes that fail leave their fields at
// zero; pool may be nil.
func CaptureMetrics(pool *sqlx.DB, diskPath string) MetricSample {
	sample := MetricSample{CapturedAt: time.Now().UTC()}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfo(); err == nil && rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if perc, err := proc.CPUPercent(); err == nil {
			sample.ProcessCPULoad = perc / 100.0
		}
	}
	if memStat, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	if diskPath == "" {
		diskPath = "/"
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(diskStat.Total)
		sample.DiskUsedBytes = int64(diskStat.Used)
	}
	if sysCPU, err := cpu.Percent(0, false); err == nil && len(sysCPU) > 0 {
		sample.SystemCPULoad = sysCPU[0] / 100.0
	}

	if pool != nil {
		stats := pool.Stats()
		sample.PoolOpen = stats.OpenConnections
		sample.PoolInUse = stats.InUse
		sample.PoolIdle = stats.Idle
		sample.PoolWaitCount = stats.WaitCount
		sample.PoolMaxOpen = stats.MaxOpenConnections
	}
	return sample
}

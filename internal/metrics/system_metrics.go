package metrics

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	systemCPUUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_cpu_usage_percent",
			Help: "Current CPU usage percentage",
		},
		[]string{"core"},
	)

	systemMemoryUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "system_memory_usage_bytes",
			Help: "Current memory usage in bytes",
		},
		[]string{"type"},
	)

	goGoroutines = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_go_goroutines",
			Help: "Number of goroutines that currently exist",
		},
		[]string{"service"},
	)

	goHeapAlloc = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_go_heap_alloc_bytes",
			Help: "Heap memory usage in bytes",
		},
		[]string{"service"},
	)

	goHeapSys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_go_heap_sys_bytes",
			Help: "Heap memory reserved in bytes",
		},
		[]string{"service"},
	)

	systemMetricsOnce sync.Once
)

// StartSystemMetricsCollection starts a goroutine that periodically collects
// CPU, memory and Go runtime metrics. Gated by ENABLE_SYSTEM_METRICS=true;
// safe to call more than once.
func StartSystemMetricsCollection(serviceName string) {
	if os.Getenv("ENABLE_SYSTEM_METRICS") != "true" {
		return
	}

	systemMetricsOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()

			for range ticker.C {
				collectSystemMetrics()
				collectGoRuntimeMetrics(serviceName)
			}
		}()
	})
}

func collectSystemMetrics() {
	// CPU usage
	if cpuPercentages, err := cpu.Percent(0, true); err == nil {
		for i, percentage := range cpuPercentages {
			systemCPUUsage.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(percentage)
		}
	}

	// Memory usage
	if vmstat, err := mem.VirtualMemory(); err == nil {
		systemMemoryUsage.WithLabelValues("total").Set(float64(vmstat.Total))
		systemMemoryUsage.WithLabelValues("available").Set(float64(vmstat.Available))
		systemMemoryUsage.WithLabelValues("used").Set(float64(vmstat.Used))
		systemMemoryUsage.WithLabelValues("free").Set(float64(vmstat.Free))
	}
}

func collectGoRuntimeMetrics(serviceName string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	goGoroutines.WithLabelValues(serviceName).Set(float64(runtime.NumGoroutine()))
	goHeapAlloc.WithLabelValues(serviceName).Set(float64(m.HeapAlloc))
	goHeapSys.WithLabelValues(serviceName).Set(float64(m.HeapSys))
}

package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64
	payrollRuns     uint64
	payrollErrors   uint64
	checkIns        uint64
	checkOuts       uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordPayrollRun(employeeErrors int) {
	atomic.AddUint64(&c.payrollRuns, 1)
	atomic.AddUint64(&c.payrollErrors, uint64(employeeErrors))
}

func (c *Collector) RecordCheckIn() {
	atomic.AddUint64(&c.checkIns, 1)
}

func (c *Collector) RecordCheckOut() {
	atomic.AddUint64(&c.checkOuts, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":       total,
		"errorsTotal":         atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs":       avg,
		"payrollRunsTotal":    atomic.LoadUint64(&c.payrollRuns),
		"payrollErrorsTotal":  atomic.LoadUint64(&c.payrollErrors),
		"checkInsTotal":       atomic.LoadUint64(&c.checkIns),
		"checkOutsTotal":      atomic.LoadUint64(&c.checkOuts),
	}
}

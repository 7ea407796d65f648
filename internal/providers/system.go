package providers

import (
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/tinytelemetry/perfhud/internal/model"
)

// Built-in system and process metric ids.
const (
	SystemCPUID  = "system_cpu_usage"
	SystemMemID  = "system_mem_usage"
	ProcessCPUID = "process_cpu_usage"
	ProcessMemID = "process_mem_mb"
)

// SystemCPUProvider samples system-wide CPU usage in percent. gopsutil's
// zero-interval call compares against the previous invocation, so the
// first sample after startup reports no value.
type SystemCPUProvider struct {
	primed bool
}

func NewSystemCPUProvider() *SystemCPUProvider { return &SystemCPUProvider{} }

func (*SystemCPUProvider) MetricID() string { return SystemCPUID }

func (p *SystemCPUProvider) Sample(model.SampleContext) (float64, bool) {
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return 0, false
	}
	if !p.primed {
		p.primed = true
		return 0, false
	}
	return percents[0], true
}

// SystemMemProvider samples system-wide memory usage in percent.
type SystemMemProvider struct{}

func NewSystemMemProvider() *SystemMemProvider { return &SystemMemProvider{} }

func (*SystemMemProvider) MetricID() string { return SystemMemID }

func (*SystemMemProvider) Sample(model.SampleContext) (float64, bool) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, false
	}
	return vm.UsedPercent, true
}

// processHandle lazily resolves the current process once and caches it.
type processHandle struct {
	proc *process.Process
}

func (h *processHandle) get() (*process.Process, bool) {
	if h.proc != nil {
		return h.proc, true
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, false
	}
	h.proc = p
	return p, true
}

// ProcessCPUProvider samples this process's CPU usage in percent.
type ProcessCPUProvider struct {
	handle processHandle
	primed bool
}

func NewProcessCPUProvider() *ProcessCPUProvider { return &ProcessCPUProvider{} }

func (*ProcessCPUProvider) MetricID() string { return ProcessCPUID }

func (p *ProcessCPUProvider) Sample(model.SampleContext) (float64, bool) {
	proc, ok := p.handle.get()
	if !ok {
		return 0, false
	}
	percent, err := proc.Percent(0)
	if err != nil {
		return 0, false
	}
	if !p.primed {
		p.primed = true
		return 0, false
	}
	return percent, true
}

// ProcessMemProvider samples this process's resident set size in
// megabytes.
type ProcessMemProvider struct {
	handle processHandle
}

func NewProcessMemProvider() *ProcessMemProvider { return &ProcessMemProvider{} }

func (*ProcessMemProvider) MetricID() string { return ProcessMemID }

func (p *ProcessMemProvider) Sample(model.SampleContext) (float64, bool) {
	proc, ok := p.handle.get()
	if !ok {
		return 0, false
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0, false
	}
	return float64(info.RSS) / bytesPerMB, true
}

package bench

import (
	"fmt"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	log "github.com/sirupsen/logrus"
)

// SysInfo saves the basic system information next to the benchmark records.
type SysInfo struct {
	Platform string
	CPU      string
	RAM      string
}

// CollectSysInfo never fails: fields that cannot be read are left as "unknown".
func CollectSysInfo() SysInfo {
	info := SysInfo{Platform: "unknown", CPU: "unknown", RAM: "unknown"}

	if hostStat, err := host.Info(); err == nil {
		info.Platform = hostStat.Platform
	} else {
		log.Warnf("[bench] host info: %v", err)
	}
	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	} else if err != nil {
		log.Warnf("[bench] cpu info: %v", err)
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	} else {
		log.Warnf("[bench] memory info: %v", err)
	}
	return info
}

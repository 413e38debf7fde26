package sampler

import (
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

//SystemEnumerator lists the host's connection table via gopsutil
type SystemEnumerator struct{}

//Connections returns the current inet (TCP+UDP, v4+v6) connection table
func (SystemEnumerator) Connections() ([]RawConnection, error) {
	stats, err := psnet.Connections("inet")
	if err != nil {
		return nil, err
	}

	raw := make([]RawConnection, 0, len(stats))
	for _, stat := range stats {
		raw = append(raw, RawConnection{
			Type:       stat.Type,
			LocalIP:    stat.Laddr.IP,
			LocalPort:  stat.Laddr.Port,
			RemoteIP:   stat.Raddr.IP,
			RemotePort: stat.Raddr.Port,
			Status:     stat.Status,
			PID:        stat.Pid,
		})
	}
	return raw, nil
}

//SystemProcessNamer resolves process names via gopsutil
type SystemProcessNamer struct{}

//Name returns the executable name for a pid
func (SystemProcessNamer) Name(pid int32) (string, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return "", err
	}
	return proc.Name()
}

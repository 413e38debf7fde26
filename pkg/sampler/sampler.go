package sampler

import (
	"fmt"
	"net"
	"syscall"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/cybernilsen/cyberwatch/util"
	log "github.com/sirupsen/logrus"
)

type (
	//RawConnection is one unprocessed entry from the OS connection table
	RawConnection struct {
		Type       uint32 // socket type, SOCK_STREAM or SOCK_DGRAM
		LocalIP    string
		LocalPort  uint32
		RemoteIP   string
		RemotePort uint32
		Status     string
		PID        int32
	}

	//Enumerator lists the OS connection table. Implementations may omit
	//entries the caller lacks permission to see rather than failing.
	Enumerator interface {
		Connections() ([]RawConnection, error)
	}

	//ProcessNamer resolves a process id to an executable name
	ProcessNamer interface {
		Name(pid int32) (string, error)
	}

	//Sampler normalizes raw OS connection entries into ConnectionRecords
	Sampler struct {
		enumerator   Enumerator
		processes    ProcessNamer
		internalNets []*net.IPNet
		log          *log.Logger
	}
)

//NewSampler wires an Enumerator and ProcessNamer into a Sampler. The
//internal subnets augment the built in loopback and link-local ranges when
//classifying remote addresses as local.
func NewSampler(enumerator Enumerator, processes ProcessNamer, internalNets []*net.IPNet, logger *log.Logger) *Sampler {
	return &Sampler{
		enumerator:   enumerator,
		processes:    processes,
		internalNets: internalNets,
		log:          logger,
	}
}

//Sample pulls one snapshot of the current connection table. It fails only
//if the enumeration itself fails; individual unresolvable entries degrade
//to placeholder values instead.
func (s *Sampler) Sample() ([]data.ConnectionRecord, error) {
	rawConns, err := s.enumerator.Connections()
	if err != nil {
		return nil, fmt.Errorf("enumerating connections: %v", err)
	}

	// process names are resolved once per pid per sample
	nameCache := make(map[int32]string)

	records := make([]data.ConnectionRecord, 0, len(rawConns))
	seen := make(map[data.ConnKey]bool, len(rawConns))

	for _, raw := range rawConns {
		protocol := mapProtocol(raw.Type)
		if protocol == data.ProtocolUnknown {
			// inet enumeration should only yield stream and datagram
			// sockets, skip anything else
			s.log.WithFields(log.Fields{
				"socket_type": raw.Type,
				"local_ip":    raw.LocalIP,
			}).Debug("Skipping socket with unmapped type")
			continue
		}

		record := data.ConnectionRecord{
			LocalAddress:  raw.LocalIP,
			LocalPort:     uint16(raw.LocalPort),
			RemoteAddress: raw.RemoteIP,
			RemotePort:    uint16(raw.RemotePort),
			Protocol:      protocol,
			State:         data.ParseConnState(raw.Status),
			PID:           raw.PID,
			ProcessName:   s.processName(raw.PID, nameCache),
			IsLocal:       util.IsLocalAddress(raw.RemoteIP, s.internalNets),
		}

		// keep the first occurrence of each 4-tuple+protocol
		key := record.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		records = append(records, record)
	}

	return records, nil
}

func (s *Sampler) processName(pid int32, cache map[int32]string) string {
	if pid == 0 {
		return data.SystemProcessName
	}

	if name, ok := cache[pid]; ok {
		return name
	}

	name, err := s.processes.Name(pid)
	if err != nil || name == "" {
		// the process exited or we lack permission to inspect it
		name = data.UnknownProcessName
	}
	cache[pid] = name
	return name
}

func mapProtocol(sockType uint32) data.Protocol {
	switch sockType {
	case syscall.SOCK_STREAM:
		return data.ProtocolTCP
	case syscall.SOCK_DGRAM:
		return data.ProtocolUDP
	default:
		return data.ProtocolUnknown
	}
}

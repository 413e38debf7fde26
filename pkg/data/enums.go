package data

import (
	"strings"
)

//Protocol identifies the transport protocol of a connection
type Protocol int

const (
	//ProtocolUnknown is the fallback for unmapped socket types
	ProtocolUnknown Protocol = iota
	//ProtocolTCP represents stream sockets
	ProtocolTCP
	//ProtocolUDP represents datagram sockets
	ProtocolUDP
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return "UNKNOWN"
	}
}

//ConnState is the OS reported state of a connection
type ConnState string

const (
	StateEstablished ConnState = "ESTABLISHED"
	StateSynSent     ConnState = "SYN_SENT"
	StateSynRecv     ConnState = "SYN_RECV"
	StateFinWait1    ConnState = "FIN_WAIT1"
	StateFinWait2    ConnState = "FIN_WAIT2"
	StateTimeWait    ConnState = "TIME_WAIT"
	StateClose       ConnState = "CLOSE"
	StateCloseWait   ConnState = "CLOSE_WAIT"
	StateLastAck     ConnState = "LAST_ACK"
	StateListen      ConnState = "LISTEN"
	StateClosing     ConnState = "CLOSING"
	StateNone        ConnState = "NONE"
	StateUnknown     ConnState = "UNKNOWN"
)

var knownStates = map[ConnState]bool{
	StateEstablished: true,
	StateSynSent:     true,
	StateSynRecv:     true,
	StateFinWait1:    true,
	StateFinWait2:    true,
	StateTimeWait:    true,
	StateClose:       true,
	StateCloseWait:   true,
	StateLastAck:     true,
	StateListen:      true,
	StateClosing:     true,
	StateNone:        true,
}

//ParseConnState maps an OS state token onto the canonical set. Tokens
//which do not map are reported as StateUnknown rather than failing.
func ParseConnState(token string) ConnState {
	state := ConnState(strings.ToUpper(strings.TrimSpace(token)))
	if knownStates[state] {
		return state
	}
	return StateUnknown
}

//ThreatLevel ranks how suspicious a connection looks
type ThreatLevel int

const (
	ThreatNone ThreatLevel = iota
	ThreatLow
	ThreatMedium
	ThreatHigh
)

func (l ThreatLevel) String() string {
	switch l {
	case ThreatLow:
		return "LOW"
	case ThreatMedium:
		return "MEDIUM"
	case ThreatHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

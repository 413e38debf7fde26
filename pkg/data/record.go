package data

import (
	"time"
)

//SystemProcessName labels connections the OS reports without an owning pid
const SystemProcessName = "System"

//UnknownProcessName labels connections whose owning process could not be
//resolved, either because it exited or because of missing permissions
const UnknownProcessName = "unknown"

//ConnectionRecord is one normalized OS connection table entry. Records are
//immutable once constructed for a given snapshot.
type ConnectionRecord struct {
	LocalAddress  string    `json:"local_address"`
	LocalPort     uint16    `json:"local_port"`
	RemoteAddress string    `json:"remote_address"`
	RemotePort    uint16    `json:"remote_port"`
	Protocol      Protocol  `json:"-"`
	State         ConnState `json:"status"`
	PID           int32     `json:"pid"`
	ProcessName   string    `json:"process"`
	IsLocal       bool      `json:"is_local"`
}

//ConnKey identifies a connection within one sample for deduplication
type ConnKey struct {
	LocalAddress  string
	LocalPort     uint16
	RemoteAddress string
	RemotePort    uint16
	Protocol      Protocol
}

//Key returns the dedup identity of the record
func (r *ConnectionRecord) Key() ConnKey {
	return ConnKey{
		LocalAddress:  r.LocalAddress,
		LocalPort:     r.LocalPort,
		RemoteAddress: r.RemoteAddress,
		RemotePort:    r.RemotePort,
		Protocol:      r.Protocol,
	}
}

//GeoInfo holds resolved geographic and ownership metadata for a remote
//address. Negative entries record failed or rate limited lookups so that
//retries are throttled.
type GeoInfo struct {
	CountryCode string    `json:"country_code"`
	CountryName string    `json:"country"`
	City        string    `json:"city"`
	ISP         string    `json:"isp"`
	ResolvedAt  time.Time `json:"-"`
	Negative    bool      `json:"-"`
}

//Assessment is the result of scoring one connection against the threat
//rule tables. Reasons lists every rule that fired, in evaluation order.
type Assessment struct {
	Level   ThreatLevel `json:"-"`
	Reasons []string    `json:"threat_reasons,omitempty"`
}

//RecordView bundles a connection with its enrichment results. Geo is nil
//when the record has no remote endpoint to resolve.
type RecordView struct {
	Record ConnectionRecord
	Geo    *GeoInfo
	Threat Assessment
}

//SnapshotSummary is the compact per-tick entry kept in the stats history
type SnapshotSummary struct {
	Timestamp        time.Time
	TotalConnections int
	EstablishedCount int
	UniqueRemoteIPs  int
	HighThreatCount  int
}

//StatsView holds the counters folded from one snapshot plus the bounded
//history of past tick summaries
type StatsView struct {
	TotalConnections int
	TCPCount         int
	UDPCount         int
	EstablishedCount int
	UniqueRemoteIPs  int
	CountryHistogram map[string]int
	ThreatHistogram  map[ThreatLevel]int
	History          []SnapshotSummary
}

//Snapshot is one immutable, fully resolved view of all connections and
//stats at a single tick. Exactly one Snapshot is produced per tick and it
//is never mutated after construction.
type Snapshot struct {
	Timestamp time.Time
	Records   []RecordView
	Stats     StatsView
}

//Event is the unit of delivery to snapshot subscribers. Either Snapshot
//or Err is set, never both.
type Event struct {
	Snapshot *Snapshot
	Err      error
}

package stats

import (
	"sync"
	"time"

	"github.com/cybernilsen/cyberwatch/pkg/data"
)

//Aggregator folds snapshot records into a StatsView. Counters are fully
//recomputed from the current sample each tick so they can never drift;
//only the history ring carries state between ticks.
type Aggregator struct {
	mu       sync.Mutex
	capacity int
	history  []data.SnapshotSummary
}

//NewAggregator creates an Aggregator with a bounded history ring
func NewAggregator(historyCapacity int) *Aggregator {
	return &Aggregator{
		capacity: historyCapacity,
		history:  make([]data.SnapshotSummary, 0, historyCapacity),
	}
}

//Fold computes the StatsView for one tick's records and appends the tick's
//summary to the history, evicting the oldest entry once the ring is full
func (a *Aggregator) Fold(timestamp time.Time, records []data.RecordView) data.StatsView {
	view := data.StatsView{
		CountryHistogram: make(map[string]int),
		ThreatHistogram:  make(map[data.ThreatLevel]int),
	}

	remoteIPs := make(map[string]bool)
	for _, item := range records {
		record := item.Record

		view.TotalConnections++
		switch record.Protocol {
		case data.ProtocolTCP:
			view.TCPCount++
		case data.ProtocolUDP:
			view.UDPCount++
		}
		if record.State == data.StateEstablished {
			view.EstablishedCount++
		}

		if !record.IsLocal && record.RemoteAddress != "" {
			remoteIPs[record.RemoteAddress] = true

			if item.Geo != nil && !item.Geo.Negative && item.Geo.CountryCode != "" {
				view.CountryHistogram[item.Geo.CountryCode]++
			}
		}

		view.ThreatHistogram[item.Threat.Level]++
	}
	view.UniqueRemoteIPs = len(remoteIPs)

	summary := data.SnapshotSummary{
		Timestamp:        timestamp,
		TotalConnections: view.TotalConnections,
		EstablishedCount: view.EstablishedCount,
		UniqueRemoteIPs:  view.UniqueRemoteIPs,
		HighThreatCount:  view.ThreatHistogram[data.ThreatHigh],
	}

	a.mu.Lock()
	a.history = append(a.history, summary)
	if len(a.history) > a.capacity {
		// FIFO eviction, oldest first
		a.history = a.history[len(a.history)-a.capacity:]
	}
	view.History = make([]data.SnapshotSummary, len(a.history))
	copy(view.History, a.history)
	a.mu.Unlock()

	return view
}

//Clear drops the accumulated history without affecting anything else
func (a *Aggregator) Clear() {
	a.mu.Lock()
	a.history = a.history[:0]
	a.mu.Unlock()
}

package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/cybernilsen/cyberwatch/pkg/data"
	"github.com/cybernilsen/cyberwatch/pkg/geo"
	"github.com/cybernilsen/cyberwatch/pkg/sampler"
	"github.com/cybernilsen/cyberwatch/pkg/stats"
	"github.com/cybernilsen/cyberwatch/pkg/threat"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

//subscriberBuffer bounds how far a consumer may fall behind before
//events are dropped for it
const subscriberBuffer = 16

//Monitor owns the polling loop. Each tick runs the full
//sample-resolve-classify-aggregate pipeline and publishes one immutable
//Snapshot to all subscribers. The loop is either idle or running; a
//manual refresh runs the pipeline once in any state without changing it.
type Monitor struct {
	sampler    *sampler.Sampler
	geoCache   *geo.Cache
	classifier *threat.Classifier
	aggregator *stats.Aggregator
	interval   time.Duration
	log        *log.Logger

	// tickMu serializes pipeline executions so snapshots publish in tick
	// order even when a manual refresh races the timer
	tickMu sync.Mutex

	mu          sync.Mutex
	running     bool
	stop        chan struct{}
	done        chan struct{}
	subscribers map[int]chan data.Event
	nextSubID   int
	current     *data.Snapshot
}

//NewMonitor wires the pipeline components into a Monitor
func NewMonitor(interval time.Duration, logger *log.Logger, smp *sampler.Sampler,
	geoCache *geo.Cache, classifier *threat.Classifier, aggregator *stats.Aggregator) *Monitor {
	return &Monitor{
		sampler:     smp,
		geoCache:    geoCache,
		classifier:  classifier,
		aggregator:  aggregator,
		interval:    interval,
		log:         logger,
		subscribers: make(map[int]chan data.Event),
	}
}

//Start begins periodic polling. Calling Start on a running monitor is a
//no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.loop(m.stop, m.done)
}

//Stop halts periodic polling and waits for any in-flight tick to finish
//and publish. Calling Stop on an idle monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
}

//Running reports whether the periodic loop is active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

//RefreshOnce executes the full pipeline a single time regardless of the
//loop state and publishes the result like a normal tick
func (m *Monitor) RefreshOnce() (*data.Snapshot, error) {
	return m.refresh()
}

//Subscribe registers a consumer for published events. The returned
//channel receives either a Snapshot or a tick error per event; it is
//closed on Unsubscribe.
func (m *Monitor) Subscribe() (int, <-chan data.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	ch := make(chan data.Event, subscriberBuffer)
	m.subscribers[id] = ch
	return id, ch
}

//Unsubscribe removes a consumer and closes its channel
func (m *Monitor) Unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.subscribers[id]; ok {
		delete(m.subscribers, id)
		close(ch)
	}
}

//Clear resets the accumulated statistics history without affecting the
//loop state
func (m *Monitor) Clear() {
	m.aggregator.Clear()
}

//CurrentSnapshot returns the last published snapshot, or nil if no tick
//has completed yet. Snapshots are immutable and safe for concurrent reads.
func (m *Monitor) CurrentSnapshot() *data.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Monitor) loop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// errors have already been published to subscribers
			m.refresh()
		}
	}
}

//refresh runs one full pipeline execution and publishes the outcome.
//A sampling failure is reported as a tick error event; it never stops
//the loop.
func (m *Monitor) refresh() (*data.Snapshot, error) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()

	records, err := m.sampler.Sample()
	if err != nil {
		m.log.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Connection sampling failed, skipping tick")
		m.publish(data.Event{Err: err})
		return nil, err
	}

	views := m.resolveAndClassify(records)

	timestamp := time.Now()
	statsView := m.aggregator.Fold(timestamp, views)

	snapshot := &data.Snapshot{
		Timestamp: timestamp,
		Records:   views,
		Stats:     statsView,
	}

	m.mu.Lock()
	m.current = snapshot
	m.mu.Unlock()

	m.publish(data.Event{Snapshot: snapshot})
	return snapshot, nil
}

//resolveAndClassify enriches the tick's records. Geolocation lookups for
//distinct addresses run concurrently; all are awaited before the snapshot
//is constructed.
func (m *Monitor) resolveAndClassify(records []data.ConnectionRecord) []data.RecordView {
	// resolve each distinct remote address once per tick
	addresses := make(map[string]bool)
	for _, record := range records {
		if record.RemoteAddress != "" {
			addresses[record.RemoteAddress] = record.IsLocal
		}
	}

	var geoMu sync.Mutex
	resolved := make(map[string]data.GeoInfo, len(addresses))

	group, ctx := errgroup.WithContext(context.Background())
	for address, isLocal := range addresses {
		address, isLocal := address, isLocal
		group.Go(func() error {
			info := m.geoCache.Resolve(ctx, address, isLocal)
			geoMu.Lock()
			resolved[address] = info
			geoMu.Unlock()
			return nil
		})
	}
	group.Wait()

	views := make([]data.RecordView, 0, len(records))
	for _, record := range records {
		view := data.RecordView{Record: record}
		if record.RemoteAddress != "" {
			info := resolved[record.RemoteAddress]
			view.Geo = &info
		}
		view.Threat = m.classifier.Classify(record, view.Geo)
		views = append(views, view)
	}
	return views
}

//publish delivers an event to every subscriber without ever blocking the
//tick: a consumer that has fallen subscriberBuffer events behind misses
//this one.
func (m *Monitor) publish(event data.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			m.log.WithFields(log.Fields{
				"subscriber": id,
			}).Debug("Dropping event for slow subscriber")
		}
	}
}

package geo

import (
	"context"
	"sync"
	"time"

	"github.com/cybernilsen/cyberwatch/config"
	"github.com/cybernilsen/cyberwatch/pkg/data"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

//LocalCountryCode marks the synthetic GeoInfo returned for local addresses
const LocalCountryCode = "LOCAL"

type (
	//Cache maps remote addresses to resolved GeoInfo. Cache entries are
	//keyed by address only, never by connection tuple. Successful lookups
	//are kept for a long TTL, failed ones for a short TTL so transient
	//API trouble is retried sooner. External calls are rate limited and
	//deduplicated per address while one is outstanding.
	Cache struct {
		lookup      LookupFunc
		limiter     *rate.Limiter
		positiveTTL time.Duration
		negativeTTL time.Duration
		timeout     time.Duration
		log         *log.Logger

		mu       sync.Mutex
		entries  map[string]data.GeoInfo
		inflight map[string]chan struct{}
	}
)

//NewCache builds a Cache from the geolocation section of the config
func NewCache(conf *config.Config, lookup LookupFunc, logger *log.Logger) *Cache {
	perSecond := conf.R.Geo.RateLimitPerSecond
	return &Cache{
		lookup:      lookup,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), perSecond),
		positiveTTL: conf.R.Geo.PositiveTTL,
		negativeTTL: conf.R.Geo.NegativeTTL,
		timeout:     conf.R.Geo.LookupTimeout,
		log:         logger,
		entries:     make(map[string]data.GeoInfo),
		inflight:    make(map[string]chan struct{}),
	}
}

//localInfo is the fixed result for private, loopback, and link-local
//addresses. No external call is ever made for them.
func localInfo() data.GeoInfo {
	return data.GeoInfo{
		CountryCode: LocalCountryCode,
		CountryName: "Local",
		City:        "Local",
		ISP:         "Local Network",
		ResolvedAt:  time.Now(),
	}
}

func negativeInfo() data.GeoInfo {
	return data.GeoInfo{
		ResolvedAt: time.Now(),
		Negative:   true,
	}
}

//Resolve returns GeoInfo for an address. It never fails outward and never
//blocks beyond the configured lookup timeout: rate limit exhaustion and
//lookup failures degrade to a negative result with a short TTL.
func (c *Cache) Resolve(ctx context.Context, address string, isLocal bool) data.GeoInfo {
	if isLocal {
		return localInfo()
	}

	for {
		c.mu.Lock()
		if info, ok := c.entries[address]; ok && !c.expired(info) {
			c.mu.Unlock()
			return info
		}

		ch, outstanding := c.inflight[address]
		if !outstanding {
			ch = make(chan struct{})
			c.inflight[address] = ch
			c.mu.Unlock()
			return c.doLookup(ctx, address, ch)
		}
		c.mu.Unlock()

		// another resolution for this address is outstanding, wait for
		// it and then re-check the cache
		select {
		case <-ch:
		case <-time.After(c.timeout):
			return negativeInfo()
		case <-ctx.Done():
			return negativeInfo()
		}
	}
}

//doLookup performs the external call for an address and stores the result.
//The in-flight channel is closed after the store so waiters observe the
//fresh entry.
func (c *Cache) doLookup(ctx context.Context, address string, ch chan struct{}) data.GeoInfo {
	var info data.GeoInfo

	if !c.limiter.Allow() {
		info = negativeInfo()
	} else {
		lookupCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resolved, err := c.lookup(lookupCtx, address)
		cancel()

		if err != nil {
			c.log.WithFields(log.Fields{
				"address": address,
				"error":   err.Error(),
			}).Debug("Geolocation lookup failed")
			info = negativeInfo()
		} else {
			info = resolved
			info.ResolvedAt = time.Now()
		}
	}

	c.mu.Lock()
	c.entries[address] = info
	delete(c.inflight, address)
	c.mu.Unlock()
	close(ch)

	return info
}

func (c *Cache) expired(info data.GeoInfo) bool {
	ttl := c.positiveTTL
	if info.Negative {
		ttl = c.negativeTTL
	}
	return time.Since(info.ResolvedAt) > ttl
}

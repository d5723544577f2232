package session

import (
	"log"
	"sync"
	"time"
)

// Reaper periodically retires rooms that have seen no activity within the
// TTL. It is the only component allowed to remove rooms outside an explicit
// administrative action; a recently-touched room survives even with zero
// participants.
type Reaper struct {
	registry *Registry
	interval time.Duration
	ttl      time.Duration
	quit     chan struct{}
	stopOnce sync.Once
}

// NewReaper creates a reaper sweeping the registry every interval.
func NewReaper(registry *Registry, interval, ttl time.Duration) *Reaper {
	return &Reaper{
		registry: registry,
		interval: interval,
		ttl:      ttl,
		quit:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (rp *Reaper) Start() {
	go func() {
		ticker := time.NewTicker(rp.interval)
		defer ticker.Stop()

		for {
			select {
			case <-rp.quit:
				return
			case <-ticker.C:
				rp.Sweep()
			}
		}
	}()
}

// Stop halts the sweep loop. Idempotent.
func (rp *Reaper) Stop() {
	rp.stopOnce.Do(func() { close(rp.quit) })
}

// Sweep removes every room idle beyond the TTL and returns how many were
// reaped.
func (rp *Reaper) Sweep() int {
	cutoff := time.Now().Add(-rp.ttl)
	reaped := 0

	for _, room := range rp.registry.ListRooms() {
		room.Lock()
		idle := room.LastActivityAt.Before(cutoff)
		room.Unlock()

		if idle {
			rp.registry.RemoveRoom(room.ID)
			reaped++
		}
	}

	if reaped > 0 {
		log.Printf("Reaped %d idle rooms", reaped)
	}
	return reaped
}

// Package healthcheck tracks what filterd's readiness depends on: it
// periodically probes the filter registry and records whether a socket
// filter is attached, as reported through SetAttached.
package healthcheck

import (
	"sync"
	"time"

	"github.com/SkynetNext/bpf-filter/pkg/filtermetrics"
	"github.com/SkynetNext/bpf-filter/pkg/registry"
	"github.com/SkynetNext/bpf-filter/pkg/xlog"
)

// Checker periodically checks registry connectivity and reports whether the
// service is ready to claim healthy socket attachment.
type Checker struct {
	reg      *registry.Registry
	interval time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu              sync.RWMutex
	registryHealthy bool
	attached        bool
}

// New builds a Checker polling reg at the given interval.
func New(reg *registry.Registry, interval time.Duration) *Checker {
	return &Checker{
		reg:      reg,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins periodic checking.
func (c *Checker) Start() {
	c.wg.Add(1)
	go c.run()
	xlog.Infof("health checker started (interval: %v)", c.interval)
}

// Stop stops the checker.
func (c *Checker) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	xlog.Infof("health checker stopped")
}

// SetAttached records whether a filter program is currently attached.
func (c *Checker) SetAttached(attached bool) {
	c.mu.Lock()
	c.attached = attached
	c.mu.Unlock()
	if attached {
		filtermetrics.ActiveFilters.Set(1)
	} else {
		filtermetrics.ActiveFilters.Set(0)
	}
}

// Ready reports whether the registry is reachable and a filter is attached.
func (c *Checker) Ready() (bool, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.registryHealthy {
		return false, "registry unavailable"
	}
	if !c.attached {
		return false, "no filter attached"
	}
	return true, ""
}

func (c *Checker) run() {
	defer c.wg.Done()
	c.check()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.check()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Checker) check() {
	err := c.reg.CheckHealth()
	healthy := err == nil

	c.mu.Lock()
	wasHealthy := c.registryHealthy
	c.registryHealthy = healthy
	c.mu.Unlock()

	if wasHealthy != healthy {
		if healthy {
			xlog.Infof("registry is now reachable")
		} else {
			xlog.Warnf("registry is now unreachable: %v", err)
		}
	}
}

package healthcheck

import "testing"

func TestReadyRequiresRegistryThenAttachment(t *testing.T) {
	c := &Checker{stopChan: make(chan struct{})}

	if ready, reason := c.Ready(); ready || reason != "registry unavailable" {
		t.Fatalf("Ready() = (%v, %q), want (false, \"registry unavailable\")", ready, reason)
	}

	c.registryHealthy = true
	if ready, reason := c.Ready(); ready || reason != "no filter attached" {
		t.Fatalf("Ready() = (%v, %q), want (false, \"no filter attached\")", ready, reason)
	}

	c.SetAttached(true)
	if ready, reason := c.Ready(); !ready || reason != "" {
		t.Fatalf("Ready() = (%v, %q), want (true, \"\")", ready, reason)
	}

	c.SetAttached(false)
	if ready, _ := c.Ready(); ready {
		t.Fatal("Ready() should go false again once SetAttached(false)")
	}
}

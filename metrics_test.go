package roomcast

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_TracksRoomLifecycle(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(prometheus.NewRegistry())
	reg.Subscribe(m)

	reg.Join("s1", "a", "b")
	reg.Join("s2", "a")

	if got := testutil.ToFloat64(m.rooms); got != 2 {
		t.Errorf("rooms gauge %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.memberships); got != 3 {
		t.Errorf("memberships gauge %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.joins); got != 3 {
		t.Errorf("joins counter %v, want 3", got)
	}

	reg.RemoveSocket("s1")

	if got := testutil.ToFloat64(m.rooms); got != 1 {
		t.Errorf("rooms gauge %v after removal, want 1", got)
	}
	if got := testutil.ToFloat64(m.memberships); got != 1 {
		t.Errorf("memberships gauge %v after removal, want 1", got)
	}
	if got := testutil.ToFloat64(m.leaves); got != 2 {
		t.Errorf("leaves counter %v, want 2", got)
	}
}

func TestMetrics_IdempotentJoinCountsOnce(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics(prometheus.NewRegistry())
	reg.Subscribe(m)

	reg.Join("s1", "a")
	reg.Join("s1", "a")

	if got := testutil.ToFloat64(m.joins); got != 1 {
		t.Errorf("joins counter %v, want 1", got)
	}
}

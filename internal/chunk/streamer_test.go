package chunk

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

// settle ticks until all outstanding work is delivered.
func settle(t *testing.T, s *Streamer, viewer mgl64.Vec2) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		s.Tick(viewer)
		if s.Idle() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("streamer did not settle")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestStreamerGeneratesVisibleChunks(t *testing.T) {
	d := newTestDispatcher(t, 4)
	defer d.Close()

	s := NewStreamer(d, []LODLevel{{LOD: 0, MaxDistance: 10}, {LOD: 2, MaxDistance: 30}}, nil)
	settle(t, s, mgl64.Vec2{})

	visible := s.Visible()
	if len(visible) != 5 {
		t.Fatalf("expected 5 visible chunks, got %d", len(visible))
	}
	for _, c := range visible {
		view, ok := s.Chunk(c)
		if !ok || view.Mesh == nil {
			t.Fatalf("chunk %v has no mesh", c)
		}
		want := terrain.LOD(2)
		if c == (Coord{}) {
			want = 0
		}
		if view.LOD != want {
			t.Errorf("chunk %v shown at lod %d, want %d", c, view.LOD, want)
		}
		vpl := terrain.VerticesPerLine(48, want)
		if len(view.Mesh.Vertices) != vpl*vpl {
			t.Errorf("chunk %v has %d vertices, want %d", c, len(view.Mesh.Vertices), vpl*vpl)
		}
	}
}

func TestStreamerMovesViewer(t *testing.T) {
	d := newTestDispatcher(t, 2)
	defer d.Close()

	s := NewStreamer(d, []LODLevel{{LOD: 0, MaxDistance: 20}}, nil)
	settle(t, s, mgl64.Vec2{})
	known := s.Known()

	// Below the move threshold nothing is recomputed
	settle(t, s, mgl64.Vec2{10, 0})
	if s.Known() != known {
		t.Errorf("small move requested new chunks: %d -> %d", known, s.Known())
	}

	settle(t, s, mgl64.Vec2{96, 0})
	if s.Known() <= known {
		t.Errorf("expected new chunks after moving, still %d", s.Known())
	}

	origin, ok := s.Chunk(Coord{})
	if !ok {
		t.Fatal("origin chunk should stay known")
	}
	if origin.Visible {
		t.Error("origin chunk should be hidden after moving two chunks away")
	}
	if origin.Mesh == nil {
		t.Error("hidden chunk should keep its mesh")
	}

	here, ok := s.Chunk(Coord{2, 0})
	if !ok || !here.Visible || here.Mesh == nil {
		t.Errorf("chunk under the viewer should be visible with a mesh: %+v", here)
	}
}

func TestStreamerWithoutLevels(t *testing.T) {
	d := newTestDispatcher(t, 1)
	defer d.Close()

	s := NewStreamer(d, nil, nil)
	settle(t, s, mgl64.Vec2{})
	if len(s.Visible()) != 0 || s.Known() != 1 {
		t.Errorf("expected only the current chunk known and none visible, got %d known %d visible", s.Known(), len(s.Visible()))
	}
}

func TestStreamerIdleAfterDispatcherClosed(t *testing.T) {
	d := newTestDispatcher(t, 1)
	d.Close()

	s := NewStreamer(d, []LODLevel{{LOD: 0, MaxDistance: 30}}, nil)
	s.Tick(mgl64.Vec2{})
	if !s.Idle() {
		t.Errorf("streamer should be idle when its dispatcher drops requests: inflight=%d", d.InFlight())
	}
}

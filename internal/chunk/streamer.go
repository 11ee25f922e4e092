package chunk

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

// MoveThreshold is how far the viewer must travel before visibility is recomputed.
const MoveThreshold = 25.0

// ChunkView is the consumer-side state of one chunk.
type ChunkView struct {
	Coord   Coord
	Field   *terrain.HeightField
	Mesh    *terrain.MeshBuffers // mesh at LOD, nil until one is ready
	LOD     terrain.LOD
	Visible bool
}

type chunkState struct {
	coord          Coord
	field          *terrain.HeightField
	fieldRequested bool
	meshes         map[terrain.LOD]*terrain.MeshBuffers
	meshRequested  map[terrain.LOD]bool
	shown          terrain.LOD
	hasShown       bool
	visible        bool
}

// Streamer keeps the chunks around a moving viewer generated at the level of
// detail their distance calls for. It is not safe for concurrent use; call
// Tick from the goroutine that owns the dispatcher's results.
type Streamer struct {
	disp         *Dispatcher
	chunkSize    int
	levels       []LODLevel
	viewDistance float64
	log          *zap.Logger

	chunks  map[Coord]*chunkState
	visible []Coord

	viewer     mgl64.Vec2
	lastUpdate mgl64.Vec2
	updated    bool
}

// NewStreamer creates a streamer. levels must be sorted by ascending MaxDistance;
// the last level's MaxDistance is the view distance.
func NewStreamer(disp *Dispatcher, levels []LODLevel, log *zap.Logger) *Streamer {
	if log == nil {
		log = zap.NewNop()
	}
	var viewDist float64
	if len(levels) > 0 {
		viewDist = levels[len(levels)-1].MaxDistance
	}
	return &Streamer{
		disp:         disp,
		chunkSize:    disp.gen.Settings().ChunkSize,
		levels:       slices.Clone(levels),
		viewDistance: viewDist,
		log:          log,
		chunks:       make(map[Coord]*chunkState),
	}
}

// Tick delivers finished work and, when the viewer has moved far enough,
// refreshes which chunks are visible. It returns the number of results delivered.
func (s *Streamer) Tick(viewer mgl64.Vec2) int {
	s.viewer = viewer
	delivered := s.disp.Drain()

	if !s.updated || viewer.Sub(s.lastUpdate).Len() >= MoveThreshold {
		s.refresh()
		s.lastUpdate = viewer
		s.updated = true
	}
	return delivered
}

// Idle reports whether no requests are running or waiting to be drained.
func (s *Streamer) Idle() bool {
	return s.disp.InFlight() == 0 && s.disp.Pending() == 0
}

// Visible returns the chunks visible at the last refresh, in row-major order.
func (s *Streamer) Visible() []Coord {
	return slices.Clone(s.visible)
}

// Chunk returns the state of a known chunk.
func (s *Streamer) Chunk(c Coord) (ChunkView, bool) {
	st, ok := s.chunks[c]
	if !ok {
		return ChunkView{}, false
	}
	view := ChunkView{Coord: c, Field: st.field, Visible: st.visible}
	if st.hasShown {
		view.LOD = st.shown
		view.Mesh = st.meshes[st.shown]
	}
	return view, true
}

// Known returns how many chunks have been requested so far.
func (s *Streamer) Known() int {
	return len(s.chunks)
}

func (s *Streamer) refresh() {
	for _, c := range s.visible {
		s.chunks[c].visible = false
	}
	s.visible = s.visible[:0]

	for _, c := range VisibleChunks(s.viewer, s.chunkSize, s.viewDistance) {
		st, ok := s.chunks[c]
		if !ok {
			st = &chunkState{
				coord:         c,
				meshes:        make(map[terrain.LOD]*terrain.MeshBuffers),
				meshRequested: make(map[terrain.LOD]bool),
			}
			s.chunks[c] = st
		}
		s.updateChunk(st)
		if st.visible {
			s.visible = append(s.visible, c)
		}
	}
	s.log.Debug("visible chunks refreshed",
		zap.Int("visible", len(s.visible)),
		zap.Int("known", len(s.chunks)))
}

func (s *Streamer) updateChunk(st *chunkState) {
	lod, ok := SelectLOD(s.levels, st.coord.Distance(s.viewer, s.chunkSize))
	st.visible = ok
	if !ok {
		return
	}

	if st.field == nil {
		if !st.fieldRequested {
			id := s.disp.RequestHeightField(st.coord.Center(s.chunkSize), func(f *terrain.HeightField) {
				st.field = f
				if st.visible {
					s.updateChunk(st)
				}
			})
			st.fieldRequested = id != uuid.Nil
		}
		return
	}

	if _, ready := st.meshes[lod]; ready {
		st.shown = lod
		st.hasShown = true
		return
	}
	if st.meshRequested[lod] {
		return
	}
	id := s.disp.RequestMesh(st.field, lod, func(m *terrain.MeshBuffers, err error) {
		st.meshRequested[lod] = false
		if err != nil {
			s.log.Warn("chunk mesh failed", zap.Int("x", st.coord.X), zap.Int("y", st.coord.Y), zap.Error(err))
			return
		}
		st.meshes[lod] = m
		if st.visible {
			s.updateChunk(st)
		}
	})
	st.meshRequested[lod] = id != uuid.Nil
}

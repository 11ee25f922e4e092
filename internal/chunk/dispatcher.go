package chunk

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainforge/internal/terrain"
)

// completion is a finished request waiting to be delivered on the consumer goroutine.
type completion struct {
	id      uuid.UUID
	deliver func()
}

// Dispatcher runs generation requests on a worker pool and hands results back
// to a single consumer through Drain.
type Dispatcher struct {
	gen  *Generator
	pool pond.Pool
	log  *zap.Logger

	inFlight atomic.Int64

	mu     sync.Mutex
	queue  []completion
	closed bool
}

// NewDispatcher starts a pool of workers. Zero or negative workers uses GOMAXPROCS.
func NewDispatcher(gen *Generator, workers int, log *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		gen:  gen,
		pool: pond.NewPool(workers),
		log:  log,
	}
}

// submit hands task to the pool and counts it in flight. After Close the
// request is dropped and false is returned.
func (d *Dispatcher) submit(id uuid.UUID, task func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("request after close dropped", zap.Stringer("request", id))
		return false
	}
	d.inFlight.Add(1)
	d.pool.Submit(task)
	return true
}

// RequestHeightField generates the chunk centred at center in the background.
// callback runs on the goroutine that calls Drain. It returns uuid.Nil and
// never calls callback once the dispatcher is closed.
func (d *Dispatcher) RequestHeightField(center mgl64.Vec2, callback func(*terrain.HeightField)) uuid.UUID {
	id := uuid.New()
	ok := d.submit(id, func() {
		start := time.Now()
		field := d.gen.GenerateHeightField(center)
		d.log.Debug("height field ready",
			zap.Stringer("request", id),
			zap.Float64("x", center.X()),
			zap.Float64("y", center.Y()),
			zap.Duration("took", time.Since(start)))

		d.enqueue(id, func() { callback(field) })
	})
	if !ok {
		return uuid.Nil
	}
	return id
}

// RequestMesh builds a mesh of field at lod in the background.
// callback runs on the goroutine that calls Drain. Like RequestHeightField it
// returns uuid.Nil once the dispatcher is closed.
func (d *Dispatcher) RequestMesh(field *terrain.HeightField, lod terrain.LOD, callback func(*terrain.MeshBuffers, error)) uuid.UUID {
	id := uuid.New()
	ok := d.submit(id, func() {
		start := time.Now()
		mesh, err := d.gen.GenerateMesh(field, lod)
		if err != nil {
			d.log.Warn("mesh build failed", zap.Stringer("request", id), zap.Int("lod", int(lod)), zap.Error(err))
		} else {
			d.log.Debug("mesh ready",
				zap.Stringer("request", id),
				zap.Int("lod", int(lod)),
				zap.Int("vertices", len(mesh.Vertices)),
				zap.Duration("took", time.Since(start)))
		}

		d.enqueue(id, func() { callback(mesh, err) })
	})
	if !ok {
		return uuid.Nil
	}
	return id
}

func (d *Dispatcher) enqueue(id uuid.UUID, deliver func()) {
	d.mu.Lock()
	d.queue = append(d.queue, completion{id: id, deliver: deliver})
	d.mu.Unlock()
	d.inFlight.Add(-1)
}

// Drain delivers every completed result in completion order and returns how
// many callbacks ran. Call it once per consumer tick.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, c := range pending {
		c.deliver()
	}
	return len(pending)
}

// Pending returns the number of completed results awaiting Drain.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// InFlight returns the number of requests submitted but not yet completed.
func (d *Dispatcher) InFlight() int {
	return int(d.inFlight.Load())
}

// Close waits for every submitted request to finish. Results stay drainable,
// and later requests are dropped. Calling Close again does nothing.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.pool.StopAndWait()
	d.log.Debug("dispatcher closed", zap.Int("completed", int(d.pool.CompletedTasks())))
}

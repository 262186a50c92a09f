package permalink

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/params"
	"github.com/fcoo/permalink/pkg/storage"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

const tracerName = "github.com/fcoo/permalink"

// State is the lifecycle stage of a Control.
type State int

const (
	StateUninitialized State = iota
	StateConstructed
	StateAttached
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateAttached:
		return "attached"
	default:
		return "uninitialized"
	}
}

// Control synchronizes a parameter map with the URL fragment and storage.
type Control struct {
	cfg        Config
	location   urlcodec.Location
	store      storage.Storage
	extensions []Extension

	params    params.Params
	bus       bus
	viewport  mapview.Viewport
	container mapview.Container
	state     State

	// flushing is set while the control writes its own sinks, so change
	// notices caused by that write are not mistaken for external changes.
	flushing bool
	cancels  []func()

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New creates a control reading and writing loc. The built-in CenterZoom
// extension is registered first, then any WithExtensions in order.
func New(loc urlcodec.Location, opts ...Option) *Control {
	c := &Control{
		cfg:        DefaultConfig(),
		location:   loc,
		extensions: []Extension{NewCenterZoom()},
		params:     params.New(),
		logger:     slog.Default().With("component", "permalink"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	if c.cfg.LocalStorageID == "" {
		c.cfg.LocalStorageID = DefaultLocalStorageID
	}
	if c.cfg.UseLocalStorage && c.store == nil {
		c.logger.Warn("local storage enabled without a store, using an in-memory store")
		c.store = storage.NewMemoryStore()
	}
	if c.cfg.UseLocation && c.location == nil {
		c.logger.Warn("location enabled without a location, disabling it")
		c.cfg.UseLocation = false
	}

	c.Refresh()

	for _, ext := range c.extensions {
		ext := ext
		ext.OnConstruct(c)
		c.bus.on(TopicAdd, func(Event) { ext.OnAttach(c) })
	}

	c.state = StateConstructed
	return c
}

// OnAdd attaches the control to v and returns its container. It is called by
// the host the first time the control's container is needed; later calls
// return the same container.
func (c *Control) OnAdd(v mapview.Viewport) mapview.Container {
	if c.state == StateAttached {
		return c.container
	}

	container := v.CreateContainer(ContainerClass)
	container.DisableClickPropagation()
	c.viewport = v
	c.container = container
	c.state = StateAttached

	// Siblings sharing the URL or storage may have written since construction.
	ctx, span := c.tracer.Start(context.Background(), "permalink.OnAdd")
	c.params = c.readExternal(ctx)
	c.writeBack(ctx)
	span.End()
	c.fireUpdate()

	if c.cfg.UseLocation {
		c.cancels = append(c.cancels, c.location.OnHashChange(c.onExternalChange))
	}
	if c.cfg.UseLocalStorage {
		if w, ok := c.store.(storage.Watcher); ok {
			c.cancels = append(c.cancels, w.Watch(c.cfg.LocalStorageID, c.onExternalChange))
		}
	}

	c.bus.fire(Event{Topic: TopicAdd, Params: c.params.Clone(), Viewport: v})
	return container
}

// Merge applies a partial update: non-nil values are set, nil values remove
// the key. The current parameters are re-read from the URL or storage first so
// writes by other controls sharing them survive, and the result is written
// back before Merge returns.
func (c *Control) Merge(partial params.Params) {
	ctx, span := c.tracer.Start(context.Background(), "permalink.Merge",
		trace.WithAttributes(attribute.Int("permalink.keys", len(partial))))
	defer span.End()

	c.params = c.readExternal(ctx)
	c.params.Merge(partial)
	c.writeBack(ctx)
	c.metrics.merged()
}

// Refresh reloads the parameters from the URL or storage. When they differ
// from the current ones, the control adopts them, writes them back and fires
// TopicUpdate.
func (c *Control) Refresh() {
	ctx, span := c.tracer.Start(context.Background(), "permalink.Refresh")
	defer span.End()

	fresh := c.readExternal(ctx)
	if c.sameAs(fresh) {
		span.SetAttributes(attribute.Bool("permalink.changed", false))
		c.metrics.externalChange(false)
		return
	}

	span.SetAttributes(attribute.Bool("permalink.changed", true))
	c.logger.Debug("external parameters changed", "keys", len(fresh))
	c.params = fresh
	c.writeBack(ctx)
	c.fireUpdate()
	c.metrics.externalChange(true)
}

// On subscribes h to topic and returns a function that cancels it.
func (c *Control) On(topic Topic, h Handler) func() {
	return c.bus.on(topic, h)
}

// Params returns a copy of the current parameters.
func (c *Control) Params() params.Params {
	return c.params.Clone()
}

// Config returns the control settings.
func (c *Control) Config() Config {
	return c.cfg
}

// Position returns where the host should place the control.
func (c *Control) Position() string {
	return c.cfg.Position
}

// Viewport returns the attached viewport, or nil before OnAdd.
func (c *Control) Viewport() mapview.Viewport {
	return c.viewport
}

// Container returns the container created by OnAdd, or nil.
func (c *Control) Container() mapview.Container {
	return c.container
}

// State returns the lifecycle stage.
func (c *Control) State() State {
	return c.state
}

// Close cancels the hash-change and storage subscriptions made by OnAdd and
// detaches every extension implementing Detacher, so the control no longer
// reads or writes its sinks.
func (c *Control) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil

	for _, ext := range c.extensions {
		if d, ok := ext.(Detacher); ok {
			d.OnDetach(c)
		}
	}
}

func (c *Control) onExternalChange() {
	if c.flushing {
		return
	}
	c.Refresh()
}

// readExternal returns the authoritative parameters: the storage entry when
// local storage is enabled, else the URL fragment. If neither is available, or
// storage cannot be read, the in-memory parameters are returned.
func (c *Control) readExternal(ctx context.Context) params.Params {
	if c.cfg.UseLocalStorage {
		raw, err := c.store.GetItem(c.cfg.LocalStorageID)
		if err != nil {
			c.logger.Warn("reading local storage failed", "key", c.cfg.LocalStorageID, "error", err)
			c.metrics.storageError("get")
			recordError(ctx, err)
			return c.params.Clone()
		}
		return urlcodec.ParseQuery(raw)
	}
	if c.cfg.UseLocation {
		return c.location.ParseHash()
	}
	return c.params.Clone()
}

// writeBack flushes the parameters to every enabled sink.
func (c *Control) writeBack(ctx context.Context) {
	c.flushing = true
	defer func() { c.flushing = false }()

	if c.cfg.UseLocation {
		c.location.UpdateHash(c.params, true)
		c.metrics.wroteBack("location")
	}
	if c.cfg.UseLocalStorage {
		if err := c.store.SetItem(c.cfg.LocalStorageID, urlcodec.Stringify(c.params)); err != nil {
			c.logger.Warn("writing local storage failed", "key", c.cfg.LocalStorageID, "error", err)
			c.metrics.storageError("set")
			recordError(ctx, err)
			return
		}
		c.metrics.wroteBack("storage")
	}
}

// fireUpdate coerces the parameters in place and notifies TopicUpdate.
func (c *Control) fireUpdate() {
	if c.cfg.URLParseOptions != nil {
		urlcodec.Coerce(c.params, *c.cfg.URLParseOptions)
	}
	c.metrics.updated()
	c.bus.fire(Event{Topic: TopicUpdate, Params: c.params.Clone(), Viewport: c.viewport})
}

// sameAs compares fresh with the current parameters after applying the
// configured coercion to both, so "6" read from the URL matches 6 already
// coerced in memory.
func (c *Control) sameAs(fresh params.Params) bool {
	if c.cfg.URLParseOptions == nil {
		return params.Equal(fresh, c.params)
	}
	a, b := fresh.Clone(), c.params.Clone()
	urlcodec.Coerce(a, *c.cfg.URLParseOptions)
	urlcodec.Coerce(b, *c.cfg.URLParseOptions)
	return params.Equal(a, b)
}

func recordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

package permalink

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/fcoo/permalink/pkg/storage"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

// DefaultLocalStorageID is the storage key used when none is configured.
const DefaultLocalStorageID = "paramsTemp"

// ContainerClass is the class name of the element the control renders into.
const ContainerClass = "leaflet-control-attribution leaflet-control-permalink"

// Config holds the recognized control settings.
type Config struct {
	// Position is where the host places the control (default "bottomright").
	Position string

	// UseLocation reads and writes the URL fragment (default true).
	UseLocation bool

	// UseLocalStorage also reads and writes a storage entry (default false).
	// When enabled the storage entry is authoritative on read.
	UseLocalStorage bool

	// LocalStorageID is the storage key (default "paramsTemp").
	LocalStorageID string

	// Postfix is appended to the built-in zoom, lat and lon keys.
	Postfix string

	// URLParseOptions are the coercions applied before "update" fires.
	// Nil disables coercion.
	URLParseOptions *urlcodec.ParseOptions
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	opts := urlcodec.DefaultParseOptions
	return Config{
		Position:        "bottomright",
		UseLocation:     true,
		UseLocalStorage: false,
		LocalStorageID:  DefaultLocalStorageID,
		URLParseOptions: &opts,
	}
}

// Option configures a Control.
type Option func(*Control)

// WithConfig replaces all settings at once.
func WithConfig(cfg Config) Option {
	return func(c *Control) {
		c.cfg = cfg
	}
}

// WithPosition sets the control position.
func WithPosition(position string) Option {
	return func(c *Control) {
		c.cfg.Position = position
	}
}

// WithPostfix sets the suffix of the built-in parameter names.
func WithPostfix(postfix string) Option {
	return func(c *Control) {
		c.cfg.Postfix = postfix
	}
}

// WithoutLocation stops the control from reading or writing the URL.
func WithoutLocation() Option {
	return func(c *Control) {
		c.cfg.UseLocation = false
	}
}

// WithStorage sets the store used when local storage is enabled.
func WithStorage(store storage.Storage) Option {
	return func(c *Control) {
		c.store = store
	}
}

// WithLocalStorage enables local storage on store under key id. An empty id
// keeps the configured one.
func WithLocalStorage(store storage.Storage, id string) Option {
	return func(c *Control) {
		c.store = store
		c.cfg.UseLocalStorage = true
		if id != "" {
			c.cfg.LocalStorageID = id
		}
	}
}

// WithParseOptions sets the coercions applied to incoming values.
func WithParseOptions(opts urlcodec.ParseOptions) Option {
	return func(c *Control) {
		c.cfg.URLParseOptions = &opts
	}
}

// WithoutCoercion leaves incoming values as strings.
func WithoutCoercion() Option {
	return func(c *Control) {
		c.cfg.URLParseOptions = nil
	}
}

// WithExtensions registers extensions after the built-in ones, in order.
func WithExtensions(exts ...Extension) Option {
	return func(c *Control) {
		c.extensions = append(c.extensions, exts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Control) {
		c.logger = logger
	}
}

// WithMetrics records activity on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Control) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for merge, refresh and write-back spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Control) {
		c.tracer = tracer
	}
}

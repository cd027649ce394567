package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlens/pkg/cache"
	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/imageio"
	"github.com/matzehuels/boxlens/pkg/layout"
	"github.com/matzehuels/boxlens/pkg/observability"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
)

// keyTypeRender labels cache hook events.
const keyTypeRender = "render"

// Runner encapsulates pipeline execution with caching.
// The CLI and the API both use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner; each Execute call draws into
// its own target.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// Close releases the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute runs the complete layout → decode → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	// Stage 1: Layout. Validated before touching the image.
	doc, err := layout.ReadJSON(bytes.NewReader(in.Layout))
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed layout",
		"sections", len(doc.Sections),
		"boxes", doc.BoxCount(),
		"page_width", doc.PageWidth)

	key := r.Keyer.RenderKey(cache.Hash(in.Image), cache.Hash(in.Layout), opts.RenderKeyOpts())
	if !opts.Refresh {
		if res, ok := r.cached(ctx, key); ok {
			logger.Debug("render cache hit", "key", key)
			return res, nil
		}
	}

	// Stage 2: Decode
	decodeStart := time.Now()
	observability.Render().OnDecodeStart(ctx, len(in.Image))
	dec, err := imageio.Decode(ctx, in.Image)
	decodeTime := time.Since(decodeStart)
	observability.Render().OnDecodeComplete(ctx, formatOf(dec), decodeTime, err)
	if err != nil {
		return nil, err
	}
	logger.Debug("decoded image",
		"format", dec.Format,
		"width", dec.Width(),
		"height", dec.Height(),
		"duration", decodeTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Render().OnRenderStart(ctx, len(doc.Sections), doc.BoxCount())
	artifacts, ov, err := Render(overlay.NewTarget(), dec.Image, doc, opts)
	renderTime := time.Since(renderStart)
	if err != nil {
		observability.Render().OnRenderComplete(ctx, 0, 0, renderTime, err)
		return nil, err
	}
	observability.Render().OnRenderComplete(ctx, len(ov.Drawn), ov.Skipped, renderTime, nil)

	if ov.Skipped > 0 {
		logger.Debug("skipped malformed boxes", "count", ov.Skipped)
	}
	logger.Info("rendered overlay",
		"width", dec.Width(),
		"height", dec.Height(),
		"boxes", len(ov.Drawn),
		"types", len(ov.Legend),
		"formats", opts.Formats,
		"duration", renderTime)

	res := &Result{
		Artifacts:   artifacts,
		Legend:      ov.Legend,
		Width:       ov.Width,
		Height:      ov.Height,
		ScaleX:      ov.Scale.X,
		ScaleY:      ov.Scale.Y,
		Drawn:       len(ov.Drawn),
		Skipped:     ov.Skipped,
		ImageFormat: dec.Format,
		Stats: Stats{
			Sections:   len(doc.Sections),
			Boxes:      doc.BoxCount(),
			DecodeTime: decodeTime,
			RenderTime: renderTime,
		},
	}
	r.store(ctx, key, res)
	return res, nil
}

// cached loads a previous result. Cache failures are logged and treated
// as misses.
func (r *Runner) cached(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeRender)
		return nil, false
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "err", err)
		_ = r.Cache.Delete(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeRender)
	res.CacheHit = true
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		r.Logger.Warn("cache encode failed", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func formatOf(dec *imageio.Decoded) string {
	if dec == nil {
		return ""
	}
	return dec.Format
}

// ErrNoArtifact is returned by Artifact for formats that were not rendered.
var ErrNoArtifact = errors.New(errors.ErrCodeNotFound, "artifact not rendered")

// Artifact returns the bytes for format.
func (r *Result) Artifact(format string) ([]byte, error) {
	data, ok := r.Artifacts[format]
	if !ok {
		return nil, ErrNoArtifact
	}
	return data, nil
}

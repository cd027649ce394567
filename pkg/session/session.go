// Package session holds long-lived render sessions for interactive
// surfaces (the HTTP API and the terminal previewer).
//
// A [Controller] owns one screenshot, one layout document, the current
// render options and the raster target renders are drawn into. Loading a
// new image while a previous decode is still running supersedes the old
// decode: its context is cancelled and its result is discarded with
// [ErrSuperseded], so a slow decode can never overwrite a newer image.
// Renders are serialized per controller.
//
// Controllers are kept in a [Store] keyed by ID:
//
//	store := session.NewMemoryStore(time.Hour)
//	ctrl := session.New()
//	store.Put(ctx, ctrl)
//
//	if _, err := ctrl.LoadImage(ctx, png); err != nil {
//	    return err
//	}
//	ctrl.SetLayout(doc)
//	frame, err := ctrl.Render(ctx, "png")
package session

import (
	"context"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/boxlens/pkg/errors"
	"github.com/matzehuels/boxlens/pkg/imageio"
	"github.com/matzehuels/boxlens/pkg/layout"
	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
)

// Sentinel errors for session operations.
var (
	// ErrSuperseded is returned by LoadImage when a newer load started
	// before this one finished.
	ErrSuperseded = errors.New(errors.ErrCodeSuperseded, "image load superseded by a newer load")

	// ErrNoImage is returned when rendering before an image was loaded.
	ErrNoImage = errors.New(errors.ErrCodeInvalidInput, "no image loaded")

	// ErrNoLayout is returned when rendering before a layout was set.
	ErrNoLayout = errors.New(errors.ErrCodeInvalidInput, "no layout set")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = time.Hour

// Frame is the output of one session render.
type Frame struct {
	Artifacts map[string][]byte
	Overlay   *overlay.Result

	// Image is a copy of the rendered raster, unaffected by later renders.
	Image *image.RGBA
}

// Controller is a single render session. It is safe for concurrent use.
type Controller struct {
	ID        string
	CreatedAt time.Time

	// renderMu serializes renders and guards target.
	renderMu sync.Mutex
	target   *overlay.Target

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	image    *imageio.Decoded
	doc      *layout.Document
	opts     pipeline.Options
	last     *overlay.Result
	lastUsed time.Time

	decode func(context.Context, []byte) (*imageio.Decoded, error)
}

// New creates an empty session with a random ID and default options.
func New() *Controller {
	now := time.Now()
	return &Controller{
		ID:        uuid.NewString(),
		CreatedAt: now,
		target:    overlay.NewTarget(),
		opts:      pipeline.DefaultOptions(),
		lastUsed:  now,
		decode:    imageio.Decode,
	}
}

// LoadImage decodes data and makes it the session's image.
//
// Starting a load cancels any load still in flight. If another load starts
// before this one completes, the result is dropped and ErrSuperseded is
// returned. A failed load leaves the previous image in place.
func (c *Controller) LoadImage(ctx context.Context, data []byte) (*imageio.Decoded, error) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	dec, err := c.decode(ctx, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil, ErrSuperseded
	}
	c.cancel = nil
	c.lastUsed = time.Now()
	if err != nil {
		return nil, err
	}
	c.image = dec
	c.last = nil
	return dec, nil
}

// SetLayout replaces the layout document after validating it.
func (c *Controller) SetLayout(doc *layout.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc
	c.last = nil
	c.lastUsed = time.Now()
	return nil
}

// SetOptions replaces the render options.
func (c *Controller) SetOptions(opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
	c.last = nil
	return nil
}

// Options returns the current render options.
func (c *Controller) Options() pipeline.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Image returns the current image, or nil.
func (c *Controller) Image() *imageio.Decoded {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image
}

// Layout returns the current layout document, or nil.
func (c *Controller) Layout() *layout.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// LastUsed reports when the session was last loaded into or rendered.
func (c *Controller) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Render draws the overlay with the current options and encodes it in
// formats. With no formats, the options' formats are used.
func (c *Controller) Render(ctx context.Context, formats ...string) (*Frame, error) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.mu.Lock()
	img, doc, opts := c.image, c.doc, c.opts
	c.mu.Unlock()

	if img == nil {
		return nil, ErrNoImage
	}
	if doc == nil {
		return nil, ErrNoLayout
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(formats) > 0 {
		var err error
		if opts, err = opts.WithFormats(formats...); err != nil {
			return nil, err
		}
	} else if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	artifacts, res, err := pipeline.Render(c.target, img.Image, doc, opts)
	if err != nil {
		return nil, err
	}

	snap := image.NewRGBA(c.target.Image().Bounds())
	draw.Draw(snap, snap.Bounds(), c.target.Image(), snap.Bounds().Min, draw.Src)

	c.mu.Lock()
	c.last = res
	c.lastUsed = time.Now()
	c.mu.Unlock()
	return &Frame{Artifacts: artifacts, Overlay: res, Image: snap}, nil
}

// Legend returns the legend of the current image, layout and options,
// rendering first if nothing has been rendered since the last change.
func (c *Controller) Legend(ctx context.Context) ([]overlay.LegendEntry, error) {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if last != nil {
		return last.Legend, nil
	}
	frame, err := c.Render(ctx, pipeline.FormatJSON)
	if err != nil {
		return nil, err
	}
	return frame.Overlay.Legend, nil
}

// Reset cancels any in-flight load and clears the image, layout and target.
// Options are kept.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.image = nil
	c.doc = nil
	c.last = nil
	c.mu.Unlock()

	c.renderMu.Lock()
	c.target.Clear()
	c.renderMu.Unlock()
}

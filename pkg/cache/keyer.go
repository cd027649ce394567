package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 digest of data. Inputs are keyed by this
// digest, never by file name, so renaming a screenshot still hits.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RenderKeyOpts holds the render settings that change the output bytes.
type RenderKeyOpts struct {
	ShowLabels    bool     `json:"labels"`
	ShowSections  bool     `json:"sections"`
	ColorByType   bool     `json:"color_by_type"`
	LegendOnImage bool     `json:"legend_on_image"`
	FontSize      float64  `json:"font_size"`
	Formats       []string `json:"formats"`
}

// Keyer builds cache keys.
type Keyer interface {
	// RenderKey identifies the artifacts of one render.
	RenderKey(imageHash, layoutHash string, opts RenderKeyOpts) string
}

// DefaultKeyer generates unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey generates a key of the form "render:<sha256>".
func (DefaultKeyer) RenderKey(imageHash, layoutHash string, opts RenderKeyOpts) string {
	// RenderKeyOpts always marshals.
	data, _ := json.Marshal(struct {
		Image  string        `json:"image"`
		Layout string        `json:"layout"`
		Opts   RenderKeyOpts `json:"opts"`
	}{imageHash, layoutHash, opts})
	return "render:" + Hash(data)
}

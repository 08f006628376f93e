package domain

import "time"

// ImageDescriptor describes one camera capture stored under images/.
type ImageDescriptor struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// ImageURLSet maps a size preset name to a delivery URL.
type ImageURLSet map[string]string

// Transform carries the resize hints forwarded to the image CDN. Zero fields are omitted.
type Transform struct {
	Width   int
	Height  int
	Quality int
}

// IsZero reports whether no hint is set.
func (t Transform) IsZero() bool {
	return t.Width == 0 && t.Height == 0 && t.Quality == 0
}

// Preset is a named Transform offered by the image URL endpoint.
type Preset struct {
	Name      string
	Transform Transform
}

const (
	PresetOriginal  = "original"
	PresetLarge     = "large"
	PresetMedium    = "medium"
	PresetSmall     = "small"
	PresetThumbnail = "thumbnail"
	PresetCustom    = "custom"
)

// Presets lists the fixed sizes in the order they are generated.
var Presets = []Preset{
	{Name: PresetOriginal},
	{Name: PresetLarge, Transform: Transform{Width: 1280, Quality: 85}},
	{Name: PresetMedium, Transform: Transform{Width: 640, Quality: 80}},
	{Name: PresetSmall, Transform: Transform{Width: 320, Quality: 75}},
	{Name: PresetThumbnail, Transform: Transform{Width: 128, Quality: 60}},
}

// LookupPreset returns the fixed preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

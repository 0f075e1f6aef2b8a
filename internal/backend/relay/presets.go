package relay

// Preset is one entry of a closed lookup table.
type Preset struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

var stylePresets = []Preset{
	{Key: "realistic", Label: "Realistic", Value: "photorealistic, high quality, detailed"},
	{Key: "artistic", Label: "Artistic", Value: "artistic, creative, expressive style"},
	{Key: "cartoon", Label: "Cartoon", Value: "cartoon style, animated, colorful"},
	{Key: "sketch", Label: "Sketch", Value: "pencil sketch, hand-drawn, artistic"},
	{Key: "fantasy", Label: "Fantasy", Value: "fantasy art, magical, mystical"},
	{Key: "scifi", Label: "Sci-Fi", Value: "sci-fi, futuristic, high-tech"},
	{Key: "vintage", Label: "Vintage", Value: "vintage style, retro, nostalgic"},
	{Key: "minimalist", Label: "Minimalist", Value: "minimalist, clean, simple design"},
}

var dimensionPresets = []Preset{
	{Key: "square", Label: "Square (1024×1024)", Value: "1024x1024"},
	{Key: "portrait", Label: "Portrait (832×1216)", Value: "832x1216"},
	{Key: "landscape", Label: "Landscape (1216×832)", Value: "1216x832"},
	{Key: "wide", Label: "Wide (1344×768)", Value: "1344x768"},
}

const (
	DefaultStyle      = "realistic"
	DefaultDimensions = "square"
)

// Styles returns the style presets in display order.
func Styles() []Preset {
	return append([]Preset(nil), stylePresets...)
}

// Dimensions returns the dimension presets in display order.
func Dimensions() []Preset {
	return append([]Preset(nil), dimensionPresets...)
}

// StyleDescriptor maps a style key to its prompt descriptor.
func StyleDescriptor(style string) (string, bool) {
	return lookup(stylePresets, style)
}

// DimensionSize maps a dimension key to its pixel size label, e.g. "1216x832".
func DimensionSize(dimensions string) (string, bool) {
	return lookup(dimensionPresets, dimensions)
}

func lookup(presets []Preset, key string) (string, bool) {
	for _, p := range presets {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

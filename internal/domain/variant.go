package domain

import "sort"

// VariantProfile describes one named rendering of a video: the voice
// reference used upstream to synthesize the audio (passed through as
// metadata, never consumed here), the audio tempo multiplier, and the
// ffmpeg video filter expression. The literal "none" filter means
// re-encode without a visual filter.
type VariantProfile struct {
	Name    string  `json:"-"`
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Filter  string  `json:"filter"`
}

// FilterNone is the sentinel filter expression for "no visual filter".
const FilterNone = "none"

// Catalog is an immutable variant table built once at startup. Lookups
// are read-only and safe for concurrent use without synchronization.
type Catalog struct {
	profiles map[string]VariantProfile
}

func NewCatalog(profiles []VariantProfile) *Catalog {
	m := make(map[string]VariantProfile, len(profiles))
	for _, p := range profiles {
		m[p.Name] = p
	}
	return &Catalog{profiles: m}
}

// DefaultCatalog returns the production variant set.
func DefaultCatalog() *Catalog {
	return NewCatalog([]VariantProfile{
		{Name: "pablo", VoiceID: "OhisAd2u8Q6qSA4xXAAT", Speed: 1.00, Filter: FilterNone},
		{Name: "josh", VoiceID: "Rsz5u2Huh1hPlPr0oxRQ", Speed: 1.01, Filter: "eq=contrast=1.02"},
		{Name: "michael", VoiceID: "dfpTJ8gngbfXIon7bId3", Speed: 0.99, Filter: "eq=saturation=1.015"},
		{Name: "ryan", VoiceID: "4e32WqNVWRquDa1OcRYZ", Speed: 1.02, Filter: "unsharp=5:5:1.5"},
		{Name: "brad", VoiceID: "f5HLTX707KIM4SzJYzSz", Speed: 0.98, Filter: "eq=gamma=1.01"},
	})
}

// Resolve looks up a variant by name. The boolean follows map semantics;
// an absent name is a client error, not a fatal condition.
func (c *Catalog) Resolve(name string) (VariantProfile, bool) {
	p, ok := c.profiles[name]
	return p, ok
}

// List returns all profiles sorted by name for stable output.
func (c *Catalog) List() []VariantProfile {
	out := make([]VariantProfile, 0, len(c.profiles))
	for _, p := range c.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

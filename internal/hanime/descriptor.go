package hanime

import (
	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

// StreamDescriptor is the metadata extracted from one resolved episode URL.
// Immutable after Resolve returns.
type StreamDescriptor struct {
	Slug     string
	Title    string
	Variants []Variant
	Episodes []Episode
}

// Variant is one advertised quality option.
type Variant struct {
	Height      int
	Width       int
	URL         string
	FilesizeMBs float64
}

// Episode is a sibling episode in the same franchise, used by the
// all-episodes expansion.
type Episode struct {
	Slug string
	Name string
}

// SelectVariant picks the playlist variant for the wanted height. A variant
// with an empty URL is not usable. When the wanted height is not advertised
// the highest advertised height wins; ties keep the first occurrence.
func SelectVariant(d *StreamDescriptor, wantedHeight int) (Variant, error) {
	usable := make([]Variant, 0, len(d.Variants))
	for _, v := range d.Variants {
		if v.URL != "" {
			usable = append(usable, v)
		}
	}
	if len(usable) == 0 {
		return Variant{}, &model.NoStreamError{Slug: d.Slug}
	}

	best := usable[0]
	for _, v := range usable[1:] {
		if v.Height == wantedHeight && best.Height != wantedHeight {
			best = v
			continue
		}
		if best.Height != wantedHeight && v.Height > best.Height {
			best = v
		}
	}
	return best, nil
}

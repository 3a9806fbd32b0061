package visualsearch

import (
	"regexp"
	"strings"

	"github.com/five82/retriever/internal/backend"
)

const (
	unknownLocation = "Unknown Location"
	noDescription   = "No description"
	highThreshold   = 0.8
)

// Tier is the confidence class shown on a result.
type Tier int

const (
	TierMedium Tier = iota
	TierHigh
)

func (t Tier) String() string {
	if t == TierHigh {
		return "high"
	}
	return "medium"
}

// TierFor classifies a raw similarity score. Only scores strictly above 0.8
// are high.
func TierFor(score float64) Tier {
	if score > highThreshold {
		return TierHigh
	}
	return TierMedium
}

// MatchResult is one search hit prepared for display.
type MatchResult struct {
	Name            string
	Location        string
	Description     string
	ConfidenceLabel string
	RawScore        float64
	ImageURL        string
}

// Badge returns the confidence badge text, e.g. "87% Match".
func (m MatchResult) Badge() string {
	return m.ConfidenceLabel + " Match"
}

// Tier returns the confidence tier of the result.
func (m MatchResult) Tier() Tier {
	return TierFor(m.RawScore)
}

// HasImage reports whether the result carries an image URL.
func (m MatchResult) HasImage() bool {
	return m.ImageURL != ""
}

// NewMatchResult maps a raw API hit into a MatchResult with image paths
// resolved against baseURL.
func NewMatchResult(baseURL string, raw backend.VisualMatch) MatchResult {
	location := raw.Location
	if location == "" {
		location = unknownLocation
	}
	description := raw.Description
	if description == "" {
		description = noDescription
	}
	image := raw.ImageURL
	if image == "" {
		image = raw.ImagePath
	}
	return MatchResult{
		Name:            raw.Name,
		Location:        location,
		Description:     description,
		ConfidenceLabel: string(raw.MatchConfidence),
		RawScore:        float64(raw.RawScore),
		ImageURL:        ResolveImageURL(baseURL, image),
	}
}

func mapResults(baseURL string, raw []backend.VisualMatch) []MatchResult {
	out := make([]MatchResult, 0, len(raw))
	for _, m := range raw {
		out = append(out, NewMatchResult(baseURL, m))
	}
	return out
}

var frontendPrefix = regexp.MustCompile(`^/?frontend/`)

// ResolveImageURL points an image path at the backend's static mount. A
// leading "frontend/" segment and then one leading slash are removed before
// joining. Absolute http(s) URLs and empty paths are returned unchanged.
func ResolveImageURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	cleaned := frontendPrefix.ReplaceAllString(path, "")
	cleaned = strings.TrimPrefix(cleaned, "/")
	return strings.TrimRight(baseURL, "/") + "/" + cleaned
}

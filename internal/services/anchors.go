package services

import (
	"io"
	"log/slog"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Well-known Route 66 anchor cities. Matching is case-insensitive on whole
// words, so "Springfield, MO" and "Downtown Tulsa" both match.
var anchorCities = []string{
	"chicago",
	"joliet",
	"springfield",
	"st. louis",
	"saint louis",
	"joplin",
	"tulsa",
	"oklahoma city",
	"amarillo",
	"tucumcari",
	"santa fe",
	"albuquerque",
	"gallup",
	"winslow",
	"flagstaff",
	"williams",
	"kingman",
	"barstow",
	"san bernardino",
	"los angeles",
	"santa monica",
}

var (
	anchorMatcherBuilder = ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	anchorMatcher = anchorMatcherBuilder.Build(anchorCities)
)

// IsAnchorCity reports whether name mentions one of the curated Route 66 anchors.
func IsAnchorCity(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return len(anchorMatcher.FindAll(name)) > 0
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

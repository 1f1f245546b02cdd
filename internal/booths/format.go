package booths

import (
	"fmt"
	"strings"

	"github.com/hyperjump/votesathi/internal/models"
)

type labels struct {
	station, landmark, location, directions string
}

var localeLabels = map[string]labels{
	"en": {"Polling Station", "Landmark", "Location", "Directions"},
	"hi": {"मतदान केंद्र", "पहचान चिह्न", "स्थान", "दिशा-निर्देश"},
}

// DirectionsURL returns a Google Maps directions link to the booth.
func DirectionsURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%.6f,%.6f", lat, lng)
}

// Format renders a booth as a human-readable block in locale.
// Unsupported locales fall back to English.
func Format(b models.BoothRecord, locale string) string {
	l, ok := localeLabels[locale]
	if !ok {
		l = localeLabels["en"]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %d: %s\n", l.station, b.StationNumber, b.Title)
	if b.Landmark != "" {
		fmt.Fprintf(&sb, "%s: %s\n", l.landmark, b.Landmark)
	}
	fmt.Fprintf(&sb, "%s: %.6f, %.6f\n", l.location, b.Lat, b.Lng)
	fmt.Fprintf(&sb, "%s: %s", l.directions, DirectionsURL(b.Lat, b.Lng))
	return sb.String()
}

// FormatList renders booths separated by blank lines.
func FormatList(booths []models.BoothRecord, locale string) string {
	blocks := make([]string, len(booths))
	for i, b := range booths {
		blocks[i] = Format(b, locale)
	}
	return strings.Join(blocks, "\n\n")
}

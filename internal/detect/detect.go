package detect

import (
	"context"
	"strings"
)

// Detector is the capability interface for the vision-detection service.
// Implementations are stateless and safe to share across concurrent calls.
type Detector interface {
	// Detect returns the raw ingredient labels visible in the image, in the
	// order reported by the detector (confidence-descending when available).
	// An image with no recognizable ingredients returns an empty Result, not
	// an error.
	Detect(ctx context.Context, image []byte) (*Result, error)

	// Health is a fast liveness probe with its own short timeout. It never
	// returns an error; network failure maps to false.
	Health(ctx context.Context) bool
}

// Result is the ephemeral output of one detection call. Confidences, when
// present, is parallel to Labels.
type Result struct {
	Labels      []string
	Confidences []float64
}

// CleanLabels strips whitespace and drops empty entries while preserving
// detector order. This is the parsing boundary between the wire format and
// downstream inventory logic.
func CleanLabels(raw []string) []string {
	labels := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		labels = append(labels, l)
	}
	return labels
}

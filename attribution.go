package exam2pdf

import (
	"fmt"
	"strings"

	"github.com/exam-tools/go-exam2pdf/internal/metadata"
)

// UnknownField substitutes for attribution fields left empty.
const UnknownField = "不明"

// DefaultAttribution is the citation used when no metadata is available at
// all: every field reads unknown.
var DefaultAttribution = Attribution{}.String()

// Attribution identifies the exam a quoted passage was taken from. Empty
// fields render as UnknownField rather than disappearing, so a citation line
// always has the same shape.
type Attribution struct {
	University string
	Year       string
	Subject    string
	Author     string
}

// String joins the four fields with single spaces, substituting UnknownField
// for each blank one.
func (a Attribution) String() string {
	parts := []string{a.University, a.Year, a.Subject, a.Author}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			p = UnknownField
		}
		parts[i] = p
	}
	return strings.Join(parts, " ")
}

// AttributionSource records where a resolved attribution came from.
type AttributionSource string

// Attribution sources, in precedence order.
const (
	SourceExplicit    AttributionSource = "explicit"
	SourceEnvironment AttributionSource = "environment"
	SourceMetadata    AttributionSource = "metadata"
	SourceFallback    AttributionSource = "fallback"
)

// ResolveAttribution decides the citation text for one Markdown source file.
// Precedence: explicit value > environment override > sidecar metadata YAML >
// DefaultAttribution. The environment override is read by the caller (the
// CLI uses EXAM2PDF_ATTRIBUTION via envconfig) and passed in, never consulted
// mid-pipeline. The missing slice names sidecar keys that were absent and
// defaulted to UnknownField.
func ResolveAttribution(explicit, envOverride, mdPath string) (text string, source AttributionSource, missing []string, err error) {
	if s := strings.TrimSpace(explicit); s != "" {
		return s, SourceExplicit, nil, nil
	}
	if s := strings.TrimSpace(envOverride); s != "" {
		return s, SourceEnvironment, nil, nil
	}

	sidecarPath := metadata.Find(mdPath)
	if sidecarPath == "" {
		return DefaultAttribution, SourceFallback, metadata.Keys(), nil
	}

	sidecar, err := metadata.Load(sidecarPath)
	if err != nil {
		return "", "", nil, fmt.Errorf("loading sidecar metadata %s: %w", sidecarPath, err)
	}

	attr := Attribution{
		University: sidecar.University,
		Year:       sidecar.Year,
		Subject:    sidecar.Subject,
		Author:     sidecar.Author,
	}
	return attr.String(), SourceMetadata, sidecar.MissingKeys(), nil
}

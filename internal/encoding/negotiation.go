package encoding

import (
	"sort"
	"strconv"
	"strings"

	"github.com/vyrodovalexey/avamap/internal/observability"
)

// Negotiator handles content type negotiation.
type Negotiator interface {
	// Negotiate selects the best content type based on the Accept header.
	Negotiate(acceptHeader string) string
}

// negotiator implements the Negotiator interface.
type negotiator struct {
	logger         observability.Logger
	supportedTypes []string
	defaultType    string
}

// NegotiatorOption is a functional option for configuring the negotiator.
type NegotiatorOption func(*negotiator)

// WithDefaultType sets the content type used when nothing in the Accept
// header matches.
func WithDefaultType(contentType string) NegotiatorOption {
	return func(n *negotiator) {
		n.defaultType = normalizeContentType(contentType)
	}
}

// WithNegotiatorLogger sets the logger for the negotiator.
func WithNegotiatorLogger(logger observability.Logger) NegotiatorOption {
	return func(n *negotiator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNegotiator creates a new content type negotiator. The order of
// supportedTypes breaks ties between equally weighted media ranges.
func NewNegotiator(supportedTypes []string, opts ...NegotiatorOption) Negotiator {
	n := &negotiator{
		logger:      observability.NopLogger(),
		defaultType: ContentTypeJSON,
	}
	for _, ct := range supportedTypes {
		n.supportedTypes = append(n.supportedTypes, normalizeContentType(ct))
	}

	for _, opt := range opts {
		opt(n)
	}

	if len(n.supportedTypes) == 0 {
		n.supportedTypes = []string{ContentTypeJSON}
	}

	return n
}

// Negotiate selects the best content type based on the Accept header.
func (n *negotiator) Negotiate(acceptHeader string) string {
	if strings.TrimSpace(acceptHeader) == "" {
		return n.defaultType
	}

	ranges := parseAcceptHeader(acceptHeader)
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].quality > ranges[j].quality
	})

	for _, mr := range ranges {
		for _, supported := range n.supportedTypes {
			if matchMediaType(mr.mediaType, supported) {
				n.logger.Debug("content type negotiated",
					observability.String("accept", acceptHeader),
					observability.String("selected", supported))
				GetEncodingMetrics().RecordNegotiation(supported, "success")
				return supported
			}
		}
	}

	n.logger.Debug("no matching content type, using default",
		observability.String("accept", acceptHeader),
		observability.String("default", n.defaultType))
	GetEncodingMetrics().RecordNegotiation(n.defaultType, "default")

	return n.defaultType
}

// mediaRange is one entry of an Accept header.
type mediaRange struct {
	mediaType string
	quality   float64
}

// parseAcceptHeader parses an Accept header into media ranges. Ranges with
// q=0 are dropped since they mark a type as unacceptable.
// Example: "application/yaml, application/json;q=0.9, */*;q=0.1"
func parseAcceptHeader(header string) []mediaRange {
	parts := strings.Split(header, ",")
	result := make([]mediaRange, 0, len(parts))
	for _, part := range parts {
		segments := strings.Split(part, ";")
		mr := mediaRange{
			mediaType: strings.ToLower(strings.TrimSpace(segments[0])),
			quality:   1.0,
		}
		if mr.mediaType == "" {
			continue
		}

		for _, segment := range segments[1:] {
			key, val, ok := strings.Cut(strings.TrimSpace(segment), "=")
			if !ok || strings.TrimSpace(key) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				mr.quality = q
			}
		}

		if mr.quality <= 0 {
			continue
		}
		result = append(result, mr)
	}

	return result
}

// matchMediaType reports whether a requested media range covers a supported
// type. Supports */* and type/* wildcards.
func matchMediaType(requested, supported string) bool {
	switch {
	case requested == supported, requested == "*/*", requested == "*":
		return true
	case strings.HasSuffix(requested, "/*"):
		return strings.HasPrefix(supported, strings.TrimSuffix(requested, "*"))
	default:
		return false
	}
}

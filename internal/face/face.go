// Package face holds the embedding type and matching rules used for voter
// enrollment and vote-time identification.
package face

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultTolerance is the maximum Euclidean distance between two embeddings
// that still counts as the same person.
const DefaultTolerance = 0.45

var ErrInvalidDataURL = errors.New("invalid image data url")

// Descriptor is a face embedding produced by the recognizer.
type Descriptor []float32

// Encoder extracts one descriptor per detected face, in detection order.
type Encoder interface {
	Encode(ctx context.Context, img []byte) ([]Descriptor, error)
}

// Distance returns the Euclidean distance between a and b. Descriptors of
// different lengths are infinitely far apart.
func Distance(a, b Descriptor) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Match reports whether candidate is within tolerance of known.
func Match(known, candidate Descriptor, tolerance float64) bool {
	return Distance(known, candidate) <= tolerance
}

// Text encodes the descriptor for storage in a TEXT column.
func (d Descriptor) Text() (string, error) {
	b, err := json.Marshal([]float32(d))
	if err != nil {
		return "", fmt.Errorf("encode face encoding: %w", err)
	}
	return string(b), nil
}

// ParseDescriptor decodes a stored descriptor. An empty string yields nil.
func ParseDescriptor(s string) (Descriptor, error) {
	if s == "" {
		return nil, nil
	}

	var values []float32
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, fmt.Errorf("decode face encoding: %w", err)
	}
	return Descriptor(values), nil
}

// DecodeDataURL returns the payload of a base64 data URL
// ("data:image/jpeg;base64,....").
func DecodeDataURL(dataURL string) ([]byte, error) {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil, ErrInvalidDataURL
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidDataURL
	}
	return data, nil
}

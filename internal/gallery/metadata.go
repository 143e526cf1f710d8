package gallery

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is the AI-generated metadata persisted alongside each image.
type Record struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Placeholder is substituted when an image has no readable metadata object.
var Placeholder = Record{
	Title:       "No title",
	Description: "No description",
}

const metadataSuffix = "-json.json"

var imageSuffixes = []string{".jpg", ".jpeg", ".png"}

// MetadataKey derives the metadata object name for an image: the final
// extension is stripped and the fixed suffix appended, so "foo.bar.jpg"
// maps to "foo.bar-json.json".
func MetadataKey(imageKey string) string {
	base := imageKey
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	return base + metadataSuffix
}

// IsImageKey reports whether an object name carries a recognized image suffix.
// Metadata objects never match because their ".json" suffix is not an image one.
func IsImageKey(key string) bool {
	lower := strings.ToLower(key)
	for _, suffix := range imageSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// EncodeRecord serializes a Record to its stored JSON form.
func EncodeRecord(r Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata record: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a stored metadata object.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("failed to decode metadata record: %w", err)
	}
	return r, nil
}

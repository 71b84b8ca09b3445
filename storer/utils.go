package storer

import (
	"maps"
	"math"
	"strconv"
)

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Payload merges metadata with the fields every provider stores alongside a
// vector. The owner id always comes from the caller, never from metadata.
func Payload(ownerId int64, content string, metadata map[string]any) map[string]any {
	payload := make(map[string]any, len(metadata)+2)
	maps.Copy(payload, metadata)
	payload[TextKey] = content
	payload[OwnerKey] = ownerId
	return payload
}

// OwnerFrom reads an owner id back out of a decoded payload. JSON numbers
// arrive as float64; some stores hand back strings.
func OwnerFrom(payload map[string]any) (int64, bool) {
	switch v := payload[OwnerKey].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

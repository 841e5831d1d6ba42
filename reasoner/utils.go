package reasoner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	punctuation = regexp.MustCompile(`[^\w\s-]`)
)

// Normalize lowercases, trims, collapses whitespace, and strips most
// punctuation so hashes stay stable across minor phrasing differences.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespace.ReplaceAllString(text, " ")
	text = punctuation.ReplaceAllString(text, "")
	return text
}

// SemanticHash is the deterministic hash of a normalized dedup key.
func SemanticHash(dedupKey string) string {
	sum := sha256.Sum256([]byte(Normalize(dedupKey)))
	return hex.EncodeToString(sum[:])
}

// InsightID is stable across re-runs for the same semantic insight.
func InsightID(datasetID, version, semanticHash string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", datasetID, version, semanticHash)))
	return hex.EncodeToString(sum[:])[:16]
}

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

func clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}

// Package fingerprint derives stable cache keys from image content and
// request parameters. Two requests with identical image bytes and identical
// effective parameters always map to the same fingerprint; any parameter
// difference yields a different one.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/koji/nanobanana/internal/domain"
)

// Fingerprint is a hex digest identifying one (image, parameters) request.
type Fingerprint string

// Short returns a log-friendly prefix of the fingerprint.
func (f Fingerprint) Short() string {
	if len(f) <= 16 {
		return string(f)
	}
	return string(f[:16])
}

// Compute derives the fingerprint for an image and its effective parameter
// set. The image is digested first, then the parameters are canonicalized
// (sorted by name, joined as name=value) and the combination is digested
// again. Pure function: no side effects, stable across process restarts.
// Parameters:
//   - image: raw uploaded image bytes.
//   - mode: request mode, part of the key so both modes can share one cache.
//   - params: normalized parameters from Request.EffectiveParams.
// Returns:
//   - Fingerprint: lowercase hex digest.
func Compute(image []byte, mode domain.Mode, params map[string]string) Fingerprint {
	imageDigest := sha256.Sum256(image)

	var b strings.Builder
	b.WriteString(hex.EncodeToString(imageDigest[:]))
	b.WriteString("|mode=")
	b.WriteString(string(mode))
	for _, name := range domain.SortedParamNames(params) {
		b.WriteString("|")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(params[name])
	}

	combined := sha256.Sum256([]byte(b.String()))
	return Fingerprint(hex.EncodeToString(combined[:]))
}

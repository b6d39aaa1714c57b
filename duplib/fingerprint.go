package duplib

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// FingerprintSize is a size of the fingerprint digest in bytes.
const FingerprintSize = blake2b.Size256

// Fingerprint is an identity of message content. Two messages are
// duplicates if and only if their fingerprints are equal.
type Fingerprint [FingerprintSize]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero returns true for an empty fingerprint.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Fingerprinter derives fingerprints from messages.
//
// A fingerprint is BLAKE2b-256 over a canonical encoding:
//
//	contentType || 0x00 || payload
//
// where payload is a normalized text for text messages, and a stable file
// id for media. If IncludeCaption is set, media payload is extended with
// 0x00 || normalizedCaption, so the same photo with different captions is
// not a duplicate.
//
// Fingerprinter is stateless and safe for concurrent use.
type Fingerprinter struct {
	IncludeCaption bool
}

// Fingerprint computes a fingerprint of the message. It also returns a
// resolved content type and forward flag so callers do not have to repeat
// the same discrimination.
func (f Fingerprinter) Fingerprint(msg Message) (Fingerprint, ContentType, bool, error) {
	contentType := msg.ContentType

	var payload string

	switch {
	case contentType.IsMedia():
		if msg.FileUniqueID == "" {
			return Fingerprint{}, contentType, msg.IsForwarded, ErrUnsupportedContentType
		}

		payload = msg.FileUniqueID

		if f.IncludeCaption {
			payload += "\x00" + NormalizeText(msg.Caption)
		}
	case contentType == ContentText, contentType == ContentUnknown:
		payload = NormalizeText(msg.Text)
		if payload == "" {
			return Fingerprint{}, ContentUnknown, msg.IsForwarded, ErrUnsupportedContentType
		}

		contentType = ContentText
	default:
		return Fingerprint{}, ContentUnknown, msg.IsForwarded, ErrUnsupportedContentType
	}

	return digest(contentType, payload), contentType, msg.IsForwarded, nil
}

func digest(contentType ContentType, payload string) Fingerprint {
	buf := make([]byte, 0, len(contentType.String())+1+len(payload))
	buf = append(buf, contentType.String()...)
	buf = append(buf, 0)
	buf = append(buf, payload...)

	return blake2b.Sum256(buf)
}

// NormalizeText is a normalization rule for text matching: all runs of
// Unicode whitespace collapse into a single space, leading and trailing
// whitespace is dropped, then text is lowercased.
func NormalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Package webhook verifies and decodes Modexia webhook deliveries.
//
// Modexia signs every delivery with an Ed25519 key unique to the endpoint;
// the matching public key is shown in the dashboard as a "whpk_..." string.
// Receivers verify the signature and timestamp before trusting a payload:
//
//	verifier, err := webhook.NewVerifier(os.Getenv("MODEXIA_WEBHOOK_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	http.HandleFunc("/modexia", func(w http.ResponseWriter, r *http.Request) {
//	    body, _ := io.ReadAll(r.Body)
//	    event, err := verifier.Verify(body, r.Header)
//	    if err != nil {
//	        w.WriteHeader(http.StatusBadRequest)
//	        return
//	    }
//	    // event is authentic, act on it
//	})
package webhook

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudflare/circl/sign/ed25519"
)

// Headers carried by every webhook delivery.
const (
	// SignatureHeader holds "v1,<base64url signature>" over the signed
	// content.
	SignatureHeader = "Modexia-Signature"
	// TimestampHeader holds the delivery time as unix seconds. It is
	// part of the signed content, so it cannot be forged independently.
	TimestampHeader = "Modexia-Timestamp"
)

// DefaultTolerance bounds how far a delivery timestamp may drift from
// local time before it is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

const (
	publicKeyPrefix  = "whpk_"
	signatureVersion = "v1"
)

// Verification errors for errors.Is() checks.
var (
	// ErrInvalidPublicKey indicates the verification key cannot be decoded
	// or has the wrong size.
	ErrInvalidPublicKey = errors.New("invalid webhook public key")
	// ErrMissingHeader indicates a required delivery header is absent.
	ErrMissingHeader = errors.New("missing webhook header")
	// ErrInvalidTimestamp indicates the timestamp header is not unix seconds.
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")
	// ErrTimestampOutOfTolerance indicates the delivery is too old or too
	// far in the future to trust.
	ErrTimestampOutOfTolerance = errors.New("webhook timestamp outside tolerance")
	// ErrInvalidSignature indicates the signature is malformed or does not
	// verify against the configured key.
	ErrInvalidSignature = errors.New("webhook signature verification failed")
)

// Verifier checks webhook deliveries against an endpoint's public key.
// It is safe for concurrent use.
type Verifier struct {
	publicKey ed25519.PublicKey
	tolerance time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTolerance sets the accepted timestamp drift.
// Default: 5 minutes
func WithTolerance(tolerance time.Duration) Option {
	return func(v *Verifier) {
		v.tolerance = tolerance
	}
}

// NewVerifier creates a Verifier from the endpoint's public key as shown
// in the dashboard. The "whpk_" prefix is optional.
func NewVerifier(publicKey string, opts ...Option) (*Verifier, error) {
	raw, err := decodeBase64URL(strings.TrimPrefix(publicKey, publicKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPublicKey, len(raw), ed25519.PublicKeySize)
	}

	v := &Verifier{
		publicKey: ed25519.PublicKey(raw),
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify authenticates a delivery and decodes its event. body must be the
// raw request body, exactly as received; header must include the
// Modexia-Signature and Modexia-Timestamp headers.
//
// The signature covers "<timestamp>.<body>", so verification also pins
// the timestamp, which is then checked against the configured tolerance.
func (v *Verifier) Verify(body []byte, header http.Header) (*Event, error) {
	timestamp := header.Get(TimestampHeader)
	if timestamp == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, TimestampHeader)
	}
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
	}

	drift := time.Since(time.Unix(unix, 0))
	if drift > v.tolerance || drift < -v.tolerance {
		return nil, fmt.Errorf("%w: delivered %v ago", ErrTimestampOutOfTolerance, drift.Round(time.Second))
	}

	signature := header.Get(SignatureHeader)
	if signature == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeader, SignatureHeader)
	}
	version, encodedSig, ok := strings.Cut(signature, ",")
	if !ok || version != signatureVersion {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidSignature, version)
	}
	sig, err := decodeBase64URL(encodedSig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	signed := make([]byte, 0, len(timestamp)+1+len(body))
	signed = append(signed, timestamp...)
	signed = append(signed, '.')
	signed = append(signed, body...)

	if !ed25519.Verify(v.publicKey, signed, sig) {
		return nil, ErrInvalidSignature
	}

	return parseEvent(body)
}

// decodeBase64URL decodes URL-safe base64 with or without padding.
func decodeBase64URL(s string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

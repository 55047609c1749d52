package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	headerKey       = "KALSHI-ACCESS-KEY"
	headerTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	headerSignature = "KALSHI-ACCESS-SIGNATURE"
)

// Signer produces the three authentication headers: key id, millisecond
// timestamp and a base64 RSA-PSS/SHA-256 signature over
// timestamp + METHOD + path (+ body when signBody is set).
type Signer struct {
	keyID    string
	key      *rsa.PrivateKey
	signBody bool
}

func NewSigner(keyID string, key *rsa.PrivateKey, signBody bool) *Signer {
	return &Signer{keyID: keyID, key: key, signBody: signBody}
}

// Headers signs one request. path must be the full URL path without query.
func (s *Signer) Headers(method, path string, body []byte, now time.Time) (map[string]string, error) {
	if s == nil || s.key == nil {
		return nil, fmt.Errorf("signer has no private key")
	}
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	msg := ts + method + path
	if s.signBody && len(body) > 0 {
		msg += string(body)
	}
	digest := sha256.Sum256([]byte(msg))
	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("rsa-pss sign: %w", err)
	}
	return map[string]string{
		headerKey:       s.keyID,
		headerTimestamp: ts,
		headerSignature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// LoadPrivateKey reads a PEM encoded RSA key in PKCS#1 or PKCS#8 form.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	return ParsePrivateKey(raw)
}

func ParsePrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("private key is not PEM encoded")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want RSA", parsed)
	}
	return key, nil
}

// Package auth builds the Authorization headers the backends accept: a
// signed-Date signature scheme keyed by an account SSH key, and HTTP basic
// auth for the directory service.
package auth

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

var (
	ErrKeyIDRequired      = errors.New("auth: key id is required")
	ErrPrivateKeyRequired = errors.New("auth: private key is required")
	ErrUnsupportedKey     = errors.New("auth: unsupported private key type")
	ErrMissingCredentials = errors.New("auth: username and password are required")
)

// KeyID formats the key identifier the backends expect in the signature
// header: the path of the signing key under the account.
func KeyID(login, keyName string) string {
	return fmt.Sprintf("/%s/keys/%s", login, keyName)
}

// Signer signs the Date header of outgoing requests with an account SSH
// private key. RSA and Ed25519 keys are supported, in any PEM encoding
// ssh.ParseRawPrivateKey understands (PKCS#1, PKCS#8, OpenSSH).
type Signer struct {
	keyID     string
	algorithm string
	sign      func(msg []byte) ([]byte, error)
}

// NewSigner parses pemBytes and builds a Signer identified by keyID.
func NewSigner(keyID string, pemBytes []byte) (*Signer, error) {
	if keyID == "" {
		return nil, ErrKeyIDRequired
	}
	if len(pemBytes) == 0 {
		return nil, ErrPrivateKeyRequired
	}
	raw, err := ssh.ParseRawPrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("auth: parse private key: %w", err)
	}
	switch key := raw.(type) {
	case *rsa.PrivateKey:
		return &Signer{
			keyID:     keyID,
			algorithm: "rsa-sha256",
			sign: func(msg []byte) ([]byte, error) {
				digest := sha256.Sum256(msg)
				return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
			},
		}, nil
	case *ed25519.PrivateKey:
		return &Signer{
			keyID:     keyID,
			algorithm: "ed25519",
			sign: func(msg []byte) ([]byte, error) {
				return ed25519.Sign(*key, msg), nil
			},
		}, nil
	case ed25519.PrivateKey:
		return &Signer{
			keyID:     keyID,
			algorithm: "ed25519",
			sign: func(msg []byte) ([]byte, error) {
				return ed25519.Sign(key, msg), nil
			},
		}, nil
	default:
		return nil, ErrUnsupportedKey
	}
}

// Algorithm returns the signature algorithm label used in the header.
func (s *Signer) Algorithm() string { return s.algorithm }

// Sign produces the Authorization header value for the given Date header
// value. The signature covers the date string only.
func (s *Signer) Sign(date string) (string, error) {
	sig, err := s.sign([]byte(date))
	if err != nil {
		return "", fmt.Errorf("auth: sign request: %w", err)
	}
	return fmt.Sprintf("Signature keyId=%q,algorithm=%q,signature=%q",
		s.keyID, s.algorithm, base64.StdEncoding.EncodeToString(sig)), nil
}

// BasicAuth attaches HTTP basic credentials instead of a signature; the
// directory service accepts both schemes.
type BasicAuth struct {
	credentials string
}

// Basic builds a BasicAuth signer from a username/password pair.
func Basic(username, password string) (*BasicAuth, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	raw := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return &BasicAuth{credentials: "Basic " + raw}, nil
}

// Sign ignores the date; basic credentials are constant per client.
func (b *BasicAuth) Sign(string) (string, error) {
	return b.credentials, nil
}

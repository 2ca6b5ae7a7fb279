// Package signer produces OpenPGP detached signatures for exported
// package archives.
package signer

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// SignatureExt is appended to an archive name to name its signature.
const SignatureExt = ".asc"

// Signer signs with the first key of an OpenPGP key ring.
type Signer struct {
	entity *openpgp.Entity
}

// Load reads a private key (armored or binary) from keyPath. The
// passphrase decrypts the primary key and its subkeys when they are
// encrypted.
func Load(keyPath, passphrase string) (*Signer, error) {
	if keyPath == "" {
		return nil, errors.New("key path is empty")
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	return Parse(data, passphrase)
}

// Parse is like Load for key material already in memory.
func Parse(data []byte, passphrase string) (*Signer, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
	}
	if len(entities) == 0 {
		return nil, errors.New("no keys found in key file")
	}
	entity := entities[0]
	if entity.PrivateKey == nil {
		return nil, errors.New("key has no private part")
	}

	if entity.PrivateKey.Encrypted {
		if passphrase == "" {
			return nil, errors.New("private key is encrypted and no passphrase was given")
		}
		if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return nil, fmt.Errorf("decrypt private key: %w", err)
		}
	}
	for _, sub := range entity.Subkeys {
		if sub.PrivateKey != nil && sub.PrivateKey.Encrypted && passphrase != "" {
			if err := sub.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, fmt.Errorf("decrypt subkey: %w", err)
			}
		}
	}
	return &Signer{entity: entity}, nil
}

// SignDetached returns an armored detached signature of r.
func (s *Signer) SignDetached(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	err := openpgp.ArmoredDetachSign(&buf, s.entity, r, &packet.Config{
		DefaultHash: crypto.SHA512,
	})
	if err != nil {
		return nil, fmt.Errorf("create detached signature: %w", err)
	}
	return buf.Bytes(), nil
}

// SignFile writes the detached signature of path to path+SignatureExt
// and returns the signature path.
func (s *Signer) SignFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sig, err := s.SignDetached(f)
	if err != nil {
		return "", err
	}
	sigPath := path + SignatureExt
	if err := os.WriteFile(sigPath, sig, 0o644); err != nil {
		return "", err
	}
	return sigPath, nil
}

// PublicKey returns the armored public key.
func (s *Signer) PublicKey() ([]byte, error) {
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, err
	}
	if err := s.entity.Serialize(w); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Verify checks an armored detached signature against an armored public
// key and returns the key's fingerprint.
func Verify(publicKey []byte, data io.Reader, signature []byte) (string, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(publicKey))
	if err != nil {
		return "", fmt.Errorf("read public key: %w", err)
	}
	signer, err := openpgp.CheckArmoredDetachedSignature(keyring, data, bytes.NewReader(signature), nil)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%X", signer.PrimaryKey.Fingerprint), nil
}

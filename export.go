package clustertls

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	gopkcs12 "software.sslmate.com/src/go-pkcs12"
)

// ExportJKS serializes the keystore as a Java KeyStore stream protected
// by the given password.
func (s *Keystore) ExportJKS(password string) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.ks.Store(&buf, []byte(password)); err != nil {
		return nil, fmt.Errorf("storing JKS: %w", err)
	}
	return buf.Bytes(), nil
}

// validatePKCS12KeyType checks that the private key is a supported type
// for PKCS#12 encoding.
func validatePKCS12KeyType(privateKey crypto.PrivateKey) error {
	switch privateKey.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
		return nil
	default:
		return fmt.Errorf("unsupported private key type %T", privateKey)
	}
}

// ExportPKCS12 encodes an identity entry as a PKCS#12/PFX bundle. The
// leaf certificate and the rest of the chain are stored together with
// the private key.
func ExportPKCS12(entry IdentityEntry, password string) ([]byte, error) {
	if err := validatePKCS12KeyType(entry.PrivateKey); err != nil {
		return nil, err
	}
	return gopkcs12.Modern.Encode(entry.PrivateKey, entry.Chain[0], entry.Chain[1:], password)
}

// ExportPKCS12Legacy encodes an identity entry with the legacy RC2 cipher
// for compatibility with older Java keystores.
func ExportPKCS12Legacy(entry IdentityEntry, password string) ([]byte, error) {
	if err := validatePKCS12KeyType(entry.PrivateKey); err != nil {
		return nil, err
	}
	return gopkcs12.LegacyRC2.Encode(entry.PrivateKey, entry.Chain[0], entry.Chain[1:], password)
}

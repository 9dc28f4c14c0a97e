package clustertls

import (
	"bytes"
	"crypto"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/smallstep/pkcs7"
	"golang.org/x/crypto/ssh"
)

// PEM block types recognized by the key-slot decoder. Anything else is an
// unsupported PEM object.
const (
	blockTypeCertificate = "CERTIFICATE"
	blockTypeRSAKey      = "RSA PRIVATE KEY"
	blockTypeECKey       = "EC PRIVATE KEY"
	blockTypePKCS8Key    = "PRIVATE KEY"
	blockTypeOpenSSHKey  = "OPENSSH PRIVATE KEY"
)

// normalizeKey converts non-standard private key representations to their
// canonical Go form. ssh.ParseRawPrivateKey returns *ed25519.PrivateKey;
// dereferencing it means downstream type switches only need one case.
func normalizeKey(key crypto.PrivateKey) crypto.PrivateKey {
	if ptr, ok := key.(*ed25519.PrivateKey); ok {
		return *ptr
	}
	return key
}

// decodeKeyPair parses exactly one PEM object from client key material and
// returns the private key in its native Go representation.
//
// A CERTIFICATE block in the key slot fails with the distinct
// certificate-in-key-slot diagnostic rather than a generic parse error.
// Any PEM object that is not a supported private key format fails with
// unsupported-pem-object naming the block type encountered. Legacy
// RFC 1423 encrypted blocks are decrypted with the passphrase first.
func decodeKeyPair(keyPEM []byte, passphrase string) (crypto.PrivateKey, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, &MalformedInputError{
			Kind:   KindUnsupportedPEMObject,
			Detail: "no PEM block found in private key data",
		}
	}

	if block.Type == blockTypeCertificate {
		return nil, &MalformedInputError{
			Kind:   KindCertificateInKeySlot,
			Detail: "certificate supplied where a private key was expected",
		}
	}

	//nolint:staticcheck // legacy RFC 1423 encrypted PEM support
	if x509.IsEncryptedPEMBlock(block) {
		//nolint:staticcheck
		decrypted, err := x509.DecryptPEMBlock(block, []byte(passphrase))
		if err != nil {
			return nil, &MalformedInputError{
				Kind:   KindUnsupportedPEMObject,
				Detail: fmt.Sprintf("encrypted %s block (missing or wrong passphrase)", block.Type),
				Cause:  err,
			}
		}
		block = &pem.Block{Type: block.Type, Bytes: decrypted}
	}

	switch block.Type {
	case blockTypeRSAKey:
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, keyParseError(block.Type, err)
		}
		return key, nil
	case blockTypeECKey:
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, keyParseError(block.Type, err)
		}
		return key, nil
	case blockTypePKCS8Key:
		if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		// Some tools label PKCS#1 or SEC 1 keys as "PRIVATE KEY"
		if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
			return key, nil
		}
		return nil, keyParseError(block.Type, fmt.Errorf("not PKCS#8, PKCS#1, or SEC 1"))
	case blockTypeOpenSSHKey:
		// OpenSSH uses a proprietary encoding with its own encryption layer
		key, err := ssh.ParseRawPrivateKey(keyPEM)
		if err == nil {
			return normalizeKey(key), nil
		}
		if passphrase != "" {
			key, perr := ssh.ParseRawPrivateKeyWithPassphrase(keyPEM, []byte(passphrase))
			if perr == nil {
				return normalizeKey(key), nil
			}
		}
		return nil, keyParseError(block.Type, err)
	default:
		return nil, &MalformedInputError{
			Kind:   KindUnsupportedPEMObject,
			Detail: fmt.Sprintf("PEM object %q is not a supported private key", block.Type),
		}
	}
}

func keyParseError(blockType string, err error) error {
	return &MalformedInputError{
		Kind:   KindUnsupportedPEMObject,
		Detail: fmt.Sprintf("parsing %s block", blockType),
		Cause:  err,
	}
}

// isPEM reports whether the data appears to contain PEM-encoded content.
func isPEM(data []byte) bool {
	return bytes.Contains(data, []byte("-----BEGIN"))
}

// decodeCertificates parses certificate material in any supported
// encoding: a PEM bundle (possibly multiple certificates), a single DER
// certificate, or a PKCS#7 certs-only bundle. Empty input and PEM input
// with no CERTIFICATE blocks yield a nil slice without error; bytes that
// parse as none of the three encodings fail with invalid-certificate.
func decodeCertificates(data []byte) ([]*x509.Certificate, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if isPEM(data) {
		return decodePEMCertificates(data)
	}

	if cert, err := x509.ParseCertificate(data); err == nil {
		return []*x509.Certificate{cert}, nil
	}

	if p7, err := pkcs7.Parse(data); err == nil && len(p7.Certificates) > 0 {
		return p7.Certificates, nil
	}

	return nil, &MalformedInputError{
		Kind:   KindInvalidCertificate,
		Detail: "not DER, PEM, or PKCS#7 certificate data",
	}
}

// decodePEMCertificates parses every CERTIFICATE block from a PEM bundle,
// skipping blocks of other types.
func decodePEMCertificates(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := pemData
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != blockTypeCertificate {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, &MalformedInputError{
				Kind:   KindInvalidCertificate,
				Detail: "parsing CERTIFICATE block",
				Cause:  err,
			}
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// decodeCertificateChain parses client certificate material and requires
// at least one certificate.
func decodeCertificateChain(data []byte) ([]*x509.Certificate, error) {
	certs, err := decodeCertificates(data)
	if err != nil {
		return nil, err
	}
	if len(certs) == 0 {
		return nil, &MalformedInputError{
			Kind:   KindInvalidCertificate,
			Detail: "no certificates found in client certificate data",
		}
	}
	return certs, nil
}

// keyMatchesCert reports whether a private key corresponds to the public
// key in a certificate. Cross-type mismatches compare as false.
func keyMatchesCert(priv crypto.PrivateKey, cert *x509.Certificate) (bool, error) {
	signer, ok := priv.(crypto.Signer)
	if !ok {
		return false, fmt.Errorf("unsupported private key type: %T", priv)
	}
	type equalKey interface {
		Equal(crypto.PublicKey) bool
	}
	eq, ok := signer.Public().(equalKey)
	if !ok {
		return false, fmt.Errorf("unsupported public key type: %T", signer.Public())
	}
	return eq.Equal(cert.PublicKey), nil
}

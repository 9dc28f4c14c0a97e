package clustertls

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
)

// Keystore is a mutable in-memory collection of identity and trust
// entries, backed by a Java KeyStore (JKS) structure so it can be loaded
// from and exported to the original platform's store files. Entries are
// keyed by the certificate subject distinguished name; trust entries get
// a running ordinal suffix so CAs sharing a subject never collide.
// Setting an alias twice overwrites the earlier entry.
type Keystore struct {
	ks         keystore.KeyStore
	trustCount int
}

// NewKeystore returns an empty keystore. Aliases keep their exact case:
// the subject-DN alias scheme distinguishes CN=A from cn=a, so the JKS
// convention of lowercasing aliases is disabled.
func NewKeystore() *Keystore {
	return &Keystore{ks: keystore.New(keystore.WithCaseExactAliases())}
}

// LoadKeystore reads a JKS stream. The same password is used for the
// store and individual entries, the standard Java convention.
func LoadKeystore(data []byte, password string) (*Keystore, error) {
	ks := keystore.New(keystore.WithCaseExactAliases())
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return nil, fmt.Errorf("loading JKS: %w", err)
	}
	s := &Keystore{ks: ks}
	for _, alias := range ks.Aliases() {
		if ks.IsTrustedCertificateEntry(alias) {
			s.trustCount++
		}
	}
	return s, nil
}

// AddIdentity stores a private key with its certificate chain under the
// leaf certificate's subject DN. The passphrase protects the entry.
func (s *Keystore) AddIdentity(key crypto.PrivateKey, passphrase string, chain []*x509.Certificate) error {
	if len(chain) == 0 {
		return &CryptoError{
			Op:    "setting keystore identity entry",
			Cause: errors.New("empty certificate chain"),
		}
	}
	pkcs8, err := x509.MarshalPKCS8PrivateKey(normalizeKey(key))
	if err != nil {
		return &CryptoError{Op: "marshaling private key to PKCS#8", Cause: err}
	}

	entryChain := make([]keystore.Certificate, 0, len(chain))
	for _, cert := range chain {
		entryChain = append(entryChain, keystore.Certificate{
			Type:    "X.509",
			Content: cert.Raw,
		})
	}

	alias := chain[0].Subject.String()
	if err := s.ks.SetPrivateKeyEntry(alias, keystore.PrivateKeyEntry{
		CreationTime:     time.Now(),
		PrivateKey:       pkcs8,
		CertificateChain: entryChain,
	}, []byte(passphrase)); err != nil {
		return &CryptoError{Op: "setting keystore identity entry", Cause: err}
	}
	return nil
}

// AddTrustAnchor stores a trusted certificate under its subject DN plus a
// running ordinal starting at zero.
func (s *Keystore) AddTrustAnchor(cert *x509.Certificate) error {
	alias := fmt.Sprintf("%s-%d", cert.Subject.String(), s.trustCount)
	if err := s.ks.SetTrustedCertificateEntry(alias, keystore.TrustedCertificateEntry{
		CreationTime: time.Now(),
		Certificate: keystore.Certificate{
			Type:    "X.509",
			Content: cert.Raw,
		},
	}); err != nil {
		return &CryptoError{Op: "setting keystore trust entry", Cause: err}
	}
	s.trustCount++
	return nil
}

// IdentityEntry is an identity entry read back out of a keystore.
type IdentityEntry struct {
	Alias      string
	PrivateKey crypto.PrivateKey
	Chain      []*x509.Certificate
}

// Identities reconstructs every identity entry in the keystore. The
// passphrase must match the one used when the entries were added.
func (s *Keystore) Identities(passphrase string) ([]IdentityEntry, error) {
	var entries []IdentityEntry
	for _, alias := range s.ks.Aliases() {
		if !s.ks.IsPrivateKeyEntry(alias) {
			continue
		}
		entry, err := s.ks.GetPrivateKeyEntry(alias, []byte(passphrase))
		if err != nil {
			return nil, &CryptoError{Op: fmt.Sprintf("reading keystore entry %q", alias), Cause: err}
		}
		key, err := x509.ParsePKCS8PrivateKey(entry.PrivateKey)
		if err != nil {
			return nil, &CryptoError{Op: fmt.Sprintf("parsing private key for %q", alias), Cause: err}
		}
		chain := make([]*x509.Certificate, 0, len(entry.CertificateChain))
		for _, c := range entry.CertificateChain {
			cert, err := x509.ParseCertificate(c.Content)
			if err != nil {
				return nil, &CryptoError{Op: fmt.Sprintf("parsing certificate chain for %q", alias), Cause: err}
			}
			chain = append(chain, cert)
		}
		entries = append(entries, IdentityEntry{Alias: alias, PrivateKey: key, Chain: chain})
	}
	return entries, nil
}

// TrustAnchors returns every trusted certificate in the keystore.
func (s *Keystore) TrustAnchors() ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for _, alias := range s.ks.Aliases() {
		if !s.ks.IsTrustedCertificateEntry(alias) {
			continue
		}
		entry, err := s.ks.GetTrustedCertificateEntry(alias)
		if err != nil {
			return nil, fmt.Errorf("reading trust entry %q: %w", alias, err)
		}
		cert, err := x509.ParseCertificate(entry.Certificate.Content)
		if err != nil {
			return nil, fmt.Errorf("parsing trust entry %q: %w", alias, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

// Aliases returns every alias in the keystore.
func (s *Keystore) Aliases() []string {
	return s.ks.Aliases()
}

// TrustCount returns the number of trust entries added.
func (s *Keystore) TrustCount() int {
	return s.trustCount
}

package clustertls

import (
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"slices"
)

// TLSContext is the immutable result of assembling a client identity and
// trust anchors for one configuration. It owns the keystore and
// truststore it was built from and exposes a *tls.Config ready to attach
// to an outbound client.
type TLSContext struct {
	config     *tls.Config
	keystore   *Keystore
	truststore *Keystore
	identities []IdentityEntry
}

// Config returns the assembled TLS client configuration.
func (c *TLSContext) Config() *tls.Config {
	return c.config
}

// Keystore returns the identity keystore backing the context.
func (c *TLSContext) Keystore() *Keystore {
	return c.keystore
}

// Truststore returns the explicit trust entries backing the context. It
// is empty when the context relies on the default trust material.
func (c *TLSContext) Truststore() *Keystore {
	return c.truststore
}

// Identities returns the identity entries the context offers during
// client authentication, including entries sourced from the default
// keystore fallback. The slice parallels Config().Certificates.
func (c *TLSContext) Identities() []IdentityEntry {
	return slices.Clone(c.identities)
}

// HasClientCertificate reports whether the context can authenticate as a
// client.
func (c *TLSContext) HasClientCertificate() bool {
	return len(c.config.Certificates) > 0
}

// NewTLSContext builds a TLS client context from the configuration. The
// keystore and truststore are assembled fresh on every call; only the
// default-store fallbacks are memoized process-wide.
//
// Construction reads files and performs cryptographic initialization, so
// it may block; run it off any latency-sensitive path.
func NewTLSContext(cfg Config) (*TLSContext, error) {
	ks := NewKeystore()
	if err := resolveIdentity(cfg, ks); err != nil {
		return nil, err
	}
	ts := NewKeystore()
	if err := resolveTrust(cfg, ts); err != nil {
		return nil, err
	}

	entries, err := resolveIdentityEntries(ks, cfg.ClientKeyPass, DefaultKeystore, overrides().KeystorePassword)
	if err != nil {
		return nil, err
	}
	pool, err := trustPool(ts)
	if err != nil {
		return nil, err
	}

	tlsCfg := &tls.Config{
		Rand:         rand.Reader,
		MinVersion:   tls.VersionTLS12,
		Certificates: certificatesFrom(entries),
		RootCAs:      pool,
	}
	return &TLSContext{
		config:     tlsCfg,
		keystore:   ks,
		truststore: ts,
		identities: entries,
	}, nil
}

// resolveIdentityEntries returns the identity entries for a request
// keystore, falling back to the seed keystore's entries when the request
// configured none. An identity-less result is not an error.
func resolveIdentityEntries(ks *Keystore, passphrase string, seed func() (*Keystore, error), seedPass string) ([]IdentityEntry, error) {
	entries, err := ks.Identities(passphrase)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return entries, nil
	}
	store, err := seed()
	if err != nil {
		return nil, err
	}
	return store.Identities(seedPass)
}

// certificatesFrom converts identity entries into TLS certificates,
// preserving order.
func certificatesFrom(entries []IdentityEntry) []tls.Certificate {
	certs := make([]tls.Certificate, 0, len(entries))
	for _, entry := range entries {
		cert := tls.Certificate{
			PrivateKey: entry.PrivateKey,
			Leaf:       entry.Chain[0],
		}
		for _, c := range entry.Chain {
			cert.Certificate = append(cert.Certificate, c.Raw)
		}
		certs = append(certs, cert)
	}
	return certs
}

// trustPool builds the verification pool from the explicit trust entries,
// or from the default trust material when none were configured.
func trustPool(ts *Keystore) (*x509.CertPool, error) {
	anchors, err := ts.TrustAnchors()
	if err != nil {
		return nil, err
	}
	if len(anchors) > 0 {
		pool := x509.NewCertPool()
		for _, cert := range anchors {
			pool.AddCert(cert)
		}
		return pool, nil
	}
	material, err := DefaultTrust()
	if err != nil {
		return nil, err
	}
	return material.Pool, nil
}

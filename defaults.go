package clustertls

import (
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/breml/rootcerts/embedded"
)

// defaultTruststorePassword is the conventional placeholder password of
// the original platform's bundled CA store. It is a compatibility
// convention, not a secret.
const defaultTruststorePassword = "changeit"

// trustBundlePaths are well-known CA bundle locations probed when no
// truststore file is configured, before falling back to the system pool.
var trustBundlePaths = []string{
	"/etc/ssl/certs/ca-certificates.crt",
	"/etc/pki/tls/certs/ca-bundle.crt",
	"/etc/ssl/cert.pem",
}

// StoreOverrides are the process-wide default-store settings, the
// equivalent of the javax.net.ssl.* system properties. They are consulted
// only when resolving the lazily-loaded default keystore and truststore.
type StoreOverrides struct {
	KeystoreFile       string
	KeystorePassword   string
	TruststoreFile     string
	TruststorePassword string
}

var (
	overridesMu sync.RWMutex
	storeConfig StoreOverrides
)

// SetStoreOverrides installs the process-wide store settings. It must be
// called before the first TLS context is built; the default stores are
// memoized on first use and later changes have no effect on them.
func SetStoreOverrides(o StoreOverrides) {
	overridesMu.Lock()
	defer overridesMu.Unlock()
	storeConfig = o
}

func overrides() StoreOverrides {
	overridesMu.RLock()
	defer overridesMu.RUnlock()
	return storeConfig
}

// lazy is a synchronized once-only cell: the load function runs exactly
// once even under concurrent first access, and every caller observes the
// same fully-built result (or the same error).
type lazy[T any] struct {
	once sync.Once
	load func() (T, error)
	val  T
	err  error
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.load()
	})
	return l.val, l.err
}

var (
	defaultKeystoreCell = &lazy[*Keystore]{load: func() (*Keystore, error) {
		return loadDefaultKeystoreFrom(overrides())
	}}
	defaultTrustCell = &lazy[*TrustMaterial]{load: func() (*TrustMaterial, error) {
		return loadDefaultTrustFrom(overrides())
	}}
)

// DefaultKeystore returns the process-wide default keystore, loaded at
// most once. With no configured keystore file it is empty.
func DefaultKeystore() (*Keystore, error) {
	return defaultKeystoreCell.get()
}

// TrustMaterial is a resolved set of trust anchors. Anchors lists the
// individual certificates when they came from an explicit store or
// bundle file; when only the opaque system pool is available, Anchors is
// nil and Pool alone carries the trust set.
type TrustMaterial struct {
	Anchors []*x509.Certificate
	Pool    *x509.CertPool
}

// DefaultTrust returns the process-wide default trust material, loaded at
// most once. Resolution order: the configured truststore file, a
// well-known CA bundle file, the system certificate pool, and finally the
// embedded Mozilla roots when the system pool is unavailable.
func DefaultTrust() (*TrustMaterial, error) {
	return defaultTrustCell.get()
}

// loadDefaultKeystoreFrom loads the configured keystore file if it is
// present and non-empty, and otherwise returns an empty keystore with the
// platform default (empty) password semantics.
func loadDefaultKeystoreFrom(o StoreOverrides) (*Keystore, error) {
	if o.KeystoreFile == "" {
		return NewKeystore(), nil
	}
	info, err := os.Stat(o.KeystoreFile)
	if errors.Is(err, fs.ErrNotExist) {
		return NewKeystore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("probing keystore %s: %w", o.KeystoreFile, err)
	}
	if info.Size() == 0 {
		return NewKeystore(), nil
	}
	data, err := os.ReadFile(o.KeystoreFile)
	if err != nil {
		return nil, fmt.Errorf("reading keystore %s: %w", o.KeystoreFile, err)
	}
	return LoadKeystore(data, o.KeystorePassword)
}

func loadDefaultTrustFrom(o StoreOverrides) (*TrustMaterial, error) {
	if o.TruststoreFile != "" {
		password := o.TruststorePassword
		if password == "" {
			password = defaultTruststorePassword
		}
		anchors, err := loadTruststoreFile(o.TruststoreFile, password)
		if err != nil {
			return nil, err
		}
		return trustMaterialFromAnchors(anchors), nil
	}

	for _, path := range trustBundlePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		anchors, err := decodeCertificates(data)
		if err != nil || len(anchors) == 0 {
			continue
		}
		return trustMaterialFromAnchors(anchors), nil
	}

	if pool, err := x509.SystemCertPool(); err == nil {
		return &TrustMaterial{Pool: pool}, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM([]byte(embedded.MozillaCACertificatesPEM())) {
		return nil, errors.New("parsing embedded Mozilla root certificates")
	}
	return &TrustMaterial{Pool: pool}, nil
}

// loadTruststoreFile reads a truststore that is either a JKS store or a
// plain PEM bundle.
func loadTruststoreFile(path, password string) ([]*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading truststore %s: %w", path, err)
	}
	if isPEM(data) {
		certs, err := decodeCertificates(data)
		if err != nil {
			return nil, fmt.Errorf("truststore %s: %w", path, err)
		}
		return certs, nil
	}
	ks, err := LoadKeystore(data, password)
	if err != nil {
		return nil, fmt.Errorf("truststore %s: %w", path, err)
	}
	return ks.TrustAnchors()
}

func trustMaterialFromAnchors(anchors []*x509.Certificate) *TrustMaterial {
	pool := x509.NewCertPool()
	for _, cert := range anchors {
		pool.AddCert(cert)
	}
	return &TrustMaterial{Anchors: anchors, Pool: pool}
}

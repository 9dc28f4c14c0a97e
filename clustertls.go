// Package clustertls assembles mutual-TLS client configurations for
// outbound connections to a cluster control plane. Client certificates,
// private keys, and CA trust bundles may each be supplied as inline
// base64-encoded PEM data or as file paths; when neither is present the
// trust set falls back to process-wide defaults and the resulting
// configuration offers no client certificate.
package clustertls

// Config carries the optional certificate and key inputs for one TLS
// context. For each cert/key/CA field, inline base64 data takes priority
// over the corresponding file path; the file is never read when data is
// present. All fields are optional.
type Config struct {
	// ClientCertData is the base64-encoded PEM client certificate chain.
	ClientCertData string `yaml:"clientCertData,omitempty"`
	// ClientCertFile is a path to a PEM client certificate chain.
	ClientCertFile string `yaml:"clientCertFile,omitempty"`
	// ClientKeyData is the base64-encoded PEM client private key.
	ClientKeyData string `yaml:"clientKeyData,omitempty"`
	// ClientKeyFile is a path to a PEM client private key.
	ClientKeyFile string `yaml:"clientKeyFile,omitempty"`
	// ClientKeyPass decrypts legacy encrypted PEM keys and protects the
	// identity entry in the assembled keystore.
	ClientKeyPass string `yaml:"clientKeyPass,omitempty"`
	// CACertData is the base64-encoded CA bundle; it may contain multiple
	// concatenated PEM certificates.
	CACertData string `yaml:"caCertData,omitempty"`
	// CACertFile is a path to a CA bundle file.
	CACertFile string `yaml:"caCertFile,omitempty"`
}

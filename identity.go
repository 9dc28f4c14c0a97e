package clustertls

import (
	"errors"
	"log/slog"
)

// resolveIdentity decodes the configured client key and certificate into
// an identity entry on ks. Inline data takes priority over the file path
// independently for each field.
//
// If either the key or the certificate cannot be resolved (both data and
// file absent for that field), no entry is added and construction
// continues: client certificates are optional for clusters that allow
// non-mTLS API access. A partial pair is likewise skipped, with a warning
// so a misconfiguration is not masked entirely.
func resolveIdentity(cfg Config, ks *Keystore) error {
	certData, err := resolveByteSource(cfg.ClientCertData, cfg.ClientCertFile)
	if err != nil {
		return err
	}
	keyData, err := resolveByteSource(cfg.ClientKeyData, cfg.ClientKeyFile)
	if err != nil {
		return err
	}

	if certData == nil || keyData == nil {
		if certData != nil {
			slog.Warn("client certificate configured without a private key, skipping client authentication")
		}
		if keyData != nil {
			slog.Warn("client private key configured without a certificate, skipping client authentication")
		}
		return nil
	}

	key, err := decodeKeyPair(keyData, cfg.ClientKeyPass)
	if err != nil {
		return err
	}
	chain, err := decodeCertificateChain(certData)
	if err != nil {
		return err
	}

	match, err := keyMatchesCert(key, chain[0])
	if err != nil {
		return &CryptoError{Op: "comparing client key and certificate", Cause: err}
	}
	if !match {
		return &CryptoError{
			Op:    "validating client identity",
			Cause: errors.New("private key does not match the client certificate"),
		}
	}

	return ks.AddIdentity(key, cfg.ClientKeyPass, chain)
}

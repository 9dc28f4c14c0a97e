package clustertls

// resolveTrust decodes the configured CA bundle into trust entries on ts.
// Priority order: inline CA data, then CA file; with neither present no
// explicit entries are added and the context builder falls back to the
// default trust material. Every certificate in a multi-cert bundle
// becomes its own trust entry.
func resolveTrust(cfg Config, ts *Keystore) error {
	data, err := resolveByteSource(cfg.CACertData, cfg.CACertFile)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	certs, err := decodeCertificates(data)
	if err != nil {
		return err
	}
	for _, cert := range certs {
		if err := ts.AddTrustAnchor(cert); err != nil {
			return err
		}
	}
	return nil
}

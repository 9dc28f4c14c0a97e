package clustertls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"slices"
	"testing"
)

func TestKeystore_IdentityRoundTrip(t *testing.T) {
	// WHY: An identity entry read back out of the keystore must carry the
	// original leaf certificate and a private key that still matches it.
	t.Parallel()

	ca := newTestCA(t, "Round Trip CA")
	certPEM, keyPEM := ca.issue(t, "client")
	key, err := decodeKeyPair([]byte(keyPEM), "")
	if err != nil {
		t.Fatal(err)
	}
	chain, err := decodeCertificateChain([]byte(certPEM))
	if err != nil {
		t.Fatal(err)
	}

	ks := NewKeystore()
	if err := ks.AddIdentity(key, "entrypass", chain); err != nil {
		t.Fatal(err)
	}

	entries, err := ks.Identities("entrypass")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Alias != chain[0].Subject.String() {
		t.Errorf("got alias %q, want subject DN %q", entry.Alias, chain[0].Subject.String())
	}
	if !entry.Chain[0].Equal(chain[0]) {
		t.Error("leaf certificate changed through the keystore")
	}
	match, err := keyMatchesCert(entry.PrivateKey, entry.Chain[0])
	if err != nil {
		t.Fatal(err)
	}
	if !match {
		t.Error("private key no longer matches the leaf certificate")
	}
}

func TestKeystore_TrustAliasOrdinals(t *testing.T) {
	// WHY: CA certificates sharing a subject DN must still get unique
	// aliases via the running ordinal.
	t.Parallel()

	_, _, certA := selfSignedPair(t, "Shared Subject")
	_, _, certB := selfSignedPair(t, "Shared Subject")

	ks := NewKeystore()
	if err := ks.AddTrustAnchor(certA); err != nil {
		t.Fatal(err)
	}
	if err := ks.AddTrustAnchor(certB); err != nil {
		t.Fatal(err)
	}

	aliases := ks.Aliases()
	slices.Sort(aliases)
	want := []string{"CN=Shared Subject-0", "CN=Shared Subject-1"}
	if !slices.Equal(aliases, want) {
		t.Errorf("got aliases %v, want %v", aliases, want)
	}

	anchors, err := ks.TrustAnchors()
	if err != nil {
		t.Fatal(err)
	}
	if len(anchors) != 2 {
		t.Errorf("got %d trust anchors, want 2", len(anchors))
	}
}

func TestKeystore_AliasCasePreserved(t *testing.T) {
	// WHY: Subject DNs are case-sensitive, so the alias scheme must not
	// fold them; a lowercased alias would collide CN=A with CN=a and
	// misreport the entry's subject on readback.
	t.Parallel()

	_, _, cert := selfSignedPair(t, "MixedCase Anchor")

	ks := NewKeystore()
	if err := ks.AddTrustAnchor(cert); err != nil {
		t.Fatal(err)
	}

	want := []string{"CN=MixedCase Anchor-0"}
	if got := ks.Aliases(); !slices.Equal(got, want) {
		t.Errorf("got aliases %v, want %v", got, want)
	}

	// The case must also survive JKS serialization and reload.
	data, err := ks.ExportJKS("changeit")
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadKeystore(data, "changeit")
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Aliases(); !slices.Equal(got, want) {
		t.Errorf("got aliases %v after reload, want %v", got, want)
	}
}

func TestKeystore_AddIdentityEmptyChain(t *testing.T) {
	// WHY: An identity without a leaf certificate has no alias and no
	// public half to match; the add must fail cleanly instead of
	// crashing.
	t.Parallel()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	ks := NewKeystore()
	err = ks.AddIdentity(key, "", nil)
	var cryptoErr *CryptoError
	if !errors.As(err, &cryptoErr) {
		t.Fatalf("got %v, want *CryptoError", err)
	}
	if len(ks.Aliases()) != 0 {
		t.Errorf("keystore gained aliases %v from rejected identity", ks.Aliases())
	}
}

func TestKeystore_DuplicateAliasLastWriteWins(t *testing.T) {
	// WHY: Re-adding under the same alias must overwrite, not crash.
	t.Parallel()

	ca := newTestCA(t, "Dup CA")
	certPEM, keyPEM := ca.issue(t, "dup-client")
	key, err := decodeKeyPair([]byte(keyPEM), "")
	if err != nil {
		t.Fatal(err)
	}
	chain, err := decodeCertificateChain([]byte(certPEM))
	if err != nil {
		t.Fatal(err)
	}

	ks := NewKeystore()
	for i := 0; i < 2; i++ {
		if err := ks.AddIdentity(key, "", chain); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := ks.Identities("")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries after duplicate add, want 1", len(entries))
	}
}

func TestLoadKeystore_RoundTrip(t *testing.T) {
	t.Parallel()

	_, _, cert := selfSignedPair(t, "Stored Anchor")
	ks := NewKeystore()
	if err := ks.AddTrustAnchor(cert); err != nil {
		t.Fatal(err)
	}

	data, err := ks.ExportJKS("changeit")
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadKeystore(data, "changeit")
	if err != nil {
		t.Fatal(err)
	}
	anchors, err := loaded.TrustAnchors()
	if err != nil {
		t.Fatal(err)
	}
	if len(anchors) != 1 || !anchors[0].Equal(cert) {
		t.Error("trust anchor changed through JKS serialization")
	}
	if loaded.TrustCount() != 1 {
		t.Errorf("got trust count %d, want 1", loaded.TrustCount())
	}
}

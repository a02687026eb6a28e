package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	standardtls "crypto/tls"
	"crypto/x509"
	"testing"
	"time"
)

func TestGenerateSelfSignedCert_Defaults(t *testing.T) {
	t.Parallel()

	cert, err := GenerateSelfSignedCert()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}

	if leaf.Subject.CommonName != "localhost" {
		t.Errorf("CN: got %q, want %q", leaf.Subject.CommonName, "localhost")
	}

	foundDNS := false
	for _, dns := range leaf.DNSNames {
		if dns == "localhost" {
			foundDNS = true
			break
		}
	}
	if !foundDNS {
		t.Errorf("DNS SANs: %v does not contain localhost", leaf.DNSNames)
	}

	foundIP := false
	for _, ip := range leaf.IPAddresses {
		if ip.String() == "127.0.0.1" {
			foundIP = true
			break
		}
	}
	if !foundIP {
		t.Errorf("IP SANs: %v does not contain 127.0.0.1", leaf.IPAddresses)
	}

	validDuration := leaf.NotAfter.Sub(leaf.NotBefore)
	if validDuration < certValidity-time.Hour || validDuration > certValidity+time.Hour {
		t.Errorf("validity duration: got %v, want approximately %v", validDuration, certValidity)
	}

	ecKey, ok := leaf.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		t.Fatal("public key is not ECDSA")
	}
	if ecKey.Curve != elliptic.P256() {
		t.Errorf("curve: got %v, want P-256", ecKey.Curve.Params().Name)
	}

	if leaf.Issuer.CommonName != leaf.Subject.CommonName {
		t.Errorf("issuer CN %q does not match subject CN %q", leaf.Issuer.CommonName, leaf.Subject.CommonName)
	}
}

func TestGenerateSelfSignedCert_CustomHosts(t *testing.T) {
	t.Parallel()

	cert, err := GenerateSelfSignedCert("mail.example.com", "192.0.2.10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("failed to parse certificate: %v", err)
	}

	if leaf.Subject.CommonName != "mail.example.com" {
		t.Errorf("CN: got %q, want first host", leaf.Subject.CommonName)
	}
	if len(leaf.DNSNames) != 1 || leaf.DNSNames[0] != "mail.example.com" {
		t.Errorf("DNS SANs: got %v", leaf.DNSNames)
	}
	if len(leaf.IPAddresses) != 1 || leaf.IPAddresses[0].String() != "192.0.2.10" {
		t.Errorf("IP SANs: got %v", leaf.IPAddresses)
	}
}

func TestLoadOrGenerateTLS_SelfSigned(t *testing.T) {
	t.Parallel()

	tlsConfig, err := LoadOrGenerateTLS("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tlsConfig.Certificates) != 1 {
		t.Errorf("Certificates: got %d, want 1", len(tlsConfig.Certificates))
	}
	if tlsConfig.MinVersion != standardtls.VersionTLS12 {
		t.Errorf("MinVersion: got %d, want TLS 1.2 (%d)", tlsConfig.MinVersion, standardtls.VersionTLS12)
	}
}

func TestLoadOrGenerateTLS_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadOrGenerateTLS("/nonexistent/cert.pem", "/nonexistent/key.pem")
	if err == nil {
		t.Error("expected error for nonexistent files, got nil")
	}
}

func TestLoadOrGenerateTLS_MismatchedPair(t *testing.T) {
	t.Parallel()

	if _, err := LoadOrGenerateTLS("/some/cert.pem", ""); err == nil {
		t.Error("expected error when only the certificate file is set")
	}
	if _, err := LoadOrGenerateTLS("", "/some/key.pem"); err == nil {
		t.Error("expected error when only the key file is set")
	}
}

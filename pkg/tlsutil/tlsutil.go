// Package tlsutil loads TLS material for the gRPC server and outbound HTTPS
// clients, and can mint a throwaway CA for local development.
package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc/credentials"
)

// LoadServerTLS builds a server tls.Config from cert and key files.
func LoadServerTLS(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: load server key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// ServerCredentials loads gRPC server transport credentials from cert and key files.
func ServerCredentials(certFile, keyFile string) (credentials.TransportCredentials, error) {
	cfg, err := LoadServerTLS(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(cfg), nil
}

// ClientTLS builds a client tls.Config. A non-empty caFile replaces the
// system roots; insecureSkipVerify is for local development only.
func ClientTLS(caFile string, insecureSkipVerify bool) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // opt-in for development
	}
	if caFile == "" {
		return cfg, nil
	}

	caPEM, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("tlsutil: no certificates found in %s", caFile)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

// DevCertificates lists the PEM files written by GenerateSelfSignedCert.
type DevCertificates struct {
	CAFile    string
	CAKeyFile string
	CertFile  string
	KeyFile   string
}

// GenerateSelfSignedCert mints a throwaway CA and a server certificate for
// hosts signed by it, and writes both pairs into outDir.
func GenerateSelfSignedCert(hosts []string, outDir string) (DevCertificates, error) {
	if len(hosts) == 0 {
		return DevCertificates{}, errors.New("tlsutil: at least one host is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: mkdir %s: %w", outDir, err)
	}

	now := time.Now()
	ca, err := issue(&x509.Certificate{
		Subject:               pkix.Name{CommonName: "creditrisk dev CA", Organization: []string{"Credit Risk Dev"}},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.AddDate(5, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}, nil)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: CA: %w", err)
	}

	leafTemplate := &x509.Certificate{
		Subject:     pkix.Name{CommonName: hosts[0], Organization: []string{"Credit Risk Dev"}},
		NotBefore:   now.Add(-time.Minute),
		NotAfter:    now.AddDate(1, 0, 0),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			leafTemplate.IPAddresses = append(leafTemplate.IPAddresses, ip)
		} else {
			leafTemplate.DNSNames = append(leafTemplate.DNSNames, h)
		}
	}
	leaf, err := issue(leafTemplate, ca)
	if err != nil {
		return DevCertificates{}, fmt.Errorf("tlsutil: server certificate: %w", err)
	}

	out := DevCertificates{
		CAFile:    filepath.Join(outDir, "ca.pem"),
		CAKeyFile: filepath.Join(outDir, "ca-key.pem"),
		CertFile:  filepath.Join(outDir, "server.pem"),
		KeyFile:   filepath.Join(outDir, "server-key.pem"),
	}
	if err := ca.write(out.CAFile, out.CAKeyFile); err != nil {
		return DevCertificates{}, err
	}
	if err := leaf.write(out.CertFile, out.KeyFile); err != nil {
		return DevCertificates{}, err
	}
	return out, nil
}

type keyPair struct {
	cert *x509.Certificate
	der  []byte
	key  *ecdsa.PrivateKey
}

// issue signs template with parent, or self-signs when parent is nil.
func issue(template *x509.Certificate, parent *keyPair) (*keyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("serial number: %w", err)
	}
	template.SerialNumber = serial

	signer, signerCert := key, template
	if parent != nil {
		signer, signerCert = parent.key, parent.cert
	}
	der, err := x509.CreateCertificate(rand.Reader, template, signerCert, &key.PublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return &keyPair{cert: cert, der: der, key: key}, nil
}

func (kp *keyPair) write(certPath, keyPath string) error {
	keyDER, err := x509.MarshalECPrivateKey(kp.key)
	if err != nil {
		return fmt.Errorf("tlsutil: marshal key: %w", err)
	}
	if err := os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: kp.der}), 0o644); err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", certPath, err)
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		return fmt.Errorf("tlsutil: write %s: %w", keyPath, err)
	}
	return nil
}

package tlsutil_test

import (
	"crypto/tls"
	"crypto/x509"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/creditrisk/pkg/tlsutil"
)

func TestGeneratedCertificatesLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	certs, err := tlsutil.GenerateSelfSignedCert([]string{"localhost", "127.0.0.1"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ca.pem"), certs.CAFile)
	assert.FileExists(t, certs.CAKeyFile)

	serverCfg, err := tlsutil.LoadServerTLS(certs.CertFile, certs.KeyFile)
	require.NoError(t, err)
	assert.Len(t, serverCfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), serverCfg.MinVersion)

	creds, err := tlsutil.ServerCredentials(certs.CertFile, certs.KeyFile)
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)

	clientCfg, err := tlsutil.ClientTLS(certs.CAFile, false)
	require.NoError(t, err)
	require.NotNil(t, clientCfg.RootCAs)

	leaf, err := x509.ParseCertificate(serverCfg.Certificates[0].Certificate[0])
	require.NoError(t, err)
	for _, host := range []string{"localhost", "127.0.0.1"} {
		_, err = leaf.Verify(x509.VerifyOptions{DNSName: host, Roots: clientCfg.RootCAs})
		assert.NoError(t, err, host)
	}
	_, err = leaf.Verify(x509.VerifyOptions{DNSName: "scorer.internal", Roots: clientCfg.RootCAs})
	assert.Error(t, err)
}

func TestGenerateSelfSignedCert_DistinctSerials(t *testing.T) {
	a, err := tlsutil.GenerateSelfSignedCert([]string{"localhost"}, t.TempDir())
	require.NoError(t, err)
	b, err := tlsutil.GenerateSelfSignedCert([]string{"localhost"}, t.TempDir())
	require.NoError(t, err)

	serial := func(path string) string {
		cfg, err := tlsutil.LoadServerTLS(path, strings.TrimSuffix(path, ".pem")+"-key.pem")
		require.NoError(t, err)
		leaf, err := x509.ParseCertificate(cfg.Certificates[0].Certificate[0])
		require.NoError(t, err)
		return leaf.SerialNumber.String()
	}
	assert.NotEqual(t, serial(a.CertFile), serial(b.CertFile))

	_, err = tlsutil.GenerateSelfSignedCert(nil, t.TempDir())
	assert.Error(t, err)
}

func TestClientTLS_Errors(t *testing.T) {
	_, err := tlsutil.ClientTLS(filepath.Join(t.TempDir(), "missing.pem"), false)
	assert.Error(t, err)

	cfg, err := tlsutil.ClientTLS("", false)
	require.NoError(t, err)
	assert.Nil(t, cfg.RootCAs)
}

func TestLoadServerTLS_MissingFiles(t *testing.T) {
	_, err := tlsutil.LoadServerTLS("nope.pem", "nope-key.pem")
	assert.ErrorContains(t, err, "load server key pair")
}

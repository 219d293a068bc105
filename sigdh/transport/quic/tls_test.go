package quic

import (
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerCertificate(t *testing.T) {
	now := time.Now()
	cert, err := listenerCertificate(now)
	require.NoError(t, err)
	require.NotNil(t, cert.Leaf)
	assert.IsType(t, ed25519.PrivateKey{}, cert.PrivateKey)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, cert.Leaf.ExtKeyUsage)
	assert.True(t, cert.Leaf.NotBefore.Before(now))
	assert.True(t, cert.Leaf.NotAfter.After(now.Add(certLifetime-time.Minute)))

	other, err := listenerCertificate(now)
	require.NoError(t, err)
	assert.NotEqual(t, cert.Leaf.SerialNumber, other.Leaf.SerialNumber)
}

func TestClientRequiresALPN(t *testing.T) {
	conf := clientTLSConfig()
	assert.Empty(t, conf.Certificates)
	assert.Equal(t, []string{ALPN}, conf.NextProtos)

	assert.NoError(t, conf.VerifyConnection(tls.ConnectionState{NegotiatedProtocol: ALPN}))
	assert.ErrorIs(t, conf.VerifyConnection(tls.ConnectionState{}), ErrWrongProtocol)
	assert.ErrorIs(t, conf.VerifyConnection(tls.ConnectionState{NegotiatedProtocol: "h3"}), ErrWrongProtocol)
}

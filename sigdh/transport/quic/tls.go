package quic

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// ALPN is the only application protocol either side negotiates.
const ALPN = "sigdh/1"

// certLifetime bounds the listener's throwaway certificate. Listeners are
// expected to restart well inside it.
const certLifetime = 24 * time.Hour

var ErrWrongProtocol = errors.New("quic: peer did not negotiate " + ALPN)

// TLS here only carries the stream. Nothing is learned from the
// certificate: the initiator proves its identity by signing the
// responder's DH value in SENDER_ACKNOWLEDGE, and the channel keys come
// from the DH secret exchanged on this stream, not from the TLS exporter.
// A relay that terminates TLS in the middle still cannot forge the
// signature or learn the DH secret.

// listenerCertificate makes a fresh ed25519 certificate for one listener.
func listenerCertificate(now time.Time) (tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return tls.Certificate{}, err
	}
	tpl := &x509.Certificate{
		SerialNumber:          serial,
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(certLifetime),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, pub, priv)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("quic: certificate: %w", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: leaf}, nil
}

func serverTLSConfig() (*tls.Config, error) {
	cert, err := listenerCertificate(time.Now())
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		NextProtos:   []string{ALPN},
	}, nil
}

// clientTLSConfig presents no certificate and accepts any server
// certificate, but refuses a connection that did not agree on ALPN.
func clientTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS13,
		NextProtos:         []string{ALPN},
		InsecureSkipVerify: true,
		VerifyConnection: func(cs tls.ConnectionState) error {
			if cs.NegotiatedProtocol != ALPN {
				return ErrWrongProtocol
			}
			return nil
		},
	}
}

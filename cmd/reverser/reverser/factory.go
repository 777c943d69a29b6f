package reverser

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"math/big"
	"net"
	"time"
)

type Protocol interface {
	Listen(address string) (Accepter, error)
	Dial(address string) (net.Conn, error)
}

type ProtoProtocol struct {
	listen func(address string) (Accepter, error)
	dial   func(address string) (net.Conn, error)
}

type Accepter interface {
	Accept() (net.Conn, error)
	Close() error
	Addr() net.Addr
}

func (self ProtoProtocol) Listen(address string) (Accepter, error) { return self.listen(address) }
func (self ProtoProtocol) Dial(address string) (net.Conn, error)   { return self.dial(address) }

func ProtocolFor(protocol string) (Protocol, error) {
	switch protocol {
	case "tcp":
		impl := struct{ ProtoProtocol }{}
		impl.listen = func(address string) (Accepter, error) {
			listenAddress, err := net.ResolveTCPAddr("tcp", address)
			if err != nil {
				return nil, errors.Wrap(err, "resolve address")
			}
			listener, err := net.ListenTCP("tcp", listenAddress)
			if err != nil {
				return nil, errors.Wrap(err, "listen")
			}
			return listener, nil
		}
		impl.dial = func(address string) (net.Conn, error) {
			dialAddress, err := net.ResolveTCPAddr("tcp", address)
			if err != nil {
				return nil, errors.Wrap(err, "resolve address")
			}
			conn, err := net.DialTCP("tcp", nil, dialAddress)
			if err != nil {
				return nil, errors.Wrap(err, "dial")
			}
			return conn, nil
		}
		return impl, nil

	case "tls":
		impl := struct{ ProtoProtocol }{}
		impl.listen = func(address string) (Accepter, error) {
			tlsConfig, err := generateTLSConfig()
			if err != nil {
				return nil, err
			}
			listener, err := tls.Listen("tcp", address, tlsConfig)
			if err != nil {
				return nil, errors.Wrap(err, "listen")
			}
			return listener, nil
		}
		impl.dial = func(address string) (net.Conn, error) {
			conn, err := tls.Dial("tcp", address, clientTLSConfig())
			if err != nil {
				return nil, errors.Wrap(err, "dial")
			}
			return conn, nil
		}
		return impl, nil

	case "quic":
		impl := struct{ ProtoProtocol }{}
		impl.listen = func(address string) (Accepter, error) {
			tlsConfig, err := generateTLSConfig()
			if err != nil {
				return nil, err
			}
			listener, err := quic.ListenAddr(address, tlsConfig, nil)
			if err != nil {
				return nil, errors.Wrap(err, "listen")
			}
			return &quicAccepter{listener}, nil
		}
		impl.dial = func(address string) (net.Conn, error) {
			session, err := quic.DialAddr(context.Background(), address, clientTLSConfig(), nil)
			if err != nil {
				return nil, errors.Wrap(err, "dial")
			}
			stream, err := session.OpenStreamSync(context.Background())
			if err != nil {
				_ = session.CloseWithError(0, "")
				return nil, errors.Wrap(err, "stream")
			}
			return &quicConn{session, stream}, nil
		}
		return impl, nil

	default:
		return nil, errors.Errorf("unsupported protocol [%s]", protocol)
	}
}

const nextProto = "reverser"

// generateTLSConfig builds a throwaway self-signed server identity for the tls and quic protocols.
//
func generateTLSConfig() (*tls.Config, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Now().Add(-24 * time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1)},
		IsCA:         true,
	}
	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, errors.Wrap(err, "create certificate")
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	tlsCert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, errors.Wrap(err, "key pair")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{tlsCert},
		NextProtos:   []string{nextProto},
	}, nil
}

func clientTLSConfig() *tls.Config {
	return &tls.Config{
		NextProtos:         []string{nextProto},
		InsecureSkipVerify: true,
	}
}

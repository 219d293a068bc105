package params

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
	"github.com/TheusHen/sigdh/sigdh/identity"
)

// Config is the immutable deployment configuration.
type Config struct {
	Group     Group
	Initiator identity.KeyPair
	Responder identity.KeyPair
}

// Validate checks the group and both identities. Identities that carry a
// private exponent are probed with a sign/verify round.
func (c *Config) Validate() error {
	if err := c.Group.Validate(); err != nil {
		return err
	}
	if err := c.Initiator.Check(); err != nil {
		return fmt.Errorf("params: initiator: %w", err)
	}
	if err := c.Responder.Check(); err != nil {
		return fmt.Errorf("params: responder: %w", err)
	}
	return nil
}

// PacketSize is the fixed handshake packet length: wide enough for a group
// element or an initiator signature.
func (c *Config) PacketSize() int {
	return max(c.Group.Width(), c.Initiator.Width())
}

type fileGroup struct {
	Generator string `json:"generator"`
	Prime     string `json:"prime"`
}

type fileIdentity struct {
	Modulus         string `json:"modulus"`
	PublicExponent  string `json:"public_exponent"`
	PrivateExponent string `json:"private_exponent,omitempty"`
}

type file struct {
	Group     fileGroup    `json:"group"`
	Initiator fileIdentity `json:"initiator"`
	Responder fileIdentity `json:"responder"`
}

// Parse decodes and validates a JSON configuration. Integers are big-endian
// hex; the hex length of the prime and of each modulus fixes its width.
func Parse(data []byte) (*Config, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	cfg, err := f.decode()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	return Parse(data)
}

// MarshalJSON writes the configuration in the format Parse reads.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(file{
		Group: fileGroup{
			Generator: c.Group.Generator.Hex(),
			Prime:     c.Group.Prime.Hex(),
		},
		Initiator: encodeIdentity(c.Initiator),
		Responder: encodeIdentity(c.Responder),
	}, "", "  ")
}

func (f file) decode() (*Config, error) {
	prime, err := bigint.ParseHex(f.Group.Prime, 0)
	if err != nil {
		return nil, fmt.Errorf("params: group prime: %w", err)
	}
	gen, err := bigint.ParseHex(f.Group.Generator, prime.Width())
	if err != nil {
		return nil, fmt.Errorf("params: group generator: %w", err)
	}
	initiator, err := f.Initiator.decode()
	if err != nil {
		return nil, fmt.Errorf("params: initiator: %w", err)
	}
	responder, err := f.Responder.decode()
	if err != nil {
		return nil, fmt.Errorf("params: responder: %w", err)
	}
	return &Config{
		Group:     Group{Generator: gen, Prime: prime},
		Initiator: initiator,
		Responder: responder,
	}, nil
}

func (fi fileIdentity) decode() (identity.KeyPair, error) {
	n, err := bigint.ParseHex(fi.Modulus, 0)
	if err != nil {
		return identity.KeyPair{}, err
	}
	e, err := bigint.ParseHex(fi.PublicExponent, 0)
	if err != nil {
		return identity.KeyPair{}, err
	}
	pub := identity.PublicKey{Modulus: n, Exponent: e}
	if fi.PrivateExponent == "" {
		return identity.PublicOnly(pub), pub.Validate()
	}
	d, err := bigint.ParseHex(fi.PrivateExponent, 0)
	if err != nil {
		return identity.KeyPair{}, err
	}
	return identity.NewKeyPair(pub, d)
}

func encodeIdentity(kp identity.KeyPair) fileIdentity {
	fi := fileIdentity{
		Modulus:        kp.Modulus.Hex(),
		PublicExponent: kp.Exponent.Hex(),
	}
	if kp.HasPrivate() {
		fi.PrivateExponent = kp.Private().Hex()
	}
	return fi
}

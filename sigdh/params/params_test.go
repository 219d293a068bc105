package params_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheusHen/sigdh/sigdh/crypto/bigint"
	"github.com/TheusHen/sigdh/sigdh/params"
	"github.com/TheusHen/sigdh/sigdh/params/paramstest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := params.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 156, cfg.Group.Width())
	assert.Equal(t, 157, cfg.Initiator.Width())
	assert.Equal(t, 157, cfg.Responder.Width())
	assert.Equal(t, 157, cfg.PacketSize())
	assert.True(t, cfg.Initiator.HasPrivate())
	assert.False(t, cfg.Responder.HasPrivate())
	assert.Equal(t, int64(65537), cfg.Initiator.Exponent.Big().Int64())

	// Each call hands out an independent copy.
	other := params.Default()
	other.Group.Prime.Wipe()
	assert.False(t, cfg.Group.Prime.IsZero())
}

func TestTestConfig(t *testing.T) {
	cfg := paramstest.Config()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 16, cfg.Group.Width())
	assert.Equal(t, 64, cfg.PacketSize())
}

func TestGroupValidate(t *testing.T) {
	cfg := paramstest.Config()

	bad := cfg.Group
	bad.Generator, _ = bigint.FromUint64(1, 16)
	assert.ErrorIs(t, bad.Validate(), params.ErrInvalidGenerator)

	bad.Generator = cfg.Group.Prime
	assert.ErrorIs(t, bad.Validate(), params.ErrInvalidGenerator)

	bad = cfg.Group
	bad.Prime, _ = bigint.FromUint64(15, 16)
	bad.Generator, _ = bigint.FromUint64(2, 16)
	assert.ErrorIs(t, bad.Validate(), params.ErrInvalidPrime)
}

func TestJSONRoundTrip(t *testing.T) {
	cfg := paramstest.Config()
	data, err := cfg.MarshalJSON()
	require.NoError(t, err)

	parsed, err := params.Parse(data)
	require.NoError(t, err)
	assert.True(t, bigint.Equal(cfg.Group.Prime, parsed.Group.Prime))
	assert.True(t, bigint.Equal(cfg.Group.Generator, parsed.Group.Generator))
	assert.Equal(t, cfg.Initiator.PeerID(), parsed.Initiator.PeerID())
	assert.Equal(t, cfg.Responder.PeerID(), parsed.Responder.PeerID())
	assert.True(t, parsed.Responder.HasPrivate())
}

func TestLoadDefaultWithoutResponderPrivate(t *testing.T) {
	data, err := params.Default().MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"private_exponent": ""`)

	path := filepath.Join(t.TempDir(), "sigdh.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := params.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 157, cfg.PacketSize())
	assert.False(t, cfg.Responder.HasPrivate())
}

func TestParseErrors(t *testing.T) {
	_, err := params.Parse([]byte("{"))
	assert.Error(t, err)

	_, err = params.Parse([]byte(`{"group":{"generator":"04","prime":"zz"}}`))
	assert.Error(t, err)

	_, err = params.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

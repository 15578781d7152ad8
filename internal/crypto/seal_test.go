package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSealer(t *testing.T) *Sealer {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	s, err := NewSealer(key)
	require.NoError(t, err)
	return s
}

func TestSealOpen(t *testing.T) {
	s := newSealer(t)
	plain := []byte(`{"mode":"paycheck","monthly_income":3000}`)

	sealed, err := s.Seal(plain)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "paycheck")

	got, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	again, err := s.Seal(plain)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "fresh nonce per seal")
}

func TestOpen_WrongKey(t *testing.T) {
	sealed, err := newSealer(t).Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = newSealer(t).Open(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestOpen_Tampered(t *testing.T) {
	s := newSealer(t)
	sealed, err := s.Seal([]byte("secret"))
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = s.Open(sealed)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = s.Open([]byte("short"))
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestNewSealer_BadKey(t *testing.T) {
	_, err := NewSealer("not base64!")
	assert.ErrorIs(t, err, ErrBadKey)

	_, err = NewSealer("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrBadKey)
}

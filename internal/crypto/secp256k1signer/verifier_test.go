package secp256k1signer

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsValidSignature(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	message := []byte("pay 10 to bob")
	sig := ecdsa.Sign(priv, doubleSHA256(message))

	v := New()
	require.True(t, v.Verify(priv.PubKey().SerializeCompressed(), message, sig.Serialize()))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	message := []byte("pay 10 to bob")
	sig := ecdsa.Sign(priv, doubleSHA256(message))

	v := New()
	require.False(t, v.Verify(other.PubKey().SerializeCompressed(), message, sig.Serialize()))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	sig := ecdsa.Sign(priv, doubleSHA256([]byte("pay 10 to bob")))

	v := New()
	require.False(t, v.Verify(priv.PubKey().SerializeCompressed(), []byte("pay 99 to bob"), sig.Serialize()))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	v := New()
	require.False(t, v.Verify(priv.PubKey().SerializeCompressed(), []byte("pay 10 to bob"), []byte("not-a-signature")))
}

func TestVerifyRejectsMalformedPublicKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	sig := ecdsa.Sign(priv, doubleSHA256([]byte("pay 10 to bob")))

	v := New()
	require.False(t, v.Verify([]byte("not-a-key"), []byte("pay 10 to bob"), sig.Serialize()))
}

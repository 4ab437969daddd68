package crypto

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRSAKeypair(t *testing.T) {
	require := require.New(t)

	kp, err := GenerateRSAKeypair()
	require.NoError(err)

	priv, err := ParseRSAPrivateKey(kp.PrivateKey)
	require.NoError(err)
	require.Equal(KeySize, priv.N.BitLen())

	pub, err := ParseRSAPublicKey(kp.PublicKey)
	require.NoError(err)
	require.True(pub.Equal(&priv.PublicKey))
}

func TestParseRSAPublicKeyPKCS1(t *testing.T) {
	require := require.New(t)

	kp, err := GenerateRSAKeypair()
	require.NoError(err)
	priv, err := ParseRSAPrivateKey(kp.PrivateKey)
	require.NoError(err)

	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&priv.PublicKey),
	})
	pub, err := ParseRSAPublicKey(pkcs1)
	require.NoError(err)
	require.True(pub.Equal(&priv.PublicKey))
}

func TestParseRejectsGarbage(t *testing.T) {
	require := require.New(t)

	_, err := ParseRSAPrivateKey([]byte("not a key"))
	require.Error(err)
	_, err = ParseRSAPublicKey([]byte("not a key"))
	require.Error(err)

	cert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}})
	_, err = ParseRSAPublicKey(cert)
	require.Error(err)
}

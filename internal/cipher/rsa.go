package cipher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
)

// rsaKeyBits matches the key size vanilla clients and servers use for the
// encryption handshake.
const rsaKeyBits = 1024

// KeyPair holds the per-listener long-lived RSA keypair: the private key
// is retained for decrypting the client's response; the DER-encoded
// public key is what gets sent in EncryptionRequest.
type KeyPair struct {
	Private   *rsa.PrivateKey
	PublicDER []byte
}

// GenerateKeyPair creates a fresh RSA keypair and its SubjectPublicKeyInfo
// DER encoding.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("cipher: generate rsa key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("cipher: marshal public key: %w", err)
	}
	return &KeyPair{Private: priv, PublicDER: der}, nil
}

// DecryptPKCS1v15 decrypts an RSA-PKCS1v15-encrypted blob with the
// keypair's private key (used for both the shared secret and the verify
// token in EncryptionResponse).
func (k *KeyPair) DecryptPKCS1v15(ciphertext []byte) ([]byte, error) {
	out, err := rsa.DecryptPKCS1v15(rand.Reader, k.Private, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("cipher: rsa decrypt: %w", err)
	}
	return out, nil
}

// EncryptPKCS1v15 encrypts plaintext with the keypair's public key
// (used by test harnesses acting as the client).
func (k *KeyPair) EncryptPKCS1v15(plaintext []byte) ([]byte, error) {
	out, err := rsa.EncryptPKCS1v15(rand.Reader, &k.Private.PublicKey, plaintext)
	if err != nil {
		return nil, fmt.Errorf("cipher: rsa encrypt: %w", err)
	}
	return out, nil
}

// GenerateVerifyToken returns a fresh 4-byte verify token.
func GenerateVerifyToken() ([]byte, error) {
	token := make([]byte, 4)
	if _, err := rand.Read(token); err != nil {
		return nil, fmt.Errorf("cipher: generate verify token: %w", err)
	}
	return token, nil
}

// GenerateSharedSecret returns a fresh 16-byte AES-128 key, used as both
// key and IV for the client-leg CFB8 cipher.
func GenerateSharedSecret() ([]byte, error) {
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("cipher: generate shared secret: %w", err)
	}
	return secret, nil
}

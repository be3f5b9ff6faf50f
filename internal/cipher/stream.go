package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"fmt"
	"math/big"
)

// NewClientCipherPair builds the encrypt/decrypt streams installed on the
// client leg once the shared secret is known: AES-128/CFB8 with the
// shared secret used as both key and IV.
func NewClientCipherPair(sharedSecret []byte) (encrypt, decrypt cipher.Stream, err error) {
	block, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("cipher: new aes block: %w", err)
	}
	encrypt = newCFB8Encrypter(block, sharedSecret)
	decrypt = newCFB8Decrypter(block, sharedSecret)
	return encrypt, decrypt, nil
}

// ServerIDHash computes the session-server digest: SHA-1 over
// ASCII(serverID) || sharedSecret || publicKeyDER, interpreted as a
// signed two's-complement big integer and rendered as lowercase base-16
// with a leading '-' on negative values and no leading zeros — the
// classic (and slightly surprising) "Java hex digest" used by the
// session-server join/hasJoined calls.
func ServerIDHash(serverID string, sharedSecret, publicKeyDER []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)

	negative := digest[0]&0x80 != 0
	if negative {
		twosComplement(digest)
	}

	n := new(big.Int).SetBytes(digest)
	if negative {
		return "-" + n.Text(16)
	}
	return n.Text(16)
}

// twosComplement negates digest in place, bit 159 treated as sign bit.
func twosComplement(digest []byte) {
	carry := true
	for i := len(digest) - 1; i >= 0; i-- {
		digest[i] = ^digest[i]
		if carry {
			digest[i]++
			carry = digest[i] == 0
		}
	}
}

package cipher

import (
	"bytes"
	"crypto/aes"
	"testing"
)

func TestCFB8RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x2a}, 16)
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	plaintext := []byte("the quick brown fox jumps over the lazy dog, 36 bytes and more")

	enc := newCFB8Encrypter(block, key)
	ciphertext := make([]byte, len(plaintext))
	enc.XORKeyStream(ciphertext, plaintext)

	if bytes.Equal(ciphertext, plaintext) {
		t.Fatalf("ciphertext equals plaintext")
	}

	dec := newCFB8Decrypter(block, key)
	decoded := make([]byte, len(ciphertext))
	dec.XORKeyStream(decoded, ciphertext)

	if !bytes.Equal(decoded, plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, plaintext)
	}
}

func TestCFB8StreamingMatchesOneShot(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 16)
	block, _ := aes.NewCipher(key)
	plaintext := bytes.Repeat([]byte{0x42}, 37)

	oneShot := make([]byte, len(plaintext))
	newCFB8Encrypter(block, key).XORKeyStream(oneShot, plaintext)

	streamed := make([]byte, len(plaintext))
	enc := newCFB8Encrypter(block, key)
	for i := 0; i < len(plaintext); i++ {
		enc.XORKeyStream(streamed[i:i+1], plaintext[i:i+1])
	}

	if !bytes.Equal(oneShot, streamed) {
		t.Fatalf("byte-at-a-time streaming diverged from one-shot encryption")
	}
}

package cipher

import "testing"

// Known-answer vectors for the "Java hex digest" used by server_id_hash,
// per the long-standing wiki.vg examples (serverID = the argument alone,
// empty shared secret and public key).
func TestServerIDHashKnownVectors(t *testing.T) {
	cases := []struct {
		serverID string
		want     string
	}{
		{"Notch", "4ed1f46bbe04bc756bcb17c0c7ce3e4632f06a48"},
		{"jeb_", "-7c9d5b0044c130109a5d7b5fb5c317c02b4e28c1"},
		{"simon", "88e16a1019277b15d58faf0541e11910eb756f6"},
	}
	for _, tc := range cases {
		got := ServerIDHash(tc.serverID, nil, nil)
		if got != tc.want {
			t.Fatalf("ServerIDHash(%q)=%q want %q", tc.serverID, got, tc.want)
		}
	}
}

func TestGenerateKeyPairAndEncryptDecrypt(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	secret, err := GenerateSharedSecret()
	if err != nil {
		t.Fatalf("GenerateSharedSecret: %v", err)
	}
	if len(secret) != 16 {
		t.Fatalf("expected 16-byte secret, got %d", len(secret))
	}

	ciphertext, err := kp.EncryptPKCS1v15(secret)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	decoded, err := kp.DecryptPKCS1v15(ciphertext)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(decoded) != string(secret) {
		t.Fatalf("round trip mismatch")
	}
}

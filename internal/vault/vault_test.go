package vault_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/edgard/storebot/internal/vault"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	secrets := []string{"s", "a-much-longer-secret-than-thirty-two-bytes-of-key-material", "ключ🔑"}
	inputs := []string{
		"",
		"123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw",
		"exactly sixteen!",
		strings.Repeat("x", 1000),
		"unicode ✓ текст",
		"with:colons:inside",
	}

	for _, secret := range secrets {
		v := vault.New(secret)
		for _, in := range inputs {
			ct, err := v.Encrypt(in)
			if err != nil {
				t.Fatalf("Encrypt(%q) error: %v", in, err)
			}
			got, err := v.Decrypt(ct)
			if err != nil {
				t.Fatalf("Decrypt(Encrypt(%q)) error: %v", in, err)
			}
			if got != in {
				t.Errorf("round trip mismatch: got %q, want %q", got, in)
			}
		}
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	t.Parallel()

	v := vault.New("secret")
	const token = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw"

	first, err := v.Encrypt(token)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	second, err := v.Encrypt(token)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if first == second {
		t.Fatal("two encryptions of the same plaintext produced identical ciphertext")
	}

	for _, ct := range []string{first, second} {
		got, err := v.Decrypt(ct)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if got != token {
			t.Errorf("Decrypt = %q, want %q", got, token)
		}
	}
}

func TestCiphertextFormat(t *testing.T) {
	t.Parallel()

	ct, err := vault.New("secret").Encrypt("hello")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	iv, data, found := strings.Cut(ct, ":")
	if !found {
		t.Fatalf("ciphertext %q has no separator", ct)
	}
	if len(iv) != 32 {
		t.Errorf("iv hex length = %d, want 32", len(iv))
	}
	if len(data) != 32 {
		t.Errorf("payload hex length = %d, want 32 (one block)", len(data))
	}
}

func TestMissingSecret(t *testing.T) {
	t.Parallel()

	v := vault.New("")
	if _, err := v.Encrypt("token"); !errors.Is(err, vault.ErrConfiguration) {
		t.Errorf("Encrypt error = %v, want ErrConfiguration", err)
	}

	ct, err := vault.New("secret").Encrypt("token")
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	if _, err := v.Decrypt(ct); !errors.Is(err, vault.ErrConfiguration) {
		t.Errorf("Decrypt error = %v, want ErrConfiguration", err)
	}
}

func TestDecryptMalformed(t *testing.T) {
	t.Parallel()

	v := vault.New("secret")
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty string", input: ""},
		{name: "no separator", input: "00112233445566778899aabbccddeeff"},
		{name: "bad iv hex", input: "zz112233445566778899aabbccddeeff:00112233445566778899aabbccddeeff"},
		{name: "short iv", input: "0011:00112233445566778899aabbccddeeff"},
		{name: "bad payload hex", input: "00112233445566778899aabbccddeeff:not-hex"},
		{name: "empty payload", input: "00112233445566778899aabbccddeeff:"},
		{name: "partial block", input: "00112233445566778899aabbccddeeff:0011"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := v.Decrypt(tt.input); !errors.Is(err, vault.ErrMalformedCiphertext) {
				t.Errorf("Decrypt(%q) error = %v, want ErrMalformedCiphertext", tt.input, err)
			}
		})
	}
}

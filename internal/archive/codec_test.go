package archive

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"empty":      {},
		"small json": []byte(`{"metadata":{},"data":{}}`),
		"repetitive": bytes.Repeat([]byte("abcdef"), 10_000),
	}

	// Arbitrary binary content, not just text.
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 64*1024)
	rng.Read(random)
	cases["random binary"] = random

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			compressed, err := Compress(input)
			if err != nil {
				t.Fatalf("Compress() failed: %v", err)
			}

			out, err := Decompress(compressed)
			if err != nil {
				t.Fatalf("Decompress() failed: %v", err)
			}
			if !bytes.Equal(out, input) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(out), len(input))
			}
		})
	}
}

func TestCompressShrinksRepetitiveData(t *testing.T) {
	input := bytes.Repeat([]byte(`{"id":1,"email":"a@x.edu"},`), 5_000)

	compressed, err := Compress(input)
	if err != nil {
		t.Fatalf("Compress() failed: %v", err)
	}
	if len(compressed) >= len(input) {
		t.Errorf("compressed %d bytes to %d; want smaller", len(input), len(compressed))
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	if _, err := Decompress([]byte("not a gzip stream")); err == nil {
		t.Error("Decompress(garbage) succeeded, want error")
	}
}

package artifact

import (
	"path/filepath"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "last-response.json")
	s := New(path)

	body := []byte(`[{"candidates":[]}]`)
	if err := s.Write(body); err != nil {
		t.Fatal(err)
	}
	if got := s.Read(); string(got) != string(body) {
		t.Errorf("Read = %q, want %q", got, body)
	}

	// Second write replaces, never appends.
	if err := s.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if got := s.Read(); string(got) != "x" {
		t.Errorf("Read after rewrite = %q", got)
	}
}

func TestReadMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "never-written.json"))
	if got := s.Read(); got != nil {
		t.Errorf("Read of missing artifact = %q, want nil", got)
	}
}

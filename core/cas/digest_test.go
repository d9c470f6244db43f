package cas

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/zeebo/blake3"
)

func TestSum(t *testing.T) {
	d := Sum([]byte("abc"))
	if want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"; d.SHA256 != want {
		t.Errorf("SHA256 = %s, want %s", d.SHA256, want)
	}
	b := blake3.Sum256([]byte("abc"))
	if want := hex.EncodeToString(b[:]); d.BLAKE3 != want {
		t.Errorf("BLAKE3 = %s, want %s", d.BLAKE3, want)
	}
	if d.Size != 3 {
		t.Errorf("Size = %d, want 3", d.Size)
	}
	if Hash([]byte("abc")) != d.SHA256 || Blake3Hash([]byte("abc")) != d.BLAKE3 {
		t.Error("single-hash helpers disagree with Sum")
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	data := bytes.Repeat([]byte("Das\tART\tdie\n"), 1000)
	got, err := SumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(Sum(data)) {
		t.Errorf("SumReader = %+v, Sum = %+v", got, Sum(data))
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestSumReaderError(t *testing.T) {
	if _, err := SumReader(errReader{}); err == nil {
		t.Error("SumReader should propagate read errors")
	}
}

func TestDigestEqualAndShort(t *testing.T) {
	a := Sum([]byte("a"))
	b := Sum([]byte("b"))
	if a.Equal(b) {
		t.Error("different data should not be equal")
	}
	if !a.Equal(Sum([]byte("a"))) {
		t.Error("same data should be equal")
	}
	if s := a.Short(); len(s) != 25 {
		t.Errorf("Short() = %q", s)
	}
	if s := (Digest{SHA256: "ab", BLAKE3: "cd"}).Short(); s != "ab/cd" {
		t.Errorf("Short() = %q", s)
	}
}

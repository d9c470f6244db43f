package treetagger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/ttconv/core/plugins"
)

func TestHandlerRegistered(t *testing.T) {
	p, err := plugins.Lookup(Format)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if p.Manifest.PluginID != "format.treetagger" {
		t.Errorf("PluginID = %q", p.Manifest.PluginID)
	}
	if !p.Manifest.Capabilities.CanDecode || !p.Manifest.Capabilities.CanEncode {
		t.Error("handler should decode and encode")
	}
}

func TestHandlerDetect(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"tagged", "<?xml version=\"1.0\"?>\n<meta>\nDas\tART\tdie\n</meta>\n", true},
		{"rows only", "Das\tART\tdie\n", true},
		{"prose", "This is a plain sentence.\n", false},
		{"tags only", "<s>\n</s>\n", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".tt")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			res, err := (&Handler{}).Detect(path)
			if err != nil {
				t.Fatalf("Detect: %v", err)
			}
			if res.Detected != tt.want {
				t.Errorf("Detected = %v, want %v (%s)", res.Detected, tt.want, res.Reason)
			}
		})
	}

	res, _ := (&Handler{}).Detect(dir)
	if res.Detected {
		t.Error("a directory should not be detected")
	}
	res, _ = (&Handler{}).Detect(filepath.Join(dir, "missing.tt"))
	if res.Detected {
		t.Error("a missing file should not be detected")
	}
}

func TestHandlerDecodeEncode(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc1.tt")
	content := "<meta id=\"x\">\n<np>\nDas\tART\tdie\nHaus\tNN\tHaus\n</np>\n</meta>\n"
	if err := os.WriteFile(in, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts := plugins.Options{MetaTag: "meta", Logger: quietOptions().Logger}
	h := &Handler{}
	dec, err := h.Decode(in, opts)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(dec.Documents) != 1 || dec.Documents[0].Name() != "doc1" {
		t.Fatalf("Documents = %v", dec.Documents)
	}

	out := filepath.Join(dir, "out.tt")
	enc, err := h.Encode(dec.Documents[0], out, opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc.Path != out || len(enc.Diagnostics) != 0 {
		t.Errorf("EncodeResult = %+v", enc)
	}
	got, _ := os.ReadFile(out)
	if string(got) != content {
		t.Errorf("encoded = %q, want %q", got, content)
	}
}

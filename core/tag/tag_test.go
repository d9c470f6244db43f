package tag

import (
	"reflect"
	"testing"
)

func TestIsStartTag(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`<np>`, true},
		{`<meta lang="en">`, true},
		{`<s id='3' type="main">`, true},
		{`  <np>  `, true},
		{`<np a="x"b="y">`, true},
		{`</np>`, false},
		{`<?xml version="1.0"?>`, false},
		{`< np>`, false},
		{`<np`, false},
		{`<np a=x>`, false},
		{`<np a="x'>`, false},
		{`<np a>`, false},
		{"<\tSYM\t<", false},
		{"<np>\tNN\t<np>", false},
		{`Haus`, false},
		{``, false},
		{`<>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsStartTag(tt.line); got != tt.want {
				t.Errorf("IsStartTag(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsEndTag(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`</np>`, true},
		{`</meta>`, true},
		{` </s> `, true},
		{`<np>`, false},
		{`</ np>`, false},
		{`</np a="b">`, false},
		{`</>`, false},
		{`</np`, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsEndTag(tt.line); got != tt.want {
				t.Errorf("IsEndTag(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsProcessingInstruction(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`<?xml version="1.0" encoding="UTF-8"?>`, true},
		{`<??>`, true},
		{`<?xml`, false},
		{`<np>`, false},
		{`?>`, false},
	}

	for _, tt := range tests {
		if got := IsProcessingInstruction(tt.line); got != tt.want {
			t.Errorf("IsProcessingInstruction(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`<np>`, "np"},
		{`<meta lang="en">`, "meta"},
		{`</chunk>`, "chunk"},
		{`Haus	NN	Haus`, ""},
		{`<?pi?>`, ""},
	}

	for _, tt := range tests {
		if got := Name(tt.line); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Attr
	}{
		{
			name: "no attributes",
			line: `<np>`,
			want: nil,
		},
		{
			name: "order preserved",
			line: `<meta lang="en" author='kim' date="2011">`,
			want: []Attr{{"lang", "en"}, {"author", "kim"}, {"date", "2011"}},
		},
		{
			name: "unescaped",
			line: `<s note="a &lt;b&gt; &amp; c">`,
			want: []Attr{{"note", "a <b> & c"}},
		},
		{
			name: "other quote inside",
			line: `<s q='say "hi"'>`,
			want: []Attr{{"q", `say "hi"`}},
		},
		{
			name: "empty value",
			line: `<s q="">`,
			want: []Attr{{"q", ""}},
		},
		{
			name: "duplicate names kept",
			line: `<s a="1" a="2">`,
			want: []Attr{{"a", "1"}, {"a", "2"}},
		},
		{
			name: "end tag",
			line: `</s>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Attributes(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Attributes(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

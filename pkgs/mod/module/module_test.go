package module

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Reference
		wantErr error
	}{
		{
			name: "full reference",
			in:   "clara/1.1.1@bincrafters/stable",
			want: Reference{Name: "clara", Version: "1.1.1", User: "bincrafters", Channel: "stable"},
		},
		{
			name: "shorthand version",
			in:   "Qt/5.11@bincrafters/stable",
			want: Reference{Name: "Qt", Version: "5.11", User: "bincrafters", Channel: "stable"},
		},
		{
			name: "no user channel",
			in:   "zlib/1.2.11",
			want: Reference{Name: "zlib", Version: "1.2.11", User: DefaultUser, Channel: DefaultChannel},
		},
		{name: "missing version", in: "zlib", wantErr: ErrMalformedReference},
		{name: "empty version", in: "zlib/@a/b", wantErr: ErrMalformedVersion},
		{name: "malformed version", in: "zlib/1..2@a/b", wantErr: ErrMalformedVersion},
		{name: "missing channel", in: "zlib/1.0@bincrafters", wantErr: ErrMalformedReference},
		{name: "bad name", in: "/1.0@a/b", wantErr: ErrMalformedReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReference(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseReference(%q) error = %v, want %v", tt.in, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseReference(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseReference(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestReferenceString(t *testing.T) {
	ref, err := ParseReference("zlib/1.2.11")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := ref.String(), "zlib/1.2.11@_/_"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"0.0.1", "5.11", "3", "v1.8.0", "1.0.0-rc.1"} {
		if err := CheckVersion(v); err != nil {
			t.Errorf("CheckVersion(%q) = %v, want nil", v, err)
		}
	}
	for _, v := range []string{"", "latest", "1..2", "1.0.0.0", "vv1"} {
		if err := CheckVersion(v); !errors.Is(err, ErrMalformedVersion) {
			t.Errorf("CheckVersion(%q) = %v, want ErrMalformedVersion", v, err)
		}
	}
}

func TestCompareVersion(t *testing.T) {
	if CompareVersion("5.11", "v5.11.0") != 0 {
		t.Error("5.11 should equal v5.11.0")
	}
	if CompareVersion("0.16.3", "1.0") >= 0 {
		t.Error("0.16.3 should sort before 1.0")
	}
}

func TestEscapePath(t *testing.T) {
	tests := []struct {
		name        string
		ref         Reference
		wantEscaped string
		wantErr     bool
	}{
		{
			name:        "simple reference",
			ref:         Reference{Name: "spdlog", Version: "0.16.3", User: "bincrafters", Channel: "stable"},
			wantEscaped: filepath.Join("spdlog", "0.16.3", "bincrafters", "stable"),
		},
		{
			name:    "empty reference",
			ref:     Reference{},
			wantErr: true,
		},
		{
			name:    "traversal",
			ref:     Reference{Name: "..", Version: "1.0", User: "_", Channel: "_"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escaped, err := EscapePath(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("EscapePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if escaped != tt.wantEscaped {
				t.Errorf("EscapePath() = %v, want %v", escaped, tt.wantEscaped)
			}
		})
	}
}

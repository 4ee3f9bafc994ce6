package field

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name string
		path string
		ft   Type
	}{
		{"name", "$.name", Tag},
		{"level", "$.level", Numeric},
		{"challenge_rating", "$.challenge_rating", Numeric},
		{"desc", "$.desc", Text},
		{"school", "$.school.name", Tag},
		{"classes", "$.classes[*].index", Scope},
	}

	for _, tt := range tests {
		f, err := New(tt.name, tt.path, tt.ft)
		if err != nil {
			t.Errorf("New(%q, %q, %q) unexpected error: %v", tt.name, tt.path, tt.ft, err)
			continue
		}
		if f.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", f.Name(), tt.name)
		}
		if f.Path() != tt.path {
			t.Errorf("Path() = %q, want %q", f.Path(), tt.path)
		}
		if f.FieldType() != tt.ft {
			t.Errorf("FieldType() = %q, want %q", f.FieldType(), tt.ft)
		}
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		path   string
		ft     Type
		errSub string
	}{
		{"empty name", "", "$.x", Tag, "required"},
		{"too long", strings.Repeat("x", 65), "$.x", Tag, "too long"},
		{"uppercase", "Name", "$.name", Tag, "lowercase"},
		{"reserved", "index", "$.index", Tag, "reserved"},
		{"bad path", "name", "name", Tag, "must start with"},
		{"bad type", "name", "$.name", Type("vector"), "invalid field type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.field, tt.path, tt.ft)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("error = %q, want substring %q", err, tt.errSub)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustNew("", "$.x", Tag)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatext

import (
	"errors"
	"testing"
)

func TestValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"system", true},
		{"user", true},
		{"assistant", true},
		{"tool", true},
		{"function", false},
		{"", false},
		{"User", false},
	}
	for _, tt := range tests {
		if got := ValidRole(tt.role); got != tt.want {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRegistry_Add(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Extension{Name: "a"}); err != nil {
		t.Fatalf("Add(a) error: %v", err)
	}
	if err := r.Add(Extension{}); !errors.Is(err, ErrUnnamed) {
		t.Fatalf("Add(unnamed) error = %v, want ErrUnnamed", err)
	}
	if err := r.Add(Extension{Name: "b"}); err != nil {
		t.Fatalf("Add(b) error: %v", err)
	}

	exts := r.Extensions()
	if len(exts) != 2 || exts[0].Name != "a" || exts[1].Name != "b" {
		t.Errorf("Extensions() = %+v, want [a b]", exts)
	}
	if !errors.Is(r.Err(), ErrUnnamed) {
		t.Errorf("Err() = %v, want ErrUnnamed", r.Err())
	}

	// The returned slice is a copy.
	exts[0].Name = "changed"
	if r.Extensions()[0].Name != "a" {
		t.Error("Extensions() exposed internal storage")
	}
}

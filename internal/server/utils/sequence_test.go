package utils

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseSequenceSet(t *testing.T) {
	tests := []struct {
		name string
		set  string
		max  int
		want []int
	}{
		{"single number", "5", 10, []int{5}},
		{"comma list", "1,3,5", 10, []int{1, 3, 5}},
		{"ascending range", "1:3", 10, []int{1, 2, 3}},
		{"descending range normalizes", "3:1", 10, []int{1, 2, 3}},
		{"wildcard expands to full mailbox", "*", 4, []int{1, 2, 3, 4}},
		{"range with star bound", "8:*", 10, []int{8, 9, 10}},
		{"duplicates preserved", "2,2,1:2", 10, []int{2, 2, 1, 2}},
		{"request order preserved", "5,1:2", 10, []int{5, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSequenceSet(tt.set, tt.max)
			if err != nil {
				t.Fatalf("ParseSequenceSet(%q) unexpected error: %v", tt.set, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSequenceSet(%q) = %v, want %v", tt.set, got, tt.want)
			}
		})
	}
}

func TestParseSequenceSetIdempotent(t *testing.T) {
	first, err := ParseSequenceSet("3:1,7", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ParseSequenceSet("3:1,7", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parse not idempotent: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(first, []int{1, 2, 3, 7}) {
		t.Errorf("ParseSequenceSet(\"3:1,7\") = %v, want [1 2 3 7]", first)
	}
}

func TestParseSequenceSetErrors(t *testing.T) {
	tests := []struct {
		set       string
		wantToken string
	}{
		{"", ""},
		{"a", "a"},
		{"1:", ""},
		{":5", ""},
		{"0", "0"},
		{"-3", "-3"},
		{"1:2:3", "1:2:3"},
		{"1,,3", ""},
	}

	for _, tt := range tests {
		t.Run("set "+tt.set, func(t *testing.T) {
			_, err := ParseSequenceSet(tt.set, 10)
			if err == nil {
				t.Fatalf("ParseSequenceSet(%q) expected error, got nil", tt.set)
			}
			var seqErr *SequenceError
			if !errors.As(err, &seqErr) {
				t.Fatalf("ParseSequenceSet(%q) error type = %T, want *SequenceError", tt.set, err)
			}
			if !strings.Contains(err.Error(), tt.wantToken) {
				t.Errorf("error %q does not identify token %q", err.Error(), tt.wantToken)
			}
		})
	}
}

func TestCheckSequenceSet(t *testing.T) {
	if err := CheckSequenceSet("1:100,*"); err != nil {
		t.Errorf("CheckSequenceSet valid set: %v", err)
	}
	if err := CheckSequenceSet("1:x"); err == nil {
		t.Error("CheckSequenceSet(\"1:x\") expected error")
	}
}

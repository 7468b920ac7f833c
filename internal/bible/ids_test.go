package bible

import (
	"reflect"
	"testing"
)

func TestSortIDs(t *testing.T) {
	ids := []string{"10", "b", "2", "01", "1", "a", "-1"}
	SortIDs(ids)

	want := []string{"1", "2", "10", "-1", "01", "a", "b"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("SortIDs() = %v, want %v", ids, want)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"12", 12, true},
		{" 7a", 7, true},
		{"-3", -3, true},
		{"+4", 4, true},
		{"x", 0, false},
		{"", 0, false},
		{"-", 0, false},
		{"3.9", 3, true},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLeadingInt(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

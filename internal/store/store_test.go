package store

import (
	"reflect"
	"testing"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want [][2]int
	}{
		{"empty", 0, 500, nil},
		{"single partial", 3, 500, [][2]int{{0, 3}}},
		{"exact multiple", 1000, 500, [][2]int{{0, 500}, {500, 1000}}},
		{"remainder", 1201, 500, [][2]int{{0, 500}, {500, 1000}, {1000, 1201}}},
		{"non-positive size uses default", 501, 0, [][2]int{{0, 500}, {500, 501}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunks(tt.n, tt.size)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("chunks(%d, %d) = %v, want %v", tt.n, tt.size, got, tt.want)
			}
		})
	}
}

package build

import (
	"errors"
	"strings"
	"testing"

	"github.com/ymatsuda/wakachi/pkg/dictionary"
)

func TestParseMatrix(t *testing.T) {
	b := NewBuilder()
	err := b.ParseMatrix(strings.NewReader(`# comment
3 2

0 0 10
1 2 -500
1 1 32767
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.leftSize != 3 || b.rightSize != 2 {
		t.Fatalf("sizes = %dx%d", b.leftSize, b.rightSize)
	}
	if b.matrix[0*3+0] != 10 {
		t.Errorf("(0,0) = %d", b.matrix[0])
	}
	if b.matrix[1*3+2] != -500 {
		t.Errorf("(1,2) = %d", b.matrix[1*3+2])
	}
	if b.matrix[1*3+1] != dictionary.InhibitedConnection {
		t.Errorf("(1,1) = %d, want inhibited", b.matrix[1*3+1])
	}
	if b.matrix[0*3+1] != 0 {
		t.Errorf("unlisted pair = %d, want 0", b.matrix[0*3+1])
	}
}

func TestParseMatrixErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrMalformedRow},
		{"bad sizes", "x 2\n", ErrMalformedRow},
		{"zero size", "0 2\n", ErrMalformedRow},
		{"short data line", "2 2\n0 0\n", ErrMalformedRow},
		{"left out of range", "2 2\n0 2 10\n", ErrMatrixIndexOutOfRange},
		{"right out of range", "2 2\n2 0 10\n", ErrMatrixIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBuilder().ParseMatrix(strings.NewReader(tt.input))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

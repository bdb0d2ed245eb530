package build

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseMatrix reads a connection cost table. The first non-comment line is
// "<leftSize> <rightSize>"; every following line is "<right> <left> <cost>",
// the cost of joining a predecessor with right-connection-id <right> to a
// successor with left-connection-id <left>. Unlisted pairs cost 0.
func (b *Builder) ParseMatrix(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	sized := false
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Fields(text)
		if !sized {
			if len(cols) != 2 {
				return fmt.Errorf("matrix line %d: %w: want \"leftSize rightSize\"", line, ErrMalformedRow)
			}
			left, err1 := strconv.Atoi(cols[0])
			right, err2 := strconv.Atoi(cols[1])
			if err1 != nil || err2 != nil || left < 1 || right < 1 {
				return fmt.Errorf("matrix line %d: %w: bad sizes", line, ErrMalformedRow)
			}
			b.leftSize, b.rightSize = left, right
			b.matrix = make([]int16, left*right)
			sized = true
			continue
		}
		if len(cols) != 3 {
			return fmt.Errorf("matrix line %d: %w: want \"right left cost\"", line, ErrMalformedRow)
		}
		right, err1 := strconv.Atoi(cols[0])
		left, err2 := strconv.Atoi(cols[1])
		cost, err3 := strconv.ParseInt(cols[2], 10, 16)
		if err1 != nil || err2 != nil || err3 != nil {
			return fmt.Errorf("matrix line %d: %w", line, ErrMalformedRow)
		}
		if left < 0 || left >= b.leftSize || right < 0 || right >= b.rightSize {
			return fmt.Errorf("matrix line %d: %w: (%d, %d)", line, ErrMatrixIndexOutOfRange, right, left)
		}
		b.matrix[right*b.leftSize+left] = int16(cost)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if !sized {
		return fmt.Errorf("matrix: %w: empty table", ErrMalformedRow)
	}
	return nil
}

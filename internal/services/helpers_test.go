package services

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
)

type bytesBuffer struct{ bytes.Buffer }

// counter returns the value of the exposition line starting with series, or
// zero when it is absent.
func (b *bytesBuffer) counter(series string) float64 {
	sc := bufio.NewScanner(strings.NewReader(b.String()))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, series+" ") {
			v, _ := strconv.ParseFloat(strings.TrimPrefix(line, series+" "), 64)
			return v
		}
	}
	return 0
}

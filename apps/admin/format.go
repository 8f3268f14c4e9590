package main

import (
	"fmt"
	"io"
	"strings"
)

// fmtRow writes cols as one tab separated line.
func fmtRow(w io.Writer, cols ...interface{}) (int, error) {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprint(col)
	}
	return fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func fmtLeader(rank int, name, class string, points, level int) string {
	return fmt.Sprintf("%d. %s (%s) %d pts, level %d", rank, name, class, points, level)
}

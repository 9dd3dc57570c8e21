package export

import (
	"bytes"
	"io"
	"strings"
)

// WriteCSV writes a header line followed by one line per row. Text fields
// are always double-quoted (embedded quotes doubled) and numbers are bare.
// Output is buffered so nothing reaches w unless the whole table encodes.
func WriteCSV(w io.Writer, table Table) error {
	if len(table.Headers) == 0 {
		return ErrNoColumns
	}
	var buf bytes.Buffer
	for i, header := range table.Headers {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeQuoted(&buf, header)
	}
	buf.WriteByte('\n')
	for _, row := range table.Rows {
		for i, value := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			if value.IsNumber() {
				buf.WriteString(value.String())
				continue
			}
			writeQuoted(&buf, value.String())
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(s, `"`, `""`))
	buf.WriteByte('"')
}

package iptables

import (
	"bytes"
	"io"
	"strings"
)

// restoreWriter builds iptables-save text one table at a time:
//
//	*filter
//	:INPUT ACCEPT [0:0]
//	:CUSTOM - [0:0]
//	-A INPUT -j CUSTOM
//	COMMIT
type restoreWriter struct {
	buf bytes.Buffer
}

func (w *restoreWriter) startTable(name TableName) {
	w.writeLine("*" + name.String())
}

// writeChain always renders zero counters; they aren't tracked.
func (w *restoreWriter) writeChain(c *Chain) {
	w.writeLine(":" + c.Name() + " " + c.Policy().String() + " [0:0]")
}

func (w *restoreWriter) writeRule(chain string, r Rule) {
	tokens := append([]string{directiveAppend, chain}, r.Tokens()...)
	w.writeLine(strings.Join(tokens, " "))
}

func (w *restoreWriter) commit() {
	w.writeLine(commitLine)
}

func (w *restoreWriter) writeLine(line string) {
	w.buf.WriteString(line)
	w.buf.WriteByte('\n')
}

// writeTable emits a table section: every chain declaration first, then
// the rules chain by chain, so jump targets are declared before use.
func (w *restoreWriter) writeTable(t *Table) {
	w.startTable(t.Name())
	t.ForEach(w.writeChain)
	t.ForEach(func(c *Chain) {
		c.ForEach(func(_ int, r Rule) {
			w.writeRule(c.Name(), r)
		})
	})
	w.commit()
}

// Serialize renders rs in iptables-save format, tables in canonical order.
func Serialize(rs *RuleSet) string {
	var w restoreWriter
	rs.ForEach(w.writeTable)
	return w.buf.String()
}

// WriteTo writes the iptables-save form of rs to dst.
func (rs *RuleSet) WriteTo(dst io.Writer) (int64, error) {
	n, err := io.WriteString(dst, Serialize(rs))
	return int64(n), err
}

// String returns the iptables-save form.
func (rs *RuleSet) String() string {
	return Serialize(rs)
}

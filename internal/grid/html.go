package grid

import (
	"html"
	"strconv"
	"strings"
)

// htmlBuilder is the append-only output buffer. Elements are emitted with
// el, which takes the body as a closure: the closing tag is written when
// the closure returns, so sections are structurally guaranteed to close in
// pre-order with no backtracking. One builder renders exactly one
// configuration once; it holds no shared state and must not be reused.
type htmlBuilder struct {
	sb strings.Builder
}

// el writes <tag kv...>, runs body, then writes </tag>. kv is an ordered
// list of attribute name/value pairs; pairs with an empty value are
// skipped. Values are escaped.
func (b *htmlBuilder) el(tag string, body func(), kv ...string) {
	b.sb.WriteByte('<')
	b.sb.WriteString(tag)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		b.sb.WriteByte(' ')
		b.sb.WriteString(kv[i])
		b.sb.WriteString(`="`)
		b.sb.WriteString(html.EscapeString(kv[i+1]))
		b.sb.WriteByte('"')
	}
	b.sb.WriteByte('>')
	if body != nil {
		body()
	}
	b.sb.WriteString("</")
	b.sb.WriteString(tag)
	b.sb.WriteByte('>')
}

// text writes escaped character data.
func (b *htmlBuilder) text(s string) {
	b.sb.WriteString(html.EscapeString(s))
}

// raw writes s verbatim. Used for caller-supplied content and fixed
// entities; callers own the escaping.
func (b *htmlBuilder) raw(s string) {
	b.sb.WriteString(s)
}

func (b *htmlBuilder) String() string {
	return b.sb.String()
}

// px formats a pixel dimension for inline styles.
func px(n int) string {
	return strconv.Itoa(n) + "px"
}

// classes joins non-empty class names.
func classes(cs ...string) string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

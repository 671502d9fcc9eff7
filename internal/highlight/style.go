package highlight

import (
	"strings"

	"golang.org/x/net/html"
)

// Inline-style and attribute plumbing for node mutation. Property order is
// preserved so that mark→clear round-trips reproduce the original attribute
// byte for byte.

type styleProp struct {
	name  string
	value string
}

func parseStyle(style string) []styleProp {
	var props []styleProp
	for _, part := range strings.Split(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		props = append(props, styleProp{
			name:  strings.TrimSpace(kv[0]),
			value: strings.TrimSpace(kv[1]),
		})
	}
	return props
}

func formatStyle(props []styleProp) string {
	var parts []string
	for _, p := range props {
		parts = append(parts, p.name+": "+p.value)
	}
	return strings.Join(parts, "; ")
}

func styleGet(props []styleProp, name string) string {
	for _, p := range props {
		if strings.EqualFold(p.name, name) {
			return p.value
		}
	}
	return ""
}

// styleSet replaces or appends a property; an empty value deletes it
func styleSet(props []styleProp, name, value string) []styleProp {
	for i, p := range props {
		if strings.EqualFold(p.name, name) {
			if value == "" {
				return append(props[:i], props[i+1:]...)
			}
			props[i].value = value
			return props
		}
	}
	if value == "" {
		return props
	}
	return append(props, styleProp{name: name, value: value})
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// addClass appends class tokens not already present
func addClass(n *html.Node, classes ...string) {
	existing, _ := getAttr(n, "class")
	tokens := strings.Fields(existing)
	have := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		have[t] = true
	}
	for _, c := range classes {
		if !have[c] {
			tokens = append(tokens, c)
		}
	}
	setAttr(n, "class", strings.Join(tokens, " "))
}

// removeClassPrefix drops class tokens with the given prefix, removing the
// attribute entirely when no tokens remain
func removeClassPrefix(n *html.Node, prefix string) {
	existing, ok := getAttr(n, "class")
	if !ok {
		return
	}
	var kept []string
	for _, t := range strings.Fields(existing) {
		if !strings.HasPrefix(t, prefix) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

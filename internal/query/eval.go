package query

import (
	"strings"

	"github.com/kgraph/kgcore/internal/index"
)

// Corpus is the universe a NOT complements against: every known entity name.
type Corpus []string

// Evaluate walks the AST, returning the matching entity-name set via
// set-algebra over idx: AND is intersection, OR is union, NOT is complement
// within the corpus.
func Evaluate(node Node, idx *index.Indexes, corpus Corpus) map[string]struct{} {
	switch n := node.(type) {
	case *AtomNode:
		return evalAtom(n, idx)
	case *AndNode:
		left := Evaluate(n.Left, idx, corpus)
		right := Evaluate(n.Right, idx, corpus)
		return intersect(left, right)
	case *OrNode:
		left := Evaluate(n.Left, idx, corpus)
		right := Evaluate(n.Right, idx, corpus)
		return union(left, right)
	case *NotNode:
		inner := Evaluate(n.Inner, idx, corpus)
		return complement(inner, corpus)
	default:
		return map[string]struct{}{}
	}
}

func evalAtom(n *AtomNode, idx *index.Indexes) map[string]struct{} {
	needle := strings.ToLower(n.Value)
	out := make(map[string]struct{})

	switch n.Field {
	case "name":
		for name, lf := range idx.Lower {
			if strings.Contains(lf.Name, needle) {
				out[name] = struct{}{}
			}
		}
	case "type":
		for name, lf := range idx.Lower {
			if strings.Contains(lf.EntityType, needle) {
				out[name] = struct{}{}
			}
		}
	case "tag":
		for name, e := range idx.NameIndex {
			for _, tag := range e.Tags {
				if strings.Contains(strings.ToLower(tag), needle) {
					out[name] = struct{}{}
					break
				}
			}
		}
	case "observation":
		for name, lf := range idx.Lower {
			for _, o := range lf.Observations {
				if strings.Contains(o, needle) {
					out[name] = struct{}{}
					break
				}
			}
		}
	default:
		// Unqualified: name, type, any tag, or any observation (§4.H).
		for name, lf := range idx.Lower {
			if strings.Contains(lf.Name, needle) || strings.Contains(lf.EntityType, needle) {
				out[name] = struct{}{}
				continue
			}
			if e, ok := idx.NameIndex[name]; ok {
				for _, tag := range e.Tags {
					if strings.Contains(strings.ToLower(tag), needle) {
						out[name] = struct{}{}
						break
					}
				}
			}
			for _, o := range lf.Observations {
				if strings.Contains(o, needle) {
					out[name] = struct{}{}
					break
				}
			}
		}
	}
	return out
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for k := range small {
		if _, ok := large[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func complement(a map[string]struct{}, corpus Corpus) map[string]struct{} {
	out := make(map[string]struct{})
	for _, name := range corpus {
		if _, ok := a[name]; !ok {
			out[name] = struct{}{}
		}
	}
	return out
}

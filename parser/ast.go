package parser

// Kind discriminates the three shapes an AST Value can take, mirroring
// spec.md §4.2's "sequence of {sym: subtree} nodes": a subtree is
// either raw leaf text (an alternative with no named captures), a
// mapping from capture name to a further Value (named captures,
// recursively parsed), or an ordered sequence (the accumulator a
// recursive-descent pass builds while consuming a span of text).
type Kind int

const (
	KindText Kind = iota
	KindMap
	KindList
)

// Value is the generic AST node shape match/reduce/translate operate
// on. Exactly one of Text, Map, or List is meaningful, per Kind.
type Value struct {
	Kind Kind
	Text string
	Map  map[string]*Value
	List []*Value
}

func textValue(s string) *Value { return &Value{Kind: KindText, Text: s} }

func mapValue(m map[string]*Value) *Value { return &Value{Kind: KindMap, Map: m} }

func listValue(items []*Value) *Value { return &Value{Kind: KindList, List: items} }

// Reduce applies spec.md §4.2.3's post-order tree reduction:
//
//   - a sequence containing exactly one element becomes that element;
//   - a mapping whose value at key k is itself a singleton mapping
//     with key k is flattened: {k: {k: v}} -> {k: v}.
func Reduce(v *Value) *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindList:
		items := make([]*Value, len(v.List))
		for i, it := range v.List {
			items[i] = Reduce(it)
		}
		if len(items) == 1 {
			return items[0]
		}
		return listValue(items)
	case KindMap:
		out := make(map[string]*Value, len(v.Map))
		for k, sub := range v.Map {
			rv := Reduce(sub)
			if rv.Kind == KindMap && len(rv.Map) == 1 {
				if inner, ok := rv.Map[k]; ok {
					out[k] = inner
					continue
				}
			}
			out[k] = rv
		}
		return mapValue(out)
	default:
		return textValue(v.Text)
	}
}

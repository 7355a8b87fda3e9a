// Package flatten converts arbitrarily nested JSON-shaped values into a
// single-level map keyed by composed paths, and back.
//
// Path syntax: object keys are joined with ".", sequence elements are
// addressed as "[i]", and leaf values carry a type suffix describing the
// primitive found in the source document: "$int", "$float", "$bool",
// "$none". Strings carry no suffix. Example: "weather.[0].id$int".
//
// For the int/float distinction to match the source literal, documents must
// be decoded with json.Decoder.UseNumber; values inserted programmatically
// may use native Go ints and floats.
package flatten

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	tagInt   = "$int"
	tagFloat = "$float"
	tagBool  = "$bool"
	tagNone  = "$none"
)

// Flatten produces a flat map with one entry per leaf scalar reachable from
// doc. No leaf is dropped and no two leaves share a path.
func Flatten(doc map[string]any) map[string]any {
	out := make(map[string]any)
	for key, val := range doc {
		walk(out, key, val)
	}
	return out
}

func walk(out map[string]any, path string, val any) {
	switch v := val.(type) {
	case map[string]any:
		for key, child := range v {
			walk(out, path+"."+key, child)
		}
	case []any:
		for i, child := range v {
			walk(out, path+".["+strconv.Itoa(i)+"]", child)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil && !strings.ContainsAny(v.String(), ".eE") {
			out[path+tagInt] = n
			return
		}
		f, _ := v.Float64()
		out[path+tagFloat] = f
	case string:
		out[path] = v
	case bool:
		out[path+tagBool] = v
	case int:
		out[path+tagInt] = int64(v)
	case int64:
		out[path+tagInt] = v
	case float64:
		out[path+tagFloat] = v
	case nil:
		out[path+tagNone] = nil
	default:
		// Unknown scalar kinds degrade to their string form rather
		// than silently disappearing.
		out[path] = fmt.Sprint(v)
	}
}

// Nest is the inverse of Flatten: it rebuilds the nested document from a
// flat map. It exists so the flattening step can be verified as lossless.
func Nest(flat map[string]any) (map[string]any, error) {
	root := make(map[string]any)
	for path, val := range flat {
		segs, err := splitPath(path)
		if err != nil {
			return nil, err
		}
		if err := insert(root, segs, val); err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
	}
	return root, nil
}

type segment struct {
	key   string
	index int // -1 for object keys
}

func splitPath(path string) ([]segment, error) {
	for _, tag := range []string{tagInt, tagFloat, tagBool, tagNone} {
		path = strings.TrimSuffix(path, tag)
	}
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(path, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "[") && strings.HasSuffix(p, "]") {
			i, err := strconv.Atoi(p[1 : len(p)-1])
			if err != nil {
				return nil, fmt.Errorf("bad index segment %q", p)
			}
			segs = append(segs, segment{index: i})
			continue
		}
		segs = append(segs, segment{key: p, index: -1})
	}
	return segs, nil
}

func insert(node map[string]any, segs []segment, val any) error {
	seg := segs[0]
	if seg.index >= 0 {
		return fmt.Errorf("root-level index segments are not supported")
	}
	if len(segs) == 1 {
		node[seg.key] = val
		return nil
	}

	next := segs[1]
	if next.index >= 0 {
		list, _ := node[seg.key].([]any)
		list = growList(list, next.index)
		if len(segs) == 2 {
			list[next.index] = val
		} else {
			child, ok := list[next.index].(map[string]any)
			if !ok {
				child = make(map[string]any)
				list[next.index] = child
			}
			if err := insert(child, segs[2:], val); err != nil {
				return err
			}
		}
		node[seg.key] = list
		return nil
	}

	child, ok := node[seg.key].(map[string]any)
	if !ok {
		child = make(map[string]any)
		node[seg.key] = child
	}
	return insert(child, segs[1:], val)
}

func growList(list []any, index int) []any {
	for len(list) <= index {
		list = append(list, nil)
	}
	return list
}

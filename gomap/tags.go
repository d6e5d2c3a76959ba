package gomap

import (
	"fmt"
	"strings"
)

// TagKey is the struct tag key read by this package.
const TagKey = "wire"

// NullHandling chooses whether null-valued fields are written.
type NullHandling int

const (
	NullExclude NullHandling = iota
	NullInclude
)

func (n NullHandling) String() string {
	if n == NullInclude {
		return "include"
	}
	return "exclude"
}

// UnknownPolicy is carried on record descriptors. Decoding fails on
// unknown field names whatever its value.
type UnknownPolicy int

const (
	UnknownFail UnknownPolicy = iota
	UnknownIgnore
)

func (u UnknownPolicy) String() string {
	if u == UnknownIgnore {
		return "ignore"
	}
	return "fail"
}

// Exported marks a struct type as exportable when embedded in it. The
// tag on the embedded field configures the type:
//
//	type Comment struct {
//		gomap.Exported `wire:"nulls=include,name=Comment"`
//		Text string `wire:"field=comment"`
//	}
//
// Keys are nulls (exclude or include), unknown (fail or ignore) and
// name, the registry identifier.
type Exported struct{}

// parseStructTag parses a tag of the form
//
//	key1=value1,flag,key2='value, with comma'
//
// Values may be single quoted to carry commas. A key without a value
// maps to the empty string.
func parseStructTag(tag string) (map[string]string, error) {
	res := map[string]string{}
	tag = strings.TrimSpace(tag)
	for tag != "" {
		var key string
		i := strings.IndexAny(tag, "=,")
		if i == -1 {
			key, tag = tag, ""
		} else {
			key, tag = tag[:i], tag[i:]
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("empty key in tag")
		}
		if _, dup := res[key]; dup {
			return nil, fmt.Errorf("duplicate tag key %q", key)
		}
		if tag == "" || tag[0] == ',' {
			res[key] = ""
			tag = strings.TrimPrefix(tag, ",")
			continue
		}
		// tag[0] == '='
		tag = strings.TrimLeft(tag[1:], " ")
		if strings.HasPrefix(tag, "'") {
			end := strings.IndexByte(tag[1:], '\'')
			if end == -1 {
				return nil, fmt.Errorf("unterminated quote for tag key %q", key)
			}
			res[key] = tag[1 : end+1]
			tag = strings.TrimLeft(tag[end+2:], " ")
			if tag != "" && tag[0] != ',' {
				return nil, fmt.Errorf("unexpected %q after quoted value of %q", tag, key)
			}
			tag = strings.TrimPrefix(tag, ",")
			continue
		}
		j := strings.IndexByte(tag, ',')
		if j == -1 {
			res[key] = strings.TrimSpace(tag)
			tag = ""
		} else {
			res[key] = strings.TrimSpace(tag[:j])
			tag = tag[j+1:]
		}
	}
	return res, nil
}

type recordTag struct {
	nulls   NullHandling
	unknown UnknownPolicy
	name    string
}

func parseRecordTag(tag string) (*recordTag, error) {
	kv, err := parseStructTag(tag)
	if err != nil {
		return nil, err
	}
	rt := &recordTag{}
	for k, v := range kv {
		switch k {
		case "nulls":
			switch v {
			case "exclude", "":
				rt.nulls = NullExclude
			case "include":
				rt.nulls = NullInclude
			default:
				return nil, fmt.Errorf("nulls must be exclude or include, got %q", v)
			}
		case "unknown":
			switch v {
			case "fail", "":
				rt.unknown = UnknownFail
			case "ignore":
				rt.unknown = UnknownIgnore
			default:
				return nil, fmt.Errorf("unknown must be fail or ignore, got %q", v)
			}
		case "name":
			rt.name = v
		default:
			return nil, fmt.Errorf("unknown record tag key %q", k)
		}
	}
	return rt, nil
}

type fieldTag struct {
	name   string
	omit   bool
	layout string
}

func parseFieldTag(tag string) (*fieldTag, error) {
	kv, err := parseStructTag(tag)
	if err != nil {
		return nil, err
	}
	ft := &fieldTag{}
	for k, v := range kv {
		switch k {
		case "field":
			if v == "" {
				return nil, fmt.Errorf("field needs a value")
			}
			ft.name = v
		case "omit":
			ft.omit = true
		case "layout":
			if v == "" {
				return nil, fmt.Errorf("layout needs a value")
			}
			ft.layout = v
		default:
			return nil, fmt.Errorf("unknown field tag key %q", k)
		}
	}
	return ft, nil
}

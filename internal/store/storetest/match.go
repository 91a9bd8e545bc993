package storetest

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// matches evaluates the subset of the MongoDB query language the handlers
// emit against a decoded document.
func matches(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$or" {
			if !matchAny(doc, cond) {
				return false
			}
			continue
		}
		value, _ := lookup(doc, key)
		if !matchField(value, cond) {
			return false
		}
	}
	return true
}

func matchAny(doc bson.M, clauses interface{}) bool {
	var list []bson.M
	switch c := clauses.(type) {
	case []bson.M:
		list = c
	case bson.A:
		for _, item := range c {
			if m, ok := item.(bson.M); ok {
				list = append(list, m)
			}
		}
	}
	for _, clause := range list {
		if matches(doc, clause) {
			return true
		}
	}
	return false
}

// lookup resolves a dotted path. Arrays of sub-documents yield an array of
// the addressed values, as MongoDB does.
func lookup(doc bson.M, path string) (interface{}, bool) {
	head, rest, nested := strings.Cut(path, ".")
	value, ok := doc[head]
	if !ok || !nested {
		return value, ok
	}
	switch v := value.(type) {
	case bson.M:
		return lookup(v, rest)
	case bson.D:
		return lookup(v.Map(), rest)
	case bson.A:
		var out bson.A
		for _, item := range v {
			var sub bson.M
			switch s := item.(type) {
			case bson.M:
				sub = s
			case bson.D:
				sub = s.Map()
			default:
				continue
			}
			if found, ok := lookup(sub, rest); ok {
				out = append(out, found)
			}
		}
		return out, len(out) > 0
	}
	return nil, false
}

func matchField(value, cond interface{}) bool {
	switch c := cond.(type) {
	case primitive.Regex:
		return matchRegex(value, c)
	case bson.M:
		if isOperatorDoc(c) {
			for op, arg := range c {
				if !applyOperator(value, op, arg) {
					return false
				}
			}
			return true
		}
	}
	return matchEqual(value, cond)
}

func isOperatorDoc(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func applyOperator(value interface{}, op string, arg interface{}) bool {
	switch op {
	case "$ne":
		return !matchEqual(value, arg)
	case "$in":
		items, _ := arg.(bson.A)
		if list, ok := arg.([]interface{}); ok {
			items = list
		}
		for _, item := range items {
			if matchField(value, item) {
				return true
			}
		}
		return false
	case "$gt", "$gte", "$lt", "$lte":
		return anyElement(value, func(v interface{}) bool {
			cmp, ok := compare(v, arg)
			if !ok {
				return false
			}
			switch op {
			case "$gt":
				return cmp > 0
			case "$gte":
				return cmp >= 0
			case "$lt":
				return cmp < 0
			}
			return cmp <= 0
		})
	}
	return false
}

func anyElement(value interface{}, pred func(interface{}) bool) bool {
	if arr, ok := value.(bson.A); ok {
		for _, v := range arr {
			if anyElement(v, pred) {
				return true
			}
		}
		return false
	}
	return pred(value)
}

func matchEqual(value, want interface{}) bool {
	if arr, ok := value.(bson.A); ok {
		if _, wantArr := want.(bson.A); !wantArr {
			for _, v := range arr {
				if matchEqual(v, want) {
					return true
				}
			}
			return false
		}
	}
	a, b := normalize(value), normalize(want)
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	defer func() { _ = recover() }() // uncomparable values never match
	return a == b
}

func matchRegex(value interface{}, re primitive.Regex) bool {
	pattern := re.Pattern
	if strings.Contains(re.Options, "i") {
		pattern = "(?i)" + pattern
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return anyElement(value, func(v interface{}) bool {
		s, ok := v.(string)
		return ok && compiled.MatchString(s)
	})
}

// normalize maps BSON and Go representations of the same value onto one
// comparable form.
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case time.Time:
		return x.UTC()
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	}
	return v
}

// compare orders two scalar values of the same family. Missing and null
// values sort before everything else.
func compare(a, b interface{}) (int, bool) {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y), true
		}
	case string:
		if y, ok := b.(string); ok {
			return cmpOrdered(x, y), true
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), true
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmpOrdered(boolRank(x), boolRank(y)), true
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return cmpOrdered(x.Hex(), y.Hex()), true
		}
	}
	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrdered[V int | float64 | string](x, y V) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

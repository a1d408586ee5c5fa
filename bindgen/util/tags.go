package util

import (
	"go/ast"
	"reflect"
	"strconv"
	"strings"
)

// ParseCustomTag reads the tagName key of a struct field tag. The name is
// the part before the first comma; "-" means skip the field.
func ParseCustomTag(tag *ast.BasicLit, tagName string) (name string, skip bool) {
	if tag == nil {
		return "", false
	}

	tagValue, err := strconv.Unquote(tag.Value)
	if err != nil {
		return "", false
	}
	customTag, ok := reflect.StructTag(tagValue).Lookup(tagName)
	if !ok || customTag == "" {
		return "", false
	}
	if customTag == "-" {
		return "", true
	}

	name, _, _ = strings.Cut(customTag, ",")
	return name, false
}

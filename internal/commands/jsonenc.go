package commands

import (
	"encoding/base64"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/quill/internal/value"
)

// pathKeyEscaper escapes the characters sjson's path syntax treats
// specially, so a Record column containing one splices in as a literal key
// instead of being read as a path separator/wildcard.
var pathKeyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)

// toJSON renders v as a JSON document, building records and lists
// incrementally with sjson (which preserves the insertion order Record
// requires); scalar leaves are rendered by scalarJSON.
func toJSON(v value.Value) (string, error) {
	switch t := v.(type) {
	case value.Record:
		doc := "{}"
		for i, col := range t.Columns {
			child, err := toJSON(t.Values[i])
			if err != nil {
				return "", err
			}
			doc, err = sjson.SetRaw(doc, pathKeyEscaper.Replace(col), child)
			if err != nil {
				return "", err
			}
		}
		return doc, nil

	case value.List:
		doc := "[]"
		for _, item := range t.Items {
			child, err := toJSON(item)
			if err != nil {
				return "", err
			}
			var err2 error
			doc, err2 = sjson.SetRaw(doc, "-1", child)
			if err2 != nil {
				return "", err2
			}
		}
		return doc, nil

	default:
		return scalarJSON(v)
	}
}

// scalarJSON wraps a non-container value through sjson.Set (which handles
// native-type marshaling) then peels the wrapper back off with gjson.
func scalarJSON(v value.Value) (string, error) {
	native, err := nativeScalar(v)
	if err != nil {
		return "", err
	}
	wrapped, err := sjson.Set("", "v", native)
	if err != nil {
		return "", err
	}
	return gjson.Get(wrapped, "v").Raw, nil
}

func nativeScalar(v value.Value) (any, error) {
	switch t := v.(type) {
	case value.Nothing:
		return nil, nil
	case value.Bool:
		return t.Val, nil
	case value.Int:
		return t.Val, nil
	case value.Float:
		return t.Val, nil
	case value.String:
		return t.Val, nil
	case value.Filesize:
		return t.Bytes, nil
	case value.Duration:
		return t.Nanos, nil
	case value.Date:
		return t.UnixNanos, nil
	case value.Binary:
		return base64.StdEncoding.EncodeToString(t.Val), nil
	default:
		// Closure/Block/Range/CellPath/Error have no JSON-native shape;
		// fall back to the same Display() every other pipeline-stringify
		// path uses.
		return v.Display(), nil
	}
}

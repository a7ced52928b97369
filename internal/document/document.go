// Package document decodes input documents into the generic trees the
// schema validator consumes.
//
// JSON, YAML and TOML inputs are supported. Every format is normalized to
// the same shape: objects are map[string]any, arrays are []any and every
// number is a json.Number, so integer and range constraints are checked
// against the literal the author wrote.
package document

import (
	"bytes"
	stdjson "encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/specval/internal/errors"
	"github.com/thoreinstein/specval/pkg/fileutil"
)

// Format identifies an input encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Stdin is the path that reads from standard input.
const Stdin = "-"

// ErrEmptyDocument is returned when the input holds no value.
var ErrEmptyDocument = errors.New("empty document")

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML}
}

// ParseFormat maps a user supplied name ("json", "yml", ...) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", errors.Wrapf(errors.ErrUnknownFormat, "%q", s)
	}
}

// FormatFromPath infers the format from the file extension.
// Stdin and files without an extension are JSON.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if path == Stdin || ext == "" {
		return FormatJSON, nil
	}
	return ParseFormat(ext)
}

// ReadFile reads and decodes the document at path. "-" reads stdin as JSON.
func ReadFile(path string) (any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var data []byte
	if path == Stdin {
		data, err = fileutil.ReadAllWithLimit(os.Stdin)
	} else {
		data, err = fileutil.ReadFileWithLimit(path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	doc, err := Unmarshal(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return doc, nil
}

// Decode reads all of r and decodes it as format.
func Decode(r io.Reader, format Format) (any, error) {
	data, err := fileutil.ReadAllWithLimit(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, format)
}

// Unmarshal decodes data as format and normalizes the result.
func Unmarshal(data []byte, format Format) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		return decodeTOML(data)
	default:
		return nil, errors.Wrapf(errors.ErrUnknownFormat, "%q", string(format))
	}
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "parsing JSON")
	}
	if dec.More() {
		return nil, errors.New("parsing JSON: unexpected data after top-level value")
	}
	return doc, nil
}

func decodeYAML(data []byte) (any, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing YAML")
	}
	if raw == nil {
		return nil, ErrEmptyDocument
	}
	return normalize(raw, "")
}

func decodeTOML(data []byte) (any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing TOML")
	}
	return normalize(raw, "")
}

// normalize rewrites decoder-specific values into the JSON data model.
// at is the JSON pointer of v, used in error messages.
func normalize(v any, at string) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, stdjson.Number:
		return t, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			n, err := normalize(e, at+"/"+k)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			key, ok := k.(string)
			if !ok {
				return nil, errors.Newf("non-string key %v at %s", k, displayPointer(at))
			}
			n, err := normalize(e, at+"/"+key)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := normalize(e, at+"/"+strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return stdjson.Number(strconv.Itoa(t)), nil
	case int64:
		return stdjson.Number(strconv.FormatInt(t, 10)), nil
	case uint64:
		return stdjson.Number(strconv.FormatUint(t, 10)), nil
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return nil, errors.Newf("non-finite number %v at %s", t, displayPointer(at))
		}
		return stdjson.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		return t.(interface{ String() string }).String(), nil
	default:
		return nil, errors.Newf("unsupported value of type %T at %s", v, displayPointer(at))
	}
}

func displayPointer(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

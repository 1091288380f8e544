package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"
)

const (
	keyWidth   = 40
	indentStep = 2
)

// Formatter renders API values as indented key/value listings, or as
// key|path=value lines in grep mode.
type Formatter struct {
	out  *termenv.Output
	grep bool
}

// NewFormatter returns a formatter writing to w. Colours are only emitted
// when w is a terminal.
func NewFormatter(w io.Writer, grep bool) *Formatter {
	return &Formatter{out: termenv.NewOutput(w), grep: grep}
}

// Print renders any JSON-encodable value.
func (f *Formatter) Print(v any) error {
	generic, err := normalize(v)
	if err != nil {
		return err
	}
	return f.value(nil, generic, 0)
}

// Section renders v under a bold title, or prefixed by title in grep mode.
func (f *Formatter) Section(title string, v any) error {
	generic, err := normalize(v)
	if err != nil {
		return err
	}
	if f.grep {
		return f.value([]string{title}, generic, 0)
	}
	if _, err := fmt.Fprintln(f.out, f.bold(title)); err != nil {
		return err
	}
	return f.value(nil, generic, indentStep)
}

// Line writes a plain line of text.
func (f *Formatter) Line(format string, args ...any) error {
	_, err := fmt.Fprintf(f.out, format+"\n", args...)
	return err
}

// Warn writes a highlighted line.
func (f *Formatter) Warn(format string, args ...any) error {
	msg := f.out.String(fmt.Sprintf(format, args...)).Foreground(f.out.Color("3")).Bold()
	_, err := fmt.Fprintln(f.out, msg)
	return err
}

func (f *Formatter) value(path []string, v any, indent int) error {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return f.scalar(path, nil, indent)
		}
		return f.object(path, val, indent)
	case []any:
		if len(path) == 0 || hasNested(val) {
			return f.array(path, val, indent)
		}
		return f.scalar(path, joinScalars(val), indent)
	default:
		return f.scalar(path, val, indent)
	}
}

func (f *Formatter) object(path []string, obj map[string]any, indent int) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		child := appendPath(path, k)
		v := obj[k]
		if !f.grep && isNested(v) {
			if _, err := fmt.Fprintf(f.out, "%s%s\n", strings.Repeat(" ", indent), f.bold(k)); err != nil {
				return err
			}
			if err := f.value(child, v, indent+indentStep); err != nil {
				return err
			}
			continue
		}
		if err := f.value(child, v, indent); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) array(path []string, arr []any, indent int) error {
	for i, item := range arr {
		if isNested(item) {
			if err := f.value(appendPath(path, fmt.Sprint(i)), item, indent); err != nil {
				return err
			}
			continue
		}
		if f.grep && len(path) > 0 {
			if _, err := fmt.Fprintf(f.out, "%s=%s\n", strings.Join(path, "|"), f.render(item)); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(f.out, "%s%s\n", strings.Repeat(" ", indent), f.render(item)); err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) scalar(path []string, v any, indent int) error {
	var err error
	switch {
	case len(path) == 0:
		_, err = fmt.Fprintf(f.out, "%s%s\n", strings.Repeat(" ", indent), f.render(v))
	case f.grep:
		_, err = fmt.Fprintf(f.out, "%s=%s\n", strings.Join(path, "|"), f.render(v))
	default:
		width := max(keyWidth-indent, 1)
		key := path[len(path)-1]
		_, err = fmt.Fprintf(f.out, "%s%-*s %s\n", strings.Repeat(" ", indent), width, key, f.render(v))
	}
	return err
}

// render formats a scalar. Empty values are shown as "-".
func (f *Formatter) render(v any) string {
	switch val := v.(type) {
	case bool:
		if f.grep {
			return strings.ToUpper(fmt.Sprint(val))
		}
		if val {
			return f.out.String("TRUE").Foreground(f.out.Color("2")).Bold().String()
		}
		return f.out.String("FALSE").Foreground(f.out.Color("1")).Bold().String()
	case nil:
		return "-"
	case string:
		if val == "" || val == "0" {
			return "-"
		}
		return val
	case json.Number:
		if val.String() == "0" {
			return "-"
		}
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func (f *Formatter) bold(s string) string {
	if f.grep {
		return s
	}
	return f.out.String(s).Foreground(f.out.Color("15")).Bold().String()
}

// normalize turns v into the generic JSON representation, keeping numbers
// as written.
func normalize(v any) (any, error) {
	var raw []byte
	switch val := v.(type) {
	case json.RawMessage:
		raw = val
	case []byte:
		raw = val
	default:
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return nil, fmt.Errorf("encode output: %w", err)
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return out, nil
}

func isNested(v any) bool {
	switch val := v.(type) {
	case map[string]any:
		return len(val) > 0
	case []any:
		return hasNested(val)
	}
	return false
}

func hasNested(arr []any) bool {
	for _, item := range arr {
		if _, ok := item.(map[string]any); ok {
			return true
		}
		if _, ok := item.([]any); ok {
			return true
		}
	}
	return false
}

func joinScalars(arr []any) any {
	if len(arr) == 0 {
		return nil
	}
	parts := make([]string, len(arr))
	for i, item := range arr {
		parts[i] = fmt.Sprint(item)
	}
	return strings.Join(parts, ", ")
}

func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}

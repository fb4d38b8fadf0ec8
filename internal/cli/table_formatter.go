package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxCellWidth = 80

// Columns shown first, in this order, when they are present.
var preferredColumns = []string{
	"id", "name", "type", "transport", "state", "status", "ok", "available",
	"enabled", "isBuiltin", "time", "stream", "line", "target", "command", "url", "endpoint",
}

// Columns left out of array tables; they are visible through get or json output.
var hiddenColumns = map[string]bool{
	"args":        true,
	"env":         true,
	"description": true,
	"createdAt":   true,
	"updatedAt":   true,
	"builtinKind": true,
}

// Keys whose array value is the payload even when empty.
var wrapperKeys = map[string]bool{"servers": true, "results": true}

// TableFormatter renders decoded JSON values as tables.
type TableFormatter struct {
	out io.Writer
}

// NewTableFormatter returns a formatter that writes to out.
func NewTableFormatter(out io.Writer) *TableFormatter {
	return &TableFormatter{out: out}
}

// FormatData picks a layout from the shape of data.
func (f *TableFormatter) FormatData(data any) error {
	switch d := data.(type) {
	case map[string]any:
		return f.formatObject(d)
	case []any:
		return f.formatArray(d)
	default:
		_, err := fmt.Fprintf(f.out, "%v\n", data)
		return err
	}
}

func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) formatObject(data map[string]any) error {
	if len(data) == 0 {
		_, err := fmt.Fprintf(f.out, "%s\n", text.FgYellow.Sprint("No items found"))
		return err
	}
	if isConnectionTable(data) {
		return f.formatConnectionTable(data)
	}

	// Wrapper objects such as {"servers": [...], "settings": {...}} or
	// {"ready": true, "results": [...]}: the array becomes the table and the
	// remaining fields are printed below it.
	if key, items, ok := singleArrayField(data); ok {
		if err := f.formatArray(items); err != nil {
			return err
		}
		return f.formatFooter(data, key)
	}

	return f.formatKeyValue(data)
}

func (f *TableFormatter) formatKeyValue(data map[string]any) error {
	t := f.createTable()
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	for _, key := range orderedKeys(data) {
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(key), formatCell(key, data[key])})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) formatArray(items []any) error {
	if len(items) == 0 {
		_, err := fmt.Fprintf(f.out, "%s\n", text.FgYellow.Sprint("No items found"))
		return err
	}

	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return f.formatList(items)
		}
		objects = append(objects, obj)
	}

	columns := columnsFor(objects)
	t := f.createTable()
	header := make(table.Row, len(columns))
	for i, c := range columns {
		header[i] = text.FgHiCyan.Sprint(strings.ToUpper(c))
	}
	t.AppendHeader(header)
	for _, obj := range objects {
		row := make(table.Row, len(columns))
		for i, c := range columns {
			row[i] = formatCell(c, obj[c])
		}
		t.AppendRow(row)
	}
	t.Render()

	_, err := fmt.Fprintf(f.out, "%s %s\n", text.FgHiBlue.Sprint("Total:"), text.FgHiWhite.Sprint(len(objects)))
	return err
}

func (f *TableFormatter) formatList(items []any) error {
	for i, item := range items {
		if _, err := fmt.Fprintf(f.out, "  %d. %v\n", i+1, item); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFormatter) formatConnectionTable(data map[string]any) error {
	if len(data) == 0 {
		_, err := fmt.Fprintf(f.out, "%s\n", text.FgYellow.Sprint("No enabled servers"))
		return err
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ID"),
		text.FgHiCyan.Sprint("TYPE"),
		text.FgHiCyan.Sprint("TARGET"),
	})
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		d := data[id].(map[string]any)
		target, _ := d["url"].(string)
		if target == "" {
			target = strings.TrimSpace(fmt.Sprintf("%v %s", d["command"], summarize(d["args"])))
		}
		t.AppendRow(table.Row{id, d["type"], truncate(target)})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) formatFooter(data map[string]any, skip string) error {
	for _, key := range orderedKeys(data) {
		if key == skip {
			continue
		}
		value := data[key]
		if nested, ok := value.(map[string]any); ok {
			parts := make([]string, 0, len(nested))
			for _, k := range orderedKeys(nested) {
				parts = append(parts, fmt.Sprintf("%s=%v", k, nested[k]))
			}
			value = strings.Join(parts, " ")
		}
		if _, err := fmt.Fprintf(f.out, "%s %s\n", text.FgHiBlue.Sprint(key+":"), formatCell(key, value)); err != nil {
			return err
		}
	}
	return nil
}

// isConnectionTable reports whether every value is a transport descriptor.
func isConnectionTable(data map[string]any) bool {
	if len(data) == 0 {
		return false
	}
	for _, v := range data {
		obj, ok := v.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := obj["type"].(string); !ok {
			return false
		}
	}
	return true
}

func singleArrayField(data map[string]any) (string, []any, bool) {
	var (
		key   string
		items []any
		found int
	)
	for k, v := range data {
		arr, ok := v.([]any)
		if !ok {
			continue
		}
		if (len(arr) == 0 && wrapperKeys[k]) || (len(arr) > 0 && allObjects(arr)) {
			key, items = k, arr
			found++
		}
	}
	return key, items, found == 1
}

func allObjects(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func columnsFor(objects []map[string]any) []string {
	seen := map[string]bool{}
	for _, obj := range objects {
		for k := range obj {
			seen[k] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, c := range preferredColumns {
		if seen[c] {
			columns = append(columns, c)
			delete(seen, c)
		}
	}
	var rest []string
	for c := range seen {
		if !hiddenColumns[c] {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func orderedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatCell(key string, value any) string {
	switch v := value.(type) {
	case nil:
		return text.FgHiBlack.Sprint("-")
	case bool:
		if v {
			return text.FgGreen.Sprint("yes")
		}
		return text.FgRed.Sprint("no")
	case string:
		if key == "state" || key == "status" {
			return stateColor(v).Sprint(v)
		}
		if v == "" {
			return text.FgHiBlack.Sprint("-")
		}
		return truncate(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return truncate(summarize(v))
	}
}

func stateColor(state string) text.Color {
	switch state {
	case "running":
		return text.FgGreen
	case "starting":
		return text.FgYellow
	case "error":
		return text.FgRed
	default:
		return text.FgHiBlack
	}
}

func summarize(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, " ")
	case map[string]any:
		parts := make([]string, 0, len(v))
		for _, k := range orderedKeys(v) {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v[k]))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func truncate(s string) string {
	if len(s) > maxCellWidth {
		return s[:maxCellWidth-3] + "..."
	}
	return s
}

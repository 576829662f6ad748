package wiki

import (
	"encoding/json"
	"math"
	"strconv"
)

// TitleURLSeparator joins the title and URL of an exturlusage item into one
// string. It is ASCII unit separator, a value that cannot occur in page
// titles or URLs, so downstream grouping can split the pair back apart with
// strings.Cut. It must never reach user-visible output unsplit.
const TitleURLSeparator = "\x1f"

// listPage is one decoded page of a paginated list response.
type listPage struct {
	items     []string
	cursor    string
	hasCursor bool
}

// decodeListPage turns one raw JSON envelope into a page of items plus the
// continuation cursor, or the server's reported failure. It is independent
// of which list operation produced the envelope; the descriptor supplies
// the operation's naming conventions.
func decodeListPage(resp map[string]any, op *Operation) (listPage, error) {
	if apiErr := apiErrorFrom(resp); apiErr != nil {
		return listPage{}, apiErr
	}

	var page listPage

	if cont := getMap(resp["continue"]); cont != nil {
		if raw, ok := cont[op.continueParam()]; ok {
			cursor, err := normalizeCursor(raw)
			if err != nil {
				return listPage{}, err
			}
			page.cursor = cursor
			page.hasCursor = true
		}
	}

	// A missing query or items field is a legitimate empty page; the server
	// omits query.<op> when there is nothing to report while continue may
	// still be present.
	query := getMap(resp["query"])
	if query == nil {
		return page, nil
	}

	container := query[op.Name]
	if op.NestedResults {
		if inner := getMap(container); inner != nil {
			container = inner["results"]
		} else {
			container = nil
		}
	}

	switch c := container.(type) {
	case []any:
		for _, it := range c {
			if item, ok := op.extractItem(getMap(it)); ok {
				page.items = append(page.items, item)
			}
		}
	case map[string]any:
		// Keyed by opaque numeric IDs; key order carries no meaning.
		for _, it := range c {
			if item, ok := op.extractItem(getMap(it)); ok {
				page.items = append(page.items, item)
			}
		}
	case nil:
		// zero items this page
	default:
		return listPage{}, &DecodeError{Summary: "items field for " + op.Name + " is neither object nor array"}
	}

	return page, nil
}

// normalizeCursor converts a continuation value to its canonical string
// form: strings pass through, integers become their decimal form, floats
// their shortest round-trippable decimal form. The result is echoed back
// verbatim on the next request; the client never interprets its content.
func normalizeCursor(v any) (string, error) {
	switch n := v.(type) {
	case string:
		return n, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		if f, err := n.Float64(); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
		return "", &DecodeError{Summary: "continuation value " + n.String() + " is not a representable number"}
	case float64:
		// Envelopes decoded without UseNumber, e.g. hand-built in tests.
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return strconv.FormatInt(int64(n), 10), nil
		}
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	default:
		return "", &DecodeError{Summary: "continuation value is neither string nor number"}
	}
}

// apiErrorFrom extracts an explicit error envelope, accepting both the
// modern errors array (errorformat=plaintext) and the legacy single error
// object.
func apiErrorFrom(resp map[string]any) *APIError {
	if errs := getSlice(resp["errors"]); len(errs) > 0 {
		if m := getMap(errs[0]); m != nil {
			desc := getString(m["text"])
			if desc == "" {
				desc = getString(m["description"])
			}
			if desc == "" {
				desc = getString(m["info"])
			}
			return &APIError{Code: getString(m["code"]), Description: desc}
		}
	}
	if m := getMap(resp["error"]); m != nil {
		desc := getString(m["info"])
		if desc == "" {
			desc = getString(m["text"])
		}
		return &APIError{Code: getString(m["code"]), Description: desc}
	}
	return nil
}

// JSON envelope accessors. The API's envelopes are too irregular for
// struct-tag decoding; these keep the field walks readable.

func getMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func getSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func getString(v any) string {
	s, _ := v.(string)
	return s
}

func getInt(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case float64:
		return int(n)
	default:
		return 0
	}
}

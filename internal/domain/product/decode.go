package product

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/recodex/internal/domain/number"
)

// Number is a float that also decodes from numeric and decorated strings.
type Number float64

// UnmarshalJSON accepts numbers, strings ("1.299,90 TL") and null.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "" || s == "null":
		*n = 0
	case s[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("decode number: %w", err)
		}
		*n = Number(number.ParseString(str))
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(f)
	}
	return nil
}

// Count is a non-negative integer that also decodes from strings like "1.234 reviews".
type Count int

// UnmarshalJSON accepts integers, floats, strings and null.
func (c *Count) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "" || s == "null":
		*c = 0
	case s[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("decode count: %w", err)
		}
		*c = Count(number.ParseInt(str))
	default:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			*c = 0
			return nil
		}
		*c = Count(int(f))
	}
	return nil
}

// TextList is a list of strings that tolerates a single string or mixed item types.
type TextList []string

// UnmarshalJSON accepts an array of any JSON values, a single string, or null.
func (t *TextList) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*t = nil
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("decode text list: %w", err)
		}
		*t = TextList{str}
		return nil
	}
	var items []any
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("decode text list: %w", err)
	}
	out := make(TextList, 0, len(items))
	for _, it := range items {
		if str := textOf(it); str != "" {
			out = append(out, str)
		}
	}
	*t = out
	return nil
}

// Features maps free-form attribute names to their values.
type Features map[string]string

// UnmarshalJSON accepts an object with values of any JSON type.
func (f *Features) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = nil
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode features: %w", err)
	}
	out := make(Features, len(m))
	for k, v := range m {
		out[k] = textOf(v)
	}
	*f = out
	return nil
}

// UnmarshalJSON accepts a price object ({"current": ...}) or a bare value.
func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*p = Price{}
		return nil
	}
	if s[0] != '{' {
		return p.Current.UnmarshalJSON(b)
	}
	var raw struct {
		Current Number `json:"current"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode price: %w", err)
	}
	p.Current = raw.Current
	return nil
}

// UnmarshalJSON decodes a product, accepting "ratingCount" as an alias of "rating_count".
func (p *Product) UnmarshalJSON(b []byte) error {
	type plain Product
	var raw struct {
		plain
		RatingCountAlt Count `json:"ratingCount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode product: %w", err)
	}
	*p = Product(raw.plain)
	if p.RatingCount == 0 {
		p.RatingCount = raw.RatingCountAlt
	}
	return nil
}

// textOf renders a decoded JSON value as text. Review objects keep their text body.
func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case map[string]any:
		for _, k := range []string{"text", "comment", "content", "url", "src"} {
			if s, ok := x[k].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		enc, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(enc)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

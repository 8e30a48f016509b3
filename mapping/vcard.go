// ABOUTME: Small helpers over go-vcard fields shared by both mapping directions
// ABOUTME: TYPE/PREF parameter inspection plus category and photo extraction
package mapping

import (
	"encoding/base64"
	"strings"

	"github.com/emersion/go-vcard"
)

// CardVersion is written on every exported card.
const CardVersion = "3.0"

const (
	paramEncoding = "ENCODING"
	paramValue    = "VALUE"
)

// fieldTypes returns the upper-cased TYPE tokens of a property.
func fieldTypes(f *vcard.Field) []string {
	if f == nil || f.Params == nil {
		return nil
	}
	var out []string
	for _, v := range f.Params[vcard.ParamType] {
		for _, tok := range strings.Split(v, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				out = append(out, strings.ToUpper(tok))
			}
		}
	}
	return out
}

// typeContains reports whether any TYPE token contains sub, case-insensitively.
func typeContains(f *vcard.Field, sub string) bool {
	sub = strings.ToUpper(sub)
	for _, t := range fieldTypes(f) {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

// isPreferred detects both the 3.0 TYPE=pref and the 4.0 PREF= forms.
func isPreferred(f *vcard.Field) bool {
	if f == nil {
		return false
	}
	for _, t := range fieldTypes(f) {
		if t == "PREF" {
			return true
		}
	}
	return f.Params != nil && f.Params.Get(vcard.ParamPreferred) != ""
}

func newTypedField(value string, types ...string) *vcard.Field {
	f := &vcard.Field{Value: value, Params: vcard.Params{}}
	for _, t := range types {
		if t != "" {
			f.Params.Add(vcard.ParamType, t)
		}
	}
	return f
}

// Categories returns the CATEGORIES of a card, trimmed and without blanks.
func Categories(card vcard.Card) []string {
	var out []string
	for _, c := range card.Categories() {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Photo returns the embedded photo bytes or the photo URI of a card.
// Both are empty when the card has no usable PHOTO.
func Photo(card vcard.Card) (data []byte, uri string) {
	f := card.Get(vcard.FieldPhoto)
	if f == nil || strings.TrimSpace(f.Value) == "" {
		return nil, ""
	}
	value := strings.TrimSpace(f.Value)

	if strings.HasPrefix(value, "data:") {
		if i := strings.Index(value, "base64,"); i >= 0 {
			return decodeBase64(value[i+len("base64,"):]), ""
		}
		return nil, ""
	}

	enc := strings.ToUpper(f.Params.Get(paramEncoding))
	if enc == "B" || enc == "BASE64" {
		return decodeBase64(value), ""
	}
	if strings.EqualFold(f.Params.Get(paramValue), "uri") || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return nil, value
	}
	// Unlabelled 2.1 exports still carry base64.
	return decodeBase64(value), ""
}

func decodeBase64(s string) []byte {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil
		}
	}
	return data
}

// ABOUTME: Character set handling for card files
// ABOUTME: Encodes exports into a named charset and decodes legacy Windows-1252 imports
package transfer

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/harperreed/gcard/models"
)

// DefaultCharset is used when no charset is configured.
const DefaultCharset = "UTF-8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LookupCharset resolves a charset label such as "ISO-8859-1" or "windows-1252".
func LookupCharset(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultCharset
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, models.NewError(models.CodeValidation, "lookup charset", fmt.Sprintf("unknown charset %q", name))
	}
	return enc, nil
}

func isUTF8(enc encoding.Encoding) bool {
	name, err := htmlindex.Name(enc)
	return err == nil && name == "utf-8"
}

// charsetWriter wraps w so that text written to it is encoded in charset.
// Characters the charset cannot represent are replaced. The returned close
// func flushes the encoder and must be called once writing is done.
func charsetWriter(w io.Writer, charset string) (io.Writer, func() error, error) {
	enc, err := LookupCharset(charset)
	if err != nil {
		return nil, nil, err
	}
	if isUTF8(enc) {
		return w, func() error { return nil }, nil
	}
	tw := transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder()))
	return tw, tw.Close, nil
}

// decodeInput returns card data as UTF-8. Input that is not valid UTF-8 is
// read as Windows-1252, the charset most legacy exporters produce.
func decodeInput(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder()))
	if err != nil {
		return nil, models.WrapError(models.CodeParse, "decode card file", err)
	}
	return out, nil
}

package xmlcodec

import (
	"encoding/base64"
	"encoding/xml"
	"strings"
)

// encodeChunkSize bounds peak memory while encoding large payloads.
const encodeChunkSize = 32 * 1024

// ToBase64 encodes bytes with the standard alphabet, feeding the encoder in
// fixed-size chunks instead of materializing one giant intermediate buffer.
func ToBase64(data []byte) string {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(data)))

	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	for off := 0; off < len(data); off += encodeChunkSize {
		end := off + encodeChunkSize
		if end > len(data) {
			end = len(data)
		}
		// strings.Builder never returns a write error.
		_, _ = enc.Write(data[off:end])
	}
	_ = enc.Close()

	return sb.String()
}

// FromBase64 decodes a standard-alphabet base64 string. Surrounding
// whitespace, common in hand-edited or pretty-printed parts, is ignored.
func FromBase64(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(text))
}

// Attribute is a name/value pair rendered on a wrapped fragment element.
type Attribute struct {
	Name  string
	Value string
}

// WrapFragment builds a minimal well-formed XML fragment with a declaration:
//
//	<?xml version="1.0" encoding="UTF-8"?><tag attr="...">body</tag>
//
// Attribute values are escaped; the body is expected to be base64 text and is
// written verbatim.
func WrapFragment(tag string, attrs []Attribute, base64Body string) string {
	var sb strings.Builder
	sb.Grow(len(base64Body) + 128)

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteByte('<')
	sb.WriteString(tag)
	for _, attr := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(attr.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(attr.Value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	sb.WriteString(base64Body)
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')

	return sb.String()
}

func escapeAttr(value string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(value)
}

// ExtractBody returns the text content of the element named tag, trying each
// extraction strategy in order until one yields a non-empty result. Parser
// quirks in host-produced XML must never fail the caller, so the parse
// strategy falls back to a raw substring scan.
func ExtractBody(xmlText, tag string) (string, bool) {
	for _, extract := range []func(string, string) (string, bool){
		extractByParsing,
		extractBySubstring,
	} {
		if body, ok := extract(xmlText, tag); ok {
			return body, true
		}
	}
	return "", false
}

// extractByParsing walks the token stream and collects character data inside
// the first element whose local name matches tag. If no exact match exists it
// falls back to the text content of the document root.
func extractByParsing(xmlText, tag string) (string, bool) {
	if body, ok := parseElementText(xmlText, tag); ok {
		return body, true
	}
	return parseElementText(xmlText, "")
}

// parseElementText reads the text content of the named element, or of the
// root element when name is empty.
func parseElementText(xmlText, name string) (string, bool) {
	dec := xml.NewDecoder(strings.NewReader(xmlText))
	var (
		sb    strings.Builder
		depth int
		found bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !found && (name == "" || t.Name.Local == name) {
				found = true
				depth = 0
				continue
			}
			if found {
				depth++
			}
		case xml.EndElement:
			if !found {
				continue
			}
			if depth == 0 {
				if body := strings.TrimSpace(sb.String()); body != "" {
					return body, true
				}
				return "", false
			}
			depth--
		case xml.CharData:
			if found && depth == 0 {
				sb.Write(t)
			}
		}
	}
	if found {
		if body := strings.TrimSpace(sb.String()); body != "" {
			return body, true
		}
	}
	return "", false
}

// extractBySubstring scans for <tag ...>body</tag> without parsing.
func extractBySubstring(xmlText, tag string) (string, bool) {
	open := strings.Index(xmlText, "<"+tag)
	if open < 0 {
		return "", false
	}
	bodyStart := strings.IndexByte(xmlText[open:], '>')
	if bodyStart < 0 {
		return "", false
	}
	bodyStart += open + 1

	closing := "</" + tag + ">"
	bodyEnd := strings.Index(xmlText[bodyStart:], closing)
	if bodyEnd < 0 {
		return "", false
	}

	body := strings.TrimSpace(xmlText[bodyStart : bodyStart+bodyEnd])
	if body == "" {
		return "", false
	}
	return body, true
}

// TrySalvageDoubleEncoded recovers fragments that were stored base64-encoded
// one extra time by historical writers. The input qualifies only when it
// contains no markup at all and its base64 decoding does.
func TrySalvageDoubleEncoded(text string) (string, bool) {
	if strings.ContainsRune(text, '<') {
		return "", false
	}
	decoded, err := FromBase64(text)
	if err != nil {
		return "", false
	}
	if !strings.ContainsRune(string(decoded), '<') {
		return "", false
	}
	return string(decoded), true
}

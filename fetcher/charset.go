package fetcher

import (
	"strings"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// minConfidence is the lowest detector confidence (0-100) trusted over the
// declared encoding.
const minConfidence = 50

// Decode converts a response body to UTF-8 text. The encoding is guessed
// from the bytes first; weak guesses fall back to the BOM, <meta> charset
// and Content-Type header.
func Decode(body []byte, contentType string) string {
	enc := detectEncoding(body, contentType)
	if enc == nil {
		return string(body)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}

func detectEncoding(body []byte, contentType string) encoding.Encoding {
	if len(body) == 0 {
		return nil
	}

	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err == nil && result.Confidence >= minConfidence {
		if enc := lookupEncoding(result.Charset); enc != nil {
			return enc
		}
	}

	enc, _, _ := charset.DetermineEncoding(body, contentType)
	return enc
}

// lookupEncoding maps a detector charset name such as "GB-18030" onto a
// WHATWG encoding.
func lookupEncoding(name string) encoding.Encoding {
	for _, candidate := range []string{name, strings.ReplaceAll(name, "-", "")} {
		if enc, err := htmlindex.Get(candidate); err == nil {
			return enc
		}
	}
	return nil
}

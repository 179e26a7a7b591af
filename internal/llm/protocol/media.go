package protocol

import (
	"fmt"
	"strings"
)

type imageData struct {
	MediaType string
	Data      string // base64 payload
}

// parseDataURI splits a data:[<media type>][;base64],<data> URI. Request
// building stays non-blocking, so remote image URLs are passed through to
// vendors that accept them instead of being fetched here.
func parseDataURI(uri string) (*imageData, error) {
	comma := strings.Index(uri, ",")
	if comma == -1 {
		return nil, fmt.Errorf("invalid data URI")
	}

	meta := uri[:comma]
	data := uri[comma+1:]

	mediaType := "text/plain"
	parts := strings.Split(meta, ";")
	if len(parts) > 0 && strings.HasPrefix(parts[0], "data:") && len(parts[0]) > 5 {
		mediaType = parts[0][5:]
	}

	isBase64 := false
	for _, p := range parts {
		if p == "base64" {
			isBase64 = true
			break
		}
	}
	if !isBase64 {
		return nil, fmt.Errorf("only base64 data URIs are supported for images")
	}

	return &imageData{MediaType: mediaType, Data: data}, nil
}

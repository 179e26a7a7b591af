package api

// ImageRequest is the normalized image-generation request. Vendors receive a
// field-for-field translation of this shape.
type ImageRequest struct {
	Model  string `json:"model" binding:"required"`
	Prompt string `json:"prompt" binding:"required"`

	Size           string `json:"size,omitempty"`    // e.g. "1024x1024"
	Quality        string `json:"quality,omitempty"` // e.g. "standard", "hd"
	N              int    `json:"n,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"` // "url" or "b64_json"
}

// GeneratedImage is one normalized image result. Exactly one of B64JSON or
// URL is set depending on what the vendor returned.
type GeneratedImage struct {
	B64JSON       *string `json:"b64_json,omitempty"`
	URL           *string `json:"url,omitempty"`
	MimeType      string  `json:"mime_type"`
	RevisedPrompt *string `json:"revised_prompt,omitempty"`
}

type ImageResponse struct {
	Created int64            `json:"created"`
	Data    []GeneratedImage `json:"data"`
}

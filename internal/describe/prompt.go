package describe

import (
	"fmt"

	"glbstats/internal/asset"
)

const instructions = `<instructions>
Based on the untextured thumbnail image and the technical specifications above, provide a concise, descriptive summary of this 3D asset. Include:

1. What the object appears to be (e.g., "industrial oil silo", "concrete rubble debris", "military AA gun")
2. Key visual characteristics (style, condition)
3. Any notable features or details visible in the thumbnail

These thumbnails show untextured models, so do not describe colors or surface textures.
Do not comment on the grey appearance since these models are untextured. Many details might also be lower resolution in these thumbnails, such as a potted plant which may appear grey with blocky leaves, while in-game they are rendered with greater detail.
Do not summarize the info in the json, this is already available. Only use the JSON data to help understand what the object is.
Do not include the level that it is available in.
Do not add any commentary that is not a description of the object.

Keep the description to 1-2 sentences, suitable for a game asset database.

Respond with ONLY the description text, no additional formatting or preamble.
</instructions>
`

// ContentPart is one element of a multi-part user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an http(s) or data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart returns a text content part.
func TextPart(s string) ContentPart {
	return ContentPart{Type: "text", Text: s}
}

// ImagePart returns an image content part.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// BuildPrompt renders the asset block and fixed instructions for r. Any
// existing description is left out.
func BuildPrompt(r asset.Record) (string, error) {
	data, err := asset.MarshalIndented(r.WithoutDescription())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<asset_data>\n%s\n</asset_data>\n\n%s", data, instructions), nil
}

func (ex Exemplar) context() (string, error) {
	data, err := asset.MarshalIndented(ex.Record.WithoutDescription())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("<example>\n<example_asset_data>\n%s\n</example_asset_data>\n\n<example_output>\n%s\n</example_output>\n</example>",
		data, ex.Description), nil
}

// Parts assembles the message for one asset: exemplar text and image,
// then the asset prompt and its thumbnail.
func (ex Exemplar) Parts(r asset.Record, thumbnailURL string) ([]ContentPart, error) {
	exampleText, err := ex.context()
	if err != nil {
		return nil, err
	}
	prompt, err := BuildPrompt(r)
	if err != nil {
		return nil, err
	}
	return []ContentPart{
		TextPart(exampleText),
		ImagePart(ex.ImageURL),
		TextPart("Now analyze this asset:"),
		TextPart(prompt),
		ImagePart(thumbnailURL),
	}, nil
}

package backend

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const searchByImagePath = "/matches/search-by-image"

// SearchByImage uploads an image and returns the visually similar found items.
func (c *Client) SearchByImage(ctx context.Context, filename, contentType string, data []byte) ([]VisualMatch, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("search by image: empty file")
	}
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	var payload SearchResponse
	req := c.request(ctx, nil, &payload)
	req.SetMultipartField("file", name, contentType, bytes.NewReader(data))
	if err := c.send(ctx, req, "POST", searchByImagePath); err != nil {
		return nil, err
	}
	if payload.Matches == nil {
		return []VisualMatch{}, nil
	}
	return payload.Matches, nil
}

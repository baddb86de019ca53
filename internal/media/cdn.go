package media

import (
	"fmt"
	"strings"
)

// CDN builds delivery URLs for uploaded assets. Cloudinary-style bases
// (ending in /upload) get an on-the-fly transform segment; flat bases
// serve the original and ignore the requested width.
type CDN struct {
	base       string
	transforms bool
}

func NewCDN(base string) *CDN {
	base = strings.TrimRight(base, "/")
	return &CDN{
		base:       base,
		transforms: strings.HasSuffix(base, "/upload"),
	}
}

// Deliver returns the URL serving the asset, limited to width pixels
// where the CDN supports transforms.
func (c *CDN) Deliver(assetPath string, width int) string {
	assetPath = strings.TrimLeft(assetPath, "/")
	if c.transforms && width > 0 {
		return fmt.Sprintf("%s/f_auto,q_auto,c_limit,w_%d/%s", c.base, width, assetPath)
	}
	return c.base + "/" + assetPath
}

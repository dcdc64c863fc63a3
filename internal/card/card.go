// Package card interprets generated SVG markup for display and download.
package card

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultHeight is the preview height when the markup declares none.
	DefaultHeight = 650

	// HeightMargin is added to a declared height so the card is not clipped.
	HeightMargin = 50

	// MIMEType is the content type of downloaded cards.
	MIMEType = "image/svg+xml"

	// CurrentFilename is the download name for the card currently on screen.
	CurrentFilename = "card.svg"
)

// heightAttr matches a quoted integer height attribute anywhere in the markup.
var heightAttr = regexp.MustCompile(`height="(\d+)"`)

// DisplayHeight returns the preview viewport height for markup: the first
// height="<digits>" attribute plus HeightMargin, or DefaultHeight when there
// is none or the digits do not fit an int.
func DisplayHeight(markup string) int {
	m := heightAttr.FindStringSubmatch(markup)
	if len(m) < 2 {
		return DefaultHeight
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h > maxHeight {
		return DefaultHeight
	}
	return h + HeightMargin
}

const maxHeight = int(^uint(0)>>1) - HeightMargin

// Filename returns the download name for a record created at timestamp.
// Colons are replaced so the name is valid on every filesystem.
func Filename(timestamp string) string {
	return "card_" + strings.ReplaceAll(timestamp, ":", "-") + ".svg"
}

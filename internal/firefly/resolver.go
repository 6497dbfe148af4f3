package firefly

import (
	"context"
	"fmt"

	"github.com/desertthunder/ffx/internal/shared"
)

// Resolve maps a school code to the portal's base URL by querying the app
// gateway directory.
//
// The directory responds with an XML document; the portal host is always the
// second text node. A document with fewer than three text nodes means the
// school code is unknown. Transport failures are surfaced as-is and are
// distinct from an unknown school.
func (c *Client) Resolve(ctx context.Context, schoolCode string) (string, error) {
	if schoolCode == "" {
		return "", fmt.Errorf("%w: empty school code", shared.ErrInvalidInput)
	}

	body, err := c.get(ctx, c.directoryURL+schoolCode, false)
	if err != nil {
		return "", fmt.Errorf("school directory lookup failed: %w", err)
	}

	nodes, err := xmlTextNodes(body)
	if err != nil {
		return "", fmt.Errorf("school directory response: %w", err)
	}

	if len(nodes) < 3 {
		return "", fmt.Errorf("%w: %q", shared.ErrSchoolNotFound, schoolCode)
	}

	return "https://" + nodes[1] + "/", nil
}

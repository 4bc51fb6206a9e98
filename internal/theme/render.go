package theme

import (
	"context"
	"fmt"
	"io"
)

// Sections are the atomic action hooks fired by Render, in order.
var Sections = []string{
	"before_html",
	"head",
	"before_header",
	"header",
	"after_header",
	"before_main",
	"entry",
	"after_main",
	"before_footer",
	"footer",
	"after_footer",
	"after_html",
}

// Render writes a page by firing each section's atomic action with w as
// the argument. Callbacks produce all of the output.
func (t *Theme) Render(ctx context.Context, w io.Writer) error {
	for _, section := range Sections {
		if _, err := t.hooks.DoAtomic(ctx, section, w); err != nil {
			return fmt.Errorf("rendering %s: %w", section, err)
		}
	}
	return nil
}

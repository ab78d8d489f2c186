// themekit - brand colour ramps, contrast checks and theme exports
//
// themekit derives 12-step colour ramps from brand colours, checks WCAG
// contrast and exports brand tokens for web and design tooling.
package main

import (
	"github.com/mymoto/themekit/internal/cli"
)

func main() {
	cli.Execute()
}

// Command jirabridge pushes commit references into Jira over the legacy
// SOAP service: it comments on every referenced issue and closes issues
// the commit message marks as fixed.
package main

import (
	"fmt"
	"os"

	"github.com/nhle/jirabridge/internal/theme"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, theme.ErrorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

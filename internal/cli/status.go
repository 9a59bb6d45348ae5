package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"telltales/internal/credentials"
)

// RenderCredentialStatus prints which credential fields are stored at path.
func RenderCredentialStatus(w io.Writer, path string, creds credentials.Credentials) {
	present := creds.Present()

	fmt.Fprintln(w, "Telldus Live credentials")
	fmt.Fprintf(w, "  File:                 %s\n", path)
	for _, field := range credentials.Fields() {
		state := text.FgYellow.Sprint("missing")
		if present[field] {
			state = text.FgGreen.Sprint("present")
		}
		fmt.Fprintf(w, "  %-21s %s\n", field+":", state)
	}

	switch {
	case !creds.HasKeys():
		fmt.Fprintf(w, "  Status:               %s\n", text.FgYellow.Sprint("Consumer keys missing"))
		fmt.Fprintln(w, "                        Run: telltales auth validate")
	case !creds.HasToken():
		fmt.Fprintf(w, "  Status:               %s\n", text.FgYellow.Sprint("Not authorized"))
		fmt.Fprintln(w, "                        Run: telltales auth validate")
	default:
		fmt.Fprintf(w, "  Status:               %s\n", text.FgGreen.Sprint("Token stored (not verified)"))
	}
}

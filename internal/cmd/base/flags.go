package base

import (
	"bytes"
	"flag"
	"fmt"
	"strings"
)

// FlagSet is a flag.FlagSet that can render its own help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet wraps f. Usage output is left to the command's Help.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.Usage = func() {}
	f.SetOutput(&bytes.Buffer{})
	return &FlagSet{FlagSet: f}
}

// Help returns the flag section of a command's help text.
func (f *FlagSet) Help() string {
	var out strings.Builder
	out.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&out, "\n  -%s", fl.Name)
		if fl.DefValue != "" {
			fmt.Fprintf(&out, "=%s", fl.DefValue)
		}
		fmt.Fprintf(&out, "\n      %s\n", fl.Usage)
	})

	return strings.TrimRight(out.String(), "\n")
}

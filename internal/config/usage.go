package config

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/agbru/critmass/internal/ui"
)

// setCustomUsage configures the flag set with a colored usage function.
func setCustomUsage(fs *pflag.FlagSet, programName string, out io.Writer) {
	fs.Usage = func() {
		// Respect NO_COLOR even before app initialization
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		fmt.Fprintf(out, "\n%sCritical Mass Calculator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Locates the mass where K(m) < t(m) switches from false to true.\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags]\n\n%sFlags:%s\n", t.Warning, t.Reset, programName, t.Warning, t.Reset)

		fs.VisitAll(func(f *pflag.Flag) {
			name, usage := pflag.UnquoteUsage(f)
			flagSig := "    --" + f.Name
			if f.Shorthand != "" {
				flagSig = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
			}
			if len(name) > 0 {
				flagSig += " " + name
			}

			fmt.Fprintf(out, "  %s%-28s%s %s", t.Primary, flagSig, t.Reset, usage)

			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Underline, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintf(out, "\nEvery flag can also be set through a %s<NAME> environment variable.\n\n", EnvPrefix)
	}
}

package gdprmask

import (
	"fmt"
	"runtime"
	"runtime/debug"

	semver "github.com/blang/semver/v4"
	"github.com/spf13/cobra"

	"github.com/redactyl/gdprmask/internal/report"
)

type versionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision,omitempty"`
	Go       string `json:"go"`
}

// buildVersion normalizes the version string and reads the VCS revision
// from build info when the binary was built from a checkout.
func buildVersion() versionInfo {
	vi := versionInfo{Version: version, Go: runtime.Version()}
	if v, err := semver.ParseTolerant(version); err == nil {
		vi.Version = v.String()
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				vi.Revision = s.Value
			}
		}
	}
	return vi
}

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the gdprmask version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vi := buildVersion()
			out := cmd.OutOrStdout()
			if flagJSON {
				return report.WriteJSON(out, vi, false)
			}
			if vi.Revision != "" {
				_, err := fmt.Fprintf(out, "gdprmask v%s (%s, %s)\n", vi.Version, vi.Revision, vi.Go)
				return err
			}
			_, err := fmt.Fprintf(out, "gdprmask v%s (%s)\n", vi.Version, vi.Go)
			return err
		},
	}
	rootCmd.AddCommand(cmd)
}

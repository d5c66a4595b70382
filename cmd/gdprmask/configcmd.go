package gdprmask

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/redactyl/gdprmask/internal/config"
	"github.com/redactyl/gdprmask/internal/report"
)

var (
	cfgOutput string
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .gdprmask.yml with the default settings",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the settings resolved from flags and config files",
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(cfgOutput, []byte(config.Template), 0o644); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

type resolvedConfig struct {
	Language      string   `json:"language" yaml:"language"`
	Descriptive   bool     `json:"descriptive" yaml:"descriptive"`
	PreserveTypes []string `json:"preserve_types" yaml:"preserve_types"`
	MaskChar      string   `json:"mask_char" yaml:"mask_char"`
	Detectors     []string `json:"detectors" yaml:"detectors"`
	NERBackend    string   `json:"ner_backend" yaml:"ner_backend"`
	Audit         bool     `json:"audit" yaml:"audit"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	e, err := buildEngine()
	if err != nil {
		return err
	}
	rc := resolvedConfig{
		Language:      string(req.Language),
		Descriptive:   req.Descriptive,
		PreserveTypes: req.PreserveTypes,
		MaskChar:      "*",
		Detectors:     []string{},
		NERBackend:    nerConfig().GetBackend(),
		Audit:         auditEnabled(),
	}
	if req.MaskChar != 0 {
		rc.MaskChar = string(req.MaskChar)
	}
	if rc.PreserveTypes == nil {
		rc.PreserveTypes = []string{}
	}
	for _, d := range e.Detectors() {
		rc.Detectors = append(rc.Detectors, string(d.Method()))
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		return report.WriteJSON(out, rc, !noColor(out))
	}
	b, err := yaml.Marshal(rc)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

package gdprmask

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/redactyl/gdprmask/internal/audit"
	"github.com/redactyl/gdprmask/internal/config"
	"github.com/redactyl/gdprmask/internal/detectors"
	"github.com/redactyl/gdprmask/internal/engine"
	"github.com/redactyl/gdprmask/internal/ner"
	"github.com/redactyl/gdprmask/internal/phone"
	"github.com/redactyl/gdprmask/internal/report"
	"github.com/redactyl/gdprmask/internal/types"
)

// request flags shared by anonymize and batch
var (
	flagDescriptive bool
	flagPreserve    string
	flagMaskChar    string
	flagDisable     string
)

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickList resolves a comma-separated CLI list against YAML lists.
func pickList(cli string, local, global []string) []string {
	if l := splitList(cli); len(l) > 0 {
		return l
	}
	if len(local) > 0 {
		return local
	}
	return global
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func resolveLanguage() (types.Language, error) {
	l := types.Language(strings.ToLower(pickString(flagLang, localCfg.Language, globalCfg.Language)))
	if l == "" {
		return engine.DefaultLanguage, nil
	}
	if !l.Supported() {
		return "", fmt.Errorf("unsupported language %q (supported: %s)", l, joinLanguages())
	}
	return l, nil
}

func joinLanguages() string {
	var ls []string
	for _, l := range types.Languages() {
		ls = append(ls, string(l))
	}
	return strings.Join(ls, ", ")
}

func resolveMaskChar() (rune, error) {
	s := pickString(flagMaskChar, localCfg.MaskChar, globalCfg.MaskChar)
	if s == "" {
		return 0, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("mask char must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// buildRequest resolves the per-call settings: CLI > local > global.
func buildRequest() (engine.Request, error) {
	lang, err := resolveLanguage()
	if err != nil {
		return engine.Request{}, err
	}
	mc, err := resolveMaskChar()
	if err != nil {
		return engine.Request{}, err
	}
	preserve := append([]string(nil), pickList(flagPreserve, localCfg.PreserveTypes, globalCfg.PreserveTypes)...)
	for i, p := range preserve {
		preserve[i] = strings.ToUpper(p)
	}
	return engine.Request{
		Language:      lang,
		PreserveTypes: preserve,
		Descriptive:   pickBool(flagDescriptive, localCfg.Descriptive, globalCfg.Descriptive),
		MaskChar:      mc,
	}, nil
}

func parseMethods(s string) ([]types.Method, error) {
	var out []types.Method
	for _, name := range splitList(s) {
		m, ok := types.ParseMethod(name)
		if !ok {
			return nil, fmt.Errorf("unknown detector %q (available: %s)", name, joinMethods())
		}
		out = append(out, m)
	}
	return out, nil
}

func joinMethods() string {
	var ms []string
	for _, m := range types.Methods() {
		ms = append(ms, string(m))
	}
	return strings.Join(ms, ", ")
}

func nerConfig() config.NERConfig {
	if localCfg.NER != nil {
		return localCfg.GetNERConfig()
	}
	return globalCfg.GetNERConfig()
}

func nerLoader(nc config.NERConfig) (ner.Loader, error) {
	switch nc.GetBackend() {
	case config.BackendGazetteer:
		return ner.GazetteerLoader, nil
	case config.BackendRemote:
		if nc.GetEndpoint() == "" {
			return nil, fmt.Errorf("ner.backend remote requires ner.endpoint")
		}
		timeout, err := nc.GetTimeout()
		if err != nil {
			return nil, err
		}
		var client *http.Client
		if timeout > 0 {
			client = &http.Client{Timeout: timeout}
		}
		return ner.NewRemote(nc.GetEndpoint(), client).Load, nil
	default:
		return nil, fmt.Errorf("unknown ner.backend %q", nc.GetBackend())
	}
}

// buildEngine wires the detectors from configuration and the --disable flag.
func buildEngine() (*engine.Engine, error) {
	nc := nerConfig()
	loader, err := nerLoader(nc)
	if err != nil {
		return nil, err
	}
	var regOpts []ner.RegistryOption
	if nc.IsSerialized() {
		regOpts = append(regOpts, ner.WithSerializedInference())
	}
	regions := append([]string(nil), phone.DefaultExtraRegions...)
	regions = append(regions, pickList("", localCfg.PhoneRegions, globalCfg.PhoneRegions)...)

	ds := detectors.New(ner.NewRegistry(loader, regOpts...), phone.NewLibFinder(regions...))
	disabled, err := parseMethods(pickString(flagDisable, localCfg.DisableDetectors, globalCfg.DisableDetectors))
	if err != nil {
		return nil, err
	}
	ds = detectors.Without(ds, disabled...)

	return engine.New(
		engine.WithDetectors(ds...),
		engine.WithThreads(pickInt(flagThreads, localCfg.Threads, globalCfg.Threads)),
		engine.WithFailureHook(func(f engine.DetectorFailure) {
			_, _ = fmt.Fprintf(os.Stderr, "warning: %v\n", &f)
		}),
	), nil
}

func noColor(w io.Writer) bool {
	return pickBool(flagNoColor, localCfg.NoColor, globalCfg.NoColor) || !report.IsTerminal(w)
}

func auditEnabled() bool {
	if flagNoAudit {
		return false
	}
	if localCfg.Audit != nil {
		return *localCfg.Audit
	}
	if globalCfg.Audit != nil {
		return *globalCfg.Audit
	}
	return true
}

// recordRun appends a PII-free summary of the run to the audit log. Failures
// to write are logged, never fatal.
func recordRun(command string, req engine.Request, results []types.Result, failed int, took time.Duration) {
	if !auditEnabled() {
		return
	}
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	rec := audit.CreateRunRecord(command, req.Language, results, failed, took, req.PreserveTypes)
	if err := audit.NewAuditLog(wd).LogRun(rec); err != nil {
		log.Warn().Err(err).Msg("audit record not written")
	}
}

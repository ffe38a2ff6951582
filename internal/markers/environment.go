package markers

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/quantmind-br/reqmerge/internal/utils"
)

// Environment maps marker variable names to their values
type Environment map[string]string

var variables = []string{
	"implementation_name",
	"implementation_version",
	"os_name",
	"platform_machine",
	"platform_python_implementation",
	"platform_release",
	"platform_system",
	"platform_version",
	"python_full_version",
	"python_version",
	"sys_platform",
	"extra",
}

var legacyVariables = map[string]string{
	"os.name":                        "os_name",
	"sys.platform":                   "sys_platform",
	"platform.version":               "platform_version",
	"platform.machine":               "platform_machine",
	"platform.python_implementation": "platform_python_implementation",
	"python_implementation":          "platform_python_implementation",
}

func canonicalVariable(name string) (string, bool) {
	if alias, ok := legacyVariables[name]; ok {
		return alias, true
	}
	for _, v := range variables {
		if v == name {
			return v, true
		}
	}
	return "", false
}

// DefaultEnvironment derives marker values from the Go runtime. Python
// version variables come from pythonVersion, which has no runtime source.
func DefaultEnvironment(pythonVersion string) Environment {
	fullVersion := pythonVersion
	if strings.Count(fullVersion, ".") == 1 {
		fullVersion += ".0"
	}

	osName := "posix"
	if runtime.GOOS == "windows" {
		osName = "nt"
	}

	return Environment{
		"implementation_name":            "cpython",
		"implementation_version":         fullVersion,
		"os_name":                        osName,
		"platform_machine":               machine(runtime.GOOS, runtime.GOARCH),
		"platform_python_implementation": "CPython",
		"platform_release":               "",
		"platform_system":                system(runtime.GOOS),
		"platform_version":               "",
		"python_full_version":            fullVersion,
		"python_version":                 pythonVersion,
		"sys_platform":                   sysPlatform(runtime.GOOS),
		"extra":                          "",
	}
}

func sysPlatform(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	case "android":
		return "linux"
	}
	return goos
}

func system(goos string) string {
	switch goos {
	case "darwin", "ios":
		return "Darwin"
	case "freebsd":
		return "FreeBSD"
	case "netbsd":
		return "NetBSD"
	case "openbsd":
		return "OpenBSD"
	}
	return cases.Title(language.Und).String(goos)
}

func machine(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i686"
	}
	return goarch
}

// With returns a copy of e with overrides applied; the receiver is not modified
func (e Environment) With(overrides map[string]string) Environment {
	out := make(Environment, len(e)+len(overrides))
	for k, v := range e {
		out[k] = v
	}
	for k, v := range overrides {
		if name, ok := canonicalVariable(k); ok {
			out[name] = v
		} else {
			out[k] = v
		}
	}
	return out
}

// Resolve builds the environment markers are evaluated against. When
// prober is non-nil its result replaces fallback; a failed probe keeps
// fallback and logs a warning. Overrides always win.
func Resolve(ctx context.Context, prober Prober, fallback Environment, overrides map[string]string, logger *utils.Logger) Environment {
	env := fallback
	if prober != nil {
		probed, err := prober.Probe(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not probe Python interpreter, using built-in marker environment")
		} else {
			env = fallback.With(probed)
		}
	}
	env = env.With(overrides)

	logger.Debug().
		Str("python_version", env["python_version"]).
		Str("sys_platform", env["sys_platform"]).
		Str("platform_machine", env["platform_machine"]).
		Msg("Marker environment resolved")
	return env
}

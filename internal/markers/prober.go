package markers

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Prober reports the marker environment of a Python installation
type Prober interface {
	Probe(ctx context.Context) (Environment, error)
}

// probeScript prints the marker environment the way pip computes it
const probeScript = `import json, os, platform, sys
def fmt(info):
    v = "{0.major}.{0.minor}.{0.micro}".format(info)
    if info.releaselevel != "final":
        v += info.releaselevel[0] + str(info.serial)
    return v
print(json.dumps({
    "implementation_name": sys.implementation.name,
    "implementation_version": fmt(sys.implementation.version),
    "os_name": os.name,
    "platform_machine": platform.machine(),
    "platform_python_implementation": platform.python_implementation(),
    "platform_release": platform.release(),
    "platform_system": platform.system(),
    "platform_version": platform.version(),
    "python_full_version": platform.python_version(),
    "python_version": ".".join(platform.python_version_tuple()[:2]),
    "sys_platform": sys.platform,
}))
`

// InterpreterProber runs a Python interpreter to read its marker environment
type InterpreterProber struct {
	Interpreter string
	Timeout     time.Duration
}

// NewInterpreterProber creates a prober for the given interpreter
func NewInterpreterProber(interpreter string, timeout time.Duration) *InterpreterProber {
	return &InterpreterProber{
		Interpreter: interpreter,
		Timeout:     timeout,
	}
}

// Probe runs the interpreter and decodes the environment it prints
func (p *InterpreterProber) Probe(ctx context.Context) (Environment, error) {
	path, err := exec.LookPath(p.Interpreter)
	if err != nil {
		return nil, fmt.Errorf("interpreter %s not found: %w", p.Interpreter, err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, path, "-c", probeScript).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", path, err)
	}

	var env Environment
	if err := json.Unmarshal(out, &env); err != nil {
		return nil, fmt.Errorf("unexpected output from %s: %w", path, err)
	}
	if env["python_version"] == "" {
		return nil, fmt.Errorf("unexpected output from %s: python_version missing", path)
	}
	return env, nil
}

package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv() Environment {
	return DefaultEnvironment("3.10").With(map[string]string{
		"sys_platform":     "linux",
		"platform_system":  "Linux",
		"platform_machine": "x86_64",
		"os_name":          "posix",
	})
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		marker   string
		expected bool
	}{
		{"empty marker", "", true},
		{"string equality", `sys_platform == "linux"`, true},
		{"single quotes", `sys_platform == 'win32'`, false},
		{"string inequality", `os_name != "nt"`, true},
		{"version less than", `python_version < "3.8"`, false},
		{"version compares numerically", `python_version >= "3.9"`, true},
		{"version not lexicographic", `python_version > "3.9"`, true},
		{"compatible release", `python_full_version ~= "3.10.0"`, true},
		{"literal on the left", `"3.7" < python_version`, true},
		{"and", `sys_platform == "linux" and python_version >= "3.6"`, true},
		{"and short circuits", `sys_platform == "darwin" and python_version >= "3.6"`, false},
		{"or", `sys_platform == "darwin" or platform_machine == "x86_64"`, true},
		{"parentheses", `(sys_platform == "darwin" or sys_platform == "linux") and python_version < "4"`, true},
		{"and binds tighter than or", `sys_platform == "linux" or sys_platform == "darwin" and python_version < "3"`, true},
		{"in", `platform_machine in "x86_64 amd64"`, true},
		{"not in", `sys_platform not in "win32 cygwin"`, true},
		{"arbitrary equality", `platform_system === "Linux"`, true},
		{"extra is empty", `extra == "test"`, false},
		{"legacy dotted name", `os.name == "posix"`, true},
	}

	env := testEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.marker, env)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		marker  string
		wantErr error
	}{
		{"unterminated string", `sys_platform == "linux`, ErrInvalidMarker},
		{"missing operator", `sys_platform "linux"`, ErrInvalidMarker},
		{"missing operand", `sys_platform ==`, ErrInvalidMarker},
		{"dangling and", `sys_platform == "linux" and`, ErrInvalidMarker},
		{"unbalanced paren", `(sys_platform == "linux"`, ErrInvalidMarker},
		{"trailing tokens", `sys_platform == "linux" "x"`, ErrInvalidMarker},
		{"bad character", `sys_platform & "linux"`, ErrInvalidMarker},
		{"not without in", `sys_platform not "linux"`, ErrInvalidMarker},
		{"unknown variable", `python_flavour == "spicy"`, ErrUnknownVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.marker)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEvaluate_UndefinedComparison(t *testing.T) {
	_, err := Evaluate(`platform_system ~= "Linux"`, testEnv())
	assert.ErrorIs(t, err, ErrUndefinedComparison)
}

func TestEvaluate_MissingVariable(t *testing.T) {
	_, err := Evaluate(`sys_platform == "linux"`, Environment{})
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestExpr_String(t *testing.T) {
	expr, err := Parse(`python_version<'3.8' or (os_name=="nt" and extra in 'a b')`)
	require.NoError(t, err)
	assert.Equal(t, `(python_version < "3.8" or (os_name == "nt" and extra in "a b"))`, expr.String())
}

// Package markers parses and evaluates PEP 508 environment markers, the
// "; python_version < '3.8'" guards that make a requirement conditional.
//
// # Grammar
//
//	marker     = or_expr
//	or_expr    = and_expr { "or" and_expr }
//	and_expr   = atom { "and" atom }
//	atom       = "(" or_expr ")" | value op value
//	value      = variable | quoted string
//	op         = "==" | "!=" | "<" | "<=" | ">" | ">=" | "~=" | "===" | "in" | "not in"
//
// Comparisons whose right-hand side forms a valid PEP 440 specifier and
// whose left-hand side is a valid version are evaluated with version
// semantics; everything else falls back to string comparison.
//
// # Environment
//
// Markers are evaluated against an [Environment]. [DefaultEnvironment]
// derives platform variables from the Go runtime, and an [InterpreterProber]
// asks a real Python interpreter for the values it would use:
//
//	env := markers.Resolve(ctx, markers.NewInterpreterProber("python3", 5*time.Second),
//	    markers.DefaultEnvironment("3.12"), nil, logger)
//	ok, err := markers.Evaluate(`sys_platform == "linux"`, env)
package markers

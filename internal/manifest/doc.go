// Package manifest loads pip requirement files into domain requirements.
// A requirement file lists one requirement per line and may include other
// requirement files.
//
// # File Format
//
//	# comments start with "#"
//	-r api/requirements.txt          # include, relative to this file
//	--index-url https://pypi.org/simple
//	docker[tls]==4.1.0
//	requests>=2.27,<3 ; python_version >= "3.7"
//	mylib @ https://example.com/mylib-1.0.tar.gz
//	-e git+https://github.com/org/tool.git#egg=tool
//	./vendor/localpkg
//
// Lines ending in "\" continue on the next line and "${VAR}" references
// are expanded from the environment. Global pip options are accepted and
// ignored; per-requirement options such as --hash are stripped.
//
// # Usage
//
//	loader := manifest.NewLoader(logger)
//	file, err := loader.Load("requirements.txt")
//	if err != nil {
//	    return err
//	}
//	for _, include := range file.Includes {
//	    // load the included file too
//	}
//
// # Error Handling
//
// Syntax problems are reported as *ParseError values that wrap
// ErrInvalidSyntax; a missing file wraps ErrFileNotFound.
package manifest

package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/utils"
)

var (
	commentRegex = regexp.MustCompile(`(^|\s+)#.*$`)
	envVarRegex  = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)
)

// Loader loads and validates requirement files
type Loader struct {
	logger    *utils.Logger
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a new requirement file loader
func NewLoader(logger *utils.Logger) *Loader {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Loader{
		logger:    logger.WithComponent("manifest"),
		lookupEnv: os.LookupEnv,
	}
}

// WithVariables makes vars available to ${VAR} expansion. Variables of
// the process environment take precedence.
func (l *Loader) WithVariables(vars map[string]string) *Loader {
	if len(vars) == 0 {
		return l
	}
	lookupEnv := l.lookupEnv
	l.lookupEnv = func(name string) (string, bool) {
		if value, ok := lookupEnv(name); ok {
			return value, true
		}
		value, ok := vars[name]
		return value, ok
	}
	return l
}

// Load reads and parses the requirement file at path
func (l *Loader) Load(path string) (*File, error) {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirement file: %w", err)
	}

	return l.LoadFromBytes(path, data)
}

// LoadFromBytes parses requirement file content. path locates the file
// for diagnostics and is the base that include directives resolve against.
func (l *Loader) LoadFromBytes(path string, data []byte) (*File, error) {
	file := &File{Path: path}
	log := l.logger.WithFile(path)

	lines, err := joinLines(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read requirement file %s: %w", path, err)
	}

	for _, line := range lines {
		text := commentRegex.ReplaceAllString(line.text, "")
		text = strings.TrimSpace(l.expandEnv(text))
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "-") {
			err = l.parseOption(file, line.number, text)
		} else {
			err = l.parseRequirementLine(file, line.number, text)
		}
		if err != nil {
			return nil, &ParseError{Path: path, Line: line.number, Err: err}
		}
	}

	log.Debug().
		Int("requirements", len(file.Requirements)).
		Int("includes", len(file.Includes)).
		Msg("Loaded requirement file")

	return file, nil
}

func (l *Loader) parseOption(file *File, lineNo int, text string) error {
	fields := strings.Fields(text)
	opt, value := fields[0], strings.Join(fields[1:], " ")

	if name, v, ok := strings.Cut(opt, "="); ok && strings.HasPrefix(opt, "--") {
		opt = name
		value = strings.TrimSpace(v + " " + value)
	} else if !strings.HasPrefix(opt, "--") && len(opt) > 2 {
		// short options may be glued to their value: -rbase.txt
		opt, value = opt[:2], strings.TrimSpace(opt[2:]+" "+value)
	}

	switch opt {
	case "-r", "--requirement":
		target, err := l.resolveInclude(file.Path, value)
		if err != nil {
			return err
		}
		file.Includes = append(file.Includes, target)
	case "-c", "--constraint":
		target, err := l.resolveInclude(file.Path, value)
		if err != nil {
			return err
		}
		file.Constraints = append(file.Constraints, target)
		l.logger.Debug().Str("constraint", target).Msg("Constraint file recorded, not merged")
	case "-e", "--editable":
		if value == "" {
			return fmt.Errorf("%w: %s requires an argument", ErrInvalidSyntax, opt)
		}
		req, err := parseLink(value)
		if err != nil {
			return err
		}
		req.Editable = true
		file.add(req, lineNo)
	default:
		takesArg, known := ignoredOptions[opt]
		if !known {
			return fmt.Errorf("%w: unknown option %s", ErrInvalidSyntax, opt)
		}
		if takesArg && value == "" {
			return fmt.Errorf("%w: %s requires an argument", ErrInvalidSyntax, opt)
		}
		l.logger.Debug().Str("option", opt).Msg("Ignoring pip option")
	}
	return nil
}

func (l *Loader) parseRequirementLine(file *File, lineNo int, text string) error {
	fields := strings.Fields(text)
	cut := len(fields)
	for i, f := range fields {
		if i > 0 && strings.HasPrefix(f, "--") {
			cut = i
			break
		}
	}

	for i := cut; i < len(fields); i++ {
		name, _, hasValue := strings.Cut(fields[i], "=")
		if !requirementOptions[name] {
			return fmt.Errorf("%w: option %s is not allowed on a requirement line", ErrInvalidSyntax, name)
		}
		if !hasValue {
			i++ // value is the next field
		}
	}

	req, err := ParseRequirement(strings.Join(fields[:cut], " "))
	if err != nil {
		return err
	}
	file.add(req, lineNo)
	return nil
}

func (l *Loader) resolveInclude(from, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("%w: include directive without a path", ErrInvalidSyntax)
	}
	if utils.IsRemoteURL(target) {
		return "", fmt.Errorf("%w: %s", ErrRemoteInclude, target)
	}
	target = utils.FilePathFromURL(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from), target)
	}
	return filepath.Clean(target), nil
}

func (l *Loader) expandEnv(text string) string {
	return envVarRegex.ReplaceAllStringFunc(text, func(ref string) string {
		name := ref[2 : len(ref)-1]
		if value, ok := l.lookupEnv(name); ok {
			return value
		}
		return ref
	})
}

func (f *File) add(req *domain.Requirement, lineNo int) {
	req.Sources = append(req.Sources, domain.Source{Path: f.Path, Line: lineNo})
	f.Requirements = append(f.Requirements, req)
}

type logicalLine struct {
	number int
	text   string
}

// joinLines folds "\"-continued physical lines into logical lines that
// keep the number of their first physical line. A comment line ends a
// continuation.
func joinLines(data []byte) ([]logicalLine, error) {
	var (
		lines      []logicalLine
		pending    strings.Builder
		start      int
		continuing bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimRight(scanner.Text(), "\r")
		if !continuing {
			start = number
		}

		isComment := strings.HasPrefix(strings.TrimSpace(line), "#")
		if strings.HasSuffix(line, `\`) && !isComment {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continuing = true
			continue
		}
		if isComment {
			line = " " + line
		}
		pending.WriteString(line)
		lines = append(lines, logicalLine{number: start, text: pending.String()})
		pending.Reset()
		continuing = false
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if continuing {
		lines = append(lines, logicalLine{number: start, text: pending.String()})
	}
	return lines, nil
}

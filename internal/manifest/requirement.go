package manifest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/quantmind-br/reqmerge/internal/domain"
	"github.com/quantmind-br/reqmerge/internal/markers"
	"github.com/quantmind-br/reqmerge/internal/utils"
)

var (
	nameRegex    = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)`)
	directRegex  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\s*(\[[^\]]*\])?\s*@`)
	schemeRegex  = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*:`)
	eggRegex     = regexp.MustCompile(`[#&]egg=([A-Za-z0-9][A-Za-z0-9._-]*)`)
	urlMarkerSep = regexp.MustCompile(`\s+;`)
)

var archiveSuffixes = []string{".whl", ".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".zip"}

// ParseRequirement parses a single requirement: a PEP 508 string
// ("name[extras] specifier ; marker" or "name @ url ; marker") or a
// direct URL or path. The marker is validated but not evaluated.
func ParseRequirement(text string) (*domain.Requirement, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty requirement", ErrInvalidSyntax)
	}
	if !directRegex.MatchString(text) && looksLikeLink(text) {
		return parseLink(text)
	}
	return parseNamed(text)
}

func parseNamed(text string) (*domain.Requirement, error) {
	m := nameRegex.FindString(text)
	if m == "" {
		return nil, fmt.Errorf("%w: expected package name in %q", ErrInvalidSyntax, text)
	}
	req := domain.NewRequirement(m, "")
	rest := strings.TrimSpace(text[len(m):])

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed extras in %q", ErrInvalidSyntax, text)
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			extra = strings.TrimSpace(extra)
			if extra == "" {
				continue
			}
			if nameRegex.FindString(extra) != extra {
				return nil, fmt.Errorf("%w: invalid extra %q in %q", ErrInvalidSyntax, extra, text)
			}
			req.AddExtra(extra)
		}
		rest = strings.TrimSpace(rest[end+1:])
	}

	var marker string
	if strings.HasPrefix(rest, "@") {
		link := strings.TrimSpace(rest[1:])
		if loc := urlMarkerSep.FindStringIndex(link); loc != nil {
			marker = link[loc[1]:]
			link = strings.TrimSpace(link[:loc[0]])
		}
		if link == "" {
			return nil, fmt.Errorf("%w: missing URL after \"@\" in %q", ErrInvalidSyntax, text)
		}
		req.Link = link
	} else {
		spec := rest
		if i := strings.IndexByte(rest, ';'); i >= 0 {
			spec, marker = rest[:i], rest[i+1:]
		}
		normalized, err := NormalizeSpecifier(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSyntax, err)
		}
		req.Specifier = normalized
	}

	if err := setMarker(req, marker); err != nil {
		return nil, err
	}
	return req, nil
}

func parseLink(text string) (*domain.Requirement, error) {
	link, marker := text, ""
	if loc := urlMarkerSep.FindStringIndex(text); loc != nil {
		link, marker = strings.TrimSpace(text[:loc[0]]), text[loc[1]:]
	}

	name := linkName(link)
	req := &domain.Requirement{Name: link, Link: link}
	if name != "" {
		req.Name = domain.CanonicalName(name)
	}
	if err := setMarker(req, marker); err != nil {
		return nil, err
	}
	return req, nil
}

func setMarker(req *domain.Requirement, marker string) error {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return nil
	}
	if _, err := markers.Parse(marker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSyntax, err)
	}
	req.Marker = marker
	return nil
}

func looksLikeLink(text string) bool {
	if schemeRegex.MatchString(text) && (strings.Contains(text, "://") || strings.HasPrefix(text, "file:")) {
		return true
	}
	if strings.HasPrefix(text, ".") || strings.HasPrefix(text, "/") || strings.HasPrefix(text, "~") {
		return true
	}
	first := strings.Fields(text)[0]
	if strings.ContainsAny(first, `/\`) {
		return true
	}
	return hasArchiveSuffix(first)
}

func hasArchiveSuffix(s string) bool {
	lower := strings.ToLower(s)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// linkName recovers a project name from an #egg= fragment or from a
// wheel or sdist filename. It returns "" when the link does not say.
func linkName(link string) string {
	if m := eggRegex.FindStringSubmatch(link); m != nil {
		return m[1]
	}

	base := utils.URLBase(link)
	lower := strings.ToLower(base)

	if strings.HasSuffix(lower, ".whl") {
		if name, _, ok := strings.Cut(base, "-"); ok {
			return name
		}
		return ""
	}
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			stem := base[:len(base)-len(suffix)]
			if i := strings.LastIndexByte(stem, '-'); i > 0 {
				return stem[:i]
			}
			return ""
		}
	}
	return ""
}

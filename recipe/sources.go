package recipe

import (
	"errors"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

// checkPattern rejects absolute patterns and patterns escaping the recipe
// directory.
func checkPattern(pattern string) error {
	if pattern == "" || strings.HasPrefix(pattern, "/") || strings.Contains(pattern, "\\") {
		return ErrInvalidPattern
	}
	for _, elem := range strings.Split(pattern, "/") {
		if elem == ".." {
			return ErrInvalidPattern
		}
	}
	if _, err := patternRE(pattern); err != nil {
		return ErrInvalidPattern
	}
	return nil
}

// patternRE translates a shell-style pattern into a regexp. Unlike
// path.Match, "*" also matches "/", so "src/*" selects the whole tree.
func patternRE(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		case '[':
			j := strings.IndexByte(pattern[i:], ']')
			if j < 0 {
				return nil, errors.New("unterminated character class")
			}
			class := pattern[i+1 : i+j]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += j
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

// MatchSource reports whether the slash-separated relative path name is
// selected by pattern.
func MatchSource(pattern, name string) bool {
	re, err := patternRE(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(path.Clean(name))
}

// SourceFiles returns, in lexical order, the regular files of fsys selected
// by the recipe's exports_sources patterns.
func (r *Recipe) SourceFiles(fsys fs.FS) ([]string, error) {
	res := make([]*regexp.Regexp, 0, len(r.exports))
	for _, pattern := range r.exports {
		re, err := patternRE(pattern)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	var files []string
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		for _, re := range res {
			if re.MatchString(name) {
				files = append(files, name)
				break
			}
		}
		return nil
	})
	return files, err
}

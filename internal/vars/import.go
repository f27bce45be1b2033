package vars

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "go.yaml.in/yaml/v4"

	"github.com/unkn0wn-root/rdscript/internal/errdef"
)

type quoteMode int

const (
	quoteModeNone quoteMode = iota
	quoteModeSingle
	quoteModeDouble
)

// ImportFile merges an external variables file into one namespace and
// persists the store. YAML files may carry several namespaces at once;
// dotenv files land in the namespace given (default when empty).
func (s *Store) ImportFile(path, namespace string) error {
	f, err := os.Open(path)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "open import file %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return s.importYAML(f, path, namespace)
	default:
		return s.importDotEnv(f, path, namespace)
	}
}

// YAML imports accept either name: value pairs for a single namespace or a
// two-level namespace: {name: value} document when no namespace is forced.
func (s *Store) importYAML(r io.Reader, path, namespace string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "read import file %s", path)
	}

	if namespace == "" {
		var nested map[string]map[string]string
		if err := yaml.Unmarshal(data, &nested); err == nil {
			return s.merge(nested)
		}
		namespace = DefaultNamespace
	}

	var flat map[string]string
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return errdef.Wrap(errdef.CodeParse, err, "parse yaml variables %s", path)
	}
	return s.merge(map[string]map[string]string{namespace: flat})
}

func (s *Store) importDotEnv(r io.Reader, path, namespace string) error {
	values, err := parseDotEnv(r, path)
	if err != nil {
		return err
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return s.merge(map[string]map[string]string{namespace: values})
}

func (s *Store) merge(incoming map[string]map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for namespace, values := range incoming {
		target, ok := s.namespaces[namespace]
		if !ok {
			target = make(map[string]string, len(values))
			s.namespaces[namespace] = target
		}
		for name, value := range values {
			target[name] = value
		}
	}
	return s.persistLocked()
}

func parseDotEnv(r io.Reader, path string) (map[string]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	values := make(map[string]string)
	lineNumber := 0
	for scanner.Scan() {
		// lines resolve in order so ${REF} interpolation only sees keys
		// defined above it
		lineNumber++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, rawValue, err := splitAssignment(trimmed, lineNumber)
		if err != nil {
			return nil, err
		}

		value, mode, err := unquoteValue(rawValue, lineNumber)
		if err != nil {
			return nil, err
		}
		if mode != quoteModeSingle {
			// single quotes stay literal, '${TOKEN}' never expands
			value, err = expandRefs(value, values, lineNumber)
			if err != nil {
				return nil, err
			}
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errdef.Wrap(errdef.CodeFilesystem, err, "read import file %s", path)
	}
	return values, nil
}

func splitAssignment(line string, lineNumber int) (string, string, error) {
	if rest, ok := strings.CutPrefix(line, "export "); ok {
		line = strings.TrimSpace(rest)
	}

	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", errdef.New(errdef.CodeParse, "dotenv line %d: expected KEY=value", lineNumber)
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", errdef.New(errdef.CodeParse, "dotenv line %d: missing key", lineNumber)
	}
	return key, line[idx+1:], nil
}

func unquoteValue(raw string, lineNumber int) (string, quoteMode, error) {
	raw = strings.TrimLeft(raw, " \t")
	if raw == "" {
		return "", quoteModeNone, nil
	}

	var mode quoteMode
	switch raw[0] {
	case '"':
		mode = quoteModeDouble
	case '\'':
		mode = quoteModeSingle
	default:
		return stripInlineComment(raw), quoteModeNone, nil
	}

	quote := raw[0]
	var b strings.Builder
	for i := 1; i < len(raw); i++ {
		ch := raw[i]
		if ch == '\\' && mode == quoteModeDouble {
			if i+1 >= len(raw) {
				return "", mode, errdef.New(errdef.CodeParse, "dotenv line %d: unfinished escape", lineNumber)
			}
			i++
			b.WriteByte(resolveEscape(raw[i]))
			continue
		}
		if ch == quote {
			rest := strings.TrimSpace(raw[i+1:])
			if rest != "" && rest[0] != '#' {
				return "", mode, errdef.New(
					errdef.CodeParse,
					"dotenv line %d: unexpected content after quoted value",
					lineNumber,
				)
			}
			return b.String(), mode, nil
		}
		b.WriteByte(ch)
	}
	return "", mode, errdef.New(errdef.CodeParse, "dotenv line %d: unterminated quoted value", lineNumber)
}

func stripInlineComment(value string) string {
	for i := 1; i < len(value); i++ {
		if value[i] == '#' && (value[i-1] == ' ' || value[i-1] == '\t') {
			return strings.TrimSpace(value[:i])
		}
	}
	return strings.TrimSpace(value)
}

// expandRefs substitutes $NAME and ${NAME} from earlier keys, falling back
// to the process environment so secrets can be injected at import time.
func expandRefs(value string, resolved map[string]string, lineNumber int) (string, error) {
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch == '\\' && i+1 < len(value) && value[i+1] == '$' {
			b.WriteByte('$')
			i++
			continue
		}
		if ch != '$' || i+1 >= len(value) {
			b.WriteByte(ch)
			continue
		}

		var name string
		if value[i+1] == '{' {
			end := strings.IndexByte(value[i+2:], '}')
			if end < 0 {
				return "", errdef.New(errdef.CodeParse, "dotenv line %d: missing closing brace for ${", lineNumber)
			}
			name = strings.TrimSpace(value[i+2 : i+2+end])
			if name == "" {
				return "", errdef.New(errdef.CodeParse, "dotenv line %d: empty variable name", lineNumber)
			}
			i += 2 + end
		} else if isRefNameChar(value[i+1]) {
			j := i + 1
			for j < len(value) && isRefNameChar(value[j]) {
				j++
			}
			name = value[i+1 : j]
			i = j - 1
		} else {
			b.WriteByte(ch)
			continue
		}

		replacement, ok := resolved[name]
		if !ok {
			replacement, ok = os.LookupEnv(name)
		}
		if !ok {
			return "", errdef.New(errdef.CodeParse, "dotenv line %d: variable %q is not defined", lineNumber, name)
		}
		b.WriteString(replacement)
	}
	return b.String(), nil
}

func isRefNameChar(ch byte) bool {
	return ch == '_' ||
		(ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9')
}

func resolveEscape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		return ch
	}
}

package file

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/agentic-mcp/agentic-mcp-server/internal/agents"
)

const maxLinesPerFile = 10

type entry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	AbsolutePath string `json:"absolute_path"`
	Size         int64  `json:"size"`
	Modified     string `json:"modified"`
	IsDirectory  bool   `json:"is_directory"`
	IsFile       bool   `json:"is_file"`
}

type lineMatch struct {
	LineNumber    int    `json:"line_number"`
	Line          string `json:"line"`
	MatchPosition int    `json:"match_position"`
}

type searchHit struct {
	File          string      `json:"file"`
	AbsolutePath  string      `json:"absolute_path"`
	Matches       int         `json:"matches"`
	MatchingLines []lineMatch `json:"matching_lines"`
}

// gitignoreMatcher compiles root/.gitignore plus the .git directory itself.
func gitignoreMatcher(root string) *ignore.GitIgnore {
	patterns := []string{".git"}
	if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
		patterns = append(patterns, strings.Split(string(data), "\n")...)
	}
	return ignore.CompileIgnoreLines(patterns...)
}

// ignored also tests directories with a trailing slash so "build/" style rules prune them.
func ignored(m *ignore.GitIgnore, rel string, dir bool) bool {
	if m == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return m.MatchesPath(rel) || (dir && m.MatchesPath(rel+"/"))
}

func requireDir(path, what string) error {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s not found: %s", what, path)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.IsDir() {
		return agents.Invalid("%s is not a directory: %s", strings.ToLower(what), path)
	}
	return nil
}

func (a *Agent) list(p agents.Params) (map[string]any, error) {
	dir := a.resolve(p.String("path", "."))
	pattern := p.String("pattern", "*")
	recursive := p.Bool("recursive", false)
	showHidden := p.Bool("show_hidden", false)

	if err := requireDir(dir, "Directory"); err != nil {
		return nil, err
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, agents.Invalid("bad pattern %q: %v", pattern, err)
	}

	var matcher *ignore.GitIgnore
	if p.Bool("respect_gitignore", false) {
		matcher = gitignoreMatcher(dir)
	}

	files := []entry{}
	dirs := []entry{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".")
		if (!showHidden && hidden) || ignored(matcher, rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			info, err := d.Info()
			if err == nil {
				e := entry{
					Name:         d.Name(),
					Path:         rel,
					AbsolutePath: path,
					Size:         info.Size(),
					Modified:     info.ModTime().Format(time.RFC3339),
					IsDirectory:  d.IsDir(),
					IsFile:       info.Mode().IsRegular(),
				}
				if d.IsDir() {
					dirs = append(dirs, e)
				} else {
					files = append(files, e)
				}
			}
		}
		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	sort.SliceStable(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return map[string]any{
		"directory":         dir,
		"files":             files,
		"directories":       dirs,
		"total_files":       len(files),
		"total_directories": len(dirs),
	}, nil
}

func (a *Agent) search(p agents.Params) (map[string]any, error) {
	query, err := p.Require("query")
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, agents.Invalid("query must not be empty")
	}
	root := a.resolve(p.String("path", "."))
	filePattern := p.String("file_pattern", "*")
	caseSensitive := p.Bool("case_sensitive", false)
	maxResults := p.Int("max_results", 100)
	if maxResults <= 0 {
		maxResults = 100
	}

	if err := requireDir(root, "Search path"); err != nil {
		return nil, err
	}
	if _, err := filepath.Match(filePattern, ""); err != nil {
		return nil, agents.Invalid("bad file_pattern %q: %v", filePattern, err)
	}

	var matcher *ignore.GitIgnore
	if p.Bool("respect_gitignore", true) {
		matcher = gitignoreMatcher(root)
	}

	results := []searchHit{}
	errStop := errors.New("stop")
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if ignored(matcher, rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if ok, _ := filepath.Match(filePattern, d.Name()); !ok {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > a.maxSize {
			return nil
		}

		lines, total := scanFile(path, query, caseSensitive)
		if total > 0 {
			results = append(results, searchHit{
				File:          rel,
				AbsolutePath:  path,
				Matches:       total,
				MatchingLines: lines,
			})
			if len(results) >= maxResults {
				return errStop
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, fmt.Errorf("search %s: %w", root, err)
	}

	return map[string]any{
		"query":          query,
		"search_path":    root,
		"file_pattern":   filePattern,
		"case_sensitive": caseSensitive,
		"total_matches":  len(results),
		"results":        results,
	}, nil
}

// scanFile returns up to maxLinesPerFile matching lines and the total match count.
// Match positions are byte offsets into the line as stored on disk.
// Unreadable and non UTF-8 files yield no matches.
func scanFile(path, query string, caseSensitive bool) ([]lineMatch, int) {
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return nil, 0
	}
	index := strings.Index
	if !caseSensitive {
		index = indexFold
	}
	var (
		out   []lineMatch
		total int
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		pos := index(line, query)
		if pos < 0 {
			continue
		}
		total++
		if len(out) < maxLinesPerFile {
			out = append(out, lineMatch{LineNumber: n, Line: strings.TrimSpace(line), MatchPosition: pos})
		}
	}
	return out, total
}

// indexFold is strings.Index under Unicode case folding.
func indexFold(s, substr string) int {
	if substr == "" {
		return 0
	}
	for i := range s {
		if hasPrefixFold(s[i:], substr) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	for _, want := range prefix {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || !strings.EqualFold(string(r), string(want)) {
			return false
		}
		s = s[size:]
	}
	return true
}

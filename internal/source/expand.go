package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Stdin is the input name for standard input
const Stdin = "-"

// Expand resolves inputs into an ordered list of files. Each input is
// Stdin, a glob, a directory (walked for files whose base name matches
// pattern) or a plain file. Order follows the inputs; files found for one
// input are sorted lexically.
func Expand(ctx context.Context, inputs []string, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid input pattern %q", pattern)
	}

	var files []string
	for _, input := range inputs {
		if input == Stdin {
			files = append(files, Stdin)
			continue
		}

		if hasMeta(input) {
			matches, err := doublestar.FilepathGlob(input, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %s: %w", input, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("glob %s matched no files", input)
			}
			sort.Strings(matches)
			files = append(files, matches...)
			continue
		}

		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", input, err)
		}
		if !info.IsDir() {
			files = append(files, input)
			continue
		}

		found, err := walkDir(ctx, input, pattern)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("directory %s has no files matching %q", input, pattern)
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkDir(ctx context.Context, root, pattern string) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		if ok, _ := doublestar.Match(pattern, filepath.Base(p)); ok {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(matches)
	return matches, nil
}

func hasMeta(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

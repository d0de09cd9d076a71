package runtime

import (
	"bufio"
	"chat-sim/errors"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/samber/lo"
)

//go:embed censored/*.txt
var CensoredFiles embed.FS

// Dictionary is the merged word list of the loaded languages.
type Dictionary struct {
	Words     []string
	Languages []string
}

// LoadDictionary reads one word list per language from dir, "fr.txt" holding
// the French words. Only the given languages are read, every list when none is given.
// Blank lines and lines starting with '#' are skipped. Words come back sorted and unique.
func LoadDictionary(fsys fs.FS, dir string, languages ...string) (Dictionary, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Dictionary{}, err
	}

	available := lo.FilterMap(entries, func(e fs.DirEntry, _ int) (string, bool) {
		return strings.TrimSuffix(e.Name(), ".txt"), !e.IsDir() && path.Ext(e.Name()) == ".txt"
	})
	wanted := available
	if len(languages) > 0 {
		if missing, _ := lo.Difference(languages, available); len(missing) > 0 {
			return Dictionary{}, fmt.Errorf("%w: no list for %v", errors.ErrEmptyWords, missing)
		}
		wanted = lo.Uniq(languages)
	}

	var words []string
	for _, language := range wanted {
		list, err := readWords(fsys, path.Join(dir, language+".txt"))
		if err != nil {
			return Dictionary{}, fmt.Errorf("reading %s words: %w", language, err)
		}
		words = append(words, list...)
	}
	if len(words) == 0 {
		return Dictionary{}, errors.ErrEmptyWords
	}

	words = lo.Uniq(words)
	slices.Sort(words)
	return Dictionary{Words: words, Languages: wanted}, nil
}

func readWords(fsys fs.FS, name string) ([]string, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			words = append(words, line)
		}
	}
	return words, scanner.Err()
}

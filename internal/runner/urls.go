package runner

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrURLFileNotFound is returned when the URL list file does not exist.
var ErrURLFileNotFound = errors.New("URL file not found")

// commentPrefix marks lines ignored in the URL file.
const commentPrefix = "#"

// ReadURLs reads one URL per line from path, skipping blank lines and lines
// whose first character is '#'. An indented '#' is kept as a URL. URLs are
// trimmed but otherwise not validated.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(ErrURLFileNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "open URL file %s", path)
	}
	defer f.Close()

	urls := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(raw, commentPrefix) {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read URL file %s", path)
	}
	return urls, nil
}

package agent

import (
	"bufio"
	"os"
	"strings"

	conductorerrors "github.com/mrz1836/conductor/internal/errors"
)

// maxSinkLineSize bounds a single sink line during extraction.
const maxSinkLineSize = 1024 * 1024

// ExtractOutput reads the full sink file at path and assembles the final
// task output from every record's contribution, in file order. Extraction
// is a pure function of the file contents, so repeated calls return the
// same result. A missing sink yields ErrSinkNotFound.
func ExtractOutput(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", conductorerrors.Wrapf(conductorerrors.ErrSinkNotFound, "sink file %s", path)
		}

		return "", conductorerrors.Wrap(err, "failed to open sink file")
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSinkLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		b.WriteString(DecodeLine(line).Contribution())
	}

	if err = scanner.Err(); err != nil {
		return "", conductorerrors.Wrap(err, "failed to read sink file")
	}

	return b.String(), nil
}

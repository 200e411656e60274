package xdg

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gotrash/gotrash/internal/fs"
	"github.com/gotrash/gotrash/internal/trash/core"
)

const (
	// According to XDG spec
	trashInfoHeader = "[Trash Info]"
	timeFormat      = "2006-01-02T15:04:05"
)

// TimeFormatter renders a deletion date for the DeletionDate key
type TimeFormatter interface {
	FormatLocal(t time.Time) string
}

// LocalTime formats times as YYYY-MM-DDThh:mm:ss in the local time zone
type LocalTime struct{}

// FormatLocal implements TimeFormatter
func (LocalTime) FormatLocal(t time.Time) string {
	return t.In(time.Local).Format(timeFormat)
}

// Info represents the contents of a .trashinfo file
type Info struct {
	// Path is the original path of the file, can be absolute or relative
	Path string

	// DeletionDate is when the file was moved to trash
	DeletionDate time.Time

	// TopDir is the mount point relative paths are resolved against.
	// Empty for the home trash, which always stores absolute paths.
	TopDir string
}

// ParseInfo reads a .trashinfo file
func ParseInfo(r io.Reader) (*Info, error) {
	scanner := bufio.NewScanner(r)
	info := &Info{}
	var headerFound bool

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if line == trashInfoHeader {
			headerFound = true
			continue
		}

		// Skip until header is found
		if !headerFound {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "Path":
			path, err := url.PathUnescape(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: invalid Path encoding: %w", core.ErrEncoding, err)
			}
			info.Path = path

		case "DeletionDate":
			date, err := time.ParseInLocation(timeFormat, strings.TrimSpace(value), time.Local)
			if err != nil {
				return nil, fmt.Errorf("invalid DeletionDate format: %w", err)
			}
			info.DeletionDate = date
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading info file: %w", err)
	}

	if !headerFound {
		return nil, core.NewTrashError("parse", "", fmt.Errorf("missing %s header", trashInfoHeader))
	}
	if info.Path == "" {
		return nil, core.NewTrashError("parse", "", fmt.Errorf("missing Path field"))
	}
	if info.DeletionDate.IsZero() {
		return nil, core.NewTrashError("parse", "", fmt.Errorf("missing DeletionDate field"))
	}

	return info, nil
}

// AbsolutePath returns the original location, resolving a relative Path against TopDir
func (i *Info) AbsolutePath() string {
	if filepath.IsAbs(i.Path) || i.TopDir == "" {
		return i.Path
	}
	return filepath.Join(i.TopDir, i.Path)
}

// storedPath returns the path written to the Path key: relative to TopDir
// for $topdir trashes when the file lives below it, absolute otherwise
func (i *Info) storedPath() string {
	if i.TopDir == "" || !filepath.IsAbs(i.Path) || !IsUnder(i.Path, i.TopDir) {
		return i.Path
	}

	rel, err := filepath.Rel(i.TopDir, i.Path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return i.Path
	}
	return rel
}

// Marshal renders the .trashinfo content
func (i *Info) Marshal(f TimeFormatter) []byte {
	content := new(strings.Builder)
	fmt.Fprintln(content, trashInfoHeader)
	fmt.Fprintf(content, "Path=%s\n", encodeTrashPath(i.storedPath()))
	fmt.Fprintf(content, "DeletionDate=%s\n", f.FormatLocal(i.DeletionDate))
	return []byte(content.String())
}

// Save writes the info file to path. It fails with an error satisfying
// errors.Is(err, fs.ErrExist) if path already exists.
func (i *Info) Save(path string, f TimeFormatter) error {
	// O_EXCL reserves the name; never overwrite another entry's info file
	if err := fs.WriteExclusive(path, i.Marshal(f), 0600); err != nil {
		return fmt.Errorf("failed to save info file: %w", err)
	}
	return nil
}

// WriteInfo creates info/<name>.trashinfo in dir for the entry originally
// at originalPath and returns the path of the info file
func WriteInfo(originalPath, name string, dir core.Directory, deletedAt time.Time, f TimeFormatter) (string, error) {
	if f == nil {
		f = LocalTime{}
	}

	info := &Info{
		Path:         originalPath,
		DeletionDate: deletedAt,
		TopDir:       dir.TopDir,
	}

	path := dir.InfoPath(name)
	if err := info.Save(path, f); err != nil {
		return "", core.NewTrashError("write-info", path, err)
	}

	slog.Debug("info file written", "path", path, "original", originalPath)
	return path, nil
}

// LoadInfo loads and parses a .trashinfo file
func LoadInfo(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open info file: %w", err)
	}
	defer f.Close()

	return ParseInfo(f)
}

// encodeTrashPath encodes a path according to the XDG specification:
// - Forward slashes are not encoded
// - Spaces are encoded as %20 (not +)
// - Other special characters are percent-encoded
func encodeTrashPath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		// Split by space to handle spaces separately
		subparts := strings.Split(part, " ")
		for j, subpart := range subparts {
			subparts[j] = url.QueryEscape(subpart)
		}
		parts[i] = strings.Join(subparts, "%20")
	}
	return strings.Join(parts, "/")
}

// EncodeName percent-encodes a single file name, as used in directorysizes
func EncodeName(name string) string {
	return encodeTrashPath(name)
}

// DecodeName reverses EncodeName
func DecodeName(s string) (string, error) {
	name, err := url.PathUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrEncoding, err)
	}
	return name, nil
}

package xdg

import (
	"fmt"
	"io"

	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/moby/sys/mountinfo"
)

// ParseMounts builds a table from r, which must be in /proc/self/mountinfo format
func ParseMounts(r io.Reader) (*MountTable, error) {
	infos, err := mountinfo.GetMountsFromReader(r, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMountTableUnavailable, err)
	}
	return newMountTableFromInfo(infos), nil
}

package stat

import (
	"time"

	"golang.org/x/sys/unix"
)

func fromStat(st *unix.Stat_t) Metadata {
	return Metadata{
		Mode:       uint32(st.Mode),
		Blocks:     st.Blocks,
		AccessTime: time.Unix(st.Atimespec.Unix()),
		ModTime:    time.Unix(st.Mtimespec.Unix()),
	}
}

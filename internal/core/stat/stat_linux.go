package stat

import (
	"time"

	"golang.org/x/sys/unix"
)

func fromStat(st *unix.Stat_t) Metadata {
	return Metadata{
		Mode:       st.Mode,
		Blocks:     st.Blocks,
		AccessTime: time.Unix(st.Atim.Unix()),
		ModTime:    time.Unix(st.Mtim.Unix()),
	}
}

package bmfs

import (
	"github.com/ReturnInfinity/BMFS-sub000/dirent"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
)

// DirHandle is a lazy, forward-only cursor over one directory's entry
// stream, obtained from FileSystem.OpenDir. It is not restartable without
// re-opening.
type DirHandle struct {
	cursor *dirent.Cursor
	dir    dirent.Entry
}

// Next returns the next entry in the directory, or (nil, nil) at
// end-of-directory. An empty (tombstoned) slot ends the listing; entries
// stored after it are not returned.
func (h *DirHandle) Next() (*dirent.Entry, errors.DriverError) {
	return h.cursor.Next()
}

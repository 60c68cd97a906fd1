package table

import (
	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/boljen/go-bitmap"
)

// Table is the region-allocation table living at header.TableOffset. It
// mirrors the on-disk tombstone bits in an in-memory bitmap so iteration
// that hides deleted entries doesn't have to re-read every slot.
type Table struct {
	disk        disk.Disk
	tableOffset uint64
	totalSize   uint64
	rootOffset  uint64
	count       uint64
	deleted     bitmap.Bitmap
}

// New wraps a disk already positioned per `h`, eagerly scanning the
// `h.TableEntryCount` existing slots once to seed the in-memory tombstone
// bitmap, so the very first Iterate call can already skip disk reads for
// slots that were deleted before this Table was constructed.
func New(d disk.Disk, h *header.Header) (*Table, errors.DriverError) {
	t := &Table{
		disk:        d,
		tableOffset: h.TableOffset,
		totalSize:   h.TotalSize,
		rootOffset:  h.RootOffset,
		count:       h.TableEntryCount,
		deleted:     bitmap.NewSlice(header.TableEntryCountMax),
	}

	for i := uint64(0); i < t.count; i++ {
		e, err := t.readSlot(i)
		if err != nil {
			return nil, err
		}
		if e.IsDeleted() {
			t.deleted.Set(int(i), true)
		}
	}

	return t, nil
}

// Count returns the number of occupied slots (including tombstoned ones).
func (t *Table) Count() uint64 {
	return t.count
}

func (t *Table) slotOffset(index uint64) uint64 {
	return t.tableOffset + index*SizeOnDisk
}

// readSlot reads the entry at table index `index`.
func (t *Table) readSlot(index uint64) (TableEntry, errors.DriverError) {
	if err := t.disk.Seek(t.slotOffset(index), disk.FromStart); err != nil {
		return TableEntry{}, err
	}
	buf := make([]byte, SizeOnDisk)
	n, err := t.disk.Read(buf)
	if err != nil {
		return TableEntry{}, err
	}
	if n != SizeOnDisk {
		return TableEntry{}, errors.ErrIo.WithMessage("short read on table entry")
	}
	var e TableEntry
	if derr := e.Decode(buf); derr != nil {
		return TableEntry{}, derr
	}
	return e, nil
}

// writeSlot writes `e` at table index `index`.
func (t *Table) writeSlot(index uint64, e *TableEntry) errors.DriverError {
	if err := t.disk.Seek(t.slotOffset(index), disk.FromStart); err != nil {
		return err
	}
	buf := e.Encode()
	n, err := t.disk.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.ErrIo.WithMessage("short write on table entry")
	}
	if e.IsDeleted() {
		t.deleted.Set(int(index), true)
	}
	return nil
}

// Allocate reserves a new region of at least `bytes`, rounded up to a
// multiple of header.BlockSize, using a first-fit-at-end rule: the new
// region starts immediately after the last allocated one.
func (t *Table) Allocate(bytes uint64) (uint64, errors.DriverError) {
	reserved := roundUpToBlock(bytes)

	if t.count >= header.TableEntryCountMax {
		return 0, errors.ErrNoSpace.WithMessage("allocation table is full")
	}

	var offset uint64
	if t.count == 0 {
		offset = t.rootOffset + header.EntrySize
	} else {
		last, err := t.readSlot(t.count - 1)
		if err != nil {
			return 0, err
		}
		offset = last.Offset + last.Reserved
	}

	if offset+reserved > t.totalSize {
		return 0, errors.ErrNoSpace.WithMessage("not enough space remaining on disk")
	}

	entry := TableEntry{Offset: offset, Used: 0, Reserved: reserved}
	if err := t.writeSlot(t.count, &entry); err != nil {
		return 0, err
	}
	t.count++
	return offset, nil
}

// Realloc grows the region at `currentOffset` to hold at least `newBytes`.
// When the region is the last occupied one, it's expanded in place;
// otherwise a fresh region is allocated and the caller is responsible for
// moving the payload.
func (t *Table) Realloc(newBytes, currentOffset uint64) (uint64, errors.DriverError) {
	index, entry, err := t.find(currentOffset)
	if err != nil {
		return 0, err
	}

	reserved := roundUpToBlock(newBytes)
	if reserved <= entry.Reserved {
		return currentOffset, nil
	}

	if index == t.count-1 {
		grownOffset := entry.Offset + reserved
		if grownOffset > t.totalSize {
			return 0, errors.ErrNoSpace.WithMessage("not enough space to grow region in place")
		}
		entry.Reserved = reserved
		if err := t.writeSlot(index, &entry); err != nil {
			return 0, err
		}
		return entry.Offset, nil
	}

	newOffset, allocErr := t.Allocate(newBytes)
	if allocErr != nil {
		return 0, allocErr
	}
	return newOffset, nil
}

// Free tombstones the entry with matching Offset. This never coalesces the
// freed space back into an adjacent entry.
func (t *Table) Free(offset uint64) errors.DriverError {
	index, entry, err := t.find(offset)
	if err != nil {
		return err
	}
	entry.SetDeleted()
	return t.writeSlot(index, &entry)
}

// SetUsed updates the Used field of the entry at `offset` to reflect how
// many bytes of its reserved region currently hold valid payload.
func (t *Table) SetUsed(offset, used uint64) errors.DriverError {
	index, entry, err := t.find(offset)
	if err != nil {
		return err
	}
	entry.Used = used
	return t.writeSlot(index, &entry)
}

// find locates the entry matching `offset`, scanning every occupied slot
// regardless of its tombstone state, so a repeated Free or SetUsed on an
// already-tombstoned region still finds it instead of reporting NotFound.
func (t *Table) find(offset uint64) (uint64, TableEntry, errors.DriverError) {
	for i := uint64(0); i < t.count; i++ {
		e, err := t.readSlot(i)
		if err != nil {
			return 0, TableEntry{}, err
		}
		if e.Offset == offset {
			return i, e, nil
		}
	}
	return 0, TableEntry{}, errors.ErrNotFound.WithMessage("no table entry at that offset")
}

// Iterate visits every occupied slot in table order, calling `fn` with each
// entry. If `showDeleted` is false, tombstoned entries are skipped without
// even reading them off disk, using the in-memory tombstone bitmap. Iteration
// stops early if `fn` returns false.
func (t *Table) Iterate(showDeleted bool, fn func(index uint64, entry TableEntry) bool) errors.DriverError {
	for i := uint64(0); i < t.count; i++ {
		if !showDeleted && t.deleted.Get(int(i)) {
			continue
		}
		e, err := t.readSlot(i)
		if err != nil {
			return err
		}
		if e.IsDeleted() && !showDeleted {
			continue
		}
		if !fn(i, e) {
			break
		}
	}
	return nil
}

// roundUpToBlock rounds `bytes` up to the next multiple of header.BlockSize.
// Callers that need at least one reserved block for a zero-length object
// (e.g. a freshly created directory) must pass header.BlockSize explicitly.
func roundUpToBlock(bytes uint64) uint64 {
	blocks := (bytes + header.BlockSize - 1) / header.BlockSize
	return blocks * header.BlockSize
}

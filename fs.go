// Package bmfs implements the flat-allocation file system facade: the
// component that ties together the on-disk header, allocation table, and
// directory/entry model behind Format/Import/Resolve and the
// create/open/delete/rename operations.
package bmfs

import (
	"time"

	"github.com/ReturnInfinity/BMFS-sub000/dirent"
	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/ReturnInfinity/BMFS-sub000/host"
	bpath "github.com/ReturnInfinity/BMFS-sub000/path"
	"github.com/ReturnInfinity/BMFS-sub000/table"
	"github.com/hashicorp/go-multierror"
)

// FileSystem is the facade holding the open disk, the in-memory header,
// the allocation-table handle, and every file handle opened against it.
type FileSystem struct {
	disk     disk.Disk
	header   header.Header
	table    *table.Table
	host     host.Host
	hostData any

	openFiles []*File
}

// New wraps `d` with the given host adaptor. Pass host.Nop{} for
// single-threaded callers that don't need advisory locking.
func New(d disk.Disk, h host.Host) (*FileSystem, errors.DriverError) {
	if err := disk.CheckValid(d); err != nil {
		return nil, err
	}

	data, initErr := h.Init()
	if initErr != nil {
		return nil, errors.ErrFault.WrapError(initErr)
	}

	return &FileSystem{disk: d, host: h, hostData: data}, nil
}

func (fs *FileSystem) lock() errors.DriverError {
	if err := fs.host.Lock(fs.hostData); err != nil {
		return errors.ErrFault.WrapError(err)
	}
	return nil
}

func (fs *FileSystem) unlock() errors.DriverError {
	if err := fs.host.Unlock(fs.hostData); err != nil {
		return errors.ErrFault.WrapError(err)
	}
	return nil
}

// Format writes a fresh file system of `totalSize` bytes: a header, a fully
// zeroed table, and a root directory entry.
func (fs *FileSystem) Format(totalSize uint64) errors.DriverError {
	if err := fs.lock(); err != nil {
		return err
	}
	defer fs.unlock()

	if totalSize < header.MinimumDiskSize {
		return errors.ErrInvalid.WithMessage("total size is smaller than the minimum disk size")
	}

	var h header.Header
	h.Initialize()
	h.TotalSize = totalSize

	if err := fs.disk.Seek(0, disk.FromStart); err != nil {
		return err
	}
	if err := h.Write(fs.disk); err != nil {
		return err
	}

	var zero table.TableEntry
	for i := 0; i < header.TableEntryCountMax; i++ {
		if err := fs.disk.Seek(h.TableOffset+uint64(i)*table.SizeOnDisk, disk.FromStart); err != nil {
			return err
		}
		buf := zero.Encode()
		if _, err := fs.disk.Write(buf); err != nil {
			return err
		}
	}

	tbl, err := table.New(fs.disk, &h)
	if err != nil {
		return err
	}
	rootRegionOffset, err := tbl.Allocate(header.BlockSize)
	if err != nil {
		return err
	}

	var root dirent.Entry
	root.SetType(dirent.TypeDirectory)
	root.Offset = rootRegionOffset
	root.Size = 0
	now := uint64(time.Now().Unix())
	root.CreationTime = now
	root.ModificationTime = now

	if err := fs.disk.Seek(h.RootOffset, disk.FromStart); err != nil {
		return err
	}
	buf := root.Encode()
	if n, werr := fs.disk.Write(buf); werr != nil {
		return werr
	} else if n != len(buf) {
		return errors.ErrIo.WithMessage("short write on root entry")
	}

	h.TableEntryCount = tbl.Count()
	if err := fs.disk.Seek(0, disk.FromStart); err != nil {
		return err
	}
	if err := h.Write(fs.disk); err != nil {
		return err
	}

	fs.header = h
	fs.table = tbl
	return nil
}

// Import reads and verifies the header and points the table handle at it.
func (fs *FileSystem) Import() errors.DriverError {
	if err := fs.lock(); err != nil {
		return err
	}
	defer fs.unlock()

	if err := fs.disk.Seek(0, disk.FromStart); err != nil {
		return err
	}

	var h header.Header
	if err := h.Read(fs.disk); err != nil {
		return err
	}
	if !h.HasValidSignature() {
		return errors.ErrInvalid.WithMessage("disk does not carry a valid BMFS signature")
	}

	tbl, err := table.New(fs.disk, &h)
	if err != nil {
		return err
	}

	fs.header = h
	fs.table = tbl
	return nil
}

// rootEntry reads the root directory's self-entry, stored at Header.RootOffset.
func (fs *FileSystem) rootEntry() (dirent.Entry, errors.DriverError) {
	if err := fs.disk.Seek(fs.header.RootOffset, disk.FromStart); err != nil {
		return dirent.Entry{}, err
	}
	buf := make([]byte, dirent.SizeOnDisk)
	n, err := fs.disk.Read(buf)
	if err != nil {
		return dirent.Entry{}, err
	}
	if n != dirent.SizeOnDisk {
		return dirent.Entry{}, errors.ErrIo.WithMessage("short read on root entry")
	}
	var e dirent.Entry
	if derr := e.Decode(buf); derr != nil {
		return dirent.Entry{}, derr
	}
	return e, nil
}

// lookupChild scans `parent`'s entry stream for a non-empty entry named
// `name`, returning the entry and the disk offset of its record.
func (fs *FileSystem) lookupChild(parent *dirent.Entry, name string) (dirent.Entry, uint64, errors.DriverError) {
	cursor := dirent.NewCursor(fs.disk, parent)
	for {
		e, err := cursor.Next()
		if err != nil {
			return dirent.Entry{}, 0, err
		}
		if e == nil {
			return dirent.Entry{}, 0, errors.ErrNotFound.WithMessage("no entry named " + name)
		}
		if e.NameString() == name {
			return *e, cursor.EntryOffset(), nil
		}
	}
}

// Resolve walks `path` component by component starting at the root
// directory, descending into subdirectories as needed. It returns the
// parent directory's entry, the disk offset of that entry's own record
// (where it must be rewritten on mutation), and the final path component
// (the basename); an empty basename denotes the root directory itself.
func (fs *FileSystem) Resolve(path string) (dirent.Entry, uint64, string, errors.DriverError) {
	parent, err := fs.rootEntry()
	if err != nil {
		return dirent.Entry{}, 0, "", err
	}
	parentSlot := fs.header.RootOffset

	component, remainder, hasRemainder := bpath.SplitRoot(path)
	if component == "" {
		return parent, parentSlot, "", nil
	}

	for hasRemainder {
		child, childSlot, lookupErr := fs.lookupChild(&parent, component)
		if lookupErr != nil {
			return dirent.Entry{}, 0, "", lookupErr
		}
		if child.Type() != dirent.TypeDirectory {
			return dirent.Entry{}, 0, "", errors.ErrNotDir.WithMessage(component + " is not a directory")
		}
		parent = child
		parentSlot = childSlot
		component, remainder, hasRemainder = bpath.SplitRoot(remainder)
	}

	return parent, parentSlot, component, nil
}

// createEntry resolves path's parent, checks for a name collision,
// allocates one block, and inserts a fresh entry of type `t`. Shared by
// CreateFile and CreateDir.
func (fs *FileSystem) createEntry(path string, t dirent.Type) (dirent.Entry, errors.DriverError) {
	parent, parentSlot, basename, err := fs.Resolve(path)
	if err != nil {
		return dirent.Entry{}, err
	}
	if basename == "" {
		return dirent.Entry{}, errors.ErrExists.WithMessage("the root directory always exists")
	}

	if _, _, lookupErr := fs.lookupChild(&parent, basename); lookupErr == nil {
		return dirent.Entry{}, errors.ErrExists.WithMessage(basename + " already exists")
	}

	regionOffset, allocErr := fs.table.Allocate(header.BlockSize)
	if allocErr != nil {
		return dirent.Entry{}, allocErr
	}

	var e dirent.Entry
	if nameErr := e.SetName(basename); nameErr != nil {
		return dirent.Entry{}, nameErr
	}
	e.SetType(t)
	e.Offset = regionOffset
	e.Size = 0
	now := uint64(time.Now().Unix())
	e.CreationTime = now
	e.ModificationTime = now

	if insErr := dirent.Insert(fs.disk, &parent, parentSlot, &e); insErr != nil {
		return dirent.Entry{}, insErr
	}

	fs.header.TableEntryCount = fs.table.Count()
	if err := fs.disk.Seek(0, disk.FromStart); err != nil {
		return dirent.Entry{}, err
	}
	if err := fs.header.Write(fs.disk); err != nil {
		return dirent.Entry{}, err
	}

	return e, nil
}

// CreateFile creates an empty file at `path`.
func (fs *FileSystem) CreateFile(path string) (dirent.Entry, errors.DriverError) {
	if err := fs.lock(); err != nil {
		return dirent.Entry{}, err
	}
	defer fs.unlock()
	return fs.createEntry(path, dirent.TypeFile)
}

// CreateDir creates an empty directory at `path`.
func (fs *FileSystem) CreateDir(path string) (dirent.Entry, errors.DriverError) {
	if err := fs.lock(); err != nil {
		return dirent.Entry{}, err
	}
	defer fs.unlock()
	return fs.createEntry(path, dirent.TypeDirectory)
}

// OpenFile resolves `path` to a file entry and returns a fresh handle over
// it, restricted to the operations `mode` permits.
func (fs *FileSystem) OpenFile(path string, mode AccessMode) (*File, errors.DriverError) {
	if err := fs.lock(); err != nil {
		return nil, err
	}
	defer fs.unlock()

	parent, _, basename, err := fs.Resolve(path)
	if err != nil {
		return nil, err
	}
	if basename == "" {
		return nil, errors.ErrIsDir.WithMessage("the root directory is not a file")
	}

	entry, entrySlot, lookupErr := fs.lookupChild(&parent, basename)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if entry.Type() == dirent.TypeDirectory {
		return nil, errors.ErrIsDir.WithMessage(basename + " is a directory")
	}

	f := &File{
		fs:        fs,
		entry:     entry,
		entrySlot: entrySlot,
		mode:      mode,
	}
	fs.openFiles = append(fs.openFiles, f)
	return f, nil
}

// OpenDir resolves `path` to a directory entry and returns a cursor handle
// over it. The root directory is synthesized directly from
// Header.RootOffset when `path` is empty or "/".
func (fs *FileSystem) OpenDir(path string) (*DirHandle, errors.DriverError) {
	if err := fs.lock(); err != nil {
		return nil, err
	}
	defer fs.unlock()

	parent, _, basename, err := fs.Resolve(path)
	if err != nil {
		return nil, err
	}
	if basename == "" {
		return &DirHandle{cursor: dirent.NewCursor(fs.disk, &parent), dir: parent}, nil
	}

	entry, _, lookupErr := fs.lookupChild(&parent, basename)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if entry.Type() != dirent.TypeDirectory {
		return nil, errors.ErrNotDir.WithMessage(basename + " is not a directory")
	}

	return &DirHandle{cursor: dirent.NewCursor(fs.disk, &entry), dir: entry}, nil
}

// DeleteFile removes the file at `path`: frees its region then tombstones
// its directory entry.
func (fs *FileSystem) DeleteFile(path string) errors.DriverError {
	if err := fs.lock(); err != nil {
		return err
	}
	defer fs.unlock()

	parent, _, basename, err := fs.Resolve(path)
	if err != nil {
		return err
	}
	if basename == "" {
		return errors.ErrIsDir.WithMessage("cannot delete the root directory as a file")
	}

	entry, entrySlot, lookupErr := fs.lookupChild(&parent, basename)
	if lookupErr != nil {
		return lookupErr
	}
	if entry.Type() != dirent.TypeFile {
		return errors.ErrIsDir.WithMessage(basename + " is a directory")
	}

	if freeErr := fs.table.Free(entry.Offset); freeErr != nil {
		return freeErr
	}
	return dirent.Delete(fs.disk, &parent, entrySlot)
}

// DeleteDir removes the empty directory at `path`.
func (fs *FileSystem) DeleteDir(path string) errors.DriverError {
	if err := fs.lock(); err != nil {
		return err
	}
	defer fs.unlock()

	parent, _, basename, err := fs.Resolve(path)
	if err != nil {
		return err
	}
	if basename == "" {
		return errors.ErrInvalid.WithMessage("cannot delete the root directory")
	}

	entry, entrySlot, lookupErr := fs.lookupChild(&parent, basename)
	if lookupErr != nil {
		return lookupErr
	}
	if entry.Type() != dirent.TypeDirectory {
		return errors.ErrNotDir.WithMessage(basename + " is not a directory")
	}
	if entry.Size > 0 {
		return errors.ErrNotEmpty.WithMessage(basename + " is not empty")
	}

	if freeErr := fs.table.Free(entry.Offset); freeErr != nil {
		return freeErr
	}
	return dirent.Delete(fs.disk, &parent, entrySlot)
}

// Rename moves the entry at `oldPath` to `newPath`, inserting into the new
// parent and tombstoning in the old; if both paths share a parent, the name
// field is rewritten in place instead.
func (fs *FileSystem) Rename(oldPath, newPath string) errors.DriverError {
	if err := fs.lock(); err != nil {
		return err
	}
	defer fs.unlock()

	oldParent, _, oldBasename, err := fs.Resolve(oldPath)
	if err != nil {
		return err
	}
	if oldBasename == "" {
		return errors.ErrInvalid.WithMessage("cannot rename the root directory")
	}

	newParent, newParentSlot, newBasename, err := fs.Resolve(newPath)
	if err != nil {
		return err
	}
	if newBasename == "" {
		return errors.ErrExists.WithMessage("destination is the root directory")
	}

	entry, entrySlot, lookupErr := fs.lookupChild(&oldParent, oldBasename)
	if lookupErr != nil {
		return lookupErr
	}

	if _, _, collideErr := fs.lookupChild(&newParent, newBasename); collideErr == nil {
		return errors.ErrExists.WithMessage(newBasename + " already exists")
	}

	if nameErr := entry.SetName(newBasename); nameErr != nil {
		return nameErr
	}

	if oldParent.Offset == newParent.Offset {
		return dirent.RewriteAt(fs.disk, entrySlot, &entry)
	}

	if insErr := dirent.Insert(fs.disk, &newParent, newParentSlot, &entry); insErr != nil {
		return insErr
	}
	return dirent.Delete(fs.disk, &oldParent, entrySlot)
}

// Stat reports aggregate capacity figures for the mounted file system, a
// `df`-style summary.
type Stat struct {
	TotalSize     uint64
	ReservedBytes uint64
	UsedBytes     uint64
}

// Stat walks the allocation table (including tombstoned slots, since their
// space is not reclaimed) and reports capacity figures.
func (fs *FileSystem) Stat() (Stat, errors.DriverError) {
	if err := fs.lock(); err != nil {
		return Stat{}, err
	}
	defer fs.unlock()

	stat := Stat{TotalSize: fs.header.TotalSize}
	err := fs.table.Iterate(true, func(_ uint64, e table.TableEntry) bool {
		stat.ReservedBytes += e.Reserved
		if !e.IsDeleted() {
			stat.UsedBytes += e.Used
		}
		return true
	})
	if err != nil {
		return Stat{}, err
	}
	return stat, nil
}

// Close flushes and closes every outstanding file handle, then releases the
// underlying disk and host resources. Errors from individual handles are
// aggregated rather than stopping at the first failure, so one stuck handle
// doesn't prevent the others from being cleaned up.
func (fs *FileSystem) Close() error {
	var result *multierror.Error

	for _, f := range fs.openFiles {
		if err := f.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	fs.openFiles = nil

	if err := fs.disk.Done(); err != nil {
		result = multierror.Append(result, err)
	}
	fs.host.Done(fs.hostData)

	return result.ErrorOrNil()
}

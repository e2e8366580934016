package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"paraflow/internal/diag"
	"paraflow/internal/project"
	"paraflow/internal/source"
	"paraflow/internal/version"
)

// Current schema version - increment when Verdict format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores the verdict of every checked tree keyed by its content
// hash. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Verdict is what the cache remembers about one tree: whether it passed
// and, if not, its single diagnostic.
type Verdict struct {
	Schema uint16 `msgpack:"schema"`
	Path   string `msgpack:"path"`
	OK     bool   `msgpack:"ok"`
	Folded int    `msgpack:"folded,omitempty"`

	Code uint16 `msgpack:"code,omitempty"`
	Msg  string `msgpack:"msg,omitempty"`
	Line uint32 `msgpack:"line,omitempty"`
	Col  uint32 `msgpack:"col,omitempty"`
	Near string `msgpack:"near,omitempty"`

	Stored time.Time `msgpack:"stored"`
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// KeyFor combines a file hash with the tool version so upgrades miss.
func KeyFor(f *source.File) project.Digest {
	return project.Combine(f.Hash, project.Sum(fmt.Sprintf("paraflow %s schema %d", version.Version, diskCacheSchemaVersion)))
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Подкаталог по первым двум символам ключа.
	return filepath.Join(c.dir, "verdicts", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a verdict to the disk cache.
func (c *DiskCache) Put(key project.Digest, v *Verdict) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	v.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a verdict. Entries from another schema count as misses.
func (c *DiskCache) Get(key project.Digest) (*Verdict, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var v Verdict
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, false, err
	}
	if v.Schema != diskCacheSchemaVersion {
		return nil, false, nil
	}
	return &v, true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o750)
}

func verdictOf(res *Result) *Verdict {
	v := &Verdict{Path: res.Path, OK: res.OK(), Folded: res.Folded, Stored: time.Now().UTC()}
	if de, ok := diag.AsError(res.Err); ok {
		v.Code = uint16(de.Code)
		v.Msg = de.Msg
		v.Line = de.Tok.Pos.Line
		v.Col = de.Tok.Pos.Col
		v.Near = de.Tok.Text
	}
	return v
}

// replay turns a cached verdict back into a result for path.
func (v *Verdict) replay(path string, id source.FileID) *Result {
	res := &Result{Path: path, FileID: id, Cached: true, Folded: v.Folded}
	if !v.OK {
		tok := source.Token{Pos: source.Pos{File: path, Line: v.Line, Col: v.Col}, Text: v.Near}
		res.Err = diag.Errorf(diag.Code(v.Code), tok, "%s", v.Msg)
	}
	return res
}

package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fastygo/taskapp/domain"
)

// Headers written verbatim on every rewrite.
var (
	UsersHeader = []string{"Code", "Name", "Email", "Password"}
	TasksHeader = []string{"Code", "Name", "Status", "Rep_User_Code"}
	LogsHeader  = []string{"Code", "Change_User_Code", "Status", "Change_Date"}
)

// columns is the field count of every record kind; other rows are skipped.
const columns = 4

const defaultPerm fs.FileMode = 0o644

// File is a single CSV record store on disk.
type File struct {
	path   string
	header []string
}

// NewFile binds a store to path. Nothing is read until the first operation.
func NewFile(path string, header []string) *File {
	return &File{path: path, header: header}
}

func (f *File) Path() string {
	return f.path
}

type row struct {
	line   int
	fields []string
}

// rows returns every data row. The first row is the header and is skipped,
// as are blank rows and rows whose column count is not four.
func (f *File) rows(ctx context.Context) ([]row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, domain.StorageFault(fmt.Sprintf("open %s", f.path), err)
	}
	defer fh.Close()

	reader := csv.NewReader(fh)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		out    []row
		header = true
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.StorageFault(fmt.Sprintf("read %s", f.path), err)
		}
		if header {
			header = false
			continue
		}
		if len(record) != columns {
			continue
		}
		line, _ := reader.FieldPos(0)
		out = append(out, row{line: line, fields: record})
	}
	return out, nil
}

// appendRecord writes one record preceded by a line break. The header is untouched.
func (f *File) appendRecord(ctx context.Context, fields []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	line, err := encode(fields)
	if err != nil {
		return domain.StorageFault(fmt.Sprintf("encode record for %s", f.path), err)
	}

	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return domain.StorageFault(fmt.Sprintf("open %s for append", f.path), err)
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, '\n')
	buf = append(buf, bytes.TrimSuffix(line, []byte("\n"))...)

	if _, err := fh.Write(buf); err != nil {
		_ = fh.Close()
		return domain.StorageFault(fmt.Sprintf("append to %s", f.path), err)
	}
	if err := fh.Close(); err != nil {
		return domain.StorageFault(fmt.Sprintf("close %s", f.path), err)
	}
	return nil
}

// rewrite replaces the whole store with the header followed by records,
// each newline-terminated. The replacement is atomic.
func (f *File) rewrite(ctx context.Context, records [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(f.header); err != nil {
		return domain.StorageFault(fmt.Sprintf("encode header for %s", f.path), err)
	}
	if err := w.WriteAll(records); err != nil {
		return domain.StorageFault(fmt.Sprintf("encode records for %s", f.path), err)
	}

	perm := defaultPerm
	if info, err := os.Stat(f.path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := writeFileAtomic(f.path, buf.Bytes(), perm); err != nil {
		return domain.StorageFault(fmt.Sprintf("rewrite %s", f.path), err)
	}
	return nil
}

// Create writes an empty store holding only the header. It reports false
// without touching the file when the store already exists.
func (f *File) Create(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return false, domain.StorageFault(fmt.Sprintf("create directory for %s", f.path), err)
	}

	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultPerm)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, domain.StorageFault(fmt.Sprintf("create %s", f.path), err)
	}

	header, err := encode(f.header)
	if err == nil {
		_, err = fh.Write(bytes.TrimSuffix(header, []byte("\n")))
	}
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return false, domain.StorageFault(fmt.Sprintf("write header to %s", f.path), err)
	}
	return true, nil
}

func encode(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	// Some platforms cannot fsync a directory; the rename already happened.
	_ = d.Sync()
	return nil
}

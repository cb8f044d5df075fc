package csvstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fastygo/taskapp/domain"
)

const dateLayout = time.DateOnly

func (f *File) intField(r row, col int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(r.fields[col]))
	if err != nil {
		return 0, f.malformed(r, col, err)
	}
	return v, nil
}

func (f *File) statusField(r row, col int) (domain.Status, error) {
	v, err := f.intField(r, col)
	if err != nil {
		return 0, err
	}
	status, err := domain.ParseStatus(v)
	if err != nil {
		return 0, f.malformed(r, col, err)
	}
	return status, nil
}

func (f *File) dateField(r row, col int) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(r.fields[col]))
	if err != nil {
		return time.Time{}, f.malformed(r, col, err)
	}
	return t, nil
}

func (f *File) malformed(r row, col int, err error) error {
	return domain.StorageFault(fmt.Sprintf("%s:%d: malformed %s", f.path, r.line, f.header[col]), err)
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

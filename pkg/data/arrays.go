package data

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npy"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// ErrArrayNotFound is returned when a bundle has no entry of the requested name.
var ErrArrayNotFound = errors.New("array not found")

// ArrayBundle holds the named arrays of a packed .npz file. Entries are
// decoded on first use, so an archive with an unusable entry still serves
// the others. 1-D arrays are returned as n x 1 column matrices.
type ArrayBundle struct {
	path    string
	entries map[string]string // name -> archive member

	mu     sync.Mutex
	arrays map[string]*mat.Dense
}

// NewArrayBundle wraps already-loaded arrays, mostly for tests and generated data.
func NewArrayBundle(arrays map[string]*mat.Dense) *ArrayBundle {
	return &ArrayBundle{arrays: arrays}
}

// LoadNPZ indexes the archive at path. Array data is read by Matrix.
func LoadNPZ(path string) (*ArrayBundle, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer r.Close()

	b := &ArrayBundle{
		path:    path,
		entries: make(map[string]string),
		arrays:  make(map[string]*mat.Dense),
	}
	for _, key := range r.Keys() {
		b.entries[strings.TrimSuffix(key, ".npy")] = key
	}
	return b, nil
}

// Names lists the arrays in the bundle, sorted.
func (b *ArrayBundle) Names() []string {
	seen := make(map[string]bool, len(b.entries)+len(b.arrays))
	for k := range b.entries {
		seen[k] = true
	}
	for k := range b.arrays {
		seen[k] = true
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Matrix returns the named array as float64, whatever its stored numeric dtype.
func (b *ArrayBundle) Matrix(name string) (*mat.Dense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if m, ok := b.arrays[name]; ok {
		return m, nil
	}
	key, ok := b.entries[name]
	if !ok {
		return nil, errors.Wrapf(ErrArrayNotFound, "%q (have %v)", name, b.Names())
	}
	m, err := decodeEntry(b.path, key)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s from %s", name, b.path)
	}
	if b.arrays == nil {
		b.arrays = make(map[string]*mat.Dense)
	}
	b.arrays[name] = m
	return m, nil
}

// Labels returns a single-column array as integer labels.
func (b *ArrayBundle) Labels(name string) ([]int, error) {
	m, err := b.Matrix(name)
	if err != nil {
		return nil, err
	}
	r, c := m.Dims()
	if c != 1 && r != 1 {
		return nil, errors.Errorf("%q is %dx%d, labels must be one-dimensional", name, r, c)
	}
	raw := m.RawMatrix().Data
	if m.RawMatrix().Stride != c {
		raw = mat.DenseCopyOf(m).RawMatrix().Data
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}
	return out, nil
}

// decodeEntry reads one archive member into a slice of its own dtype and
// widens it to float64.
func decodeEntry(path, key string) (*mat.Dense, error) {
	z, err := npz.Open(path)
	if err != nil {
		return nil, err
	}
	defer z.Close()

	rc, err := z.Open(key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r, err := npy.NewReader(rc)
	if err != nil {
		return nil, err
	}
	descr := r.Header.Descr
	rt := npy.TypeFrom(descr.Type)
	if rt == nil {
		return nil, errors.Errorf("unsupported dtype %q", descr.Type)
	}
	ptr := reflect.New(reflect.SliceOf(rt))
	if err := r.Read(ptr.Interface()); err != nil {
		return nil, err
	}
	vals, err := widen(ptr.Elem())
	if err != nil {
		return nil, errors.Wrapf(err, "dtype %q", descr.Type)
	}

	var rows, cols int
	switch len(descr.Shape) {
	case 0:
		rows, cols = 1, 1
	case 1:
		rows, cols = descr.Shape[0], 1
	case 2:
		rows, cols = descr.Shape[0], descr.Shape[1]
	default:
		return nil, errors.Errorf("shape %v not supported", descr.Shape)
	}
	if rows*cols == 0 || len(vals) != rows*cols {
		return nil, errors.Errorf("empty or truncated array, shape %v", descr.Shape)
	}
	if !descr.Fortran {
		return mat.NewDense(rows, cols, vals), nil
	}
	m := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			m.Set(i, j, vals[j*rows+i])
		}
	}
	return m, nil
}

func widen(v reflect.Value) ([]float64, error) {
	out := make([]float64, v.Len())
	for i := range out {
		e := v.Index(i)
		switch e.Kind() {
		case reflect.Float32, reflect.Float64:
			out[i] = e.Float()
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float64(e.Int())
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = float64(e.Uint())
		case reflect.Bool:
			if e.Bool() {
				out[i] = 1
			}
		default:
			return nil, errors.Errorf("non-numeric element kind %s", e.Kind())
		}
	}
	return out, nil
}

package data

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/ivimnet/ivimnet/internal/ivim"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// Reference column and array names.
const (
	NameX  = "X"
	NameDp = "Dp"
	NameDt = "Dt"
	NameFp = "Fp"
)

// ColumnName returns the CSV column name of a b-value, e.g. "b800".
func ColumnName(b float64) string {
	return "b" + strconv.FormatFloat(b, 'f', -1, 64)
}

// Load reads a phantom file, choosing the format from its extension.
//
// Supported formats are ".csv" (see LoadCSV) and ".npz" (see LoadNPZ).
func Load(path string, bValues []float64) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %q", path)
		}
		defer f.Close()
		ds, err = LoadCSV(f, bValues)
	case ".npz":
		ds, err = LoadNPZ(path, bValues)
	default:
		return nil, errors.Errorf("unsupported data file extension %q for %q", ext, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", path)
	}
	klog.V(2).Infof("Loaded %d samples x %d b-values from %s (reference parameters: %v)",
		ds.Len(), len(ds.BValues), path, ds.HasReference())
	return ds, nil
}

// LoadCSV reads a phantom table with a header row.
//
// Signal columns are named after their b-value (see ColumnName). Either all
// configured b-values or all non-zero ones must be present. Optional Dp, Dt
// and Fp columns hold reference parameters.
func LoadCSV(r io.Reader, bValues []float64) (*Dataset, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parsing CSV")
	}
	names := df.Names()
	has := func(name string) bool { return slices.Contains(names, name) }

	columns := bValues
	for _, b := range bValues {
		if !has(ColumnName(b)) {
			columns = ivim.NonZero(bValues)
			break
		}
	}
	for _, b := range columns {
		if !has(ColumnName(b)) {
			return nil, errors.Errorf("missing signal column %q", ColumnName(b))
		}
	}

	n := df.Nrow()
	if n == 0 {
		return nil, errors.New("no samples")
	}
	raw := mat.NewDense(n, len(columns), nil)
	for j, b := range columns {
		raw.SetCol(j, df.Col(ColumnName(b)).Float())
	}

	ds, err := normalize(raw, bValues)
	if err != nil {
		return nil, err
	}
	if has(NameDp) && has(NameDt) && has(NameFp) {
		ds.Dp = df.Col(NameDp).Float()
		ds.Dt = df.Col(NameDt).Float()
		ds.Fp = df.Col(NameFp).Float()
	}
	return ds, nil
}

// LoadNPZ reads a NumPy archive holding an [n, len(bValues)] or [n, L]
// array X and optional 1-D arrays Dp, Dt and Fp.
func LoadNPZ(path string, bValues []float64) (*Dataset, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer r.Close()

	keys := npzKeys(r.Keys())
	xKey, ok := keys[NameX]
	if !ok {
		return nil, errors.Errorf("archive has no %q array", NameX)
	}

	var raw mat.Dense
	if err := r.Read(xKey, &raw); err != nil {
		return nil, errors.Wrapf(err, "reading %q", NameX)
	}
	ds, err := normalize(&raw, bValues)
	if err != nil {
		return nil, err
	}

	refs := []*[]float64{&ds.Dp, &ds.Dt, &ds.Fp}
	for i, name := range []string{NameDp, NameDt, NameFp} {
		key, ok := keys[name]
		if !ok {
			ds.Dp, ds.Dt, ds.Fp = nil, nil, nil
			break
		}
		if err := r.Read(key, refs[i]); err != nil {
			return nil, errors.Wrapf(err, "reading %q", name)
		}
	}
	return ds, nil
}

// npzKeys maps array names without the ".npy" suffix to archive keys.
func npzKeys(keys []string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[strings.TrimSuffix(k, ".npy")] = k
	}
	return m
}

// SaveNPZ writes ds to a NumPy archive in the layout LoadNPZ reads.
func SaveNPZ(path string, ds *Dataset) error {
	w, err := npz.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	if err := w.Write(NameX, ds.X); err != nil {
		w.Close()
		return errors.Wrapf(err, "writing %q", NameX)
	}
	if ds.HasReference() {
		for name, v := range map[string][]float64{NameDp: ds.Dp, NameDt: ds.Dt, NameFp: ds.Fp} {
			if err := w.Write(name, v); err != nil {
				w.Close()
				return errors.Wrapf(err, "writing %q", name)
			}
		}
	}
	return errors.Wrapf(w.Close(), "closing %q", path)
}

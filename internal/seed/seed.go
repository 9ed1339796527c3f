// Package seed loads bulk product definitions from CUE files. Seed files
// are the CLI counterpart of the app's product-entry form: every loaded
// entry goes through the sync engine, so seeded products propagate to the
// mirror like hand-entered ones.
package seed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Schema constrains seed files. Seed files declare `package seed` and
// contribute to a single `product` struct keyed by an arbitrary label:
//
//	package seed
//	product: clavier: {name: "Clavier", quantity: 10, price: 25.5}
const Schema = `
product: [string]: {
	name:     string & !=""
	quantity: int & >=0
	price:    number & >=0
}
`

// Entry is one validated seed product.
type Entry struct {
	Key      string // label in the seed file, used only for error reporting
	Name     string
	Quantity int
	Price    float64
}

// Error codes for LoadError.
const (
	ErrCodeNotFound   = "SEED_DIR_NOT_FOUND"
	ErrCodeNoFiles    = "SEED_NO_FILES"
	ErrCodeLoadFailed = "SEED_LOAD_FAILED"
	ErrCodeInvalid    = "SEED_INVALID"
)

// LoadError describes a seed loading failure.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads all CUE files in dir, validates them against Schema, and
// returns the entries sorted by key for deterministic creation order.
func Load(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("seed directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing seed directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	schema := ctx.CompileString(Schema)
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	unified := value.Unify(schema)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("seed validation: %v", err)}
	}

	return extractEntries(unified)
}

func extractEntries(value cue.Value) ([]Entry, error) {
	productsVal := value.LookupPath(cue.ParsePath("product"))
	if !productsVal.Exists() {
		return []Entry{}, nil
	}

	iter, err := productsVal.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("iterating products: %v", err)}
	}

	var entries []Entry
	for iter.Next() {
		entry, err := decodeEntry(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func decodeEntry(key string, v cue.Value) (Entry, error) {
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return Entry{}, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("product.%s: name: %v", key, err)}
	}
	quantity, err := v.LookupPath(cue.ParsePath("quantity")).Int64()
	if err != nil {
		return Entry{}, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("product.%s: quantity: %v", key, err)}
	}
	price, err := v.LookupPath(cue.ParsePath("price")).Float64()
	if err != nil {
		return Entry{}, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("product.%s: price: %v", key, err)}
	}

	return Entry{Key: key, Name: name, Quantity: int(quantity), Price: price}, nil
}

func findCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cue") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

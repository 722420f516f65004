package column

import (
	"encoding/gob"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ironsheep/core-column-mcp/internal/imaging"
	"gonum.org/v1/gonum/mat"
)

// File name suffixes used by Save and Load.
const (
	BlobSuffix   = ".gob"
	ImageSuffix  = "_image.png"
	DepthsSuffix = "_depths.bin"
)

// SaveOptions selects which artifacts Save writes. At least one of Blob,
// Image and Depths must be set.
type SaveOptions struct {
	// Name is the file stem. Empty selects DefaultName.
	Name string

	// Blob writes the complete column state to <name>.gob.
	Blob bool

	// Image writes the column image to <name>_image.png.
	Image bool

	// Depths writes the row depths to <name>_depths.bin.
	Depths bool
}

// SavedFiles lists the paths Save wrote. Unrequested artifacts are empty.
type SavedFiles struct {
	Blob   string `json:"blob,omitempty"`
	Image  string `json:"image,omitempty"`
	Depths string `json:"depths,omitempty"`
}

// blobState is the serialized form of a Column.
type blobState struct {
	Shape        []int
	Pix          []uint8
	Depths       []float64
	Top          float64
	Base         float64
	AddTolerance float64
	AddMode      string
}

// DefaultName returns the file stem Save uses when none is given.
func DefaultName(c *Column) string {
	return fmt.Sprintf("CoreColumn_%.2f_%.2f", c.top, c.base)
}

// Save writes the requested artifacts of the column into dir, which must
// already exist.
func (c *Column) Save(dir string, opts SaveOptions) (*SavedFiles, error) {
	if !opts.Blob && !opts.Image && !opts.Depths {
		return nil, fmt.Errorf("%w: select at least one of blob, image or depths", ErrNothingToSave)
	}
	if err := checkDir(dir); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = DefaultName(c)
	}
	if err := checkName(name); err != nil {
		return nil, err
	}

	saved := &SavedFiles{}
	stem := filepath.Join(dir, name)

	if opts.Blob {
		path := stem + BlobSuffix
		state := blobState{
			Shape:        c.img.Shape(),
			Pix:          c.img.Pix,
			Depths:       c.depths,
			Top:          c.top,
			Base:         c.base,
			AddTolerance: c.addTol,
			AddMode:      c.addMode.String(),
		}
		err := writeFile(path, func(w io.Writer) error {
			return gob.NewEncoder(w).Encode(&state)
		})
		if err != nil {
			return nil, err
		}
		saved.Blob = path
	}

	if opts.Image {
		path := stem + ImageSuffix
		if err := imaging.SavePNG(path, c.img); err != nil {
			return nil, err
		}
		saved.Image = path
	}

	if opts.Depths {
		path := stem + DepthsSuffix
		v := mat.NewVecDense(len(c.depths), c.Depths())
		err := writeFile(path, func(w io.Writer) error {
			_, err := v.MarshalBinaryTo(w)
			return err
		})
		if err != nil {
			return nil, err
		}
		saved.Depths = path
	}

	return saved, nil
}

// Load reads a column saved under name in dir.
//
// A blob (<name>.gob) is preferred and restores the column exactly; opts are
// ignored in that case. Otherwise <name>_image.png must exist. Depths come from
// <name>_depths.bin when present; without it, opts must carry WithRange so row
// depths can be synthesized. opts also set the add tolerance and mode for the
// raw-array path.
//
// The raw arrays carry no range or add settings. A column read back from an
// image and depth file therefore has top and base at its first and last row
// depths and the default add tolerance unless opts say otherwise. Only the
// blob round trip is exact for sliced columns or custom tolerances.
func Load(dir, name string, opts ...Option) (*Column, error) {
	if err := checkDir(dir); err != nil {
		return nil, err
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	stem := filepath.Join(dir, name)

	blobPath := stem + BlobSuffix
	if fileExists(blobPath) {
		return loadBlob(blobPath)
	}

	imagePath := stem + ImageSuffix
	if !fileExists(imagePath) {
		return nil, fmt.Errorf("no %s or %s for %q in %s: %w", BlobSuffix, ImageSuffix, name, dir, fs.ErrNotExist)
	}
	img, err := imaging.OpenPNG(imagePath)
	if err != nil {
		return nil, err
	}

	depthsPath := stem + DepthsSuffix
	if fileExists(depthsPath) {
		depths, err := readDepths(depthsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithDepths(depths))
	}

	return New(img, opts...)
}

func loadBlob(path string) (*Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var state blobState
	if err := gob.NewDecoder(f).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	img, err := imaging.FromShape(state.Shape, state.Pix)
	if err != nil {
		return nil, err
	}
	mode, err := ParseAddMode(state.AddMode)
	if err != nil {
		return nil, err
	}
	return New(img,
		WithDepths(state.Depths),
		WithRange(state.Top, state.Base),
		WithAddTolerance(state.AddTolerance),
		WithAddMode(mode),
	)
}

func readDepths(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var v mat.VecDense
	if _, err := v.UnmarshalBinaryFrom(f); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	depths := make([]float64, v.Len())
	for i := range depths {
		depths[i] = v.AtVec(i)
	}
	return depths, nil
}

// writeFile creates path, hands it to write and reports close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if werr := write(f); werr != nil {
		return fmt.Errorf("failed to write %s: %w", path, werr)
	}
	return nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("location %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("location %s is not a directory: %w", dir, fs.ErrInvalid)
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("file stem %q must be a plain name: %w", name, fs.ErrInvalid)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

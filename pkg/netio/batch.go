package netio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

type batchFile struct {
	Grid   int        `json:"grid"`
	Images []imageDoc `json:"images"`
}

type imageDoc struct {
	Orientation int           `json:"orientation"`
	Stats       wireimg.Stats `json:"stats"`
	Cells       [][]float64   `json:"cells"`
}

// WriteBatch encodes a batch as indented JSON.
func WriteBatch(w io.Writer, b wireimg.Batch) error {
	data, err := MarshalBatch(b)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MarshalBatch returns the JSON encoding written by [WriteBatch].
func MarshalBatch(b wireimg.Batch) ([]byte, error) {
	out := batchFile{Grid: b.Grid(), Images: make([]imageDoc, 0, len(b))}
	for o, img := range b {
		if img == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "orientation %d has no image", o)
		}
		out.Images = append(out.Images, imageDoc{
			Orientation: o,
			Stats:       img.Stats(),
			Cells:       img.Rows(),
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteBatchFile writes a batch to path, creating parent directories.
func WriteBatchFile(path string, b wireimg.Batch) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data, err := MarshalBatch(b)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadBatch decodes a batch written by [WriteBatch]. Every orientation must
// appear exactly once and every image must be grid×grid.
func ReadBatch(r io.Reader) (wireimg.Batch, error) {
	var doc batchFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return wireimg.Batch{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode batch")
	}
	return fromBatchDoc(doc)
}

// UnmarshalBatch decodes a batch from JSON bytes.
func UnmarshalBatch(data []byte) (wireimg.Batch, error) {
	var doc batchFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return wireimg.Batch{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode batch")
	}
	return fromBatchDoc(doc)
}

// fromBatchDoc validates a decoded batch document and builds the images.
func fromBatchDoc(doc batchFile) (wireimg.Batch, error) {
	var b wireimg.Batch
	for _, d := range doc.Images {
		o := wireimg.Orientation(d.Orientation)
		if !o.Valid() {
			return wireimg.Batch{}, errors.New(errors.ErrCodeInvalidInput, "orientation index %d outside 0..%d", d.Orientation, wireimg.NumOrientations-1)
		}
		if b[o] != nil {
			return wireimg.Batch{}, errors.New(errors.ErrCodeInvalidInput, "orientation %d listed twice", d.Orientation)
		}
		img, err := wireimg.ImageFromRows(d.Cells)
		if err != nil {
			return wireimg.Batch{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "orientation %d", d.Orientation)
		}
		if img.Size() != doc.Grid {
			return wireimg.Batch{}, errors.New(errors.ErrCodeInvalidFormat, "orientation %d is %d×%d, grid is %d", d.Orientation, img.Size(), img.Size(), doc.Grid)
		}
		b[o] = img
	}
	var missing []int
	for o, img := range b {
		if img == nil {
			missing = append(missing, o)
		}
	}
	if len(missing) > 0 {
		return wireimg.Batch{}, errors.New(errors.ErrCodeMissingOrientation, "batch lacks orientation(s) %v", missing)
	}
	return b, nil
}

// ReadBatchFile reads a batch JSON file.
func ReadBatchFile(path string) (wireimg.Batch, error) {
	if err := errors.ValidatePath(path); err != nil {
		return wireimg.Batch{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return wireimg.Batch{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return wireimg.Batch{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadBatch(f)
}

package netio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// Format names a net file encoding.
type Format string

// Supported net file encodings.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported net file extension %q (want .json or .toml)", filepath.Ext(path))
}

type netFile struct {
	Grid         *int             `json:"grid,omitempty" toml:"grid,omitempty"`
	Orientations []orientationDoc `json:"orientations" toml:"orientations"`
}

type orientationDoc struct {
	Index int      `json:"index" toml:"index"`
	Nets  []netDoc `json:"nets" toml:"nets"`
}

type netDoc struct {
	ID string `json:"id" toml:"id"`
	wireimg.NetBox
}

// NetFile is a decoded net file.
type NetFile struct {
	// Grid is the grid size declared in the file, or -1 when absent.
	Grid int
	Nets wireimg.NetMap
}

// ReadNetMap decodes a net file from r.
func ReadNetMap(r io.Reader, format Format) (*NetFile, error) {
	var doc netFile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown toml keys: %v", undecoded)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return doc.toNetFile()
}

// ReadNetMapFile reads the net file at path, picking the decoder from the
// file extension.
func ReadNetMapFile(path string) (*NetFile, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	nf, err := ReadNetMap(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nf, nil
}

func (doc netFile) toNetFile() (*NetFile, error) {
	out := &NetFile{Grid: -1, Nets: make(wireimg.NetMap, len(doc.Orientations))}
	if doc.Grid != nil {
		if err := errors.ValidateGrid(*doc.Grid); err != nil {
			return nil, err
		}
		out.Grid = *doc.Grid
	}

	for _, od := range doc.Orientations {
		o := wireimg.Orientation(od.Index)
		if !o.Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "orientation index %d outside 0..%d", od.Index, wireimg.NumOrientations-1)
		}
		if _, dup := out.Nets[o]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "orientation %d listed twice", od.Index)
		}

		seen := make(map[string]bool, len(od.Nets))
		nets := make([]wireimg.Net, 0, len(od.Nets))
		for _, nd := range od.Nets {
			if err := errors.ValidateNetID(nd.ID); err != nil {
				return nil, fmt.Errorf("orientation %d: %w", od.Index, err)
			}
			if seen[nd.ID] {
				return nil, errors.New(errors.ErrCodeInvalidNet, "orientation %d: duplicate net id %q", od.Index, nd.ID)
			}
			if math.IsNaN(nd.Weight) || math.IsInf(nd.Weight, 0) {
				return nil, errors.New(errors.ErrCodeInvalidNet, "orientation %d: net %q: weight %v is not finite", od.Index, nd.ID, nd.Weight)
			}
			seen[nd.ID] = true
			nets = append(nets, wireimg.Net{ID: nd.ID, Box: nd.NetBox})
		}
		out.Nets[o] = nets
	}

	if missing := out.Nets.Missing(); len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeMissingOrientation, "net file lacks orientation(s) %v", missing)
	}
	return out, nil
}

// WriteNetMap encodes nets as JSON in orientation order, keeping net order.
// A negative grid omits the grid field.
func WriteNetMap(w io.Writer, nets wireimg.NetMap, grid int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromNetMap(nets, grid)); err != nil {
		return fmt.Errorf("encode nets: %w", err)
	}
	return nil
}

// MarshalNetMap returns the canonical compact JSON encoding of nets and grid.
// Equal inputs (including net order) always produce equal bytes.
func MarshalNetMap(nets wireimg.NetMap, grid int) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(fromNetMap(nets, grid)); err != nil {
		return nil, fmt.Errorf("encode nets: %w", err)
	}
	return buf.Bytes(), nil
}

func fromNetMap(nets wireimg.NetMap, grid int) netFile {
	var doc netFile
	if grid >= 0 {
		doc.Grid = &grid
	}
	for _, o := range wireimg.Orientations() {
		list, ok := nets[o]
		if !ok {
			continue
		}
		od := orientationDoc{Index: int(o), Nets: make([]netDoc, len(list))}
		for i, n := range list {
			od.Nets[i] = netDoc{ID: n.ID, NetBox: n.Box}
		}
		doc.Orientations = append(doc.Orientations, od)
	}
	return doc
}

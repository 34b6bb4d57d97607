package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alnah/go-xmd/internal/fileutil"
)

// Permissions for serialized output.
const (
	dirPermissions  = 0o750
	filePermissions = 0o644
)

// Serializer consumes an image once compilation is over.
type Serializer interface {
	Serialize(ctx context.Context, im *Image) error
}

// Compile-time interface checks.
var (
	_ Serializer = (*DirSerializer)(nil)
	_ Serializer = (*PayloadSerializer)(nil)
)

// DirSerializer materializes an image below Dir.
type DirSerializer struct {
	Dir string
	// Overwrite removes Dir before writing. Individual files are never
	// overwritten otherwise.
	Overwrite bool
}

// Serialize writes every component to Dir joined with its virtual path.
func (s *DirSerializer) Serialize(ctx context.Context, im *Image) error {
	if s.Dir == "" {
		return errors.New("serializing image: empty target directory")
	}
	if s.Overwrite {
		if err := os.RemoveAll(s.Dir); err != nil {
			return fmt.Errorf("clearing %s: %w", s.Dir, err)
		}
	}
	if err := os.MkdirAll(s.Dir, dirPermissions); err != nil {
		return fmt.Errorf("creating %s: %w", s.Dir, err)
	}

	for _, c := range im.components {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := CheckVPath(c.VPath); err != nil {
			return err
		}
		target, err := fileutil.JoinWithin(s.Dir, c.VPath)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrVPathIllegal, err)
		}
		if fileutil.Exists(target) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, target)
		}
		if err := os.MkdirAll(filepath.Dir(target), dirPermissions); err != nil {
			return fmt.Errorf("creating directory for %s: %w", c.VPath, err)
		}
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissions) // #nosec G304 -- contained in Dir
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return fmt.Errorf("%w: %s", ErrDestinationExists, target)
			}
			return fmt.Errorf("writing %s: %w", c.VPath, err)
		}
		_, werr := f.Write(c.Data)
		cerr := f.Close()
		if werr != nil {
			return fmt.Errorf("writing %s: %w", c.VPath, werr)
		}
		if cerr != nil {
			return fmt.Errorf("closing %s: %w", c.VPath, cerr)
		}
	}
	return nil
}

// Payload is the JSON-safe form of an image.
type Payload struct {
	Name  string        `json:"name"`
	Files []PayloadFile `json:"files"`
}

// PayloadFile is one component with its data base64 encoded.
type PayloadFile struct {
	VPath  string `json:"vpath"`
	Stream string `json:"stream"`
}

// ToPayload converts an image to its JSON-safe form.
func ToPayload(im *Image) Payload {
	p := Payload{Name: im.name, Files: make([]PayloadFile, 0, len(im.components))}
	for _, c := range im.components {
		p.Files = append(p.Files, PayloadFile{
			VPath:  c.VPath,
			Stream: base64.StdEncoding.EncodeToString(c.Data),
		})
	}
	return p
}

// FromPayload rebuilds an image from its JSON-safe form.
func FromPayload(p Payload) (*Image, error) {
	name := p.Name
	if name == "" {
		name = "untitled"
	}
	im := New(name)
	for _, f := range p.Files {
		data, err := base64.StdEncoding.DecodeString(f.Stream)
		if err != nil {
			return nil, fmt.Errorf("decoding %q: %w", f.VPath, err)
		}
		if err := im.AddBytes(data, f.VPath); err != nil {
			return nil, err
		}
	}
	return im, nil
}

// DecodePayload reads a JSON payload from r.
func DecodePayload(r io.Reader) (*Image, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	return FromPayload(p)
}

// PayloadSerializer writes an image as a JSON payload to W.
type PayloadSerializer struct {
	W io.Writer
}

// Serialize encodes im to the writer.
func (s *PayloadSerializer) Serialize(ctx context.Context, im *Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := json.NewEncoder(s.W).Encode(ToPayload(im)); err != nil {
		return fmt.Errorf("encoding image payload: %w", err)
	}
	return nil
}

// OutputDirName names the directory a compilation of src with template is
// serialized to.
func OutputDirName(src, template string) string {
	return fileutil.TrimExt(src) + "_" + template
}

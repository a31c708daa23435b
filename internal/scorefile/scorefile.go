package scorefile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/engraver/internal/score"
)

//go:embed schema.cue
var schemaSource string

// Format is a score file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the format from a file extension. Anything other than
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and validates the score at path.
func Load(path string) (*score.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Code: ErrCodeRead, Message: err.Error(), Err: err}
	}
	s, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, withFile(err, path)
	}
	return s, nil
}

// Parse validates and decodes a score document.
func Parse(data []byte, format Format) (*score.Score, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "score file is empty"}
	}

	ctx := cuecontext.New()
	doc, err := compile(ctx, data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(ctx, doc); err != nil {
		return nil, err
	}

	var s score.Score
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error(), Err: err}
	}

	applyDefaults(&s)
	assignIDs(&s)
	return &s, nil
}

// compile turns the raw document into a CUE value. JSON is valid CUE and
// is compiled directly; YAML goes through a generic decode first.
func compile(ctx *cue.Context, data []byte, format Format) (cue.Value, error) {
	if format == FormatJSON {
		v := ctx.CompileBytes(data, cue.Filename("score.json"))
		if err := v.Err(); err != nil {
			return cue.Value{}, &LoadError{Code: ErrCodeSyntax, Message: err.Error(), Err: err}
		}
		return v, nil
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeSyntax, Message: err.Error(), Err: err}
	}
	if generic == nil {
		return cue.Value{}, &LoadError{Code: ErrCodeEmpty, Message: "score file has no content"}
	}
	v := ctx.Encode(generic)
	if err := v.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeSyntax, Message: err.Error(), Err: err}
	}
	return v, nil
}

// Validate checks doc against the #Score definition and returns every
// violation as SchemaErrors.
func Validate(ctx *cue.Context, doc cue.Value) error {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile score schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Score"))

	err := def.Unify(doc).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var out SchemaErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		out = append(out, &LoadError{
			Code:    ErrCodeSchema,
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Err:     e,
		})
	}
	if len(out) == 0 {
		return &LoadError{Code: ErrCodeSchema, Message: err.Error(), Err: err}
	}
	return out
}

// withFile stamps the file name on every LoadError in err.
func withFile(err error, path string) error {
	switch e := err.(type) {
	case *LoadError:
		e.File = path
	case SchemaErrors:
		for _, le := range e {
			le.File = path
		}
	}
	return err
}

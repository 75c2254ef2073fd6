package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/roulette/internal/model"
)

// BackupFileName is the default snapshot export file name.
const BackupFileName = "mini-roulette-backup.json"

// snapshotSchema describes an importable snapshot. Unknown fields are
// allowed everywhere; settings fields are optional and backfilled.
const snapshotSchema = `
#Item: {
	id:   string
	text: string
	...
}

#List: {
	id:    string
	name:  string
	items: [...#Item]
	...
}

#Settings: {
	selectedListId?:           string | null
	allowDuplicatesInSession?: bool
	soundEnabled?:             bool
	...
}

lists:    [...#List]
settings: #Settings
...
`

// ExportSnapshot writes data as indented JSON followed by a newline.
func ExportSnapshot(w io.Writer, data model.AppData) error {
	b, err := json.MarshalIndent(data.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot reads all of r and parses it with ParseSnapshot.
func ReadSnapshot(r io.Reader) (model.AppData, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return model.AppData{}, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(b)
}

// ParseSnapshot validates and decodes a JSON snapshot.
//
// The document must be an object with a "lists" array and a "settings"
// object. Settings fields that are absent take their defaults. Every
// failure is a *model.ValidationError; nothing is partially decoded.
func ParseSnapshot(data []byte) (model.AppData, error) {
	out, errs := decodeSnapshot(data)
	if len(errs) > 0 {
		return model.AppData{}, errs[0]
	}
	return out, nil
}

// CheckSnapshot validates a JSON snapshot without keeping the result.
// Unlike ParseSnapshot it reports every schema violation, not just the first.
func CheckSnapshot(data []byte) []*model.ValidationError {
	_, errs := decodeSnapshot(data)
	return errs
}

func decodeSnapshot(data []byte) (model.AppData, []*model.ValidationError) {
	fail := func(err *model.ValidationError) (model.AppData, []*model.ValidationError) {
		return model.AppData{}, []*model.ValidationError{err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return fail(model.NewValidationError("", "file is empty"))
	}

	expr, err := cuejson.Extract("snapshot.json", data)
	if err != nil {
		return fail(&model.ValidationError{Message: "invalid JSON format: " + firstCUEMessage(err), Err: err})
	}

	ctx := cuecontext.New()
	v := ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return fail(&model.ValidationError{Message: "invalid JSON format: " + firstCUEMessage(err), Err: err})
	}
	if v.IncompleteKind() != cue.StructKind {
		return fail(model.NewValidationError("", "invalid JSON format: expected an object"))
	}

	lists := v.LookupPath(cue.ParsePath("lists"))
	if !lists.Exists() || lists.IncompleteKind() != cue.ListKind {
		return fail(model.NewValidationError("lists", "missing lists or settings: lists must be an array"))
	}
	settings := v.LookupPath(cue.ParsePath("settings"))
	if !settings.Exists() || settings.IncompleteKind() != cue.StructKind {
		return fail(model.NewValidationError("settings", "missing lists or settings: settings must be an object"))
	}

	schema := ctx.CompileString(snapshotSchema)
	if err := schema.Err(); err != nil {
		return fail(&model.ValidationError{Message: "snapshot schema: " + err.Error(), Err: err})
	}
	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return model.AppData{}, schemaErrors(err)
	}

	out := model.EmptyAppData()
	if err := json.Unmarshal(data, &out); err != nil {
		return fail(&model.ValidationError{Message: err.Error(), Err: err})
	}
	for i := range out.Lists {
		if out.Lists[i].Items == nil {
			out.Lists[i].Items = []model.Item{}
		}
	}

	if err := out.Validate(); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return fail(ve)
		}
		return fail(&model.ValidationError{Message: err.Error(), Err: err})
	}
	return out, nil
}

// schemaErrors converts CUE validation errors into *model.ValidationError
// values carrying their paths.
func schemaErrors(err error) []*model.ValidationError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []*model.ValidationError{{Message: err.Error(), Err: err}}
	}
	out := make([]*model.ValidationError, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		out = append(out, &model.ValidationError{
			Field:   fieldPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
			Err:     e,
		})
	}
	return out
}

func firstCUEMessage(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	format, args := errs[0].Msg()
	return fmt.Sprintf(format, args...)
}

// fieldPath renders a CUE path the way model.Validate does: "lists[0].items[1].id".
func fieldPath(path []string) string {
	var b strings.Builder
	for _, sel := range path {
		if isIndex(sel) {
			b.WriteString("[" + sel + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(sel)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

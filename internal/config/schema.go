package config

import (
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// serverSchema constrains a resolved endpoint.
const serverSchema = `
#Server: {
	host: string & =~"^\\S+$"
	port: int & >0 & <=65535
}
`

// cue values built from one Context are not safe for concurrent use.
var (
	schemaMu   sync.Mutex
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// loadSchema compiles serverSchema once per process.
func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(serverSchema)
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile server schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Server"))
		if !schemaDef.Exists() {
			schemaErr = fmt.Errorf("server schema has no #Server definition")
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// validateServer unifies s with #Server and requires a concrete result.
func validateServer(s Server) error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	ctx, def, err := loadSchema()
	if err != nil {
		return err
	}

	v := def.Unify(ctx.Encode(map[string]any{
		"host": s.Host,
		"port": s.Port,
	}))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return formatSchemaError(err)
	}
	return nil
}

// formatSchemaError maps the first CUE error onto a configuration key.
func formatSchemaError(err error) error {
	ce := &Error{Code: ErrCodeMalformed, Message: "server configuration violates schema", Err: err}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return ce
	}

	path := strings.Join(errs[0].Path(), ".")
	switch {
	case strings.HasSuffix(path, "host"):
		ce.Key = KeyHost
	case strings.HasSuffix(path, "port"):
		ce.Key = KeyPort
	}
	ce.Err = errs[0]
	return ce
}

package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

const schemaSource = `
#Config: {
	test_cases_dir_path: string & !=""
	file_search_pattern: string & !=""
	evaluate_url:        string & =~"^https?://[^/]+"
	report_file:         string & !=""
	tck_report_file:     string & !=""
	stop_on_failure:     bool
	history_db?:         string
	request_timeout?:    string
}
`

// validateSchema unifies c with the CUE schema and reports the first
// violation as a *ValidationError.
func validateSchema(c *Config) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return &ValidationError{Message: "schema: " + err.Error()}
	}

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return &ValidationError{Message: err.Error()}
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	first := errs[0]
	path := first.Path()
	if len(path) > 0 && path[0] == "#Config" {
		path = path[1:]
	}
	if len(path) == 0 {
		return &ValidationError{Message: first.Error()}
	}
	format, args := first.Msg()
	return &ValidationError{
		Field:   strings.Join(path, "."),
		Message: fmt.Sprintf(format, args...),
	}
}

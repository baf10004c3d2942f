package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var recordValidator = validator.New(validator.WithRequiredStructEnabled())

// Problems checks r against its validate tags and returns one message per
// failed field, e.g. "ReleaseDate failed datetime". A valid record yields nil.
func (r Record) Problems() []string {
	err := recordValidator.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return out
}

package jobconfig

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/2sn/starfit-server/internal/common"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
)

// UploadField is the multipart field carrying the star data file.
const UploadField = "stardata"

// DatabaseField is the multi-valued database selection field.
const DatabaseField = "database"

// ErrMissingUpload means the form has no stardata field at all. It is fatal: the
// request is rejected before any page is produced.
var ErrMissingUpload = fmt.Errorf("%w: missing %s upload field", common.ErrSchema, UploadField)

// Upload is the stardata field of a submission. An empty Filename means the user
// chose no file and the default star is used.
type Upload struct {
	Filename string
	Content  []byte
}

// Form is a parsed multipart submission.
type Form struct {
	Values map[string][]string
	Upload *Upload
}

// RawFields is the typed, coerced form of a submission before derivation.
type RawFields struct {
	Email              string `mapstructure:"email"`
	Algorithm          string `mapstructure:"algorithm"`
	SolSize            int    `mapstructure:"sol_size"`
	SolSizes           string `mapstructure:"sol_sizes"`
	ZMin               string `mapstructure:"z_min"`
	ZMax               string `mapstructure:"z_max"`
	CombineMode        int    `mapstructure:"combine_mode"`
	PopSize            int    `mapstructure:"pop_size"`
	YScale             int    `mapstructure:"yscale"`
	TimeLimit          int    `mapstructure:"time_limit"`
	Gen                int    `mapstructure:"gen"`
	TourSize           int    `mapstructure:"tour_size"`
	FracMatingPool     int    `mapstructure:"frac_mating_pool"`
	FracElite          int    `mapstructure:"frac_elite"`
	MutRateIndex       int    `mapstructure:"mut_rate_index"`
	MutRateOffset      int    `mapstructure:"mut_rate_offset"`
	MutOffsetMagnitude int    `mapstructure:"mut_offset_magnitude"`
	Fixed              bool   `mapstructure:"fixed"`
	PlotFormat         string `mapstructure:"plotformat" validate:"oneof=png jpg svg pdf"`
	StarDefault        string `mapstructure:"stardefault"`
	ZExclude           string `mapstructure:"z_exclude"`
	ZLolim             string `mapstructure:"z_lolim"`
	UpperLim           bool   `mapstructure:"upper_lim"`
	CDF                bool   `mapstructure:"cdf"`
	Det                bool   `mapstructure:"det"`
	Cov                bool   `mapstructure:"cov"`
	LimitSolution      bool   `mapstructure:"limit_solution"`
	LimitSolver        bool   `mapstructure:"limit_solver"`
	Spread             bool   `mapstructure:"spread"`
	LocalSearch        bool   `mapstructure:"local_search"`
	GroupGA            string `mapstructure:"group_ga"`
	GroupMulti         string `mapstructure:"group_multi"`
	Pin                string `mapstructure:"pin"`
	Multi              int    `mapstructure:"multi"`
	ShowIndex          bool   `mapstructure:"show_index"`
	PlotCov            bool   `mapstructure:"plot_cov"`

	Databases []string `mapstructure:"-"`
	Upload    *Upload  `mapstructure:"-"`
}

// schemaField describes one scalar form field.
type schemaField struct {
	name     string
	required bool
}

// schema lists the scalar fields in the order they appear on the form.
// Checkbox fields are optional: browsers omit unchecked boxes.
var schema = func() []schemaField {
	t := reflect.TypeOf(RawFields{})
	fields := make([]schemaField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, schemaField{name: name, required: f.Type.Kind() != reflect.Bool})
	}
	return fields
}()

var validate = validator.New()

// SchemaError lists every form field that is missing or fails coercion.
type SchemaError struct {
	Fields *multierror.Error
}

func (e *SchemaError) Error() string {
	return "malformed job submission: " + e.Fields.Error()
}

func (e *SchemaError) Unwrap() error {
	return common.ErrSchema
}

// DecodeForm coerces a raw submission into RawFields. It returns ErrMissingUpload
// when the stardata field is absent and a *SchemaError for any other problem.
func DecodeForm(form Form) (*RawFields, error) {
	if form.Upload == nil {
		return nil, ErrMissingUpload
	}

	var fieldErrs *multierror.Error
	input := make(map[string]interface{}, len(schema))
	for _, f := range schema {
		values, ok := form.Values[f.name]
		if !ok || len(values) == 0 {
			if f.required {
				fieldErrs = multierror.Append(fieldErrs, fmt.Errorf("field '%s' is required", f.name))
			}
			continue
		}
		input[f.name] = values[0]
	}

	raw := &RawFields{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: formValueHook,
		Result:     raw,
	})
	if err != nil {
		return nil, common.Errorf("failed to build form decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		var decodeErr *mapstructure.Error
		if errors.As(err, &decodeErr) {
			for _, msg := range decodeErr.Errors {
				fieldErrs = multierror.Append(fieldErrs, errors.New(msg))
			}
		} else {
			fieldErrs = multierror.Append(fieldErrs, err)
		}
	}

	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fieldErrs = multierror.Append(fieldErrs, fmt.Errorf("field '%s' has invalid value '%v'", fe.Field(), fe.Value()))
			}
		} else {
			fieldErrs = multierror.Append(fieldErrs, err)
		}
	}

	if fieldErrs.ErrorOrNil() != nil {
		fieldErrs.ErrorFormat = joinErrors
		return nil, &SchemaError{Fields: fieldErrs}
	}

	for _, db := range form.Values[DatabaseField] {
		if db = strings.TrimSpace(db); db != "" {
			raw.Databases = append(raw.Databases, db)
		}
	}
	raw.Email = strings.TrimSpace(raw.Email)
	raw.Upload = form.Upload
	return raw, nil
}

// formValueHook parses form strings strictly: integers must be base 10 and
// booleans accept the usual checkbox spellings.
var formValueHook mapstructure.DecodeHookFuncType = func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	switch to.Kind() {
	case reflect.Int:
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("'%s' is not an integer", s)
		}
		return v, nil
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "", "0", "false", "off", "no":
			return false, nil
		case "1", "true", "on", "yes":
			return true, nil
		}
		return nil, fmt.Errorf("'%s' is not a boolean", s)
	}
	return data, nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

package jobconfig

import (
	"errors"
	"testing"

	"github.com/2sn/starfit-server/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeForm(t *testing.T) {
	values := gaForm()
	values["fixed"] = []string{"on"}
	values["cdf"] = []string{"false"}
	values["email"] = []string{"  someone@example.org "}

	raw, err := DecodeForm(Form{Values: values, Upload: &Upload{}})
	require.NoError(t, err)

	assert.Equal(t, "ga", raw.Algorithm)
	assert.Equal(t, 3, raw.SolSize)
	assert.Equal(t, 200, raw.PopSize)
	assert.Equal(t, 50, raw.FracElite)
	assert.Equal(t, "Li, Sc", raw.ZExclude)
	assert.Equal(t, "someone@example.org", raw.Email)
	assert.True(t, raw.Fixed)
	assert.False(t, raw.CDF)
	assert.False(t, raw.PlotCov, "absent checkbox defaults to false")
	assert.Equal(t, []string{"znuc2012.S4.star.el.y.stardb.gz", "rproc.just15.0.star.el.y.stardb.xz"}, raw.Databases)
	assert.NotNil(t, raw.Upload)
}

func TestDecodeFormMissingUpload(t *testing.T) {
	_, err := DecodeForm(Form{Values: gaForm()})
	assert.ErrorIs(t, err, ErrMissingUpload)
	assert.ErrorIs(t, err, common.ErrSchema)
}

func TestDecodeFormSchemaErrors(t *testing.T) {
	values := gaForm()
	delete(values, "pop_size")
	delete(values, "email")
	values["gen"] = []string{"many"}
	values["fixed"] = []string{"maybe"}
	values["plotformat"] = []string{"gif"}

	_, err := DecodeForm(Form{Values: values, Upload: &Upload{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSchema)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Len(t, schemaErr.Fields.Errors, 5)
	msg := err.Error()
	assert.Contains(t, msg, "'pop_size' is required")
	assert.Contains(t, msg, "'email' is required")
	assert.Contains(t, msg, "'many' is not an integer")
	assert.Contains(t, msg, "'maybe' is not a boolean")
	assert.Contains(t, msg, "gif")
}

func TestDecodeFormSkipsBlankDatabases(t *testing.T) {
	values := gaForm()
	values["database"] = []string{"", " a.stardb "}

	raw, err := DecodeForm(Form{Values: values, Upload: &Upload{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.stardb"}, raw.Databases)
}

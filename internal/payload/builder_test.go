package payload

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

func validBase() types.BaseFields {
	return types.BaseFields{ModelID: "model-1", Name: "Long Range AWD", BasePrice: 45990}
}

func TestBuild_BasePriceBounds(t *testing.T) {
	b := NewBuilder(catalog.Default(), attributes.Normalizer{})

	for _, price := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		base := validBase()
		base.BasePrice = price
		p, err := b.Build(base, attributes.NewState())
		assert.Nil(t, p)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "price %v", price)
		assert.Equal(t, []string{FieldBasePrice}, verr.FieldNames())
	}

	base := validBase()
	base.BasePrice = 1
	p, err := b.Build(base, attributes.NewState())
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.BasePrice)
}

func TestBuild_EnumeratesEveryFailure(t *testing.T) {
	b := NewBuilder(catalog.Default(), attributes.Normalizer{})

	_, err := b.Build(types.BaseFields{ModelID: "model-1", Name: "", BasePrice: 0}, attributes.NewState())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{FieldName, FieldBasePrice}, verr.FieldNames())
	assert.True(t, verr.Has(FieldName))
	assert.False(t, verr.Has(FieldModelID))

	_, err = b.Build(types.BaseFields{Name: "   ", BasePrice: -1}, attributes.NewState())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{FieldModelID, FieldName, FieldBasePrice}, verr.FieldNames())
	assert.True(t, strings.HasPrefix(err.Error(), "validation failed: "))
}

func TestBuild_AssemblesPayload(t *testing.T) {
	reg := catalog.Default()
	b := NewBuilder(reg, attributes.Normalizer{})

	s := attributes.NewState()
	s.SetSpec(reg, "Horsepower", "670")
	s.SetSpec(reg, "DriveType", "AWD")
	s.SetSpec(reg, "Range", "")
	s.SetFeature("Safety", "AutomaticEmergencyBraking", true)
	s.SetFeature("Safety", "BackupCamera", true)

	p, err := b.Build(validBase(), s)
	require.NoError(t, err)

	assert.Equal(t, "model-1", p.ModelID)
	assert.Equal(t, types.WireSpecs{
		"horsepower": {Value: 670.0, Unit: "hp"},
		"driveType":  {Value: "AWD"},
	}, p.Specs)
	assert.Equal(t, []string{"AutomaticEmergencyBraking", "BackupCamera"}, p.Features["safety"])
	assert.Equal(t, []string{}, p.Features["convenience"])
	assert.Len(t, p.Features, len(reg.FeatureCategories()))
}

func TestBuild_MarshalsInRegistryOrder(t *testing.T) {
	reg := catalog.Default()
	b := NewBuilder(reg, attributes.Normalizer{})

	s := attributes.NewState()
	s.SetSpec(reg, "SeatingCapacity", "5")
	s.SetSpec(reg, "Horsepower", "670")

	p, err := b.Build(validBase(), s)
	require.NoError(t, err)
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"modelId": "model-1",
		"name": "Long Range AWD",
		"basePrice": 45990,
		"specs": {
			"horsepower": {"value": 670, "unit": "hp"},
			"seatingCapacity": {"value": 5, "unit": "seats"}
		},
		"features": {"safety": [], "convenience": [], "entertainment": [], "exterior": [], "seating": []}
	}`, string(raw))

	js := string(raw)
	assert.Less(t, strings.Index(js, `"horsepower"`), strings.Index(js, `"seatingCapacity"`))
	assert.Less(t, strings.Index(js, `"safety"`), strings.Index(js, `"convenience"`))
	assert.Less(t, strings.Index(js, `"exterior"`), strings.Index(js, `"seating"`))

	var decoded types.WirePayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 45990.0, decoded.BasePrice)
	assert.Equal(t, "hp", decoded.Specs["horsepower"].Unit)
}

func TestValidateBase(t *testing.T) {
	assert.NoError(t, ValidateBase(validBase()))
	assert.Error(t, ValidateBase(types.BaseFields{}))
}

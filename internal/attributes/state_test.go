package attributes

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

func TestState_SetSpecAttachesUnit(t *testing.T) {
	reg := catalog.Default()
	s := NewState()
	s.SetSpec(reg, "Range", "520")
	s.SetSpec(reg, "BatteryChemistry", "LFP")
	s.SetSpec(reg, "Unknown", "x")

	v, _ := s.Spec("Range")
	assert.Equal(t, types.SpecValue{Value: "520", Unit: "km"}, v)
	v, _ = s.Spec("BatteryChemistry")
	assert.Equal(t, types.SpecValue{Value: "LFP"}, v)
	v, _ = s.Spec("Unknown")
	assert.Equal(t, types.SpecValue{Value: "x"}, v)

	s.ClearSpec("Range")
	_, ok := s.Spec("Range")
	assert.False(t, ok)
}

func TestState_FeatureSelection(t *testing.T) {
	s := NewState()
	s.SetFeature("Safety", "BackupCamera", true)
	s.SetFeature("Safety", "AutomaticEmergencyBraking", true)
	s.SetFeature("Safety", "BackupCamera", true)
	assert.Equal(t, []string{"BackupCamera", "AutomaticEmergencyBraking"}, s.Selected("Safety"))

	s.SetFeature("Safety", "BackupCamera", false)
	assert.Equal(t, []string{"AutomaticEmergencyBraking"}, s.Selected("Safety"))
	s.SetFeature("Safety", "NotThere", false)
	assert.Equal(t, []string{"AutomaticEmergencyBraking"}, s.Selected("Safety"))

	assert.True(t, s.ToggleFeature("Seating", "MemorySeats"))
	assert.False(t, s.ToggleFeature("Seating", "MemorySeats"))
	assert.Empty(t, s.Selected("Seating"))
	assert.Equal(t, []string{"Safety", "Seating"}, s.FeatureCategories())
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := NewState()
	s.SetFeature("Safety", "BackupCamera", true)
	s.PutSpec("Horsepower", types.SpecValue{Value: 300.0, Unit: "hp"})

	c := s.Clone()
	c.SetFeature("Safety", "ParkingSensors", true)
	c.ClearSpec("Horsepower")

	assert.Equal(t, []string{"BackupCamera"}, s.Selected("Safety"))
	_, ok := s.Spec("Horsepower")
	assert.True(t, ok)

	sel := s.Selected("Safety")
	sel[0] = "Mutated"
	assert.Equal(t, []string{"BackupCamera"}, s.Selected("Safety"))
}

func TestToNumber(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{"670", 670},
		{" 1e3 ", 1000},
		{"", 0},
		{"   ", 0},
		{"-2.5", -2.5},
		{".5", 0.5},
		{"1.", 1},
		{"0x1F", 31},
		{"0b101", 5},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{nil, 0},
		{true, 1},
		{false, 0},
		{42, 42},
		{int64(7), 7},
		{3.25, 3.25},
		{json.Number("12"), 12},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToNumber(tc.in), "ToNumber(%#v)", tc.in)
	}

	for _, in := range []any{"12abc", "abc", "1e", "inf", "NaN", "1_000", "0x", "-0x10", []string{"1"}} {
		assert.True(t, math.IsNaN(ToNumber(in)), "ToNumber(%#v) should be NaN", in)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "AWD", ToString("AWD"))
	assert.Equal(t, "670", ToString(670.0))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, "null", ToString(nil))
	assert.Equal(t, "12", ToString(12))
	assert.Equal(t, "NaN", ToString(math.NaN()))
}

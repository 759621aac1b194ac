package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/fabworks/bomcost/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steelPlate() model.MaterialRef {
	return model.MaterialRef{
		ID:           "cs-plate",
		Name:         "Carbon Steel",
		Category:     "plate",
		Density:      model.Q(7850, model.UnitKgPerCubicMeter),
		PricePerUnit: model.Money{Amount: 0.85},
		PriceUnit:    model.UnitKilogram,
	}
}

func TestCalculate_RectPlateWeight(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")
	require.NotNil(t, def)

	cases := []struct{ L, W, thk float64 }{
		{1000, 500, 10},
		{2500, 1250, 6},
		{100, 100, 0.5},
		{12000, 3000, 50},
	}
	for _, tc := range cases {
		res, err := Calculate(def, CalcRequest{
			Params:   map[string]float64{"L": tc.L, "W": tc.W, "t": tc.thk},
			Material: steelPlate(),
			Quantity: 1,
		})
		require.NoError(t, err)
		expected := tc.L * tc.W * tc.thk * 1e-9 * 7850
		assert.InEpsilon(t, expected, res.Weight, 1e-6, "weight must equal L*W*t*rho")
	}
}

func TestCalculate_MaterialCostWithWastage(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")

	res, err := Calculate(def, CalcRequest{
		Params:     map[string]float64{"L": 1000, "W": 1000, "t": 10},
		Material:   steelPlate(),
		Quantity:   4,
		WastagePct: 5,
	})
	require.NoError(t, err)

	weight := 1000.0 * 1000 * 10 * 1e-9 * 7850 // 78.5 kg
	assert.InEpsilon(t, 4*1.05, res.TotalQuantity, 1e-12)
	assert.InEpsilon(t, weight*4*1.05*0.85, res.MaterialCost, 1e-9)
}

func TestCalculate_CircularPlateScrapBand(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("circ_plate")
	require.NotNil(t, def.Blank)

	// Discs cut from square blanks with the default cutting allowance waste
	// roughly a quarter of the blank.
	for _, dia := range []float64{400, 800, 1000, 1500, 2000} {
		res, err := Calculate(def, CalcRequest{
			Params:   map[string]float64{"D": dia, "t": 12},
			Material: steelPlate(),
			Quantity: 1,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Blank)
		assert.GreaterOrEqual(t, res.Blank.ScrapPct, 21.0, "D=%g", dia)
		assert.LessOrEqual(t, res.Blank.ScrapPct, 30.0, "D=%g", dia)
		assert.Greater(t, res.Blank.ScrapWeight, 0.0)
		assert.Equal(t, dia+20, res.Blank.Length, "square blank side = D + 2a")
	}
}

func TestCalculate_TorisphericalHeadScrapBand(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("tori_head")
	require.NotNil(t, def.Blank)

	for _, dia := range []float64{1000, 1200} {
		res, err := Calculate(def, CalcRequest{
			Params:   map[string]float64{"D": dia, "t": 10},
			Material: steelPlate(),
			Quantity: 1,
		})
		require.NoError(t, err)
		require.NotNil(t, res.Blank)
		assert.GreaterOrEqual(t, res.Blank.ScrapPct, 15.0, "D=%g", dia)
		assert.LessOrEqual(t, res.Blank.ScrapPct, 18.0, "D=%g", dia)
		assert.Greater(t, res.Blank.Diameter, dia)
	}
}

func TestCalculate_PipeVolume(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("pipe")

	mat := steelPlate()
	mat.Category = "pipe"
	res, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"OD": 114.3, "t": 6.02, "L": 6000},
		Material: mat,
		Quantity: 1,
	})
	require.NoError(t, err)

	expected := math.Pi * 6.02 * (114.3 - 6.02) * 6000 * 1e-9
	assert.InEpsilon(t, expected, res.Volume, 1e-9)
	// SA106 NPS 4 sch80 weighs about 16 kg/m
	assert.InDelta(t, 16.07, res.Weight/6.0, 0.2)
}

func TestCalculate_AbsentAreasAreNotZero(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("hex_bar")

	mat := steelPlate()
	mat.Category = "bar"
	res, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"af": 50, "L": 1000},
		Material: mat,
		Quantity: 1,
	})
	require.NoError(t, err)

	_, hasTotal := res.Areas[AreaTotal]
	assert.False(t, hasTotal, "undefined area formulas must yield no value, not zero")
}

func TestCalculate_ZeroThicknessRejected(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")

	_, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"L": 1000, "W": 500, "t": 0},
		Material: steelPlate(),
		Quantity: 1,
	})
	var paramErr *model.ParameterError
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, "t", paramErr.Name)
}

func TestCalculate_ZeroQuantityRejected(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")

	_, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"L": 1000, "W": 500, "t": 10},
		Material: steelPlate(),
		Quantity: 0,
	})
	var paramErr *model.ParameterError
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, "quantity", paramErr.Name)
}

func TestCalculate_MissingRequiredParameter(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")

	_, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"L": 1000, "t": 10},
		Material: steelPlate(),
		Quantity: 1,
	})
	var paramErr *model.ParameterError
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, "W", paramErr.Name)
}

func TestCalculate_IncompatibleMaterialCategory(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("pipe")

	_, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"OD": 100, "t": 5, "L": 1000},
		Material: steelPlate(), // plate stock cannot make seamless pipe
		Quantity: 1,
	})
	var paramErr *model.ParameterError
	require.True(t, errors.As(err, &paramErr))
}

func TestCalculate_UnsupportedPriceUnit(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")

	mat := steelPlate()
	mat.PriceUnit = model.UnitPieces
	_, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"L": 1000, "W": 500, "t": 10},
		Material: mat,
		Quantity: 1,
	})
	var paramErr *model.ParameterError
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, "price_unit", paramErr.Name)
	assert.Contains(t, paramErr.Reason, "pcs")
}

func TestCalculate_FabricationCost(t *testing.T) {
	lib := DefaultLibrary()
	def := lib.Get("rect_plate")

	res, err := Calculate(def, CalcRequest{
		Params:      map[string]float64{"L": 1000, "W": 500, "t": 10},
		Material:    steelPlate(),
		Quantity:    1,
		Fabrication: &model.FabricationSpec{LaborHours: 2, WeldLengthM: 3, MachiningHours: 0.5},
		Rates:       model.CostRates{LaborRatePerHour: 40, WeldingRatePerMeter: 12, MachiningRatePerHour: 60},
	})
	require.NoError(t, err)
	assert.InEpsilon(t, 2*40+3*12+0.5*60.0, res.FabricationCost, 1e-12)
}

func TestCalculate_ExpectedRangeWarning(t *testing.T) {
	low := 1.0
	def := &Definition{
		ID:   "warn_plate",
		Name: "Warning Plate",
		Parameters: []model.ParameterSpec{
			model.NumSpec("L", model.UnitMillimeter, 1, 50000),
			model.NumSpec("W", model.UnitMillimeter, 1, 50000),
			model.NumSpec("t", model.UnitMillimeter, 0.1, 500),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: {Name: FormulaVolume, Expr: "L * W * t * 1e-9", ResultUnit: model.UnitCubicMeter, ExpectedMin: &low},
		},
	}
	lib := NewLibrary()
	require.NoError(t, lib.Publish(def))

	res, err := Calculate(def, CalcRequest{
		Params:   map[string]float64{"L": 100, "W": 100, "t": 1},
		Material: steelPlate(),
		Quantity: 1,
	})
	require.NoError(t, err, "range violations warn, they do not fail")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "below expected minimum")
}

func TestPublish_RejectsUnknownVariable(t *testing.T) {
	def := &Definition{
		ID:         "bad_shape",
		Parameters: []model.ParameterSpec{model.NumSpec("D", model.UnitMillimeter, 1, 100)},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume, "D * H * 1e-9", model.UnitCubicMeter),
		},
	}
	lib := NewLibrary()
	err := lib.Publish(def)
	require.Error(t, err, "undeclared variable must block publishing")
	assert.Contains(t, err.Error(), "H")
}

func TestPublish_Versioning(t *testing.T) {
	lib := NewLibrary()
	v1 := rectPlate()
	require.NoError(t, lib.Publish(v1))
	v2 := rectPlate()
	require.NoError(t, lib.Publish(v2))

	assert.Equal(t, 2, lib.Get("rect_plate").Version, "edits publish a new version")
	assert.Equal(t, 1, lib.GetVersion("rect_plate", 1).Version, "old versions stay reachable")
	assert.Nil(t, lib.GetVersion("rect_plate", 3))
}

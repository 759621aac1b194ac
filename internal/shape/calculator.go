package shape

import (
	"fmt"
	"math"

	"github.com/fabworks/bomcost/internal/formula"
	"github.com/fabworks/bomcost/internal/model"
)

// CalcRequest bundles the inputs of one shape instance calculation.
type CalcRequest struct {
	Params      map[string]float64
	Material    model.MaterialRef
	Quantity    float64
	WastagePct  float64
	Fabrication *model.FabricationSpec
	Rates       model.CostRates
}

// Calculate resolves a shape definition against bound parameters and a
// material, producing the full derived-results block. A zero quantity or an
// out-of-bounds parameter is a validation error rather than a silent zero
// result, so data-entry mistakes cannot hide inside a later cost rollup.
func Calculate(def *Definition, req CalcRequest) (*model.InstanceResult, error) {
	if req.Quantity <= 0 {
		return nil, &model.ParameterError{Name: "quantity", Value: req.Quantity, Reason: "must be greater than zero"}
	}
	if req.WastagePct < 0 {
		return nil, &model.ParameterError{Name: "wastage_pct", Value: req.WastagePct, Reason: "must not be negative"}
	}
	if !def.compatibleWith(req.Material) {
		return nil, &model.ParameterError{Name: "material", Reason: fmt.Sprintf("category %q not compatible with shape %q", req.Material.Category, def.ID)}
	}

	bindings, err := bindParams(def, req.Params)
	if err != nil {
		return nil, err
	}

	density, err := req.Material.DensityKgM3()
	if err != nil {
		return nil, err
	}
	if density <= 0 {
		return nil, &model.ParameterError{Name: "density", Value: density, Reason: "must be greater than zero"}
	}

	result := &model.InstanceResult{}

	volume, warn, err := evalFormula(def.Formulas[FormulaVolume], bindings)
	if err != nil {
		return nil, err
	}
	appendWarning(result, warn)
	result.Volume = volume

	// Weight derives from volume unless an explicit formula overrides it
	// (irregular shapes with tabulated weights).
	if wf, ok := def.Formulas[FormulaWeight]; ok {
		weight, warn, err := evalFormula(wf, bindings)
		if err != nil {
			return nil, err
		}
		appendWarning(result, warn)
		result.Weight = weight
	} else {
		result.Weight = volume * density
	}

	for _, key := range []string{AreaTotal, AreaInner, AreaOuter, AreaWetted} {
		fd, ok := def.Formulas[key]
		if !ok {
			continue // not applicable, deliberately no zero entry
		}
		area, warn, err := evalFormula(fd, bindings)
		if err != nil {
			return nil, err
		}
		appendWarning(result, warn)
		if result.Areas == nil {
			result.Areas = make(map[string]float64)
		}
		result.Areas[key] = area
	}

	if def.Blank != nil {
		blank, warns, err := computeBlank(def, bindings, density)
		if err != nil {
			return nil, err
		}
		for _, w := range warns {
			appendWarning(result, w)
		}
		result.Blank = blank
	}

	result.TotalQuantity = req.Quantity * (1 + req.WastagePct/100)
	if req.Material.PriceUnit != model.UnitKilogram {
		return nil, &model.ParameterError{Name: "price_unit", Reason: fmt.Sprintf("material %q has unsupported price unit %q", req.Material.ID, req.Material.PriceUnit)}
	}
	result.MaterialCost = result.Weight * result.TotalQuantity * req.Material.PricePerUnit.Amount

	if req.Fabrication != nil {
		result.FabricationCost = req.Fabrication.Cost(req.Rates)
	}

	return result, nil
}

// bindParams applies defaults and validates every bound value against the
// parameter schema.
func bindParams(def *Definition, params map[string]float64) (map[string]float64, error) {
	bindings := make(map[string]float64, len(def.Parameters))
	for _, spec := range def.Parameters {
		value, bound := params[spec.Name]
		if !bound {
			if spec.Default != nil {
				bindings[spec.Name] = *spec.Default
				continue
			}
			if spec.Required {
				return nil, &model.ParameterError{Name: spec.Name, Reason: "required parameter not bound"}
			}
			continue
		}
		if err := spec.CheckValue(value); err != nil {
			return nil, err
		}
		bindings[spec.Name] = value
	}
	for name := range params {
		if def.paramSpec(name) == nil {
			return nil, &model.ParameterError{Name: name, Reason: "not declared by shape " + def.ID}
		}
	}
	return bindings, nil
}

// evalFormula evaluates one formula definition against the bindings merged
// with its declared constants. A result outside the declared expected band
// is a warning, not a failure.
func evalFormula(fd model.FormulaDefinition, bindings map[string]float64) (float64, string, error) {
	expr, err := formula.Parse(fd.Expr)
	if err != nil {
		return 0, "", err
	}
	env := bindings
	if len(fd.Constants) > 0 {
		env = make(map[string]float64, len(bindings)+len(fd.Constants))
		for k, v := range bindings {
			env[k] = v
		}
		for k, v := range fd.Constants {
			env[k] = v
		}
	}
	value, err := expr.Eval(env)
	if err != nil {
		return 0, "", err
	}
	var warning string
	if fd.ExpectedMin != nil && value < *fd.ExpectedMin {
		warning = fmt.Sprintf("%s: result %g below expected minimum %g %s", fd.Name, value, *fd.ExpectedMin, fd.ResultUnit)
	} else if fd.ExpectedMax != nil && value > *fd.ExpectedMax {
		warning = fmt.Sprintf("%s: result %g above expected maximum %g %s", fd.Name, value, *fd.ExpectedMax, fd.ResultUnit)
	}
	return value, warning, nil
}

// computeBlank evaluates the blank dimensions and derives scrap percentage
// and scrap weight: scrapPct = (blankArea - finishedArea) / blankArea * 100,
// scrapWeight = (blankArea - finishedArea) x thickness x density.
func computeBlank(def *Definition, bindings map[string]float64, density float64) (*model.BlankResult, []string, error) {
	bd := def.Blank
	thickness, ok := bindings[bd.ThicknessParam]
	if !ok {
		return nil, nil, &model.ParameterError{Name: bd.ThicknessParam, Reason: "blank thickness parameter not bound"}
	}

	var warns []string
	blank := &model.BlankResult{Thickness: thickness}

	switch bd.Kind {
	case BlankRect:
		length, warn, err := evalFormula(bd.Length, bindings)
		if err != nil {
			return nil, nil, err
		}
		if warn != "" {
			warns = append(warns, warn)
		}
		width, warn, err := evalFormula(bd.Width, bindings)
		if err != nil {
			return nil, nil, err
		}
		if warn != "" {
			warns = append(warns, warn)
		}
		blank.Length = length
		blank.Width = width
		blank.BlankArea = length * width * 1e-6
	case BlankRound:
		dia, warn, err := evalFormula(bd.Diameter, bindings)
		if err != nil {
			return nil, nil, err
		}
		if warn != "" {
			warns = append(warns, warn)
		}
		blank.Diameter = dia
		blank.BlankArea = math.Pi / 4 * dia * dia * 1e-6
	}

	finished, warn, err := evalFormula(bd.FinishedArea, bindings)
	if err != nil {
		return nil, nil, err
	}
	if warn != "" {
		warns = append(warns, warn)
	}
	blank.FinishedArea = finished

	if blank.BlankArea <= 0 {
		return nil, nil, &formula.EvaluationError{Msg: "blank area is not positive"}
	}
	if finished > blank.BlankArea {
		warns = append(warns, fmt.Sprintf("finished area %g m2 exceeds blank area %g m2", finished, blank.BlankArea))
	}
	blank.ScrapPct = (blank.BlankArea - finished) / blank.BlankArea * 100
	// thickness mm -> m for the scrap mass
	blank.ScrapWeight = (blank.BlankArea - finished) * thickness * 1e-3 * density

	return blank, warns, nil
}

func appendWarning(r *model.InstanceResult, warning string) {
	if warning != "" {
		r.Warnings = append(r.Warnings, warning)
	}
}

package shape

import "github.com/fabworks/bomcost/internal/model"

// DefaultLibrary returns a library with the builtin shape catalog
// published. All linear parameters are millimetres; volume formulas carry
// the mm3 -> m3 conversion (1e-9) explicitly, area formulas mm2 -> m2
// (1e-6), so that weight = volume x density works with kg/m3 densities.
func DefaultLibrary() *Library {
	lib := NewLibrary()
	for _, def := range builtinDefinitions() {
		// Builtins are authored here; a validation failure is a programming
		// error, not a runtime condition.
		if err := lib.Publish(def); err != nil {
			panic(err)
		}
	}
	return lib
}

func builtinDefinitions() []*Definition {
	return []*Definition{
		rectPlate(),
		circularPlate(),
		cylindricalShell(),
		pipe(),
		torisphericalHead(),
		conicalSection(),
		roundBar(),
		hexBar(),
	}
}

func rectPlate() *Definition {
	return &Definition{
		ID:       "rect_plate",
		Name:     "Rectangular Plate",
		Category: "plate",
		Parameters: []model.ParameterSpec{
			model.NumSpec("L", model.UnitMillimeter, 1, 50000),
			model.NumSpec("W", model.UnitMillimeter, 1, 50000),
			model.NumSpec("t", model.UnitMillimeter, 0.1, 500),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume, "L * W * t * 1e-9", model.UnitCubicMeter),
			AreaTotal:     model.Formula(AreaTotal, "2 * (L*W + L*t + W*t) * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"plate"},
	}
}

func circularPlate() *Definition {
	return &Definition{
		ID:       "circ_plate",
		Name:     "Circular Plate",
		Category: "plate",
		Parameters: []model.ParameterSpec{
			model.NumSpec("D", model.UnitMillimeter, 10, 10000),
			model.NumSpec("t", model.UnitMillimeter, 0.1, 500),
			// cutting allowance per side when nesting the disc in a square blank
			model.OptSpec("a", model.UnitMillimeter, 0, 200, 10),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume, "pi / 4 * D^2 * t * 1e-9", model.UnitCubicMeter),
			AreaTotal:     model.Formula(AreaTotal, "(pi / 2 * D^2 + pi * D * t) * 1e-6", model.UnitSquareMeter),
		},
		Blank: &BlankDefinition{
			Kind:           BlankRect,
			Length:         model.Formula("blank_length", "D + 2 * a", model.UnitMillimeter),
			Width:          model.Formula("blank_width", "D + 2 * a", model.UnitMillimeter),
			ThicknessParam: "t",
			FinishedArea:   model.Formula("finished_area", "pi / 4 * D^2 * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"plate"},
	}
}

func cylindricalShell() *Definition {
	return &Definition{
		ID:       "cyl_shell",
		Name:     "Cylindrical Shell",
		Category: "shell",
		Parameters: []model.ParameterSpec{
			model.NumSpec("D", model.UnitMillimeter, 50, 20000), // mean diameter
			model.NumSpec("L", model.UnitMillimeter, 10, 50000),
			model.NumSpec("t", model.UnitMillimeter, 0.5, 300),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume, "pi * D * t * L * 1e-9", model.UnitCubicMeter),
			AreaOuter:     model.Formula(AreaOuter, "pi * (D + t) * L * 1e-6", model.UnitSquareMeter),
			AreaInner:     model.Formula(AreaInner, "pi * (D - t) * L * 1e-6", model.UnitSquareMeter),
			AreaWetted:    model.Formula(AreaWetted, "pi * (D - t) * L * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"plate"},
	}
}

func pipe() *Definition {
	return &Definition{
		ID:       "pipe",
		Name:     "Pipe / Tube",
		Category: "pipe",
		Parameters: []model.ParameterSpec{
			model.NumSpec("OD", model.UnitMillimeter, 5, 2500),
			model.NumSpec("t", model.UnitMillimeter, 0.3, 100),
			model.NumSpec("L", model.UnitMillimeter, 10, 50000),
		},
		Formulas: map[string]model.FormulaDefinition{
			// annulus: pi * t * (OD - t) is exact for the mean-diameter ring
			FormulaVolume: model.Formula(FormulaVolume, "pi * t * (OD - t) * L * 1e-9", model.UnitCubicMeter),
			AreaOuter:     model.Formula(AreaOuter, "pi * OD * L * 1e-6", model.UnitSquareMeter),
			AreaInner:     model.Formula(AreaInner, "pi * (OD - 2*t) * L * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"pipe"},
	}
}

func torisphericalHead() *Definition {
	return &Definition{
		ID:       "tori_head",
		Name:     "Torispherical Head",
		Category: "head",
		Parameters: []model.ParameterSpec{
			model.NumSpec("D", model.UnitMillimeter, 100, 8000),
			model.NumSpec("t", model.UnitMillimeter, 1, 200),
			model.OptSpec("sf", model.UnitMillimeter, 0, 300, 40), // straight flange
		},
		Formulas: map[string]model.FormulaDefinition{
			// Klopper-form dished surface approximation, 0.9394 * D^2
			FormulaVolume: model.Formula(FormulaVolume, "0.9394 * D^2 * t * 1e-9", model.UnitCubicMeter),
			AreaTotal:     model.Formula(AreaTotal, "0.9394 * D^2 * 1e-6", model.UnitSquareMeter),
		},
		Blank: &BlankDefinition{
			Kind:           BlankRound,
			Diameter:       model.Formula("blank_diameter", "1.125 * D + 2 * sf", model.UnitMillimeter),
			ThicknessParam: "t",
			FinishedArea:   model.Formula("finished_area", "0.9394 * D^2 * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"plate"},
	}
}

func conicalSection() *Definition {
	return &Definition{
		ID:       "cone",
		Name:     "Conical Section",
		Category: "shell",
		Parameters: []model.ParameterSpec{
			model.NumSpec("D1", model.UnitMillimeter, 50, 20000), // large end
			model.NumSpec("D2", model.UnitMillimeter, 0, 20000),  // small end, 0 = full cone
			model.NumSpec("L", model.UnitMillimeter, 10, 50000),
			model.NumSpec("t", model.UnitMillimeter, 0.5, 300),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume,
				"pi * (D1 + D2) / 2 * sqrt(((D1 - D2) / 2)^2 + L^2) * t * 1e-9", model.UnitCubicMeter),
			AreaOuter: model.Formula(AreaOuter,
				"pi * (D1 + D2) / 2 * sqrt(((D1 - D2) / 2)^2 + L^2) * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"plate"},
	}
}

func roundBar() *Definition {
	return &Definition{
		ID:       "round_bar",
		Name:     "Round Bar",
		Category: "bar",
		Parameters: []model.ParameterSpec{
			model.NumSpec("D", model.UnitMillimeter, 1, 1000),
			model.NumSpec("L", model.UnitMillimeter, 1, 20000),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume, "pi / 4 * D^2 * L * 1e-9", model.UnitCubicMeter),
			AreaOuter:     model.Formula(AreaOuter, "pi * D * L * 1e-6", model.UnitSquareMeter),
		},
		MaterialCategories: []string{"bar"},
	}
}

func hexBar() *Definition {
	return &Definition{
		ID:       "hex_bar",
		Name:     "Hexagonal Bar",
		Category: "bar",
		Parameters: []model.ParameterSpec{
			model.NumSpec("af", model.UnitMillimeter, 1, 500), // across flats
			model.NumSpec("L", model.UnitMillimeter, 1, 20000),
		},
		Formulas: map[string]model.FormulaDefinition{
			FormulaVolume: model.Formula(FormulaVolume, "sqrt(3) / 2 * af^2 * L * 1e-9", model.UnitCubicMeter),
		},
		MaterialCategories: []string{"bar"},
	}
}

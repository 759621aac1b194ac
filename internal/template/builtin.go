package template

import "github.com/fabworks/bomcost/internal/model"

// BuiltinTEMABEM returns the stock shell-and-tube heat exchanger template
// (TEMA type BEM: bonnet heads, one-pass shell, fixed tube sheets). Tube
// sheets are sized at four shell thicknesses, baffle pitch is 400 mm with a
// minimum of two baffles.
func BuiltinTEMABEM() *Definition {
	return NewDefinition(
		"Heat Exchanger TEMA BEM",
		"Fixed tube sheet shell-and-tube exchanger with torispherical heads",
		[]model.ParameterSpec{
			model.NumSpec("SHELL_DIAMETER", model.UnitMillimeter, 300, 3000),
			model.NumSpec("SHELL_LENGTH", model.UnitMillimeter, 1000, 12000),
			model.NumSpec("TUBE_COUNT", model.UnitPieces, 1, 2000),
			model.OptSpec("TUBE_OD", model.UnitMillimeter, 10, 50.8, 25.4),
			model.OptSpec("TUBE_THK", model.UnitMillimeter, 0.5, 5, 2.11),
			model.OptSpec("SHELL_THK", model.UnitMillimeter, 4, 50, 10),
		},
		PlaceholderItem{
			Name: "Heat Exchanger TEMA BEM",
			Kind: model.KindAssembly,
			Children: []PlaceholderItem{
				{
					Name:    "Shell",
					Kind:    model.KindPart,
					ShapeID: "cyl_shell",
					ParamFormulas: map[string]string{
						"D": "SHELL_DIAMETER",
						"L": "SHELL_LENGTH",
						"t": "SHELL_THK",
					},
					MaterialID: "cs-plate",
					WastagePct: 5,
				},
				{
					Name:    "Dished Head",
					Kind:    model.KindPart,
					ShapeID: "tori_head",
					ParamFormulas: map[string]string{
						"D":  "SHELL_DIAMETER",
						"t":  "SHELL_THK",
						"sf": "40",
					},
					MaterialID:   "cs-plate",
					CountFormula: "2",
					WastagePct:   5,
				},
				{
					Name:    "Tube Sheet",
					Kind:    model.KindPart,
					ShapeID: "circ_plate",
					ParamFormulas: map[string]string{
						"D": "SHELL_DIAMETER",
						"t": "4 * SHELL_THK",
					},
					MaterialID:   "cs-plate",
					CountFormula: "2",
				},
				{
					Name: "Tube Bundle",
					Kind: model.KindAssembly,
					Children: []PlaceholderItem{
						{
							Name:    "Tube",
							Kind:    model.KindPart,
							ShapeID: "pipe",
							ParamFormulas: map[string]string{
								"OD": "TUBE_OD",
								"t":  "TUBE_THK",
								"L":  "SHELL_LENGTH",
							},
							MaterialID:   "cs-pipe",
							CountFormula: "TUBE_COUNT",
						},
						{
							Name:    "Baffle",
							Kind:    model.KindPart,
							ShapeID: "circ_plate",
							ParamFormulas: map[string]string{
								"D": "SHELL_DIAMETER",
								"t": "6",
							},
							MaterialID:   "cs-plate",
							CountFormula: "max(2, floor(SHELL_LENGTH / 400))",
						},
					},
				},
			},
		},
	)
}

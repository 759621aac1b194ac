package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fabworks/bomcost/internal/model"
	"github.com/xuri/excelize/v2"
)

// MaterialImportResult holds the results of a material price list import.
type MaterialImportResult struct {
	Materials []model.MaterialRef
	Errors    []string
	Warnings  []string
}

// materialMapping maps price list column roles to their indices.
type materialMapping struct {
	Name     int
	Category int
	Density  int
	Price    int
}

var materialAliases = map[string][]string{
	"name":     {"name", "material", "material name", "grade", "spec", "specification"},
	"category": {"category", "cat", "form", "type", "product form"},
	"density":  {"density", "density kg/m3", "rho", "kg/m3"},
	"price":    {"price", "price/kg", "rate", "rate/kg", "unit price", "cost", "cost/kg"},
}

func detectMaterialColumns(row []string) (materialMapping, bool) {
	mapping := materialMapping{Name: -1, Category: -1, Density: -1, Price: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range materialAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "name":
						if mapping.Name == -1 {
							mapping.Name = i
						}
					case "category":
						if mapping.Category == -1 {
							mapping.Category = i
						}
					case "density":
						if mapping.Density == -1 {
							mapping.Density = i
						}
					case "price":
						if mapping.Price == -1 {
							mapping.Price = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Positional fallback: Name, Category, Density, Price
		return materialMapping{Name: 0, Category: 1, Density: 2, Price: 3}, false
	}
	return mapping, true
}

// parseMaterialRow extracts one material from a price list row.
func parseMaterialRow(row []string, mapping materialMapping, rowLabel string) (model.MaterialRef, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		return model.MaterialRef{}, fmt.Sprintf("%s: Missing material name", rowLabel)
	}

	densityStr := getCell(row, mapping.Density)
	if densityStr == "" {
		return model.MaterialRef{}, fmt.Sprintf("%s: Missing density value", rowLabel)
	}
	density, err := strconv.ParseFloat(densityStr, 64)
	if err != nil || density <= 0 {
		return model.MaterialRef{}, fmt.Sprintf("%s: Invalid density '%s'", rowLabel, densityStr)
	}

	priceStr := getCell(row, mapping.Price)
	if priceStr == "" {
		return model.MaterialRef{}, fmt.Sprintf("%s: Missing price value", rowLabel)
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		return model.MaterialRef{}, fmt.Sprintf("%s: Invalid price '%s'", rowLabel, priceStr)
	}

	category := strings.ToLower(getCell(row, mapping.Category))
	if category == "" {
		category = "plate"
	}

	return model.MaterialRef{
		Name:         name,
		Category:     category,
		Density:      model.Q(density, model.UnitKgPerCubicMeter),
		PricePerUnit: model.Money{Amount: price},
		PriceUnit:    model.UnitKilogram,
	}, ""
}

// ImportMaterialsCSV imports a material price list from a CSV file with
// automatic delimiter detection.
func ImportMaterialsCSV(path string) MaterialImportResult {
	result := MaterialImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = DetectCSVDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importMaterialsFromRows(records, "Line")
}

// ImportMaterialsExcel imports a material price list from the first sheet of
// an Excel file.
func ImportMaterialsExcel(path string) MaterialImportResult {
	result := MaterialImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	return importMaterialsFromRows(rows, "Row")
}

func importMaterialsFromRows(rows [][]string, rowPrefix string) MaterialImportResult {
	result := MaterialImportResult{}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := detectMaterialColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Density == -1 {
			missing = append(missing, "Density")
		}
		if mapping.Price == -1 {
			missing = append(missing, "Price")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		mat, errMsg := parseMaterialRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Materials = append(result.Materials, mat)
	}
	return result
}

// bomcost — Parametric Shape & BOM Cost Engine
//
// A command line tool for building bill-of-materials trees from parametric
// templates, calculating weights and costs, and exporting the results.
//
// Build:
//   go build -o bomcost ./cmd/bomcost
//
// Usage:
//   bomcost shapes                                  list the shape library
//   bomcost materials                               list the material catalog
//   bomcost templates                               list stored templates
//   bomcost new -name "Vessel" -out tree.json       create an empty tree
//   bomcost instantiate -template "TEMA BEM" \
//       -param SHELL_DIAMETER=1000 -param SHELL_LENGTH=3000 \
//       -param TUBE_COUNT=100 -out tree.json        build a tree from a template
//   bomcost calc -tree tree.json -xlsx bom.xlsx     roll up and export
//   bomcost import -tree tree.json -parent 1 \
//       -file bought_out.csv                        import bought-out items

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fabworks/bomcost/internal/bom"
	"github.com/fabworks/bomcost/internal/export"
	"github.com/fabworks/bomcost/internal/importer"
	"github.com/fabworks/bomcost/internal/model"
	"github.com/fabworks/bomcost/internal/project"
	"github.com/fabworks/bomcost/internal/template"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "shapes":
		err = cmdShapes(os.Args[2:])
	case "materials":
		err = cmdMaterials(os.Args[2:])
	case "templates":
		err = cmdTemplates(os.Args[2:])
	case "new":
		err = cmdNew(os.Args[2:])
	case "instantiate":
		err = cmdInstantiate(os.Args[2:])
	case "calc":
		err = cmdCalc(os.Args[2:])
	case "import":
		err = cmdImport(os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `bomcost - Parametric Shape & BOM Cost Engine

Commands:
  shapes        list the built-in shape library
  materials     list the material catalog
  templates     list stored BOM templates
  new           create an empty BOM tree file
  instantiate   build a BOM tree from a template
  calc          roll up a tree and export results
  import        import bought-out items from CSV or Excel

Run "bomcost <command> -h" for command flags.`)
}

// paramList collects repeated -param NAME=VALUE flags.
type paramList map[string]float64

func (p paramList) String() string {
	parts := make([]string, 0, len(p))
	for k, v := range p {
		parts = append(parts, fmt.Sprintf("%s=%g", k, v))
	}
	return strings.Join(parts, ",")
}

func (p paramList) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected NAME=VALUE, got %q", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %q is not a number", name, raw)
	}
	p[strings.TrimSpace(name)] = v
	return nil
}

func cmdShapes(args []string) error {
	fs := flag.NewFlagSet("shapes", flag.ExitOnError)
	path := fs.String("file", project.DefaultShapesPath(), "shape library file")
	fs.Parse(args)

	lib, err := project.LoadShapes(*path)
	if err != nil {
		return err
	}
	for _, id := range lib.IDs() {
		def := lib.Get(id)
		fmt.Printf("%-12s v%d  %s (%s)\n", def.ID, def.Version, def.Name, def.Category)
		for _, p := range def.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			detail := req
			if p.Default != nil {
				detail += fmt.Sprintf(", default %g", *p.Default)
			}
			fmt.Printf("    %-8s %-6s %s\n", p.Name, p.Unit, detail)
		}
	}
	return nil
}

func cmdMaterials(args []string) error {
	fs := flag.NewFlagSet("materials", flag.ExitOnError)
	path := fs.String("file", project.DefaultMaterialsPath(), "material catalog file")
	fs.Parse(args)

	catalog, err := project.LoadMaterials(*path)
	if err != nil {
		return err
	}
	for _, m := range catalog.Materials {
		fmt.Printf("%-12s %-28s %-6s %8.0f kg/m3  %8.2f /kg\n",
			m.ID, m.Name, m.Category, m.Density.Value, m.PricePerUnit.Amount)
	}
	return nil
}

func cmdTemplates(args []string) error {
	fs := flag.NewFlagSet("templates", flag.ExitOnError)
	path := fs.String("file", project.DefaultTemplatesPath(), "template store file")
	fs.Parse(args)

	store, err := project.LoadTemplates(*path)
	if err != nil {
		return err
	}
	for _, def := range store.Templates {
		fmt.Printf("%-10s %s\n", def.ID, def.Name)
		if def.Description != "" {
			fmt.Printf("    %s\n", def.Description)
		}
		for _, p := range def.Parameters {
			req := "optional"
			if p.Required {
				req = "required"
			}
			detail := req
			if p.Default != nil {
				detail += fmt.Sprintf(", default %g", *p.Default)
			}
			if p.Min != nil && p.Max != nil {
				detail += fmt.Sprintf(", range %g..%g", *p.Min, *p.Max)
			}
			fmt.Printf("    %-16s %-8s %s\n", p.Name, p.Unit, detail)
		}
	}
	return nil
}

func cmdNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	name := fs.String("name", "New Assembly", "root assembly name")
	out := fs.String("out", "", "output tree file (default ~/.bomcost/trees/<name>.json)")
	fs.Parse(args)

	tree := model.NewBOMTree(*name)
	path := *out
	if path == "" {
		path = project.DefaultTreePath(sanitizeFileName(*name))
	}
	if err := project.SaveTree(path, tree); err != nil {
		return err
	}
	fmt.Printf("created %s (root %q)\n", path, *name)
	return nil
}

func cmdInstantiate(args []string) error {
	fs := flag.NewFlagSet("instantiate", flag.ExitOnError)
	tmplName := fs.String("template", "", "template name or id")
	out := fs.String("out", "", "output tree file (default ~/.bomcost/trees/<template>.json)")
	tmplPath := fs.String("templates", project.DefaultTemplatesPath(), "template store file")
	shapesPath := fs.String("shapes", project.DefaultShapesPath(), "shape library file")
	matPath := fs.String("materials", project.DefaultMaterialsPath(), "material catalog file")
	ratesPath := fs.String("rates", project.DefaultRatesPath(), "cost rates file")
	params := paramList{}
	fs.Var(params, "param", "template parameter NAME=VALUE (repeatable)")
	fs.Parse(args)

	if *tmplName == "" {
		return fmt.Errorf("-template is required")
	}

	store, err := project.LoadTemplates(*tmplPath)
	if err != nil {
		return err
	}
	def := store.FindByName(*tmplName)
	if def == nil {
		def = store.FindByID(*tmplName)
	}
	if def == nil {
		return fmt.Errorf("template %q not found (have: %s)", *tmplName, strings.Join(store.Names(), ", "))
	}

	lib, err := project.LoadShapes(*shapesPath)
	if err != nil {
		return err
	}
	catalog, err := project.LoadMaterials(*matPath)
	if err != nil {
		return err
	}
	rates, err := project.LoadRates(*ratesPath)
	if err != nil {
		return err
	}

	tree, err := template.Instantiate(def, params, lib, catalog, rates)
	if err != nil {
		return err
	}

	summary := bom.NewCalculator(tree, lib, catalog, rates).Rollup()

	path := *out
	if path == "" {
		path = project.DefaultTreePath(sanitizeFileName(def.Name))
	}
	if err := project.SaveTree(path, tree); err != nil {
		return err
	}
	fmt.Printf("instantiated %q: %d items, %.1f kg, final price %.2f\n",
		def.Name, summary.ItemCount, summary.TotalWeight, summary.FinalPrice)
	fmt.Printf("saved %s\n", path)
	return nil
}

func cmdCalc(args []string) error {
	fs := flag.NewFlagSet("calc", flag.ExitOnError)
	treePath := fs.String("tree", "", "BOM tree file")
	shapesPath := fs.String("shapes", project.DefaultShapesPath(), "shape library file")
	matPath := fs.String("materials", project.DefaultMaterialsPath(), "material catalog file")
	ratesPath := fs.String("rates", project.DefaultRatesPath(), "cost rates file")
	xlsxPath := fs.String("xlsx", "", "write BOM workbook to this path")
	pdfPath := fs.String("pdf", "", "write cost summary PDF to this path")
	labelsPath := fs.String("labels", "", "write QR label sheet to this path")
	dxfPath := fs.String("dxf", "", "write blank outlines DXF to this path")
	save := fs.Bool("save", true, "save calculated results back to the tree file")
	fs.Parse(args)

	if *treePath == "" {
		return fmt.Errorf("-tree is required")
	}

	tree, err := project.LoadTree(*treePath)
	if err != nil {
		return err
	}
	lib, err := project.LoadShapes(*shapesPath)
	if err != nil {
		return err
	}
	catalog, err := project.LoadMaterials(*matPath)
	if err != nil {
		return err
	}
	rates, err := project.LoadRates(*ratesPath)
	if err != nil {
		return err
	}

	summary := bom.NewCalculator(tree, lib, catalog, rates).Rollup()
	printSummary(tree, summary)

	if *save {
		if err := project.SaveTree(*treePath, tree); err != nil {
			return err
		}
	}

	if *xlsxPath != "" {
		if err := export.ExportExcel(*xlsxPath, tree, summary); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *xlsxPath)
	}
	if *pdfPath != "" {
		if err := export.ExportPDF(*pdfPath, tree, summary); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *pdfPath)
	}
	if *labelsPath != "" {
		if err := export.ExportLabels(*labelsPath, tree); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *labelsPath)
	}
	if *dxfPath != "" {
		if err := export.ExportBlanksDXF(*dxfPath, tree); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *dxfPath)
	}
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	treePath := fs.String("tree", "", "BOM tree file")
	file := fs.String("file", "", "CSV or Excel file with bought-out items")
	parent := fs.String("parent", "1", "item number of the assembly to import under")
	fs.Parse(args)

	if *treePath == "" || *file == "" {
		return fmt.Errorf("-tree and -file are required")
	}

	tree, err := project.LoadTree(*treePath)
	if err != nil {
		return err
	}
	parentItem := findByItemNumber(tree, *parent)
	if parentItem == nil {
		return fmt.Errorf("no item numbered %q in the tree", *parent)
	}

	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(*file)) {
	case ".xlsx", ".xlsm":
		result = importer.ImportExcel(*file)
	default:
		result = importer.ImportCSV(*file)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
	if len(result.Items) == 0 {
		return fmt.Errorf("no importable items in %s", *file)
	}

	for _, item := range result.Items {
		if err := bom.Attach(tree, parentItem.ID, item, tree.Version); err != nil {
			return fmt.Errorf("attach %q: %w", item.Name, err)
		}
	}
	if err := project.SaveTree(*treePath, tree); err != nil {
		return err
	}
	fmt.Printf("imported %d items under %s %s\n", len(result.Items), parentItem.ItemNumber, parentItem.Name)
	return nil
}

// printSummary writes the rollup results in a compact fixed-width block.
func printSummary(tree *model.BOMTree, summary model.BOMSummary) {
	root := tree.Root()
	fmt.Printf("%s\n", root.Name)
	fmt.Printf("  items            %d (%d assemblies, %d parts, %d raw)\n",
		summary.ItemCount, summary.AssemblyCount, summary.PartCount, summary.RawMaterialCount)
	fmt.Printf("  total weight     %10.1f kg\n", summary.TotalWeight)
	fmt.Printf("  material cost    %10.2f\n", summary.MaterialCost)
	fmt.Printf("  fabrication cost %10.2f\n", summary.FabricationCost)
	fmt.Printf("  subtotal         %10.2f\n", summary.Subtotal)
	fmt.Printf("  overhead         %10.2f\n", summary.Overhead)
	fmt.Printf("  margin           %10.2f\n", summary.Margin)
	fmt.Printf("  final price      %10.2f\n", summary.FinalPrice)
	if summary.Partial {
		fmt.Printf("  WARNING: partial result, %d items failed:\n", len(summary.ItemErrors))
		for id, msg := range summary.ItemErrors {
			name := id
			if item := tree.Item(id); item != nil {
				name = item.ItemNumber + " " + item.Name
			}
			fmt.Printf("    %s: %s\n", name, msg)
		}
	}
}

// findByItemNumber locates an item by its hierarchical number, e.g. "1.2.1".
func findByItemNumber(tree *model.BOMTree, number string) *model.BOMItem {
	var found *model.BOMItem
	tree.Walk(tree.RootID, func(item *model.BOMItem) {
		if item.ItemNumber == number {
			found = item
		}
	})
	return found
}

func sanitizeFileName(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return strings.ToLower(replacer.Replace(name))
}

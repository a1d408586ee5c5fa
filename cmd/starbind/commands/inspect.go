package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/starbind/bindgen/decl"
	"github.com/teranos/starbind/errors"
)

// InspectCmd prints the declaration model.
var InspectCmd = &cobra.Command{
	Use:   "inspect [packages]",
	Short: "Show the declarations starbind found",
	Long: `List every annotated type with the script-side names it will expose.

Examples:
  starbind inspect ./...
  starbind inspect --format json ./example
  starbind inspect --format yaml`,
	RunE: runInspect,
}

func init() {
	addSessionFlags(InspectCmd)
	InspectCmd.Flags().String("format", "table", "Output format: table, json, yaml")
}

// PackageReport is the inspect view of one package.
type PackageReport struct {
	Path     string       `json:"path" yaml:"path"`
	Name     string       `json:"name" yaml:"name"`
	Decls    []DeclReport `json:"decls" yaml:"decls"`
	Compiles []string     `json:"compiles,omitempty" yaml:"compiles,omitempty"`
}

// DeclReport is one declaration and the entries it contributes.
type DeclReport struct {
	Type    string        `json:"type" yaml:"type"`
	Kind    string        `json:"kind" yaml:"kind"`
	Style   string        `json:"style,omitempty" yaml:"style,omitempty"`
	Entries []EntryReport `json:"entries" yaml:"entries"`
	Pos     string        `json:"pos" yaml:"pos"`
}

// EntryReport is a field, variant or routine.
type EntryReport struct {
	Name   string `json:"name" yaml:"name"`
	GoName string `json:"go_name" yaml:"go_name"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "json", "yaml":
	default:
		return errors.Newf("unknown format %q (expected table, json or yaml)", format)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	pkgs, err := s.load(cmd.Context(), args)
	if err != nil {
		return err
	}

	reports := make([]PackageReport, 0, len(pkgs))
	for _, pkg := range pkgs {
		reports = append(reports, report(pkg))
	}
	return render(cmd.OutOrStdout(), format, reports)
}

func report(pkg *decl.Package) PackageReport {
	r := PackageReport{Path: pkg.Path, Name: pkg.Name, Decls: []DeclReport{}}
	for _, c := range pkg.Compiles {
		r.Compiles = append(r.Compiles, c.Text)
	}
	for _, d := range pkg.Decls {
		dr := DeclReport{Type: d.Name, Kind: d.Kind.String(), Pos: d.Pos.String()}
		switch d.Kind {
		case decl.KindRecord:
			for _, f := range d.Record.Fields {
				dr.Entries = append(dr.Entries, EntryReport{Name: f.Name, GoName: f.GoName, Detail: f.Type.Text})
			}
		case decl.KindTaggedUnion:
			dr.Style = d.Union.Style.String()
			for _, v := range d.Union.Variants {
				detail := "unit"
				if !v.IsUnit {
					detail = "data (not bound)"
				}
				dr.Entries = append(dr.Entries, EntryReport{Name: v.Name, GoName: v.GoName, Detail: detail})
			}
		case decl.KindMethodBlock:
			for _, rt := range d.Block.Routines {
				detail := rt.Receiver.String() + ", arity " + strconv.Itoa(rt.Arity())
				if rt.Variadic {
					detail += "+"
				}
				dr.Entries = append(dr.Entries, EntryReport{Name: rt.Name, GoName: rt.GoName, Detail: detail})
			}
		}
		r.Decls = append(r.Decls, dr)
	}
	return r
}

func render(w io.Writer, format string, reports []PackageReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(reports), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return errors.Wrap(enc.Close(), "encode yaml")
	}

	data := pterm.TableData{{"Package", "Type", "Kind", "Script name", "Go name", "Detail"}}
	for _, r := range reports {
		for _, d := range r.Decls {
			kind := d.Kind
			if d.Style != "" {
				kind += " (" + d.Style + ")"
			}
			if len(d.Entries) == 0 {
				data = append(data, []string{r.Path, d.Type, kind, "", "", ""})
			}
			for _, e := range d.Entries {
				data = append(data, []string{r.Path, d.Type, kind, e.Name, e.GoName, e.Detail})
			}
		}
	}
	if len(data) == 1 {
		fmt.Fprintln(w, "no starbind declarations found")
		return nil
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return errors.Wrap(err, "render table")
	}
	for _, r := range reports {
		if len(r.Compiles) > 0 {
			fmt.Fprintf(w, "%s compiles: %s\n", r.Path, strings.Join(r.Compiles, "; "))
		}
	}
	return nil
}

// Package sweep enumerates activation test cases from declarative tables and
// runs them through an engine and the oracle.
package sweep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/eltcheck/internal/activation"
	"github.com/born-ml/eltcheck/internal/layout"
	"github.com/born-ml/eltcheck/internal/oracle"
	"github.com/born-ml/eltcheck/internal/tensor"
)

// DefaultMaxElements bounds the shapes Default() keeps.
const DefaultMaxElements = 1 << 16

// Row is one shape with its requested layouts.
type Row struct {
	Data  tensor.Layout `yaml:"data"`
	Diff  tensor.Layout `yaml:"diff"`
	Shape []int         `yaml:"shape"`
}

// Group is a named table of rows sharing activation parameters.
// Every row is run for every kind in Kinds, or for all kinds when empty.
type Group struct {
	Name  string            `yaml:"name"`
	Kinds []activation.Kind `yaml:"kinds,omitempty"`
	Alpha float32           `yaml:"alpha"`
	Beta  float32           `yaml:"beta"`
	Rows  []Row             `yaml:"rows"`
}

func uniformRows(data, diff tensor.Layout, shapes ...[]int) []Row {
	rows := make([]Row, len(shapes))
	for i, s := range shapes {
		rows[i] = Row{Data: data, Diff: diff, Shape: s}
	}
	return rows
}

var nchwShapes = [][]int{
	{2, 8, 4, 4},
	{2, 16, 4, 4},
	{2, 16, 8, 8},
	{2, 16, 16, 8},
	{2, 16, 10, 8},
	{10, 10, 10, 10},
	{256, 64, 8, 16},
	{1, 1, 1, 1},
	{3, 5, 7, 11},
}

// All returns every built-in group, including the large shapes.
func All() []Group {
	return []Group{
		{
			Name: "SimpleZeroNegativeSlope_NCHW",
			Rows: uniformRows(tensor.NCHW, tensor.NCHW, nchwShapes...),
		},
		{
			Name:  "Simple_NCHW",
			Alpha: 0.1,
			Rows:  uniformRows(tensor.NCHW, tensor.NCHW, nchwShapes...),
		},
		{
			Name:  "Simple",
			Alpha: 0.1,
			Rows: []Row{
				{Data: tensor.NCHW, Diff: tensor.NChw8c, Shape: []int{2, 8, 4, 4}},
				{Data: tensor.NChw8c, Diff: tensor.NCHW, Shape: []int{2, 16, 4, 4}},
				{Data: tensor.NCHW, Diff: tensor.NCHW, Shape: []int{2, 16, 8, 8}},
				{Data: tensor.NChw8c, Diff: tensor.NChw8c, Shape: []int{2, 16, 16, 8}},
				{Data: tensor.NHWC, Diff: tensor.NCHW, Shape: []int{2, 16, 10, 8}},
				{Data: tensor.NCHW, Diff: tensor.NHWC, Shape: []int{10, 10, 10, 10}},
			},
		},
		{
			Name: "AlexNet_NCHW",
			Rows: uniformRows(tensor.NCHW, tensor.NCHW,
				[]int{2, 96, 55, 55},
				[]int{2, 256, 27, 27},
				[]int{2, 384, 13, 13},
			),
		},
	}
}

// Default returns the built-in groups without shapes above DefaultMaxElements.
func Default() []Group {
	return Filter(All(), DefaultMaxElements)
}

// Filter drops rows with more than maxElements elements, and groups left
// empty. maxElements <= 0 keeps everything.
func Filter(groups []Group, maxElements int) []Group {
	if maxElements <= 0 {
		return groups
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		kept := g
		kept.Rows = nil
		for _, r := range g.Rows {
			if tensor.Shape(r.Shape).NumElements() <= maxElements {
				kept.Rows = append(kept.Rows, r)
			}
		}
		if len(kept.Rows) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// Select returns the groups whose names are listed, in table order.
func Select(groups []Group, names ...string) ([]Group, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Group
	for _, g := range groups {
		if want[g.Name] {
			out = append(out, g)
			delete(want, g.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("sweep: unknown groups %v", missing)
	}
	return out, nil
}

// Case is an enumerated test case tagged with its group.
type Case struct {
	Group string
	oracle.TestCase
}

// Expand enumerates one case per group, row and kind, in table order.
func Expand(groups []Group) ([]Case, error) {
	var cases []Case
	for _, g := range groups {
		kinds := g.Kinds
		if len(kinds) == 0 {
			kinds = activation.Kinds
		}
		params := activation.Params{Alpha: g.Alpha, Beta: g.Beta}
		for _, r := range g.Rows {
			for _, k := range kinds {
				tc, err := oracle.NewTestCase(k, params, tensor.Shape(r.Shape), r.Data, r.Diff)
				if err != nil {
					return nil, fmt.Errorf("sweep: group %s: %w", g.Name, err)
				}
				cases = append(cases, Case{Group: g.Name, TestCase: tc})
			}
		}
	}
	return cases, nil
}

// CheckLayouts reports every row whose data or diff layout s does not
// support, so a mistyped tag is caught before any case runs.
func CheckLayouts(groups []Group, s layout.Supporter) error {
	var bad []string
	for _, g := range groups {
		for i, r := range g.Rows {
			for _, tag := range []tensor.Layout{r.Data, r.Diff} {
				if !s.Supports(tag) {
					bad = append(bad, fmt.Sprintf("%s row %d: %q", g.Name, i, tag))
				}
			}
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("sweep: unknown layouts: %s", strings.Join(bad, ", "))
	}
	return nil
}

package gridsearch

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Summary aggregates the completed runs of one depth.
type Summary struct {
	Depth     int
	Completed int
	Mean      float64
	StdDev    float64
	Min       float64
	Max       float64
}

// Summaries returns one Summary per depth over the completed cells.
//
// Depths without completed cells have NaN statistics. StdDev needs at least
// two completed runs and is NaN otherwise.
func (r *Results) Summaries() []Summary {
	out := make([]Summary, r.depths)
	for d := range r.depths {
		var losses []float64
		for run := range r.runs {
			if Status(r.status.At(run, d)) != Pending {
				losses = append(losses, r.bestLoss.At(run, d))
			}
		}

		s := Summary{Depth: d, Completed: len(losses), Mean: math.NaN(), StdDev: math.NaN(), Min: math.NaN(), Max: math.NaN()}
		if len(losses) > 0 {
			s.Mean = stat.Mean(losses, nil)
			s.Min = floats.Min(losses)
			s.Max = floats.Max(losses)
		}
		if len(losses) > 1 {
			s.StdDev = stat.StdDev(losses, nil)
		}
		out[d] = s
	}
	return out
}

// BestDepth returns the depth with the lowest mean best loss, or -1 when no
// cell has completed.
func (r *Results) BestDepth() int {
	best, bestMean := -1, math.Inf(1)
	for _, s := range r.Summaries() {
		if s.Completed > 0 && s.Mean < bestMean {
			best, bestMean = s.Depth, s.Mean
		}
	}
	return best
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1).Align(lipgloss.Right)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1).Align(lipgloss.Right)
	bestRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}).
			Bold(true).
			PaddingLeft(1).PaddingRight(1).Align(lipgloss.Right)
)

// Table renders the per-depth summaries, highlighting the best depth.
func (r *Results) Table() string {
	best := r.BestDepth()
	summaries := r.Summaries()

	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("depth", "runs", "mean", "std", "min", "max").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return headerRowStyle
			case row >= 0 && row < len(summaries) && summaries[row].Depth == best:
				return bestRowStyle
			case row%2 == 0:
				return oddRowStyle
			default:
				return evenRowStyle
			}
		})

	for _, s := range summaries {
		t.Row(
			strconv.Itoa(s.Depth),
			fmt.Sprintf("%d/%d", s.Completed, r.runs),
			formatLoss(s.Mean),
			formatLoss(s.StdDev),
			formatLoss(s.Min),
			formatLoss(s.Max),
		)
	}
	return t.Render()
}

func formatLoss(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// SavePlot draws the best loss of every completed cell against depth, with
// the per-depth mean as a line, and saves it to path. The image format
// follows the extension (.png, .svg, .pdf, ...).
func (r *Results) SavePlot(path string) error {
	p := plot.New()
	p.Title.Text = "Best training loss by depth"
	p.X.Label.Text = "depth (hidden blocks)"
	p.Y.Label.Text = "best loss"
	p.Add(plotter.NewGrid())

	var cells, means plotter.XYs
	for _, s := range r.Summaries() {
		if s.Completed == 0 {
			continue
		}
		means = append(means, plotter.XY{X: float64(s.Depth), Y: s.Mean})
		for run := range r.runs {
			if Status(r.status.At(run, s.Depth)) != Pending {
				cells = append(cells, plotter.XY{X: float64(s.Depth), Y: r.bestLoss.At(run, s.Depth)})
			}
		}
	}
	if len(means) == 0 {
		return errors.New("no completed cells to plot")
	}

	scatter, err := plotter.NewScatter(cells)
	if err != nil {
		return errors.Wrap(err, "building run scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(2)

	line, points, err := plotter.NewLinePoints(means)
	if err != nil {
		return errors.Wrap(err, "building mean line")
	}
	line.Width = vg.Points(1.5)

	p.Add(scatter, line, points)
	p.Legend.Add("runs", scatter)
	p.Legend.Add("mean", line, points)
	p.Legend.Top = true

	return errors.Wrapf(p.Save(6*vg.Inch, 4*vg.Inch, path), "saving plot %q", path)
}

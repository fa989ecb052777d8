package stat

import (
	"fmt"
	"strings"
)

// Line is one polyline of a chart, ready for an SVG points attribute.
type Line struct {
	Action string
	Color  string
	Points string
}

type Chart struct {
	Width, Height int
	Max           int
	Lines         []Line
	Labels        []string
}

var actionColors = map[string]string{
	"Read":   "#8884d8",
	"Create": "#82ca9d",
	"Update": "#ffc658",
	"Delete": "#ff0000",
}

// BuildChart scales a series into a width x height box, one line per action.
func BuildChart(points []Point, width, height int) Chart {
	c := Chart{Width: width, Height: height}
	for _, p := range points {
		for _, a := range Actions {
			if p.Counts[a] > c.Max {
				c.Max = p.Counts[a]
			}
		}
		c.Labels = append(c.Labels, p.At.Format("2006-01-02 15:04"))
	}

	for _, a := range Actions {
		var b strings.Builder
		for i, p := range points {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d,%d", xPos(i, len(points), width), yPos(p.Counts[a], c.Max, height))
		}
		c.Lines = append(c.Lines, Line{Action: a, Color: actionColors[a], Points: b.String()})
	}
	return c
}

func xPos(i, n, width int) int {
	if n <= 1 {
		return 0
	}
	return i * width / (n - 1)
}

func yPos(v, max, height int) int {
	if max == 0 {
		return height
	}
	return height - v*height/max
}

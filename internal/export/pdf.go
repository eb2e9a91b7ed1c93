package export

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"github.com/bluehawk13/cost-ai-navigator/pkg/schema"
)

// Landscape A4 is 297x210mm. The diagram occupies a fixed region under the
// title block; node positions are linearly scaled into it.
const (
	pageWidth  = 297.0
	pageHeight = 210.0
	margin     = 15.0

	diagramTop    = 55.0
	diagramBottom = pageHeight - margin

	nodeBoxWidth  = 40.0
	nodeBoxHeight = 16.0
)

// rgb is a fill color keyed by node type.
type rgb struct{ r, g, b int }

var typeColors = map[schema.NodeType]rgb{
	schema.NodeTypeDataSource:  {96, 165, 250},
	schema.NodeTypeAIModel:     {167, 139, 250},
	schema.NodeTypeDatabase:    {52, 211, 153},
	schema.NodeTypeLogic:       {251, 191, 36},
	schema.NodeTypeOutput:      {248, 113, 113},
	schema.NodeTypeCloud:       {34, 211, 238},
	schema.NodeTypeCompute:     {251, 146, 60},
	schema.NodeTypeIntegration: {244, 114, 182},
}

var defaultColor = rgb{156, 163, 175}

// PDF renders the graph into a paginated document: page one carries the
// title, a summary line and the scaled diagram; each node then gets a text
// block on the following pages listing its type, subtype, provider and config.
func PDF(w io.Writer, workflowName string, nodes []*schema.Node, edges []*schema.Edge) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, margin)

	drawDiagramPage(pdf, workflowName, nodes, edges)
	drawConfigPages(pdf, nodes)

	if err := pdf.Output(w); err != nil {
		return schema.NewError(schema.ErrCodeExport, "render pdf").WithCause(err)
	}
	return nil
}

func drawDiagramPage(pdf *gofpdf.Fpdf, workflowName string, nodes []*schema.Node, edges []*schema.Edge) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageWidth-2*margin, 10, workflowName, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetX(margin)
	pdf.CellFormat(pageWidth-2*margin, 7,
		fmt.Sprintf("%d components, %d connections", len(nodes), len(edges)),
		"", 1, "L", false, 0, "")

	if len(nodes) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.SetXY(margin, diagramTop)
		pdf.CellFormat(pageWidth-2*margin, 7, "Empty workflow", "", 1, "L", false, 0, "")
		return
	}

	centers := scalePositions(nodes)

	// Edges first so node boxes sit on top of the lines.
	pdf.SetDrawColor(107, 114, 128)
	pdf.SetLineWidth(0.4)
	for _, e := range edges {
		src, okSrc := centers[e.Source]
		dst, okDst := centers[e.Target]
		if !okSrc || !okDst {
			continue
		}
		pdf.Line(src.x, src.y, dst.x, dst.y)
		drawArrowhead(pdf, src, dst)
	}

	pdf.SetFont("Helvetica", "B", 8)
	for _, n := range nodes {
		c := centers[n.ID]
		color, ok := typeColors[n.Type]
		if !ok {
			color = defaultColor
		}
		pdf.SetFillColor(color.r, color.g, color.b)
		pdf.SetDrawColor(55, 65, 81)
		x := c.x - nodeBoxWidth/2
		y := c.y - nodeBoxHeight/2
		pdf.RoundedRect(x, y, nodeBoxWidth, nodeBoxHeight, 2.5, "1234", "FD")

		pdf.SetTextColor(17, 24, 39)
		pdf.SetXY(x, y+2)
		pdf.CellFormat(nodeBoxWidth, 6, truncate(labelOf(n), 22), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetX(x)
		pdf.CellFormat(nodeBoxWidth, 5, string(n.Type), "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "B", 8)
	}
	pdf.SetTextColor(0, 0, 0)
}

type point struct{ x, y float64 }

// scalePositions maps node canvas coordinates into the diagram region by
// linearly scaling their bounding box. A single node (or coincident nodes)
// lands in the region's center.
func scalePositions(nodes []*schema.Node) map[string]point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X)
		maxY = math.Max(maxY, n.Position.Y)
	}

	regionLeft := margin + nodeBoxWidth/2
	regionRight := pageWidth - margin - nodeBoxWidth/2
	regionTop := diagramTop + nodeBoxHeight/2
	regionBot := diagramBottom - nodeBoxHeight/2

	spanX := maxX - minX
	spanY := maxY - minY

	centers := make(map[string]point, len(nodes))
	for _, n := range nodes {
		x := (regionLeft + regionRight) / 2
		y := (regionTop + regionBot) / 2
		if spanX > 0 {
			x = regionLeft + (n.Position.X-minX)/spanX*(regionRight-regionLeft)
		}
		if spanY > 0 {
			y = regionTop + (n.Position.Y-minY)/spanY*(regionBot-regionTop)
		}
		centers[n.ID] = point{x, y}
	}
	return centers
}

// drawArrowhead places a small filled triangle near the target end of an edge.
func drawArrowhead(pdf *gofpdf.Fpdf, src, dst point) {
	dx, dy := dst.x-src.x, dst.y-src.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length

	// Pull the tip back so it is not hidden under the target box.
	tip := point{dst.x - ux*nodeBoxWidth/2, dst.y - uy*nodeBoxHeight/2}
	const size = 2.5
	left := point{tip.x - ux*size - uy*size/1.6, tip.y - uy*size + ux*size/1.6}
	right := point{tip.x - ux*size + uy*size/1.6, tip.y - uy*size - ux*size/1.6}

	pdf.SetFillColor(107, 114, 128)
	pdf.Polygon([]gofpdf.PointType{
		{X: tip.x, Y: tip.y},
		{X: left.x, Y: left.y},
		{X: right.x, Y: right.y},
	}, "F")
}

func drawConfigPages(pdf *gofpdf.Fpdf, nodes []*schema.Node) {
	if len(nodes) == 0 {
		return
	}
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(pageWidth-2*margin, 9, "Component Configuration", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, n := range nodes {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(pageWidth-2*margin, 7, labelOf(n), "B", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		writePDFLine(pdf, "Type", string(n.Type))
		if n.Subtype != "" {
			writePDFLine(pdf, "Subtype", n.Subtype)
		}
		if n.Provider != "" {
			writePDFLine(pdf, "Provider", n.Provider)
		}
		if n.Description != "" {
			writePDFLine(pdf, "Description", n.Description)
		}

		keys := make([]string, 0, len(n.Config))
		for k := range n.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writePDFLine(pdf, k, fmt.Sprintf("%v", n.Config[k]))
		}
		pdf.Ln(4)
	}
}

func writePDFLine(pdf *gofpdf.Fpdf, key, value string) {
	pdf.CellFormat(50, 5.5, key, "", 0, "L", false, 0, "")
	pdf.MultiCell(pageWidth-2*margin-50, 5.5, value, "", "L", false)
}

func labelOf(n *schema.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

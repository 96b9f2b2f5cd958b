// Package pdf implementa la generación del acta de entrega de materiales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Almacén  │  N° Solicitud + Fecha de entrega        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE: Usuario / Instructor / Propósito              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Solic. | Aprob. | Entreg. | Peso | Dev.  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Entrega / Recibe                                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 50, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// DeliveryNoteGenerator implementa ports.DeliveryNoteGenerator usando Maroto v2.
type DeliveryNoteGenerator struct {
	warehouseName string
}

// NewDeliveryNoteGenerator construye el generador.
func NewDeliveryNoteGenerator(warehouseName string) *DeliveryNoteGenerator {
	if warehouseName == "" {
		warehouseName = "Almacén de Materiales"
	}
	return &DeliveryNoteGenerator{warehouseName: warehouseName}
}

// Generate genera el acta de entrega y devuelve sus bytes.
func (g *DeliveryNoteGenerator) Generate(_ context.Context, req *entity.Request, products map[string]*entity.Product) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta de Entrega "+req.RequestNumber, true).
		WithAuthor(g.warehouseName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(req))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(solicitanteRow(req))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(req, products) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	if req.Notes != "" {
		m.AddRows(notesRow(req.Notes))
	}
	m.AddRows(line.NewRow(6))
	m.AddRows(firmasRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del almacén (izq) y N° solicitud + fecha (der).
func (g *DeliveryNoteGenerator) headerRow(req *entity.Request) core.Row {
	fecha := "—"
	if req.DeliveryDate != nil {
		fecha = req.DeliveryDate.Format("02/01/2006 15:04")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.warehouseName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Acta de entrega de materiales", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("SOLICITUD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(req.RequestNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Entrega: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// solicitanteRow: datos del solicitante y del préstamo.
func solicitanteRow(req *entity.Request) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("DATOS DE LA SOLICITUD", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Solicitante: %s   |   Instructor: %s",
				req.UserID,
				nonEmpty(req.SupervisingInstructor, "—"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(fmt.Sprintf("Propósito: %s   |   Período estimado: %s",
				nonEmpty(req.Purpose, "—"),
				nonEmpty(req.EstimatedUsagePeriod, "—"),
			), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Solic.", 1, align.Right),
		h("Aprob.", 1, align.Right),
		h("Entreg.", 2, align.Right),
		h("Peso", 2, align.Right),
		h("Devuelto", 2, align.Right),
	)
}

// tableItemRows: una fila por ítem; la desviación de peso pendiente de
// revisión se resalta en el nombre.
func tableItemRows(req *entity.Request, products map[string]*entity.Product) []core.Row {
	result := make([]core.Row, 0, len(req.Items))
	for _, it := range req.Items {
		name := it.ProductID
		if p, ok := products[it.ProductID]; ok {
			name = p.Name
		}
		nameColor := colorGray
		if it.ReviewFlag {
			name += " (*)"
			nameColor = colorAlert
		}
		result = append(result, row.New(7).Add(
			col.New(4).Add(text.New(name, props.Text{
				Size: 8, Align: align.Left, Top: 1, Left: 1, Color: nameColor,
			})),
			col.New(1).Add(qtyText(it.RequestedQty)),
			col.New(1).Add(qtyText(it.ApprovedQty)),
			col.New(2).Add(qtyText(it.DeliveredQty)),
			col.New(2).Add(weightText(it.DeliveredWeight)),
			col.New(2).Add(qtyText(it.ReturnedQty)),
		))
	}
	return result
}

// notesRow: observaciones registradas al cierre.
func notesRow(notes string) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("Observaciones: "+notes, props.Text{
			Size: 8, Color: colorGray, Top: 2,
		}),
	))
}

// firmasRow: espacios de firma para quien entrega y quien recibe.
func firmasRow() core.Row {
	firma := func(label string) core.Col {
		return col.New(6).Add(
			text.New("_______________________________", props.Text{
				Size: 9, Align: align.Center, Top: 10, Color: colorGray,
			}),
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 16,
			}),
		)
	}
	return row.New(22).Add(
		firma("ENTREGA (Almacén)"),
		firma("RECIBE (Solicitante)"),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func qtyText(q decimal.Decimal) core.Component {
	return text.New(q.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})
}

func weightText(w *decimal.Decimal) core.Component {
	s := "—"
	if w != nil {
		s = w.StringFixed(2) + " kg"
	}
	return text.New(s, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

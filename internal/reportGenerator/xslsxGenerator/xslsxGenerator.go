package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/portfolio"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Portfolio"
	notAvail  = "N/A"
)

var headers = []string{
	"Stock", "Name", "Exchange", "Sector", "Purchase Price", "Qty", "Investment", "Portfolio %",
	"CMP", "Present Value", "Gain/Loss", "Gain/Loss %", "P/E Ratio", "Latest EPS",
}

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate writes rows in the given order followed by the summary.
func (g *XSLSXGenerator) Generate(ctx context.Context, rows []portfolio.Row, summary portfolio.Summary) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rows", len(rows)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = f.SetSheetName("Sheet1", SheetName); err != nil {
		slog.Error("got error while renaming Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err = g.fillHeader(f); err != nil {
		slog.Error("got error while filling header", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	for i, row := range rows {
		if err = g.fillRow(f, i+2, row); err != nil {
			slog.Error("got error while filling row", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	if err = g.fillSummary(f, len(rows)+4, summary); err != nil {
		slog.Error("got error while filling summary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillHeader(f *excelize.File) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		if err = f.SetCellStr(SheetName, cell(i+1, 1), h); err != nil {
			return err
		}
	}

	if err = f.SetCellStyle(SheetName, cell(1, 1), cell(len(headers), 1), styleID); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (g *XSLSXGenerator) fillRow(f *excelize.File, rowNum int, row portfolio.Row) error {
	values := []any{
		row.Symbol,
		row.Name,
		string(row.Exchange),
		row.Sector,
		row.PurchasePrice.InexactFloat64(),
		row.Quantity.InexactFloat64(),
		row.Investment.InexactFloat64(),
		nullValue(row.PortfolioPercentage),
		row.CurrentPrice.InexactFloat64(),
		row.PresentValue.InexactFloat64(),
		row.GainLoss.InexactFloat64(),
		nullValue(row.GainLossPercent),
		nullValue(row.PERatio),
		nullValue(row.LatestEarnings),
	}

	return f.SetSheetRow(SheetName, cell(1, rowNum), &values)
}

func (g *XSLSXGenerator) fillSummary(f *excelize.File, rowNum int, summary portfolio.Summary) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#d9ead3"},
		},
	})
	if err != nil {
		return err
	}

	lines := [][]any{
		{"Total Investment", summary.TotalInvestment.InexactFloat64()},
		{"Total Current Value", summary.TotalCurrentValue.InexactFloat64()},
		{"Total Gain/Loss", summary.TotalGainLoss.InexactFloat64()},
		{"Total Gain/Loss %", nullValue(summary.TotalGainLossPercent)},
		{"Positions", summary.PositionsCount},
	}

	for i, line := range lines {
		if err = f.SetSheetRow(SheetName, cell(1, rowNum+i), &line); err != nil {
			return err
		}
	}

	return f.SetCellStyle(SheetName, cell(1, rowNum), cell(1, rowNum+len(lines)-1), styleID)
}

func nullValue(d decimal.NullDecimal) any {
	if !d.Valid {
		return notAvail
	}
	return d.Decimal.InexactFloat64()
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/investview/invest_tracker_api/internal/model"
	"github.com/investview/invest_tracker_api/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Carteira"

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

func (g *XSLSXGenerator) Generate(ctx context.Context, overview model.PortfolioOverview, wallets []model.Wallet) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSheet(f, overview, wallets); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSheet(f *excelize.File, overview model.PortfolioOverview, wallets []model.Wallet) error {
	_, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
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

	if err := f.MergeCell(sheetName, "A1", "I1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Posições (preços de %s)", overview.PricesUpdatedAt))
	if err := f.SetCellStyle(sheetName, "A1", "A1", headerStyle); err != nil {
		return err
	}

	walletNames := make(map[int64]string, len(wallets))
	for _, w := range wallets {
		walletNames[w.WalletID] = w.Name
	}

	_ = f.SetCellStr(sheetName, "A2", "ticker")
	_ = f.SetCellStr(sheetName, "B2", "nome")
	_ = f.SetCellStr(sheetName, "C2", "tipo")
	_ = f.SetCellStr(sheetName, "D2", "carteira")
	_ = f.SetCellStr(sheetName, "E2", "quantidade")
	_ = f.SetCellStr(sheetName, "F2", "preço médio")
	_ = f.SetCellStr(sheetName, "G2", "investido")
	_ = f.SetCellStr(sheetName, "H2", "valor atual")
	_ = f.SetCellStr(sheetName, "I2", "lucro")

	row := 3
	for _, p := range overview.Positions {
		_ = f.SetCellStr(sheetName, cell("A", row), p.Key.Ticker)
		_ = f.SetCellStr(sheetName, cell("B", row), p.Name)
		_ = f.SetCellStr(sheetName, cell("C", row), p.Type.Label())
		_ = f.SetCellStr(sheetName, cell("D", row), walletNames[p.WalletID])
		setDecimalCell(f, cell("E", row), p.Quantity)
		setDecimalCell(f, cell("F", row), p.BuyPrice)
		setDecimalCell(f, cell("G", row), p.Valuation.TotalInvested)
		setDecimalCell(f, cell("H", row), p.Valuation.CurrentValue)
		setDecimalCell(f, cell("I", row), p.Valuation.TotalProfit)
		row++
	}

	// summary block below the positions
	row++
	if err := f.MergeCell(sheetName, cell("A", row), cell("B", row)); err != nil {
		return err
	}
	f.SetCellValue(sheetName, cell("A", row), "Resumo")
	if err := f.SetCellStyle(sheetName, cell("A", row), cell("A", row), headerStyle); err != nil {
		return err
	}

	row++
	_ = f.SetCellStr(sheetName, cell("A", row), "investido")
	setDecimalCell(f, cell("B", row), overview.Metrics.PortfolioValue)
	row++
	_ = f.SetCellStr(sheetName, cell("A", row), "valor atual")
	setDecimalCell(f, cell("B", row), overview.Metrics.CurrentValue)
	row++
	_ = f.SetCellStr(sheetName, cell("A", row), "lucro")
	setDecimalCell(f, cell("B", row), overview.Metrics.TotalProfit)
	row++
	_ = f.SetCellStr(sheetName, cell("A", row), "lucro %")
	setDecimalCell(f, cell("B", row), overview.Metrics.TotalProfitPercentage.Mul(decimal.NewFromInt(100)))

	return nil
}

func cell(column string, row int) string {
	return fmt.Sprintf("%s%d", column, row)
}

func setDecimalCell(f *excelize.File, cellRef string, d decimal.Decimal) {
	val, _ := d.Float64()
	_ = f.SetCellFloat(sheetName, cellRef, val, 2, 64)
}

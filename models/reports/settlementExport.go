package reports

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nplaceworks/adrank_backend/models"
	"github.com/xuri/excelize/v2"
)

// BuildSettlementWorkbook lays settlements out on Sheet1, one row per
// settled day.
func BuildSettlementWorkbook(settlements []models.GuaranteeSlotSettlement) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetCellValue("Sheet1", "A1", "SettlementDate")
	f.SetCellValue("Sheet1", "B1", "SlotId")
	f.SetCellValue("Sheet1", "C1", "TargetRank")
	f.SetCellValue("Sheet1", "D1", "AchievedRank")
	f.SetCellValue("Sheet1", "E1", "Achieved")
	f.SetCellValue("Sheet1", "F1", "PayoutAmount")

	for i, s := range settlements {
		row := fmt.Sprint(i + 2)
		f.SetCellValue("Sheet1", "A"+row, s.SettlementDate)
		f.SetCellValue("Sheet1", "B"+row, s.SlotId)
		f.SetCellValue("Sheet1", "C"+row, s.TargetRank)
		f.SetCellValue("Sheet1", "D"+row, s.AchievedRank)
		f.SetCellValue("Sheet1", "E"+row, s.Achieved)
		f.SetCellValue("Sheet1", "F"+row, s.PayoutAmount.String())
	}
	return f, nil
}

// ExportSettlements streams the settlement workbook for a date range.
func ExportSettlements(ctx context.Context, w http.ResponseWriter, fromDate, toDate string) error {
	settlements, err := models.ListSettlementsForExport(ctx, fromDate, toDate)
	if err != nil {
		return err
	}
	f, err := BuildSettlementWorkbook(settlements)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=settlements.xlsx")
	return f.Write(w)
}

// BuildLedgerWorkbook lays a user's ledger tail out on Sheet1.
func BuildLedgerWorkbook(entries []models.GuaranteeSlotTransaction) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		return nil, err
	}

	f.SetCellValue("Sheet1", "A1", "Date")
	f.SetCellValue("Sheet1", "B1", "Type")
	f.SetCellValue("Sheet1", "C1", "SlotId")
	f.SetCellValue("Sheet1", "D1", "Amount")
	f.SetCellValue("Sheet1", "E1", "BalanceBefore")
	f.SetCellValue("Sheet1", "F1", "BalanceAfter")
	f.SetCellValue("Sheet1", "G1", "Description")

	for i, e := range entries {
		row := fmt.Sprint(i + 2)
		f.SetCellValue("Sheet1", "A"+row, e.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue("Sheet1", "B"+row, string(e.Type))
		f.SetCellValue("Sheet1", "C"+row, e.SlotId)
		f.SetCellValue("Sheet1", "D"+row, e.Amount.String())
		f.SetCellValue("Sheet1", "E"+row, e.BalanceBefore.String())
		f.SetCellValue("Sheet1", "F"+row, e.BalanceAfter.String())
		f.SetCellValue("Sheet1", "G"+row, e.Description)
	}
	return f, nil
}

// ExportLedger streams a user's ledger workbook.
func ExportLedger(ctx context.Context, w http.ResponseWriter, userId int) error {
	entries, err := models.ListLedgerEntries(ctx, userId, 100, 0)
	if err != nil {
		return err
	}
	f, err := BuildLedgerWorkbook(entries)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=ledger.xlsx")
	return f.Write(w)
}

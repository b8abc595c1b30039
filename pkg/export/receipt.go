package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ReceiptPayment is one settled payment line on a receipt.
type ReceiptPayment struct {
	Amount        float64
	Method        string
	TransactionID string
	PaidBy        string
	PaidAt        time.Time
}

// Receipt carries everything needed to render a fee payment receipt.
type Receipt struct {
	SchoolName   string
	FeeID        string
	StudentName  string
	StudentClass string
	FeeType      string
	Amount       float64
	PaidAmount   float64
	Remaining    float64
	Status       string
	Payments     []ReceiptPayment
	GeneratedAt  time.Time
}

// ReceiptRenderer produces PDF receipts for fee payments.
type ReceiptRenderer struct{}

// NewReceiptRenderer constructs a receipt renderer.
func NewReceiptRenderer() *ReceiptRenderer {
	return &ReceiptRenderer{}
}

// Render builds the receipt PDF.
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	if receipt.FeeID == "" {
		return nil, fmt.Errorf("receipt requires a fee id")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, receipt.SchoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, "Fee Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	summary := [][2]string{
		{"Receipt Date", receipt.GeneratedAt.Format("02 Jan 2006 15:04")},
		{"Fee ID", receipt.FeeID},
		{"Student", receipt.StudentName},
		{"Class", receipt.StudentClass},
		{"Fee Type", receipt.FeeType},
		{"Total Amount", fmt.Sprintf("%.2f", receipt.Amount)},
		{"Paid Amount", fmt.Sprintf("%.2f", receipt.PaidAmount)},
		{"Remaining", fmt.Sprintf("%.2f", receipt.Remaining)},
		{"Status", receipt.Status},
	}
	for _, row := range summary {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 7, row[0], "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, row[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"Date", "Amount", "Method", "Transaction", "Paid By"}
	widths := []float64{35, 25, 35, 55, 30}
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, payment := range receipt.Payments {
		pdf.CellFormat(widths[0], 7, payment.PaidAt.Format("02 Jan 2006"), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%.2f", payment.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, payment.Method, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, payment.TransactionID, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[4], 7, payment.PaidBy, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}
	if len(receipt.Payments) == 0 {
		pdf.CellFormat(180, 7, "No payments recorded", "1", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

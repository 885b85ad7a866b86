package infra

// pdf.go — A4 document rendering with go-pdf/fpdf.
// Two document kinds are produced from an order snapshot:
//   - Quote ("BÁO GIÁ"): item table with unit prices, VAT, a bold total and
//     the amount spelled out in words.
//   - Delivery note ("PHIẾU GIAO HÀNG"): item table without prices, with a
//     notes column and signature blocks.
//
// Vietnamese text needs a UTF-8 TTF font. When PDFConfig.FontPath points at
// one it is registered and used as-is; otherwise we fall back to Helvetica
// plus fpdf's cp1258 translator, which degrades some diacritics but never
// fails to render.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/NguyenNamVlog/quan-ly-in-an/internal/finance"
	"github.com/NguyenNamVlog/quan-ly-in-an/internal/model"
)

// PDFConfig carries the letterhead and font settings shared by all documents.
type PDFConfig struct {
	CompanyName    string
	CompanyAddress string
	FontPath       string // optional UTF-8 TTF
	StoragePath    string
}

const (
	pdfMargin = 15.0
)

// docFileName turns an order code like "003/DH.25" into a filesystem-safe
// name, e.g. quote_003_DH_25.pdf.
func docFileName(prefix, orderCode string) string {
	safe := strings.NewReplacer("/", "_", ".", "_").Replace(orderCode)
	return fmt.Sprintf("%s_%s.pdf", prefix, safe)
}

// newDocument creates an A4 page and returns the pdf handle, the font family
// to use and a text translator (identity when a UTF-8 font is loaded).
func newDocument(cfg PDFConfig) (*fpdf.Fpdf, string, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AddPage()

	if cfg.FontPath != "" {
		pdf.AddUTF8Font("doc", "", cfg.FontPath)
		pdf.AddUTF8Font("doc", "B", cfg.FontPath)
		pdf.AddUTF8Font("doc", "I", cfg.FontPath)
		if !pdf.Err() {
			return pdf, "doc", func(s string) string { return s }
		}
		// Bad font file: clear the error and fall through to Helvetica.
		pdf.SetError(nil)
	}
	return pdf, "Helvetica", pdf.UnicodeTranslatorFromDescriptor("cp1258")
}

func renderHeader(pdf *fpdf.Fpdf, font string, tr func(string) string, cfg PDFConfig, title string, order *model.Order) float64 {
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*pdfMargin

	pdf.SetFont(font, "B", 13)
	pdf.CellFormat(contentW, 7, tr(cfg.CompanyName), "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 9)
	pdf.CellFormat(contentW, 5, tr(cfg.CompanyAddress), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(font, "B", 16)
	pdf.CellFormat(contentW, 9, tr(title), "", 1, "C", false, 0, "")

	pdf.SetFont(font, "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Số: %s    Ngày: %s", order.Code, order.Date.Format("02/01/2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// Customer block
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(contentW, 6, tr("Khách hàng: "+order.Customer.Name), "", 1, "L", false, 0, "")
	if order.Customer.Phone != "" {
		pdf.CellFormat(contentW, 6, tr("Điện thoại: "+order.Customer.Phone), "", 1, "L", false, 0, "")
	}
	if order.Customer.Address != "" {
		pdf.CellFormat(contentW, 6, tr("Địa chỉ: "+order.Customer.Address), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	return contentW
}

func renderSignatures(pdf *fpdf.Fpdf, font string, tr func(string) string, contentW float64) {
	pdf.Ln(10)
	half := contentW / 2
	pdf.SetFont(font, "B", 10)
	pdf.CellFormat(half, 6, tr("KHÁCH HÀNG"), "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 6, tr("ĐẠI DIỆN XƯỞNG IN"), "", 1, "C", false, 0, "")
	pdf.SetFont(font, "I", 8)
	pdf.CellFormat(half, 5, tr("(Ký, ghi rõ họ tên)"), "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 5, tr("(Ký, ghi rõ họ tên)"), "", 1, "C", false, 0, "")
}

// GenerateQuotePDF renders the priced quote for an order and returns the
// absolute path of the written file.
func GenerateQuotePDF(order *model.Order, cfg PDFConfig) (string, error) {
	if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(cfg.StoragePath, docFileName("quote", order.Code))

	pdf, font, tr := newDocument(cfg)
	contentW := renderHeader(pdf, font, tr, cfg, "BÁO GIÁ", order)

	// Column widths: # | name | unit | qty | unit price | VAT | line total
	colNo := contentW * 0.06
	colName := contentW * 0.30
	colUnit := contentW * 0.08
	colQty := contentW * 0.10
	colPrice := contentW * 0.16
	colVAT := contentW * 0.10
	colTotal := contentW * 0.20

	pdf.SetFont(font, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colNo, 7, tr("STT"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colName, 7, tr("Tên hàng"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colUnit, 7, tr("ĐVT"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colQty, 7, tr("SL"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colPrice, 7, tr("Đơn giá"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colVAT, 7, tr("VAT"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colTotal, 7, tr("Thành tiền"), "1", 1, "C", true, 0, "")

	pdf.SetFont(font, "", 9)
	for i, item := range order.Items {
		fig := finance.ComputeLine(item.Line())
		pdf.CellFormat(colNo, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colName, 7, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colUnit, 7, tr(item.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colQty, 7, finance.FormatAmount(item.Qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colPrice, 7, finance.FormatAmount(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colVAT, 7, item.VATRate.String()+"%", "1", 0, "C", false, 0, "")
		pdf.CellFormat(colTotal, 7, finance.FormatAmount(fig.Total), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont(font, "B", 10)
	pdf.CellFormat(contentW-colTotal, 8, tr("TỔNG CỘNG"), "1", 0, "R", false, 0, "")
	pdf.CellFormat(colTotal, 8, finance.FormatAmount(order.Financial.Total), "1", 1, "R", false, 0, "")

	pdf.SetFont(font, "I", 9)
	pdf.CellFormat(contentW, 7, tr("Bằng chữ: "+finance.AmountInWords(order.Financial.Total)), "", 1, "L", false, 0, "")

	renderSignatures(pdf, font, tr, contentW)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// GenerateDeliveryNotePDF renders the delivery note: the same item rows as
// the quote, but with no money columns.
func GenerateDeliveryNotePDF(order *model.Order, cfg PDFConfig) (string, error) {
	if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(cfg.StoragePath, docFileName("delivery", order.Code))

	pdf, font, tr := newDocument(cfg)
	contentW := renderHeader(pdf, font, tr, cfg, "PHIẾU GIAO HÀNG", order)

	colNo := contentW * 0.08
	colName := contentW * 0.42
	colUnit := contentW * 0.10
	colQty := contentW * 0.14
	colNote := contentW * 0.26

	pdf.SetFont(font, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colNo, 7, tr("STT"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colName, 7, tr("Tên hàng"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colUnit, 7, tr("ĐVT"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colQty, 7, tr("SL"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(colNote, 7, tr("Ghi chú"), "1", 1, "C", true, 0, "")

	pdf.SetFont(font, "", 9)
	for i, item := range order.Items {
		pdf.CellFormat(colNo, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colName, 7, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colUnit, 7, tr(item.Unit), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colQty, 7, finance.FormatAmount(item.Qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colNote, 7, "", "1", 1, "L", false, 0, "")
	}

	renderSignatures(pdf, font, tr, contentW)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

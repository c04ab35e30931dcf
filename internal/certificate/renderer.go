package certificate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Data carries everything the certificate shows, already resolved by the
// caller. Rendering is pure: same Data in, same bytes out, except for the
// GeneratedAt stamp.
type Data struct {
	CertificateID uuid.UUID
	IssuedAt      time.Time
	GeneratedAt   time.Time

	TrackTitle   string
	ArtistName   string
	ArtistHandle string
	GenreName    string
	Duration     string
	BPM          *int
	Key          string

	BuyerName   string
	BuyerEmail  string
	BuyerHandle string

	LicenseName         string
	LicenseDescription  string
	AllowsCommercialUse bool
	AllowsModification  bool
	RequiresAttribution bool
	MaxCopies           *int

	PricePaid decimal.Decimal
	Currency  string

	DownloadsUsed int
	MaxDownloads  int
}

// Renderer produces license certificate documents.
type Renderer interface {
	Render(data Data) ([]byte, error)
}

type pdfRenderer struct{}

func NewPDFRenderer() Renderer {
	return &pdfRenderer{}
}

// Render lays out the proof-of-license document: certificate identity, track
// metadata, the license holder, and every permission grant as an explicit
// value. No field is ever omitted.
func (r *pdfRenderer) Render(data Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(data.GeneratedAt)
	pdf.SetModificationDate(data.GeneratedAt)
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 14, "MUSIC LICENSE CERTIFICATE", "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Certificate ID: %s", data.CertificateID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Issue Date: %s", data.IssuedAt.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("License Type: %s", data.LicenseName), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	r.sectionHeader(pdf, "TRACK INFORMATION")
	r.tableRow(pdf, "Track Title:", data.TrackTitle)
	artist := data.ArtistName
	if data.ArtistHandle != "" {
		artist = fmt.Sprintf("%s (@%s)", data.ArtistName, data.ArtistHandle)
	}
	r.tableRow(pdf, "Artist:", artist)
	r.tableRow(pdf, "Genre:", orNotSpecified(data.GenreName))
	r.tableRow(pdf, "Duration:", orNotSpecified(data.Duration))
	if data.BPM != nil {
		r.tableRow(pdf, "BPM:", fmt.Sprintf("%d", *data.BPM))
	} else {
		r.tableRow(pdf, "BPM:", "Not specified")
	}
	r.tableRow(pdf, "Key:", orNotSpecified(data.Key))
	pdf.Ln(6)

	r.sectionHeader(pdf, "LICENSE HOLDER")
	r.tableRow(pdf, "Name:", data.BuyerName)
	r.tableRow(pdf, "Username:", "@"+data.BuyerHandle)
	r.tableRow(pdf, "Email:", data.BuyerEmail)
	r.tableRow(pdf, "Purchase Date:", data.IssuedAt.Format("January 2, 2006 at 3:04 PM"))
	r.tableRow(pdf, "Amount Paid:", fmt.Sprintf("%s %s", data.PricePaid.StringFixed(2), data.Currency))
	pdf.Ln(6)

	r.sectionHeader(pdf, "LICENSE TERMS & PERMISSIONS")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(44, 62, 80)
	if data.LicenseDescription != "" {
		pdf.MultiCell(0, 5, data.LicenseDescription, "", "L", false)
		pdf.Ln(3)
	}
	r.tableRow(pdf, "Commercial Use:", yesNo(data.AllowsCommercialUse))
	r.tableRow(pdf, "Modification:", yesNo(data.AllowsModification))
	r.tableRow(pdf, "Attribution Required:", yesNo(data.RequiresAttribution))
	if data.MaxCopies != nil {
		r.tableRow(pdf, "Maximum Copies:", fmt.Sprintf("%d", *data.MaxCopies))
	} else {
		r.tableRow(pdf, "Maximum Copies:", "Unlimited")
	}
	r.tableRow(pdf, "Downloads Used:", fmt.Sprintf("%d of %d", data.DownloadsUsed, data.MaxDownloads))
	r.tableRow(pdf, "Downloads Remaining:", fmt.Sprintf("%d", data.MaxDownloads-data.DownloadsUsed))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(127, 140, 141)
	pdf.MultiCell(0, 5,
		"This certificate confirms that the above-named license holder has legally purchased "+
			"the rights to use the specified track according to the terms outlined above. "+
			"This certificate serves as proof of purchase and license ownership.",
		"", "C", false)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, "Generated by RiffRent Music Platform", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Certificate issued on %s", data.GeneratedAt.Format("January 2, 2006 at 3:04 PM")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(52, 73, 94)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (r *pdfRenderer) tableRow(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetTextColor(44, 62, 80)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(236, 240, 241)
	pdf.CellFormat(50, 7, label, "1", 0, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(110, 7, value, "1", 1, "L", false, 0, "")
}

func yesNo(allowed bool) string {
	if allowed {
		return "Yes"
	}
	return "No"
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

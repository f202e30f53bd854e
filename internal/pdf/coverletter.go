package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// CoverLetterDateLayout is how the letter prints its date.
const CoverLetterDateLayout = "January 02, 2006"

const (
	letterMargin = 72.0
	bodyLeading  = 15.0
)

func (engine) CoverLetter(ctx context.Context, letter CoverLetter, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if letter.Name == "" || letter.Position == "" || letter.Company == "" {
		return errors.New("cover letter: name, position and company are required")
	}
	return guard("cover letter", func() error {
		return renderCoverLetter(letter, out)
	})
}

func renderCoverLetter(l CoverLetter, out string) error {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(letterMargin, letterMargin, letterMargin)
	doc.SetAutoPageBreak(true, letterMargin)
	doc.SetTitle("Cover Letter - "+l.Name, true)
	doc.SetAuthor(l.Name, true)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(0, 0, 255)
	doc.CellFormat(0, 20, tr(l.Name), "", 1, "C", false, 0, "")
	doc.Ln(10)
	doc.SetTextColor(0, 0, 0)

	var contact []string
	if l.Email != "" {
		contact = append(contact, "Email: "+l.Email)
	}
	if l.Phone != "" {
		contact = append(contact, "Phone: "+l.Phone)
	}
	if len(contact) > 0 {
		doc.SetFont("Helvetica", "", 12)
		doc.CellFormat(0, 16, tr(strings.Join(contact, " | ")), "", 1, "L", false, 0, "")
	}
	doc.Ln(20)

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, bodyLeading, l.Date.Format(CoverLetterDateLayout), "", 1, "L", false, 0, "")
	doc.Ln(20)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, bodyLeading, tr(l.Company), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, bodyLeading, "Hiring Manager", "", 1, "L", false, 0, "")
	doc.Ln(20)

	doc.CellFormat(0, bodyLeading, "Dear Hiring Manager,", "", 1, "L", false, 0, "")
	doc.Ln(12)

	for _, p := range letterBody(l.Position, l.Company) {
		doc.MultiCell(0, bodyLeading, tr(p), "", "L", false)
		doc.Ln(12)
	}

	doc.Ln(20)
	doc.CellFormat(0, bodyLeading, "Sincerely,", "", 1, "L", false, 0, "")
	doc.Ln(3 * bodyLeading)
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, bodyLeading, tr(l.Name), "", 1, "L", false, 0, "")

	if doc.PageCount() != 1 {
		return fmt.Errorf("letter overflowed to %d pages", doc.PageCount())
	}
	return doc.OutputFileAndClose(out)
}

func letterBody(position, company string) []string {
	return []string{
		fmt.Sprintf("I am writing to express my strong interest in the %s position at %s. With my background and passion for this field, I am confident that I would be a valuable addition to your team.", position, company),
		"In my previous experience, I have developed strong technical skills and a deep understanding of industry best practices. I am particularly drawn to this opportunity because of your company's reputation for innovation and excellence.",
		fmt.Sprintf("I would welcome the opportunity to discuss how my skills and enthusiasm can contribute to %s's continued success. Thank you for considering my application. I look forward to hearing from you soon.", company),
	}
}

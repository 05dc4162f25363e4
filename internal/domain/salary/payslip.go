package salary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// GeneratePayslipPDF renders one salary row to a PDF under the configured
// payslip directory and returns the file path. With an encryption key
// configured the file is stored encrypted and the .enc path is returned.
func (s *Service) GeneratePayslipPDF(ctx context.Context, salaryID string) (string, error) {
	data, err := s.store.PayslipData(ctx, salaryID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.payslipDir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.payslipDir, data.Salary.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s (%s)", data.FirstName, data.LastName, data.EmployeeNumber))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s / %s", data.DepartmentName, data.ContractType))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		data.Salary.PeriodStart.Format("2006-01-02"), data.Salary.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Main hours: %.2f", data.Salary.MainHours))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Regular overtime hours: %.2f", data.Salary.RegularOvertimeHours))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Weekly overtime hours: %.2f", data.Salary.WeeklyOvertimeHours))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", data.Salary.TotalSalary))
	pdf.Ln(7)
	status := data.Salary.PaymentStatus
	if data.Salary.PaymentDate != nil {
		status = fmt.Sprintf("%s on %s", status, data.Salary.PaymentDate.Format("2006-01-02"))
	}
	pdf.Cell(0, 8, fmt.Sprintf("Payment status: %s", status))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(raw)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}

// ReadPayslip loads a generated payslip, transparently decrypting the
// at-rest form.
func (s *Service) ReadPayslip(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".enc" && s.crypto != nil && s.crypto.Configured() {
		return s.crypto.Decrypt(raw)
	}
	return raw, nil
}
